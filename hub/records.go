// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hub

import (
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"

	"github.com/blinklabs-io/hubd/address"
)

// ContentType identifies what a HubContent entry points at
type ContentType uint8

const (
	ContentTypeRelease ContentType = 1
	ContentTypePost    ContentType = 2
)

func (c ContentType) String() string {
	switch c {
	case ContentTypeRelease:
		return "release"
	case ContentTypePost:
		return "post"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

func (c ContentType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ContentType) UnmarshalText(data []byte) error {
	switch string(data) {
	case "release":
		*c = ContentTypeRelease
	case "post":
		*c = ContentTypePost
	default:
		return fmt.Errorf("unknown content type %q", string(data))
	}
	return nil
}

// SubscriptionType identifies what a subscription follows
type SubscriptionType uint8

const (
	SubscriptionTypeAccount SubscriptionType = 1
	SubscriptionTypeHub     SubscriptionType = 2
)

// ParseSubscriptionType parses the text form of a subscription type
func ParseSubscriptionType(s string) (SubscriptionType, error) {
	switch s {
	case "account":
		return SubscriptionTypeAccount, nil
	case "hub":
		return SubscriptionTypeHub, nil
	default:
		return 0, fmt.Errorf(
			"%w: unknown subscription type %q",
			ErrInvalidSubscription,
			s,
		)
	}
}

func (s SubscriptionType) String() string {
	switch s {
	case SubscriptionTypeAccount:
		return "account"
	case SubscriptionTypeHub:
		return "hub"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

func (s SubscriptionType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SubscriptionType) UnmarshalText(data []byte) error {
	tmp, err := ParseSubscriptionType(string(data))
	if err != nil {
		return err
	}
	*s = tmp
	return nil
}

// Records below are stored CBOR-encoded at their derived address

type Hub struct {
	cbor.StructAsArray
	Handle    BoundedText     `json:"handle"`
	Authority address.Address `json:"authority"`
	CreatedAt int64           `json:"created_at"`
}

type HubArtist struct {
	cbor.StructAsArray
	Hub           address.Address `json:"hub"`
	Artist        address.Address `json:"artist"`
	CanAddRelease bool            `json:"can_add_release"`
}

type HubCollaborator struct {
	cbor.StructAsArray
	Hub           address.Address `json:"hub"`
	Collaborator  address.Address `json:"collaborator"`
	CanAddContent bool            `json:"can_add_content"`
}

type Release struct {
	cbor.StructAsArray
	Authority address.Address `json:"authority"`
	Slug      BoundedText     `json:"slug"`
	CreatedAt int64           `json:"created_at"`
}

type HubRelease struct {
	cbor.StructAsArray
	Hub                 address.Address `json:"hub"`
	Release             address.Address `json:"release"`
	PublishedThroughHub bool            `json:"published_through_hub"`
	Sales               uint64          `json:"sales"`
}

// Post is a hub-native content item. PublishedThroughHub holds the address
// of the hub the post was initialized through.
type Post struct {
	cbor.StructAsArray
	Author              address.Address `json:"author"`
	PublishedThroughHub address.Address `json:"published_through_hub"`
	CreatedAt           int64           `json:"created_at"`
	UpdatedAt           int64           `json:"updated_at"`
	Slug                BoundedText     `json:"slug"`
	Uri                 BoundedText     `json:"uri"`
}

type HubPost struct {
	cbor.StructAsArray
	Hub        address.Address `json:"hub"`
	Post       address.Address `json:"post"`
	VersionUri BoundedText     `json:"version_uri"`
}

type HubContent struct {
	cbor.StructAsArray
	AddedBy     address.Address `json:"added_by"`
	Hub         address.Address `json:"hub"`
	Child       address.Address `json:"child"`
	ContentType ContentType     `json:"content_type"`
	Datetime    int64           `json:"datetime"`
}

type Subscription struct {
	cbor.StructAsArray
	From             address.Address  `json:"from"`
	To               address.Address  `json:"to"`
	SubscriptionType SubscriptionType `json:"subscription_type"`
	Datetime         int64            `json:"datetime"`
}
