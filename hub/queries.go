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
	"context"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/database/models"
)

// HubEntry is a Hub record paired with its address
type HubEntry struct {
	Hub
	Address address.Address `json:"address"`
}

// Member describes one membership record of a hub
type Member struct {
	Address    address.Address `json:"address"`
	Principal  address.Address `json:"principal"`
	Capability bool            `json:"capability"`
}

type Members struct {
	Artists       []Member `json:"artists"`
	Collaborators []Member `json:"collaborators"`
}

// SubscriptionEntry is a Subscription record paired with its address
type SubscriptionEntry struct {
	Subscription
	Address address.Address `json:"address"`
}

func (m *Manager) readRecord(
	ctx context.Context,
	op string,
	addr address.Address,
	dest any,
) error {
	return m.view(ctx, op, func(txn *database.Txn) error {
		return m.db.ReadRecord(txn, addr, dest)
	})
}

func (m *Manager) Hub(ctx context.Context, addr address.Address) (*Hub, error) {
	var ret Hub
	if err := m.readRecord(ctx, "Hub", addr, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// HubByHandle returns the hub named handle and its address
func (m *Manager) HubByHandle(
	ctx context.Context,
	handle string,
) (*HubEntry, error) {
	addr := HubAddress(handle)
	hubRecord, err := m.Hub(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &HubEntry{Hub: *hubRecord, Address: addr}, nil
}

// Hubs returns a page of hubs in creation order
func (m *Manager) Hubs(
	ctx context.Context,
	offset int,
	limit int,
) ([]HubEntry, error) {
	var ret []HubEntry
	err := m.view(ctx, "Hubs", func(*database.Txn) error {
		rows, err := m.db.Metadata().GetHubs(offset, limit, nil)
		if err != nil {
			return err
		}
		ret = make([]HubEntry, 0, len(rows))
		for _, row := range rows {
			ret = append(ret, HubEntry{
				Address: row.Address,
				Hub: Hub{
					Handle:    BoundedText(row.Handle),
					Authority: row.Authority,
					CreatedAt: row.CreatedAt,
				},
			})
		}
		return nil
	})
	return ret, err
}

func (m *Manager) Release(
	ctx context.Context,
	addr address.Address,
) (*Release, error) {
	var ret Release
	if err := m.readRecord(ctx, "Release", addr, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (m *Manager) HubRelease(
	ctx context.Context,
	addr address.Address,
) (*HubRelease, error) {
	var ret HubRelease
	if err := m.readRecord(ctx, "HubRelease", addr, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (m *Manager) Post(ctx context.Context, addr address.Address) (*Post, error) {
	var ret Post
	if err := m.readRecord(ctx, "Post", addr, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (m *Manager) HubPost(
	ctx context.Context,
	addr address.Address,
) (*HubPost, error) {
	var ret HubPost
	if err := m.readRecord(ctx, "HubPost", addr, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (m *Manager) HubContent(
	ctx context.Context,
	addr address.Address,
) (*HubContent, error) {
	var ret HubContent
	if err := m.readRecord(ctx, "HubContent", addr, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Content returns a page of the hub's content index and the total number
// of entries
func (m *Manager) Content(
	ctx context.Context,
	hubAddr address.Address,
	offset int,
	limit int,
	descending bool,
) ([]ContentEntry, int64, error) {
	var entries []ContentEntry
	var total int64
	err := m.viewIndex(ctx, "Content", func(txn *database.Txn) error {
		var err error
		entries, err = m.content.List(txn, hubAddr, offset, limit, descending)
		if err != nil {
			return err
		}
		total, err = m.content.Count(txn, hubAddr)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Members lists the artists and collaborators of a hub
func (m *Manager) Members(
	ctx context.Context,
	hubAddr address.Address,
) (*Members, error) {
	ret := &Members{
		Artists:       []Member{},
		Collaborators: []Member{},
	}
	err := m.view(ctx, "Members", func(*database.Txn) error {
		artists, err := m.db.Metadata().GetHubArtists(hubAddr, nil)
		if err != nil {
			return err
		}
		for _, artist := range artists {
			ret.Artists = append(ret.Artists, Member{
				Address:    artist.Address,
				Principal:  artist.Artist,
				Capability: artist.CanAddRelease,
			})
		}
		collaborators, err := m.db.Metadata().GetHubCollaborators(hubAddr, nil)
		if err != nil {
			return err
		}
		for _, collaborator := range collaborators {
			ret.Collaborators = append(ret.Collaborators, Member{
				Address:    collaborator.Address,
				Principal:  collaborator.Collaborator,
				Capability: collaborator.CanAddContent,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Subscriptions lists what from follows
func (m *Manager) Subscriptions(
	ctx context.Context,
	from address.Address,
) ([]SubscriptionEntry, error) {
	var ret []SubscriptionEntry
	err := m.view(ctx, "Subscriptions", func(*database.Txn) error {
		rows, err := m.db.Metadata().GetSubscriptionsFrom(from, nil)
		if err != nil {
			return err
		}
		ret = subscriptionEntries(rows)
		return nil
	})
	return ret, err
}

// Subscribers lists who follows to
func (m *Manager) Subscribers(
	ctx context.Context,
	to address.Address,
) ([]SubscriptionEntry, error) {
	var ret []SubscriptionEntry
	err := m.view(ctx, "Subscribers", func(*database.Txn) error {
		rows, err := m.db.Metadata().GetSubscriptionsTo(to, nil)
		if err != nil {
			return err
		}
		ret = subscriptionEntries(rows)
		return nil
	})
	return ret, err
}

func subscriptionEntries(rows []models.Subscription) []SubscriptionEntry {
	ret := make([]SubscriptionEntry, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, SubscriptionEntry{
			Address: row.Address,
			Subscription: Subscription{
				From:             row.From,
				To:               row.To,
				SubscriptionType: SubscriptionType(row.SubscriptionType),
				Datetime:         row.Datetime,
			},
		})
	}
	return ret
}
