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
	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/event"
)

const (
	HubReleaseAddedEventType        event.EventType = "hub.release_added"
	PostInitializedViaHubEventType  event.EventType = "hub.post_initialized"
	HubInitializedEventType         event.EventType = "hub.initialized"
	ArtistAddedEventType            event.EventType = "hub.artist_added"
	CollaboratorAddedEventType      event.EventType = "hub.collaborator_added"
	CapabilityUpdatedEventType      event.EventType = "hub.capability_updated"
	ReleaseRegisteredEventType      event.EventType = "hub.release_registered"
	HubReleaseSaleRecordedEventType event.EventType = "hub.release_sale_recorded"
	PostUpdatedEventType            event.EventType = "hub.post_updated"
	SubscriptionCreatedEventType    event.EventType = "hub.subscription_created"
	SubscriptionRemovedEventType    event.EventType = "hub.subscription_removed"
)

// EventTypes lists every event type emitted by the Manager
var EventTypes = []event.EventType{
	HubReleaseAddedEventType,
	PostInitializedViaHubEventType,
	HubInitializedEventType,
	ArtistAddedEventType,
	CollaboratorAddedEventType,
	CapabilityUpdatedEventType,
	ReleaseRegisteredEventType,
	HubReleaseSaleRecordedEventType,
	PostUpdatedEventType,
	SubscriptionCreatedEventType,
	SubscriptionRemovedEventType,
}

type HubReleaseAddedEvent struct {
	Address address.Address `json:"address"`
	Hub     address.Address `json:"hub"`
	Release address.Address `json:"release"`
}

// PostInitializedViaHubEvent carries the HubPost address, not the Post
type PostInitializedViaHubEvent struct {
	Address address.Address `json:"address"`
	Hub     address.Address `json:"hub"`
	Uri     string          `json:"uri"`
}

type HubInitializedEvent struct {
	Address   address.Address `json:"address"`
	Authority address.Address `json:"authority"`
	Handle    string          `json:"handle"`
}

// MemberEvent is emitted when a membership record is created or its
// capability flag changes
type MemberEvent struct {
	Address    address.Address `json:"address"`
	Hub        address.Address `json:"hub"`
	Principal  address.Address `json:"principal"`
	Role       Role            `json:"role"`
	Capability bool            `json:"capability"`
}

type ReleaseRegisteredEvent struct {
	Address   address.Address `json:"address"`
	Authority address.Address `json:"authority"`
	Slug      string          `json:"slug"`
}

type HubReleaseSaleRecordedEvent struct {
	Address address.Address `json:"address"`
	Sales   uint64          `json:"sales"`
}

type PostUpdatedEvent struct {
	Address address.Address `json:"address"`
	Uri     string          `json:"uri"`
}

type SubscriptionEvent struct {
	Address address.Address  `json:"address"`
	From    address.Address  `json:"from"`
	To      address.Address  `json:"to"`
	Type    SubscriptionType `json:"subscription_type"`
}
