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

package metadata

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/database/models"
	"github.com/blinklabs-io/hubd/database/plugin"
	"github.com/blinklabs-io/hubd/database/types"
)

type MetadataStore interface {
	plugin.Plugin

	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Hubs and membership
	AddHub(*models.Hub, types.Txn) error
	GetHubs(int, int, types.Txn) ([]models.Hub, error)
	AddHubArtist(*models.HubArtist, types.Txn) error
	SetHubArtistCapability(address.Address, bool, types.Txn) error
	GetHubArtists(address.Address, types.Txn) ([]models.HubArtist, error)
	AddHubCollaborator(*models.HubCollaborator, types.Txn) error
	SetHubCollaboratorCapability(address.Address, bool, types.Txn) error
	GetHubCollaborators(
		address.Address,
		types.Txn,
	) ([]models.HubCollaborator, error)

	// Releases
	AddRelease(*models.Release, types.Txn) error
	AddHubRelease(*models.HubRelease, types.Txn) error
	SetHubReleaseSales(address.Address, uint64, types.Txn) error

	// Posts
	AddPost(*models.Post, types.Txn) error
	UpdatePost(
		address.Address,
		string, // uri
		int64, // updatedAt
		types.Txn,
	) error
	AddHubPost(*models.HubPost, types.Txn) error
	SetHubPostVersionUri(address.Address, string, types.Txn) error

	// Content index
	AppendHubContent(*models.HubContent, types.Txn) error
	GetHubContent(
		address.Address,
		int, // offset
		int, // limit
		bool, // descending
		types.Txn,
	) ([]models.HubContent, error)
	CountHubContent(address.Address, types.Txn) (int64, error)

	// Subscriptions
	AddSubscription(*models.Subscription, types.Txn) error
	DeleteSubscription(address.Address, types.Txn) error
	GetSubscriptionsFrom(
		address.Address,
		types.Txn,
	) ([]models.Subscription, error)
	GetSubscriptionsTo(
		address.Address,
		types.Txn,
	) ([]models.Subscription, error)
}

// New returns the started metadata plugin selected by name
func New(pluginName string, opts plugin.StartOptions) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName, opts)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
