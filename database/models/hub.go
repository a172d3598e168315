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

package models

import (
	"github.com/blinklabs-io/hubd/address"
)

// Hub is the index row for a hub namespace
type Hub struct {
	Handle    string          `gorm:"uniqueIndex;size:100;not null"`
	ID        uint            `gorm:"primarykey"`
	CreatedAt int64           `gorm:"autoCreateTime:false;not null"`
	Address   address.Address `gorm:"uniqueIndex;size:32;not null"`
	Authority address.Address `gorm:"index;size:32;not null"`
}

func (Hub) TableName() string {
	return "hub"
}

// HubArtist is the index row for a release-contributor grant
type HubArtist struct {
	ID            uint            `gorm:"primarykey"`
	Address       address.Address `gorm:"uniqueIndex;size:32;not null"`
	Hub           address.Address `gorm:"uniqueIndex:idx_hub_artist_member;size:32;not null"`
	Artist        address.Address `gorm:"uniqueIndex:idx_hub_artist_member;size:32;not null"`
	CanAddRelease bool
}

func (HubArtist) TableName() string {
	return "hub_artist"
}

// HubCollaborator is the index row for a content-contributor grant
type HubCollaborator struct {
	ID            uint            `gorm:"primarykey"`
	Address       address.Address `gorm:"uniqueIndex;size:32;not null"`
	Hub           address.Address `gorm:"uniqueIndex:idx_hub_collaborator_member;size:32;not null"`
	Collaborator  address.Address `gorm:"uniqueIndex:idx_hub_collaborator_member;size:32;not null"`
	CanAddContent bool
}

func (HubCollaborator) TableName() string {
	return "hub_collaborator"
}
