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
	"github.com/blinklabs-io/hubd/database/types"
)

// Release is the index row for a registered release
type Release struct {
	Slug      string          `gorm:"size:100;not null"`
	ID        uint            `gorm:"primarykey"`
	CreatedAt int64           `gorm:"autoCreateTime:false;not null"`
	Address   address.Address `gorm:"uniqueIndex;size:32;not null"`
	Authority address.Address `gorm:"index;size:32;not null"`
}

func (Release) TableName() string {
	return "release"
}

// HubRelease links a release to a hub
type HubRelease struct {
	ID                  uint            `gorm:"primarykey"`
	Sales               types.Uint64    `gorm:"not null"`
	Address             address.Address `gorm:"uniqueIndex;size:32;not null"`
	Hub                 address.Address `gorm:"uniqueIndex:idx_hub_release_link;size:32;not null"`
	Release             address.Address `gorm:"column:release_address;uniqueIndex:idx_hub_release_link;size:32;not null"`
	PublishedThroughHub bool
}

func (HubRelease) TableName() string {
	return "hub_release"
}
