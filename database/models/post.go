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

// Post is the index row for a hub-native content item
type Post struct {
	Slug                string          `gorm:"size:100;not null"`
	Uri                 string          `gorm:"size:100;not null"`
	ID                  uint            `gorm:"primarykey"`
	CreatedAt           int64           `gorm:"autoCreateTime:false;not null"`
	UpdatedAt           int64           `gorm:"autoUpdateTime:false;not null"`
	Address             address.Address `gorm:"uniqueIndex;size:32;not null"`
	Hub                 address.Address `gorm:"index;size:32;not null"`
	Author              address.Address `gorm:"index;size:32;not null"`
	PublishedThroughHub bool
}

func (Post) TableName() string {
	return "post"
}

// HubPost surfaces a post within a hub
type HubPost struct {
	VersionUri string          `gorm:"size:100;not null"`
	ID         uint            `gorm:"primarykey"`
	Address    address.Address `gorm:"uniqueIndex;size:32;not null"`
	Hub        address.Address `gorm:"uniqueIndex:idx_hub_post_link;size:32;not null"`
	Post       address.Address `gorm:"uniqueIndex:idx_hub_post_link;size:32;not null"`
}

func (HubPost) TableName() string {
	return "hub_post"
}
