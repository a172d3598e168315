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

// HubContent is an entry in a hub's append-only content index. ID increases
// with every append and orders entries that share a datetime.
type HubContent struct {
	ID          uint            `gorm:"primarykey"`
	Datetime    int64           `gorm:"index:idx_hub_content_order,priority:2;not null"`
	Address     address.Address `gorm:"uniqueIndex;size:32;not null"`
	Hub         address.Address `gorm:"index:idx_hub_content_order,priority:1;size:32;not null"`
	Child       address.Address `gorm:"index;size:32;not null"`
	AddedBy     address.Address `gorm:"size:32;not null"`
	ContentType uint8           `gorm:"not null"`
}

func (HubContent) TableName() string {
	return "hub_content"
}
