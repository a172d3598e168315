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

// Subscription is the index row for a following relationship
type Subscription struct {
	ID               uint            `gorm:"primarykey"`
	Datetime         int64           `gorm:"not null"`
	Address          address.Address `gorm:"uniqueIndex;size:32;not null"`
	From             address.Address `gorm:"column:from_principal;index;size:32;not null"`
	To               address.Address `gorm:"column:to_target;index;size:32;not null"`
	SubscriptionType uint8           `gorm:"not null"`
}

func (Subscription) TableName() string {
	return "subscription"
}
