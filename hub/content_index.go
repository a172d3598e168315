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
	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/database/models"
)

// ContentEntry is a HubContent record paired with its address
type ContentEntry struct {
	HubContent
	Address address.Address `json:"address"`
}

// ContentIndex is the append-only per-hub content ledger. Entries are
// written once and never changed or removed.
type ContentIndex struct {
	db *database.Database
}

func NewContentIndex(db *database.Database) *ContentIndex {
	return &ContentIndex{db: db}
}

// Append creates the index entry for child, which must be an existing
// HubPost or HubRelease. The entry address is derived from hub and parent,
// the post or release behind child.
func (c *ContentIndex) Append(
	txn *database.Txn,
	hub address.Address,
	child address.Address,
	contentType ContentType,
	addedBy address.Address,
	datetime int64,
	parent address.Address,
) (address.Address, error) {
	addr := HubContentAddress(hub, parent)
	record := &HubContent{
		AddedBy:     addedBy,
		Hub:         hub,
		Child:       child,
		ContentType: contentType,
		Datetime:    datetime,
	}
	if err := c.db.CreateRecord(txn, addr, record); err != nil {
		return address.Address{}, err
	}
	if err := c.db.Metadata().AppendHubContent(
		&models.HubContent{
			Address:     addr,
			Hub:         hub,
			Child:       child,
			AddedBy:     addedBy,
			ContentType: uint8(contentType),
			Datetime:    datetime,
		},
		txn.Metadata(),
	); err != nil {
		return address.Address{}, err
	}
	return addr, nil
}

// List returns entries for hub ordered by datetime, with ties in append
// order
func (c *ContentIndex) List(
	txn *database.Txn,
	hub address.Address,
	offset int,
	limit int,
	descending bool,
) ([]ContentEntry, error) {
	rows, err := c.db.Metadata().GetHubContent(
		hub,
		offset,
		limit,
		descending,
		txn.Metadata(),
	)
	if err != nil {
		return nil, err
	}
	ret := make([]ContentEntry, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, ContentEntry{
			Address: row.Address,
			HubContent: HubContent{
				AddedBy:     row.AddedBy,
				Hub:         row.Hub,
				Child:       row.Child,
				ContentType: ContentType(row.ContentType),
				Datetime:    row.Datetime,
			},
		})
	}
	return ret, nil
}

// Count returns the number of entries for hub
func (c *ContentIndex) Count(
	txn *database.Txn,
	hub address.Address,
) (int64, error) {
	return c.db.Metadata().CountHubContent(hub, txn.Metadata())
}
