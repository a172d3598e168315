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
	"errors"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/database"
)

// Registry reads membership records
type Registry struct {
	db *database.Database
}

func NewRegistry(db *database.Database) *Registry {
	return &Registry{db: db}
}

// Artist returns the HubArtist record for principal in hub
func (r *Registry) Artist(
	txn *database.Txn,
	hub address.Address,
	principal address.Address,
) (*HubArtist, error) {
	var ret HubArtist
	if err := r.db.ReadRecord(
		txn,
		HubArtistAddress(hub, principal),
		&ret,
	); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Collaborator returns the HubCollaborator record for principal in hub
func (r *Registry) Collaborator(
	txn *database.Txn,
	hub address.Address,
	principal address.Address,
) (*HubCollaborator, error) {
	var ret HubCollaborator
	if err := r.db.ReadRecord(
		txn,
		HubCollaboratorAddress(hub, principal),
		&ret,
	); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Lookup returns the capabilities principal holds in hub. Missing records
// are not an error.
func (r *Registry) Lookup(
	txn *database.Txn,
	hub address.Address,
	principal address.Address,
) (CapabilityRecord, error) {
	var ret CapabilityRecord
	artist, err := r.Artist(txn, hub, principal)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return ret, err
	}
	ret.Artist = artist
	collaborator, err := r.Collaborator(txn, hub, principal)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return ret, err
	}
	ret.Collaborator = collaborator
	return ret, nil
}
