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
	"fmt"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/database/models"
)

// InitHub creates the hub named handle owned by authority. The owner is
// granted artist and collaborator membership with every capability set.
func (m *Manager) InitHub(
	ctx context.Context,
	authority address.Address,
	handle string,
) (address.Address, error) {
	boundedHandle, err := newRequiredText("handle", handle)
	if err != nil {
		m.observe("InitHub", err)
		return address.Address{}, err
	}
	hubAddr := HubAddress(handle)
	err = m.update(ctx, "InitHub", func(txn *database.Txn) error {
		createdAt := m.now()
		if err := m.db.CreateRecord(
			txn,
			hubAddr,
			&Hub{
				Handle:    boundedHandle,
				Authority: authority,
				CreatedAt: createdAt,
			},
		); err != nil {
			return err
		}
		if err := m.db.Metadata().AddHub(
			&models.Hub{
				Handle:    handle,
				CreatedAt: createdAt,
				Address:   hubAddr,
				Authority: authority,
			},
			txn.Metadata(),
		); err != nil {
			return err
		}
		if _, err := m.createArtist(txn, hubAddr, authority, true); err != nil {
			return err
		}
		if _, err := m.createCollaborator(txn, hubAddr, authority, true); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return address.Address{}, fmt.Errorf("init hub %q: %w", handle, err)
	}
	m.logger.Info(
		"hub initialized",
		"hub", hubAddr.String(),
		"handle", handle,
		"authority", authority.String(),
	)
	m.emit(
		HubInitializedEventType,
		HubInitializedEvent{
			Address:   hubAddr,
			Authority: authority,
			Handle:    handle,
		},
	)
	return hubAddr, nil
}

// requireOwner reads the hub record and checks that actor is its authority
func (m *Manager) requireOwner(
	txn *database.Txn,
	hubAddr address.Address,
	actor address.Address,
) error {
	var hubRecord Hub
	if err := m.db.ReadRecord(txn, hubAddr, &hubRecord); err != nil {
		return err
	}
	if hubRecord.Authority != actor {
		return fmt.Errorf(
			"%w: %s is not the hub authority",
			ErrUnauthorized,
			actor,
		)
	}
	return nil
}

func (m *Manager) createArtist(
	txn *database.Txn,
	hubAddr address.Address,
	principal address.Address,
	canAddRelease bool,
) (address.Address, error) {
	addr := HubArtistAddress(hubAddr, principal)
	if err := m.db.CreateRecord(
		txn,
		addr,
		&HubArtist{
			Hub:           hubAddr,
			Artist:        principal,
			CanAddRelease: canAddRelease,
		},
	); err != nil {
		return address.Address{}, err
	}
	if err := m.db.Metadata().AddHubArtist(
		&models.HubArtist{
			Address:       addr,
			Hub:           hubAddr,
			Artist:        principal,
			CanAddRelease: canAddRelease,
		},
		txn.Metadata(),
	); err != nil {
		return address.Address{}, err
	}
	return addr, nil
}

func (m *Manager) createCollaborator(
	txn *database.Txn,
	hubAddr address.Address,
	principal address.Address,
	canAddContent bool,
) (address.Address, error) {
	addr := HubCollaboratorAddress(hubAddr, principal)
	if err := m.db.CreateRecord(
		txn,
		addr,
		&HubCollaborator{
			Hub:           hubAddr,
			Collaborator:  principal,
			CanAddContent: canAddContent,
		},
	); err != nil {
		return address.Address{}, err
	}
	if err := m.db.Metadata().AddHubCollaborator(
		&models.HubCollaborator{
			Address:       addr,
			Hub:           hubAddr,
			Collaborator:  principal,
			CanAddContent: canAddContent,
		},
		txn.Metadata(),
	); err != nil {
		return address.Address{}, err
	}
	return addr, nil
}

// AddArtist grants principal artist membership in hub. Only the hub
// authority may add members.
func (m *Manager) AddArtist(
	ctx context.Context,
	hubAddr address.Address,
	principal address.Address,
	canAddRelease bool,
	actor address.Address,
) (address.Address, error) {
	var addr address.Address
	err := m.update(ctx, "AddArtist", func(txn *database.Txn) error {
		if err := m.requireOwner(txn, hubAddr, actor); err != nil {
			return err
		}
		var err error
		addr, err = m.createArtist(txn, hubAddr, principal, canAddRelease)
		return err
	})
	if err != nil {
		return address.Address{}, fmt.Errorf("add artist: %w", err)
	}
	m.emit(
		ArtistAddedEventType,
		MemberEvent{
			Address:    addr,
			Hub:        hubAddr,
			Principal:  principal,
			Role:       RoleArtist,
			Capability: canAddRelease,
		},
	)
	return addr, nil
}

// AddCollaborator grants principal collaborator membership in hub. Only the
// hub authority may add members.
func (m *Manager) AddCollaborator(
	ctx context.Context,
	hubAddr address.Address,
	principal address.Address,
	canAddContent bool,
	actor address.Address,
) (address.Address, error) {
	var addr address.Address
	err := m.update(ctx, "AddCollaborator", func(txn *database.Txn) error {
		if err := m.requireOwner(txn, hubAddr, actor); err != nil {
			return err
		}
		var err error
		addr, err = m.createCollaborator(
			txn,
			hubAddr,
			principal,
			canAddContent,
		)
		return err
	})
	if err != nil {
		return address.Address{}, fmt.Errorf("add collaborator: %w", err)
	}
	m.emit(
		CollaboratorAddedEventType,
		MemberEvent{
			Address:    addr,
			Hub:        hubAddr,
			Principal:  principal,
			Role:       RoleCollaborator,
			Capability: canAddContent,
		},
	)
	return addr, nil
}

// SetArtistCapability grants or revokes an existing artist's ability to add
// releases
func (m *Manager) SetArtistCapability(
	ctx context.Context,
	hubAddr address.Address,
	principal address.Address,
	canAddRelease bool,
	actor address.Address,
) error {
	addr := HubArtistAddress(hubAddr, principal)
	err := m.update(ctx, "SetArtistCapability", func(txn *database.Txn) error {
		if err := m.requireOwner(txn, hubAddr, actor); err != nil {
			return err
		}
		artist, err := m.registry.Artist(txn, hubAddr, principal)
		if err != nil {
			return err
		}
		artist.CanAddRelease = canAddRelease
		if err := m.db.WriteRecord(txn, addr, artist); err != nil {
			return err
		}
		return m.db.Metadata().SetHubArtistCapability(
			addr,
			canAddRelease,
			txn.Metadata(),
		)
	})
	if err != nil {
		return fmt.Errorf("set artist capability: %w", err)
	}
	m.emit(
		CapabilityUpdatedEventType,
		MemberEvent{
			Address:    addr,
			Hub:        hubAddr,
			Principal:  principal,
			Role:       RoleArtist,
			Capability: canAddRelease,
		},
	)
	return nil
}

// SetCollaboratorCapability grants or revokes an existing collaborator's
// ability to add content
func (m *Manager) SetCollaboratorCapability(
	ctx context.Context,
	hubAddr address.Address,
	principal address.Address,
	canAddContent bool,
	actor address.Address,
) error {
	addr := HubCollaboratorAddress(hubAddr, principal)
	err := m.update(
		ctx,
		"SetCollaboratorCapability",
		func(txn *database.Txn) error {
			if err := m.requireOwner(txn, hubAddr, actor); err != nil {
				return err
			}
			collaborator, err := m.registry.Collaborator(
				txn,
				hubAddr,
				principal,
			)
			if err != nil {
				return err
			}
			collaborator.CanAddContent = canAddContent
			if err := m.db.WriteRecord(txn, addr, collaborator); err != nil {
				return err
			}
			return m.db.Metadata().SetHubCollaboratorCapability(
				addr,
				canAddContent,
				txn.Metadata(),
			)
		},
	)
	if err != nil {
		return fmt.Errorf("set collaborator capability: %w", err)
	}
	m.emit(
		CapabilityUpdatedEventType,
		MemberEvent{
			Address:    addr,
			Hub:        hubAddr,
			Principal:  principal,
			Role:       RoleCollaborator,
			Capability: canAddContent,
		},
	)
	return nil
}
