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
	"math"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/database/models"
)

// RegisterRelease records a release owned by authority so that it can later
// be added to hubs
func (m *Manager) RegisterRelease(
	ctx context.Context,
	authority address.Address,
	slug string,
) (address.Address, error) {
	boundedSlug, err := newRequiredText("slug", slug)
	if err != nil {
		m.observe("RegisterRelease", err)
		return address.Address{}, err
	}
	addr := ReleaseAddress(authority, slug)
	err = m.update(ctx, "RegisterRelease", func(txn *database.Txn) error {
		createdAt := m.now()
		if err := m.db.CreateRecord(
			txn,
			addr,
			&Release{
				Authority: authority,
				Slug:      boundedSlug,
				CreatedAt: createdAt,
			},
		); err != nil {
			return err
		}
		return m.db.Metadata().AddRelease(
			&models.Release{
				Slug:      slug,
				CreatedAt: createdAt,
				Address:   addr,
				Authority: authority,
			},
			txn.Metadata(),
		)
	})
	if err != nil {
		return address.Address{}, fmt.Errorf("register release: %w", err)
	}
	m.emit(
		ReleaseRegisteredEventType,
		ReleaseRegisteredEvent{
			Address:   addr,
			Authority: authority,
			Slug:      slug,
		},
	)
	return addr, nil
}

// AddRelease publishes an existing release through hub on behalf of
// principal, who must hold an artist record with can_add_release set.
// The capability check comes first, so an unauthorized caller learns
// nothing about the release.
func (m *Manager) AddRelease(
	ctx context.Context,
	hubAddr address.Address,
	release address.Address,
	principal address.Address,
) (address.Address, error) {
	addr := HubReleaseAddress(hubAddr, release)
	err := m.update(ctx, "AddRelease", func(txn *database.Txn) error {
		caps, err := m.registry.Lookup(txn, hubAddr, principal)
		if err != nil {
			return err
		}
		if !caps.CanAddRelease() {
			return fmt.Errorf(
				"%w: %s cannot add releases to hub %s",
				ErrUnauthorized,
				principal,
				hubAddr,
			)
		}
		exists, err := m.db.RecordExists(txn, release)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: release %s", ErrNotFound, release)
		}
		if err := m.db.CreateRecord(
			txn,
			addr,
			&HubRelease{
				Hub:     hubAddr,
				Release: release,
			},
		); err != nil {
			return err
		}
		if err := m.db.Metadata().AddHubRelease(
			&models.HubRelease{
				Address: addr,
				Hub:     hubAddr,
				Release: release,
			},
			txn.Metadata(),
		); err != nil {
			return err
		}
		if m.config.IndexReleases {
			if _, err := m.content.Append(
				txn,
				hubAddr,
				addr,
				ContentTypeRelease,
				principal,
				m.now(),
				release,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return address.Address{}, fmt.Errorf("add release to hub: %w", err)
	}
	m.logger.Info(
		"release added to hub",
		"hub", hubAddr.String(),
		"release", release.String(),
		"hub_release", addr.String(),
	)
	m.emit(
		HubReleaseAddedEventType,
		HubReleaseAddedEvent{
			Address: addr,
			Hub:     hubAddr,
			Release: release,
		},
	)
	return addr, nil
}

// RecordSale increments the sales counter of a HubRelease and returns the
// new count. This is the only path that changes the counter.
func (m *Manager) RecordSale(
	ctx context.Context,
	hubRelease address.Address,
) (uint64, error) {
	var sales uint64
	err := m.update(ctx, "RecordSale", func(txn *database.Txn) error {
		var record HubRelease
		if err := m.db.ReadRecord(txn, hubRelease, &record); err != nil {
			return err
		}
		if record.Sales == math.MaxUint64 {
			return ErrSalesOverflow
		}
		record.Sales++
		if err := m.db.WriteRecord(txn, hubRelease, &record); err != nil {
			return err
		}
		sales = record.Sales
		return m.db.Metadata().SetHubReleaseSales(
			hubRelease,
			sales,
			txn.Metadata(),
		)
	})
	if err != nil {
		return 0, fmt.Errorf("record sale: %w", err)
	}
	m.emit(
		HubReleaseSaleRecordedEventType,
		HubReleaseSaleRecordedEvent{
			Address: hubRelease,
			Sales:   sales,
		},
	)
	return sales, nil
}
