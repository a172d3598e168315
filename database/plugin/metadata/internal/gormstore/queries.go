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

package gormstore

import (
	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/database/models"
	"github.com/blinklabs-io/hubd/database/types"
)

// insert creates a new row, reporting unique key violations as
// types.ErrDuplicateRecord
func (s *Store) insert(value any, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return translateError(db.Create(value).Error)
}

func (s *Store) updateColumns(
	model any,
	addr address.Address,
	values map[string]any,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(model).Where("address = ?", addr).Updates(values)
	return translateError(result.Error)
}

func (s *Store) AddHub(hub *models.Hub, txn types.Txn) error {
	return s.insert(hub, txn)
}

// GetHubs returns hubs in creation order
func (s *Store) GetHubs(
	offset int,
	limit int,
	txn types.Txn,
) ([]models.Hub, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Hub
	result := db.Order("id ASC").Offset(offset).Limit(limit).Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) AddHubArtist(artist *models.HubArtist, txn types.Txn) error {
	return s.insert(artist, txn)
}

func (s *Store) SetHubArtistCapability(
	addr address.Address,
	canAddRelease bool,
	txn types.Txn,
) error {
	return s.updateColumns(
		&models.HubArtist{},
		addr,
		map[string]any{"can_add_release": canAddRelease},
		txn,
	)
}

func (s *Store) GetHubArtists(
	hub address.Address,
	txn types.Txn,
) ([]models.HubArtist, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.HubArtist
	result := db.Where("hub = ?", hub).Order("id ASC").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) AddHubCollaborator(
	collaborator *models.HubCollaborator,
	txn types.Txn,
) error {
	return s.insert(collaborator, txn)
}

func (s *Store) SetHubCollaboratorCapability(
	addr address.Address,
	canAddContent bool,
	txn types.Txn,
) error {
	return s.updateColumns(
		&models.HubCollaborator{},
		addr,
		map[string]any{"can_add_content": canAddContent},
		txn,
	)
}

func (s *Store) GetHubCollaborators(
	hub address.Address,
	txn types.Txn,
) ([]models.HubCollaborator, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.HubCollaborator
	result := db.Where("hub = ?", hub).Order("id ASC").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) AddRelease(release *models.Release, txn types.Txn) error {
	return s.insert(release, txn)
}

func (s *Store) AddHubRelease(
	hubRelease *models.HubRelease,
	txn types.Txn,
) error {
	return s.insert(hubRelease, txn)
}

func (s *Store) SetHubReleaseSales(
	addr address.Address,
	sales uint64,
	txn types.Txn,
) error {
	return s.updateColumns(
		&models.HubRelease{},
		addr,
		map[string]any{"sales": types.Uint64(sales)},
		txn,
	)
}

func (s *Store) AddPost(post *models.Post, txn types.Txn) error {
	return s.insert(post, txn)
}

func (s *Store) UpdatePost(
	addr address.Address,
	uri string,
	updatedAt int64,
	txn types.Txn,
) error {
	return s.updateColumns(
		&models.Post{},
		addr,
		map[string]any{"uri": uri, "updated_at": updatedAt},
		txn,
	)
}

func (s *Store) AddHubPost(hubPost *models.HubPost, txn types.Txn) error {
	return s.insert(hubPost, txn)
}

func (s *Store) SetHubPostVersionUri(
	addr address.Address,
	uri string,
	txn types.Txn,
) error {
	return s.updateColumns(
		&models.HubPost{},
		addr,
		map[string]any{"version_uri": uri},
		txn,
	)
}

// AppendHubContent adds an entry to a hub's content index. There is
// deliberately no update or delete counterpart.
func (s *Store) AppendHubContent(
	content *models.HubContent,
	txn types.Txn,
) error {
	return s.insert(content, txn)
}

// GetHubContent returns a page of a hub's content index ordered by datetime,
// with ties broken by append order
func (s *Store) GetHubContent(
	hub address.Address,
	offset int,
	limit int,
	descending bool,
	txn types.Txn,
) ([]models.HubContent, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	order := "datetime ASC, id ASC"
	if descending {
		order = "datetime DESC, id DESC"
	}
	var ret []models.HubContent
	result := db.Where("hub = ?", hub).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) CountHubContent(
	hub address.Address,
	txn types.Txn,
) (int64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	result := db.Model(&models.HubContent{}).
		Where("hub = ?", hub).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (s *Store) AddSubscription(
	subscription *models.Subscription,
	txn types.Txn,
) error {
	return s.insert(subscription, txn)
}

func (s *Store) DeleteSubscription(
	addr address.Address,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("address = ?", addr).Delete(&models.Subscription{})
	return result.Error
}

func (s *Store) GetSubscriptionsFrom(
	from address.Address,
	txn types.Txn,
) ([]models.Subscription, error) {
	return s.getSubscriptions("from_principal = ?", from, txn)
}

func (s *Store) GetSubscriptionsTo(
	to address.Address,
	txn types.Txn,
) ([]models.Subscription, error) {
	return s.getSubscriptions("to_target = ?", to, txn)
}

func (s *Store) getSubscriptions(
	query string,
	addr address.Address,
	txn types.Txn,
) ([]models.Subscription, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Subscription
	result := db.Where(query, addr).Order("id ASC").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
