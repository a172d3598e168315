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

// PostInit holds the addresses of the records created by InitPostViaHub
type PostInit struct {
	Hub        address.Address `json:"hub"`
	Post       address.Address `json:"post"`
	HubPost    address.Address `json:"hub_post"`
	HubContent address.Address `json:"hub_content"`
}

// InitPostViaHub creates a post in the hub named hubHandle together with its
// HubPost and content index entry. principal must hold a collaborator
// record with can_add_content set. Either all three records are created or
// none are.
func (m *Manager) InitPostViaHub(
	ctx context.Context,
	hubHandle string,
	slug string,
	uri string,
	principal address.Address,
) (*PostInit, error) {
	boundedSlug, err := newRequiredText("slug", slug)
	if err != nil {
		m.observe("InitPostViaHub", err)
		return nil, err
	}
	boundedUri, err := NewBoundedText("uri", uri)
	if err != nil {
		m.observe("InitPostViaHub", err)
		return nil, err
	}
	hubAddr := HubAddress(hubHandle)
	ret := &PostInit{
		Hub:  hubAddr,
		Post: PostAddress(hubAddr, slug),
	}
	ret.HubPost = HubPostAddress(hubAddr, ret.Post)
	err = m.update(ctx, "InitPostViaHub", func(txn *database.Txn) error {
		caps, err := m.registry.Lookup(txn, hubAddr, principal)
		if err != nil {
			return err
		}
		if !caps.CanAddContent() {
			return fmt.Errorf(
				"%w: %s cannot add content to hub %s",
				ErrUnauthorized,
				principal,
				hubAddr,
			)
		}
		createdAt := m.now()
		if err := m.db.CreateRecord(
			txn,
			ret.Post,
			&Post{
				Author:              principal,
				PublishedThroughHub: hubAddr,
				CreatedAt:           createdAt,
				UpdatedAt:           createdAt,
				Slug:                boundedSlug,
				Uri:                 boundedUri,
			},
		); err != nil {
			return err
		}
		if err := m.db.Metadata().AddPost(
			&models.Post{
				Slug:                slug,
				Uri:                 uri,
				CreatedAt:           createdAt,
				UpdatedAt:           createdAt,
				Address:             ret.Post,
				Hub:                 hubAddr,
				Author:              principal,
				PublishedThroughHub: true,
			},
			txn.Metadata(),
		); err != nil {
			return err
		}
		if err := m.db.CreateRecord(
			txn,
			ret.HubPost,
			&HubPost{
				Hub:        hubAddr,
				Post:       ret.Post,
				VersionUri: boundedUri,
			},
		); err != nil {
			return err
		}
		if err := m.db.Metadata().AddHubPost(
			&models.HubPost{
				VersionUri: uri,
				Address:    ret.HubPost,
				Hub:        hubAddr,
				Post:       ret.Post,
			},
			txn.Metadata(),
		); err != nil {
			return err
		}
		ret.HubContent, err = m.content.Append(
			txn,
			hubAddr,
			ret.HubPost,
			ContentTypePost,
			principal,
			createdAt,
			ret.Post,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("init post via hub %q: %w", hubHandle, err)
	}
	m.logger.Info(
		"post initialized via hub",
		"hub", hubAddr.String(),
		"post", ret.Post.String(),
		"hub_post", ret.HubPost.String(),
	)
	m.emit(
		PostInitializedViaHubEventType,
		PostInitializedViaHubEvent{
			Address: ret.HubPost,
			Hub:     hubAddr,
			Uri:     uri,
		},
	)
	return ret, nil
}

// UpdatePost replaces the uri of a post. Only the post author may update
// it. The HubPost of the hub the post was published through tracks the new
// uri as its version.
func (m *Manager) UpdatePost(
	ctx context.Context,
	post address.Address,
	uri string,
	principal address.Address,
) error {
	boundedUri, err := NewBoundedText("uri", uri)
	if err != nil {
		m.observe("UpdatePost", err)
		return err
	}
	err = m.update(ctx, "UpdatePost", func(txn *database.Txn) error {
		var record Post
		if err := m.db.ReadRecord(txn, post, &record); err != nil {
			return err
		}
		if record.Author != principal {
			return fmt.Errorf(
				"%w: %s is not the post author",
				ErrUnauthorized,
				principal,
			)
		}
		record.Uri = boundedUri
		record.UpdatedAt = m.now()
		if err := m.db.WriteRecord(txn, post, &record); err != nil {
			return err
		}
		if err := m.db.Metadata().UpdatePost(
			post,
			uri,
			record.UpdatedAt,
			txn.Metadata(),
		); err != nil {
			return err
		}
		hubPostAddr := HubPostAddress(record.PublishedThroughHub, post)
		var hubPost HubPost
		if err := m.db.ReadRecord(txn, hubPostAddr, &hubPost); err != nil {
			return err
		}
		hubPost.VersionUri = boundedUri
		if err := m.db.WriteRecord(txn, hubPostAddr, &hubPost); err != nil {
			return err
		}
		return m.db.Metadata().SetHubPostVersionUri(
			hubPostAddr,
			uri,
			txn.Metadata(),
		)
	})
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	m.emit(
		PostUpdatedEventType,
		PostUpdatedEvent{
			Address: post,
			Uri:     uri,
		},
	)
	return nil
}
