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

package api

import (
	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/hub"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type InitHubRequest struct {
	Handle string `json:"handle"`
}

type ArtistRequest struct {
	CanAddRelease bool `json:"can_add_release"`
}

type CollaboratorRequest struct {
	CanAddContent bool `json:"can_add_content"`
}

type RegisterReleaseRequest struct {
	Slug string `json:"slug"`
}

type AddReleaseRequest struct {
	Release address.Address `json:"release"`
}

type InitPostRequest struct {
	Slug string `json:"slug"`
	Uri  string `json:"uri"`
}

type UpdatePostRequest struct {
	Uri string `json:"uri"`
}

type SubscribeRequest struct {
	To   address.Address `json:"to"`
	Type string          `json:"type"`
}

// AddressResponse is returned by operations that create a single record
type AddressResponse struct {
	Address address.Address `json:"address"`
}

type ReleaseResponse struct {
	hub.Release
	Address address.Address `json:"address"`
}

type HubReleaseResponse struct {
	hub.HubRelease
	Address address.Address `json:"address"`
}

type PostResponse struct {
	hub.Post
	Address address.Address `json:"address"`
}
