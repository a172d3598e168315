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

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/api"
	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/hub"
)

func newTestServer(t *testing.T) *api.Server {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: ""})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	manager, err := hub.NewManager(hub.ManagerConfig{Database: db})
	require.NoError(t, err)
	return api.New(api.Config{ListenAddress: "127.0.0.1:0"}, manager, nil)
}

func testPrincipal(t *testing.T, name string) address.Address {
	t.Helper()
	addr, err := address.Derive("test-principal", []byte(name))
	require.NoError(t, err)
	return addr
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func (c *apiClient) do(
	method string,
	path string,
	principal *address.Address,
	body any,
) *httptest.ResponseRecorder {
	c.t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&reqBody).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reqBody)
	if principal != nil {
		req.Header.Set(api.PrincipalHeader, principal.String())
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var ret T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	return ret
}

func TestStartStop(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Start(t.Context()))
	addr := s.Addr()
	require.NotNil(t, addr)

	resp, err := http.Get("http://" + addr.String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(api.RequestIdHeader))

	err = s.Start(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.Nil(t, s.Addr())
	// Stopping twice is a no-op
	require.NoError(t, s.Stop(stopCtx))
}

func TestHubWorkflow(t *testing.T) {
	c := &apiClient{t: t, handler: newTestServer(t).Handler()}
	owner := testPrincipal(t, "owner")
	artist := testPrincipal(t, "artist")

	rec := c.do(http.MethodPost, "/api/v0/hubs", nil, api.InitHubRequest{Handle: "H"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/v0/hubs", &owner, api.InitHubRequest{Handle: "H"})
	require.Equal(t, http.StatusCreated, rec.Code)
	hubAddr := decode[api.AddressResponse](t, rec).Address
	assert.Equal(t, hub.HubAddress("H"), hubAddr)

	rec = c.do(http.MethodPost, "/api/v0/hubs", &owner, api.InitHubRequest{Handle: "H"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	errResp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, http.StatusConflict, errResp.StatusCode)
	assert.Equal(t, "Conflict", errResp.Error)

	rec = c.do(http.MethodGet, "/api/v0/hubs/H", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hubEntry := decode[map[string]any](t, rec)
	assert.Equal(t, "H", hubEntry["handle"])
	assert.Equal(t, owner.String(), hubEntry["authority"])

	rec = c.do(http.MethodGet, "/api/v0/hubs/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Membership
	artistPath := "/api/v0/hubs/H/artists/" + artist.String()
	rec = c.do(http.MethodPut, artistPath, &artist, api.ArtistRequest{CanAddRelease: true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = c.do(http.MethodPut, artistPath, &owner, api.ArtistRequest{})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = c.do(http.MethodPut, artistPath, &owner, api.ArtistRequest{CanAddRelease: true})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(
		http.MethodPut,
		"/api/v0/hubs/H/collaborators/"+artist.String(),
		&owner,
		api.CollaboratorRequest{CanAddContent: true},
	)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = c.do(http.MethodPut, "/api/v0/hubs/H/artists/zz", &owner, api.ArtistRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/v0/hubs/H/members", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	members := decode[hub.Members](t, rec)
	assert.Len(t, members.Artists, 2)
	assert.Len(t, members.Collaborators, 2)

	// Releases
	rec = c.do(
		http.MethodPost,
		"/api/v0/releases",
		&artist,
		api.RegisterReleaseRequest{Slug: "album"},
	)
	require.Equal(t, http.StatusCreated, rec.Code)
	release := decode[api.AddressResponse](t, rec).Address

	rec = c.do(http.MethodGet, "/api/v0/releases/"+release.String(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "album", decode[map[string]any](t, rec)["slug"])

	rec = c.do(
		http.MethodPost,
		"/api/v0/hubs/H/releases",
		&artist,
		api.AddReleaseRequest{Release: release},
	)
	require.Equal(t, http.StatusCreated, rec.Code)
	hubRelease := decode[api.AddressResponse](t, rec).Address
	rec = c.do(
		http.MethodPost,
		"/api/v0/hubs/H/releases",
		&artist,
		api.AddReleaseRequest{Release: release},
	)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodGet, "/api/v0/hub-releases/"+hubRelease.String(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hubReleaseResp := decode[map[string]any](t, rec)
	assert.Equal(t, release.String(), hubReleaseResp["release"])
	assert.InDelta(t, 0, hubReleaseResp["sales"], 0)

	// Posts
	rec = c.do(
		http.MethodPost,
		"/api/v0/hubs/H/posts",
		&artist,
		api.InitPostRequest{Slug: strings.Repeat("s", 101), Uri: "ipfs://abc"},
	)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	for _, slug := range []string{"first", "second", "third"} {
		rec = c.do(
			http.MethodPost,
			"/api/v0/hubs/H/posts",
			&artist,
			api.InitPostRequest{Slug: slug, Uri: "ipfs://" + slug},
		)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	postInit := decode[hub.PostInit](t, rec)
	assert.Equal(t, hub.PostAddress(hubAddr, "third"), postInit.Post)

	rec = c.do(http.MethodGet, "/api/v0/hubs/H/content?count=2&page=1&order=desc", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-Pagination-Count-Total"))
	assert.Equal(t, "2", rec.Header().Get("X-Pagination-Page-Total"))
	content := decode[[]map[string]any](t, rec)
	require.Len(t, content, 2)
	assert.Equal(t, postInit.HubPost.String(), content[0]["child"])
	assert.Equal(t, "post", content[0]["content_type"])

	rec = c.do(http.MethodGet, "/api/v0/hubs/H/content?order=sideways", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = c.do(http.MethodGet, "/api/v0/hubs/H/content?page=100000000000000000", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	postPath := "/api/v0/posts/" + postInit.Post.String()
	rec = c.do(http.MethodPatch, postPath, &owner, api.UpdatePostRequest{Uri: "ipfs://v2"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = c.do(http.MethodPatch, postPath, &artist, api.UpdatePostRequest{Uri: "ipfs://v2"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodGet, postPath, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	post := decode[map[string]any](t, rec)
	assert.Equal(t, "ipfs://v2", post["uri"])
	assert.Equal(t, hubAddr.String(), post["published_through_hub"])
}

func TestSubscriptionRoutes(t *testing.T) {
	c := &apiClient{t: t, handler: newTestServer(t).Handler()}
	owner := testPrincipal(t, "owner")
	fan := testPrincipal(t, "fan")
	rec := c.do(http.MethodPost, "/api/v0/hubs", &owner, api.InitHubRequest{Handle: "hub"})
	require.Equal(t, http.StatusCreated, rec.Code)
	hubAddr := decode[api.AddressResponse](t, rec).Address

	rec = c.do(
		http.MethodPost,
		"/api/v0/subscriptions",
		&fan,
		api.SubscribeRequest{To: hubAddr, Type: "hub"},
	)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = c.do(
		http.MethodPost,
		"/api/v0/subscriptions",
		&fan,
		api.SubscribeRequest{To: fan, Type: "account"},
	)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = c.do(
		http.MethodPost,
		"/api/v0/subscriptions",
		&fan,
		api.SubscribeRequest{To: owner, Type: "nonsense"},
	)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/v0/subscriptions", &fan, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]hub.SubscriptionEntry](t, rec), 1)

	rec = c.do(http.MethodGet, "/api/v0/hubs/hub/subscribers", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	subscribers := decode[[]map[string]any](t, rec)
	require.Len(t, subscribers, 1)
	assert.Equal(t, fan.String(), subscribers[0]["from"])
	assert.Equal(t, "hub", subscribers[0]["subscription_type"])

	rec = c.do(http.MethodDelete, "/api/v0/subscriptions/"+hubAddr.String(), &fan, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodDelete, "/api/v0/subscriptions/"+hubAddr.String(), &fan, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidRequestBody(t *testing.T) {
	c := &apiClient{t: t, handler: newTestServer(t).Handler()}
	owner := testPrincipal(t, "owner")
	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v0/hubs",
		strings.NewReader(`{"handle": "h", "extra": 1}`),
	)
	req.Header.Set(api.PrincipalHeader, owner.String())
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v0/hubs", strings.NewReader(`{}`))
	req.Header.Set(api.PrincipalHeader, "not-hex")
	rec = httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGRPCHealthCheck(t *testing.T) {
	handler := newTestServer(t).Handler()
	req := httptest.NewRequest(
		http.MethodPost,
		"/grpc.health.v1.Health/Check",
		strings.NewReader(`{}`),
	)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SERVING")
}
