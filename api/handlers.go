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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/hub"
)

const maxRequestBodyBytes = 64 * 1024

var (
	errMissingPrincipal = errors.New("missing " + PrincipalHeader + " header")
	errBadRequest       = errors.New("bad request")
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// errorStatus maps an operation error to its HTTP status code
func errorStatus(err error) int {
	switch {
	case errors.Is(err, errMissingPrincipal):
		return http.StatusUnauthorized
	case errors.Is(err, hub.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, hub.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, hub.ErrDuplicateRecord):
		return http.StatusConflict
	case errors.Is(err, hub.ErrFieldTooLong),
		errors.Is(err, hub.ErrFieldEmpty),
		errors.Is(err, hub.ErrFieldInvalid),
		errors.Is(err, errBadRequest),
		errors.Is(err, hub.ErrInvalidSubscription),
		errors.Is(err, address.ErrInvalidAddress),
		errors.Is(err, ErrInvalidPaginationParameters):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeOpError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// principal returns the caller identity set by the upstream verifier
func principal(r *http.Request) (address.Address, error) {
	val := r.Header.Get(PrincipalHeader)
	if val == "" {
		return address.Address{}, errMissingPrincipal
	}
	return address.ParseAddress(val)
}

func pathAddress(r *http.Request, name string) (address.Address, error) {
	addr, err := address.ParseAddress(r.PathValue(name))
	if err != nil {
		return address.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (s *Server) handleListHubs(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r.URL.Query())
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	hubs, err := s.manager.Hubs(r.Context(), page.Offset(), page.Count)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hubs)
}

func (s *Server) handleInitHub(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	var req InitHubRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeOpError(w, err)
		return
	}
	addr, err := s.manager.InitHub(r.Context(), actor, req.Handle)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddressResponse{Address: addr})
}

func (s *Server) handleGetHub(w http.ResponseWriter, r *http.Request) {
	entry, err := s.manager.HubByHandle(r.Context(), r.PathValue("handle"))
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handlePutArtist creates the artist record, or updates its capability when
// it already exists
func (s *Server) handlePutArtist(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	member, err := pathAddress(r, "principal")
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	var req ArtistRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeOpError(w, err)
		return
	}
	hubAddr := hub.HubAddress(r.PathValue("handle"))
	addr, err := s.manager.AddArtist(
		r.Context(),
		hubAddr,
		member,
		req.CanAddRelease,
		actor,
	)
	if errors.Is(err, hub.ErrDuplicateRecord) {
		err = s.manager.SetArtistCapability(
			r.Context(),
			hubAddr,
			member,
			req.CanAddRelease,
			actor,
		)
		if err != nil {
			s.writeOpError(w, err)
			return
		}
		writeJSON(
			w,
			http.StatusOK,
			AddressResponse{Address: hub.HubArtistAddress(hubAddr, member)},
		)
		return
	}
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddressResponse{Address: addr})
}

// handlePutCollaborator creates the collaborator record, or updates its
// capability when it already exists
func (s *Server) handlePutCollaborator(
	w http.ResponseWriter,
	r *http.Request,
) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	member, err := pathAddress(r, "principal")
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	var req CollaboratorRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeOpError(w, err)
		return
	}
	hubAddr := hub.HubAddress(r.PathValue("handle"))
	addr, err := s.manager.AddCollaborator(
		r.Context(),
		hubAddr,
		member,
		req.CanAddContent,
		actor,
	)
	if errors.Is(err, hub.ErrDuplicateRecord) {
		err = s.manager.SetCollaboratorCapability(
			r.Context(),
			hubAddr,
			member,
			req.CanAddContent,
			actor,
		)
		if err != nil {
			s.writeOpError(w, err)
			return
		}
		writeJSON(
			w,
			http.StatusOK,
			AddressResponse{
				Address: hub.HubCollaboratorAddress(hubAddr, member),
			},
		)
		return
	}
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddressResponse{Address: addr})
}

// existingHub resolves the hub named in the path, failing when it does not
// exist
func (s *Server) existingHub(r *http.Request) (address.Address, error) {
	entry, err := s.manager.HubByHandle(r.Context(), r.PathValue("handle"))
	if err != nil {
		return address.Address{}, err
	}
	return entry.Address, nil
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	hubAddr, err := s.existingHub(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	members, err := s.manager.Members(r.Context(), hubAddr)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r.URL.Query())
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	hubAddr, err := s.existingHub(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	entries, total, err := s.manager.Content(
		r.Context(),
		hubAddr,
		page.Offset(),
		page.Count,
		page.Desc,
	)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writePageHeaders(w, int(total), page)
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSubscribers(w http.ResponseWriter, r *http.Request) {
	hubAddr, err := s.existingHub(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	subs, err := s.manager.Subscribers(r.Context(), hubAddr)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleAddRelease(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	var req AddReleaseRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeOpError(w, err)
		return
	}
	addr, err := s.manager.AddRelease(
		r.Context(),
		hub.HubAddress(r.PathValue("handle")),
		req.Release,
		actor,
	)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddressResponse{Address: addr})
}

func (s *Server) handleInitPost(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	var req InitPostRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeOpError(w, err)
		return
	}
	res, err := s.manager.InitPostViaHub(
		r.Context(),
		r.PathValue("handle"),
		req.Slug,
		req.Uri,
		actor,
	)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleRegisterRelease(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	var req RegisterReleaseRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeOpError(w, err)
		return
	}
	addr, err := s.manager.RegisterRelease(r.Context(), actor, req.Slug)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddressResponse{Address: addr})
}

func (s *Server) handleGetRelease(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	release, err := s.manager.Release(r.Context(), addr)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReleaseResponse{Release: *release, Address: addr})
}

func (s *Server) handleGetHubRelease(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	hubRelease, err := s.manager.HubRelease(r.Context(), addr)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(
		w,
		http.StatusOK,
		HubReleaseResponse{HubRelease: *hubRelease, Address: addr},
	)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r, "address")
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	post, err := s.manager.Post(r.Context(), addr)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PostResponse{Post: *post, Address: addr})
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	addr, err := pathAddress(r, "address")
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	var req UpdatePostRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeOpError(w, err)
		return
	}
	if err := s.manager.UpdatePost(r.Context(), addr, req.Uri, actor); err != nil {
		s.writeOpError(w, err)
		return
	}
	post, err := s.manager.Post(r.Context(), addr)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PostResponse{Post: *post, Address: addr})
}

func (s *Server) handleListSubscriptions(
	w http.ResponseWriter,
	r *http.Request,
) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	subs, err := s.manager.Subscriptions(r.Context(), actor)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	var req SubscribeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeOpError(w, err)
		return
	}
	subscriptionType, err := hub.ParseSubscriptionType(req.Type)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	addr, err := s.manager.Subscribe(r.Context(), actor, req.To, subscriptionType)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddressResponse{Address: addr})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	actor, err := principal(r)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	to, err := pathAddress(r, "to")
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	if err := s.manager.Unsubscribe(r.Context(), actor, to); err != nil {
		s.writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
