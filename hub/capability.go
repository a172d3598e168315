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

// Role names a kind of hub membership
type Role string

const (
	RoleArtist       Role = "artist"
	RoleCollaborator Role = "collaborator"
)

// CapabilityRecord is the merged view of a principal's membership records
// in one hub. A missing record grants nothing.
type CapabilityRecord struct {
	Artist       *HubArtist
	Collaborator *HubCollaborator
}

func (c CapabilityRecord) CanAddRelease() bool {
	return c.Artist != nil && c.Artist.CanAddRelease
}

func (c CapabilityRecord) CanAddContent() bool {
	return c.Collaborator != nil && c.Collaborator.CanAddContent
}

func (c CapabilityRecord) IsMember() bool {
	return c.Artist != nil || c.Collaborator != nil
}
