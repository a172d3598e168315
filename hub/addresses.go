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
)

// derive wraps address.Derive for the fixed namespace tags used here, which
// are always valid
func derive(namespace string, seeds ...[]byte) address.Address {
	addr, err := address.Derive(namespace, seeds...)
	if err != nil {
		panic(err)
	}
	return addr
}

func HubAddress(handle string) address.Address {
	return derive(address.NamespaceHub, []byte(handle))
}

func HubArtistAddress(hub, principal address.Address) address.Address {
	return derive(address.NamespaceHubArtist, hub.Bytes(), principal.Bytes())
}

func HubCollaboratorAddress(hub, principal address.Address) address.Address {
	return derive(
		address.NamespaceHubCollaborator,
		hub.Bytes(),
		principal.Bytes(),
	)
}

func ReleaseAddress(authority address.Address, slug string) address.Address {
	return derive(address.NamespaceRelease, authority.Bytes(), []byte(slug))
}

func HubReleaseAddress(hub, release address.Address) address.Address {
	return derive(address.NamespaceHubRelease, hub.Bytes(), release.Bytes())
}

func PostAddress(hub address.Address, slug string) address.Address {
	return derive(address.NamespacePost, hub.Bytes(), []byte(slug))
}

func HubPostAddress(hub, post address.Address) address.Address {
	return derive(address.NamespaceHubPost, hub.Bytes(), post.Bytes())
}

// HubContentAddress derives the index entry address from the hub and the
// underlying post or release, not the hub-scoped child record
func HubContentAddress(hub, parent address.Address) address.Address {
	return derive(address.NamespaceHubContent, hub.Bytes(), parent.Bytes())
}

func SubscriptionAddress(from, to address.Address) address.Address {
	return derive(address.NamespaceSubscription, from.Bytes(), to.Bytes())
}
