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

package address_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/hubd/address"
)

func TestDeriveDeterministic(t *testing.T) {
	hub := []byte("hub-a")
	principal := []byte("principal-p")
	a1, err := address.Derive(address.NamespaceHubArtist, hub, principal)
	require.NoError(t, err)
	a2, err := address.Derive(address.NamespaceHubArtist, hub, principal)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.False(t, a1.IsZero())
}

func TestDeriveSeedSensitivity(t *testing.T) {
	base, err := address.Derive(
		address.NamespaceHubRelease,
		[]byte("hub"),
		[]byte("release"),
	)
	require.NoError(t, err)
	testDefs := []struct {
		name      string
		namespace string
		seeds     [][]byte
	}{
		{
			name:      "different namespace",
			namespace: address.NamespaceHubPost,
			seeds:     [][]byte{[]byte("hub"), []byte("release")},
		},
		{
			name:      "different first seed",
			namespace: address.NamespaceHubRelease,
			seeds:     [][]byte{[]byte("hub2"), []byte("release")},
		},
		{
			name:      "different second seed",
			namespace: address.NamespaceHubRelease,
			seeds:     [][]byte{[]byte("hub"), []byte("release2")},
		},
		{
			name:      "swapped seeds",
			namespace: address.NamespaceHubRelease,
			seeds:     [][]byte{[]byte("release"), []byte("hub")},
		},
		{
			name:      "shifted boundary",
			namespace: address.NamespaceHubRelease,
			seeds:     [][]byte{[]byte("hubr"), []byte("elease")},
		},
		{
			name:      "extra seed",
			namespace: address.NamespaceHubRelease,
			seeds:     [][]byte{[]byte("hub"), []byte("release"), {}},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			addr, err := address.Derive(testDef.namespace, testDef.seeds...)
			require.NoError(t, err)
			assert.NotEqual(t, base, addr)
		})
	}
}

func TestDeriveInvalidNamespace(t *testing.T) {
	_, err := address.Derive("", []byte("seed"))
	require.ErrorIs(t, err, address.ErrInvalidNamespace)
	_, err = address.Derive(
		strings.Repeat("x", address.MaxNamespaceLength+1),
		[]byte("seed"),
	)
	require.ErrorIs(t, err, address.ErrInvalidNamespace)
	_, err = address.Derive(strings.Repeat("x", address.MaxNamespaceLength))
	require.NoError(t, err)
}

func TestParseAddress(t *testing.T) {
	addr, err := address.Derive(address.NamespaceHub, []byte("my-hub"))
	require.NoError(t, err)
	parsed, err := address.ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	_, err = address.ParseAddress("zz")
	require.ErrorIs(t, err, address.ErrInvalidAddress)
	_, err = address.ParseAddress("abcd")
	require.ErrorIs(t, err, address.ErrInvalidAddress)
}

func TestAddressJSON(t *testing.T) {
	addr, err := address.Derive(address.NamespacePost, []byte("h"), []byte("s"))
	require.NoError(t, err)
	data, err := json.Marshal(map[string]address.Address{"addr": addr})
	require.NoError(t, err)
	assert.Equal(t, `{"addr":"`+addr.String()+`"}`, string(data))
	var out map[string]address.Address
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, addr, out["addr"])
}

func TestAddressScan(t *testing.T) {
	addr, err := address.Derive(address.NamespaceHub, []byte("scan"))
	require.NoError(t, err)
	val, err := addr.Value()
	require.NoError(t, err)
	var out address.Address
	require.NoError(t, out.Scan(val))
	assert.Equal(t, addr, out)
	require.Error(t, out.Scan(123))
	require.ErrorIs(t, out.Scan([]byte{1, 2, 3}), address.ErrInvalidAddress)
}
