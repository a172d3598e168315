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

// Package address derives the deterministic record addresses used to key
// every hub relationship. An address is a pure function of a namespace tag
// and an ordered list of seeds, so the same relationship always maps to the
// same address and a second creation attempt collides with the first.
package address

import (
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	// Size is the length of an address in bytes
	Size = blake2b.Size256

	// MaxNamespaceLength is the longest accepted namespace tag
	MaxNamespaceLength = 32

	derivationDomain = "hubd/address/v1"
)

// Namespace tags for each record kind
const (
	NamespaceHub             = "hub"
	NamespaceHubArtist       = "hub-artist"
	NamespaceHubCollaborator = "hub-collaborator"
	NamespaceRelease         = "release"
	NamespaceHubRelease      = "hub-release"
	NamespacePost            = "post"
	NamespaceHubPost         = "hub-post"
	NamespaceHubContent      = "hub-content"
	NamespaceSubscription    = "subscription"
)

var (
	ErrInvalidNamespace = errors.New("invalid address namespace")
	ErrInvalidAddress   = errors.New("invalid address")
)

// Address identifies a single record
type Address [Size]byte

// Derive computes the address for the given namespace and seeds. Each part
// is length-prefixed before hashing so that seed boundaries are
// significant: ("ab", "c") and ("a", "bc") derive different addresses.
func Derive(namespace string, seeds ...[]byte) (Address, error) {
	if len(namespace) == 0 || len(namespace) > MaxNamespaceLength {
		return Address{}, fmt.Errorf(
			"%w: %q",
			ErrInvalidNamespace,
			namespace,
		)
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return Address{}, err
	}
	h.Write([]byte(derivationDomain))
	writeChunk := func(b []byte) {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b))) // #nosec G115
		h.Write(lenBuf[:])
		h.Write(b)
	}
	writeChunk([]byte(namespace))
	for _, seed := range seeds {
		writeChunk(seed)
	}
	var ret Address
	copy(ret[:], h.Sum(nil))
	return ret, nil
}

// FromBytes returns an address from a raw byte slice
func FromBytes(b []byte) (Address, error) {
	var ret Address
	if len(b) != Size {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidAddress,
			Size,
			len(b),
		)
	}
	copy(ret[:], b)
	return ret, nil
}

// ParseAddress decodes a hex-encoded address
func ParseAddress(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return FromBytes(b)
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	tmp, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// Value implements driver.Valuer so addresses can be stored directly in
// metadata models
func (a Address) Value() (driver.Value, error) {
	return a[:], nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(val any) error {
	var b []byte
	switch v := val.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf(
			"value was not expected type, wanted []byte, got %T",
			val,
		)
	}
	tmp, err := FromBytes(b)
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// GormDataType maps addresses to the dialect's binary column type
func (Address) GormDataType() string {
	return "bytes"
}
