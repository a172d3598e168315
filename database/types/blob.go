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

package types

import (
	"slices"
)

// RecordBlobKeyPrefix namespaces record bodies in the blob store
const RecordBlobKeyPrefix = "r"

func RecordBlobKey(addr []byte) []byte {
	return slices.Concat([]byte(RecordBlobKeyPrefix), addr)
}

type BlobItem interface {
	Key() []byte
	ValueCopy(dst []byte) ([]byte, error)
}

// BlobIterator walks blob keys in order. Close must always be called.
type BlobIterator interface {
	Rewind()
	Seek(prefix []byte)
	Valid() bool
	ValidForPrefix(prefix []byte) bool
	Next()
	Item() BlobItem
	Close()
	Err() error
}

type BlobIteratorOptions struct {
	Prefix  []byte
	Reverse bool
}

// Txn is the part of a store transaction the database layer drives
type Txn interface {
	Commit() error
	Rollback() error
}
