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

package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/database/types"
)

// CreateRecord stores the CBOR encoding of record at addr. It fails with
// types.ErrDuplicateRecord when a record already exists at that address.
func (d *Database) CreateRecord(
	txn *Txn,
	addr address.Address,
	record any,
) error {
	exists, err := d.RecordExists(txn, addr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", types.ErrDuplicateRecord, addr)
	}
	return d.WriteRecord(txn, addr, record)
}

// WriteRecord stores the CBOR encoding of record at addr, replacing any
// existing record
func (d *Database) WriteRecord(
	txn *Txn,
	addr address.Address,
	record any,
) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	recordCbor, err := cbor.Encode(record)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", addr, err)
	}
	return d.Blob().Set(
		txn.Blob(),
		types.RecordBlobKey(addr.Bytes()),
		recordCbor,
	)
}

// ReadRecord decodes the record stored at addr into dest. It returns
// types.ErrRecordNotFound when there is no such record.
func (d *Database) ReadRecord(
	txn *Txn,
	addr address.Address,
	dest any,
) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	recordCbor, err := d.Blob().Get(
		txn.Blob(),
		types.RecordBlobKey(addr.Bytes()),
	)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return fmt.Errorf("%w: %s", types.ErrRecordNotFound, addr)
		}
		return err
	}
	if _, err := cbor.Decode(recordCbor, dest); err != nil {
		return fmt.Errorf("decode record %s: %w", addr, err)
	}
	return nil
}

// RecordExists reports whether a record is stored at addr
func (d *Database) RecordExists(txn *Txn, addr address.Address) (bool, error) {
	if txn == nil || txn.Blob() == nil {
		return false, types.ErrNilTxn
	}
	_, err := d.Blob().Get(txn.Blob(), types.RecordBlobKey(addr.Bytes()))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteRecord removes the record stored at addr
func (d *Database) DeleteRecord(txn *Txn, addr address.Address) error {
	if txn == nil || txn.Blob() == nil {
		return types.ErrNilTxn
	}
	return d.Blob().Delete(txn.Blob(), types.RecordBlobKey(addr.Bytes()))
}

// RecordCount returns the number of stored records
func (d *Database) RecordCount(txn *Txn) (int, error) {
	if txn == nil || txn.Blob() == nil {
		return 0, types.ErrNilTxn
	}
	iter := d.Blob().NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{
			Prefix: []byte(types.RecordBlobKeyPrefix),
		},
	)
	if iter == nil {
		return 0, types.ErrBlobStoreUnavailable
	}
	defer iter.Close()
	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return count, nil
}
