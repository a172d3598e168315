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
	"sync"
	"time"

	"github.com/blinklabs-io/hubd/database/types"
)

// ErrPartialCommit is returned when the blob side of a Txn committed but
// the metadata side did not. The stores then carry different commit
// timestamps and the next New returns a CommitTimestampError along with the
// open Database. Recovery is operator driven: restore both stores from a
// backup taken together. Retrying the write reports a duplicate record
// since the blob record already exists.
var ErrPartialCommit = errors.New(
	"partial commit: metadata commit failed after blob commit",
)

// Txn spans a blob transaction and a metadata transaction. Records written
// through it become visible in both stores together, except after an
// ErrPartialCommit.
type Txn struct {
	db          *Database
	blobTxn     types.Txn
	metadataTxn types.Txn
	lock        sync.Mutex
	finished    bool
	readWrite   bool
}

func NewTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, true)
}

// NewBlobOnlyTxn returns a transaction without a metadata side. Record reads
// only need the blob store.
func NewBlobOnlyTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, false)
}

func newTxn(db *Database, readWrite bool, withMetadata bool) *Txn {
	t := &Txn{db: db, readWrite: readWrite}
	if bs := db.Blob(); bs != nil {
		t.blobTxn = bs.NewTransaction(readWrite)
	}
	if !withMetadata {
		return t
	}
	if ms := db.Metadata(); ms != nil {
		t.metadataTxn = ms.Transaction()
		if t.metadataTxn == nil {
			db.logger.Warn(
				"metadata store returned no transaction",
				"read_write", readWrite,
			)
		}
	}
	return t
}

// Metadata returns the metadata side of the transaction, which may be nil
func (t *Txn) Metadata() types.Txn {
	return t.metadataTxn
}

// Blob returns the blob side of the transaction, which may be nil
func (t *Txn) Blob() types.Txn {
	return t.blobTxn
}

// Do runs fn and commits. The transaction is rolled back when fn fails.
func (t *Txn) Do(fn func(*Txn) error) error {
	fnErr := fn(t)
	if fnErr == nil {
		if err := t.Commit(); err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}
		return nil
	}
	if err := t.Rollback(); err != nil {
		return fmt.Errorf(
			"rollback failed: %w: original error: %w",
			err,
			fnErr,
		)
	}
	return fnErr
}

// Commit applies the blob side first and the metadata side second, stamping
// both with the same commit timestamp so a partial commit is detected on the
// next open.
func (t *Txn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	if !t.readWrite {
		return t.rollback()
	}
	if t.blobTxn == nil && t.metadataTxn == nil {
		t.finished = true
		return types.ErrNoStoreAvailable
	}
	defer func() { t.finished = true }()
	if t.blobTxn != nil && t.metadataTxn != nil {
		err := t.db.updateCommitTimestamp(t, time.Now().UnixMilli())
		if err != nil {
			t.abort(t.blobTxn, t.metadataTxn)
			return fmt.Errorf("failed to update commit timestamp: %w", err)
		}
	}
	return t.commitSides()
}

// commitSides commits the blob side, then the metadata side
func (t *Txn) commitSides() error {
	if t.blobTxn != nil {
		if err := t.blobTxn.Commit(); err != nil {
			t.abort(t.metadataTxn)
			return fmt.Errorf("blob commit failed: %w", err)
		}
	}
	if t.metadataTxn != nil {
		if err := t.metadataTxn.Commit(); err != nil {
			t.abort(t.metadataTxn)
			if t.blobTxn == nil {
				return fmt.Errorf("metadata commit failed: %w", err)
			}
			t.db.logger.Error(
				"partial commit: blob committed, metadata failed",
				"error", err,
			)
			return fmt.Errorf("%w: %w", ErrPartialCommit, err)
		}
	}
	return nil
}

// abort rolls back the given sides, ignoring errors
func (t *Txn) abort(txns ...types.Txn) {
	for _, txn := range txns {
		if txn != nil {
			_ = txn.Rollback()
		}
	}
}

func (t *Txn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	var err error
	if t.blobTxn != nil {
		if blobErr := t.blobTxn.Rollback(); blobErr != nil {
			err = errors.Join(err, fmt.Errorf("blob rollback: %w", blobErr))
		}
	}
	if t.metadataTxn != nil {
		if metaErr := t.metadataTxn.Rollback(); metaErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("metadata rollback: %w", metaErr),
			)
		}
	}
	return err
}

// Release discards the transaction if it has not finished. It is meant for
// defer and only logs failures.
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
