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

package badger

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/hubd/database/types"
	badger "github.com/dgraph-io/badger/v4"
)

var errForeignTxn = errors.New("transaction from different store")

// badgerTxn implements types.Txn on top of a badger transaction
type badgerTxn struct {
	store    *BlobStoreBadger
	tx       *badger.Txn
	finished bool
}

// NewTransaction starts a badger transaction. Concurrent read-write
// transactions that touch the same key conflict on commit.
func (d *BlobStoreBadger) NewTransaction(update bool) types.Txn {
	return &badgerTxn{store: d, tx: d.db.NewTransaction(update)}
}

// txnFor returns the badger transaction behind txn after checking that it
// belongs to this store and is still open
func (d *BlobStoreBadger) txnFor(txn types.Txn) (*badger.Txn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	bt, ok := txn.(*badgerTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	switch {
	case bt.store != d:
		return nil, errForeignTxn
	case bt.finished:
		return nil, errors.New("transaction already finished")
	case bt.tx == nil:
		return nil, types.ErrBlobStoreUnavailable
	}
	return bt.tx, nil
}

func (t *badgerTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if t.tx == nil {
		return nil
	}
	err := t.tx.Commit()
	metrics := t.store.metrics
	switch {
	case err == nil:
		if metrics != nil {
			metrics.commits.Inc()
		}
		return nil
	case errors.Is(err, badger.ErrConflict):
		if metrics != nil {
			metrics.conflicts.Inc()
		}
		return fmt.Errorf("%w: %w", types.ErrTxnConflict, err)
	default:
		return err
	}
}

func (t *badgerTxn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if t.tx != nil {
		t.tx.Discard()
	}
	return nil
}

// Get returns a copy of the value stored under key
func (d *BlobStoreBadger) Get(txn types.Txn, key []byte) ([]byte, error) {
	tx, err := d.txnFor(txn)
	if err != nil {
		return nil, err
	}
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, types.ErrBlobKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (d *BlobStoreBadger) Set(txn types.Txn, key, val []byte) error {
	tx, err := d.txnFor(txn)
	if err != nil {
		return err
	}
	return tx.Set(key, val)
}

func (d *BlobStoreBadger) Delete(txn types.Txn, key []byte) error {
	tx, err := d.txnFor(txn)
	if err != nil {
		return err
	}
	return tx.Delete(key)
}

// NewIterator iterates keys within txn. Items are only valid while txn is
// open.
func (d *BlobStoreBadger) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	tx, err := d.txnFor(txn)
	if err != nil {
		return &errorIterator{err: err}
	}
	return &badgerIterator{
		iter: tx.NewIterator(badger.IteratorOptions{
			Prefix:  opts.Prefix,
			Reverse: opts.Reverse,
		}),
	}
}

type badgerIterator struct {
	iter *badger.Iterator
}

func (it *badgerIterator) Rewind()                      { it.iter.Rewind() }
func (it *badgerIterator) Seek(key []byte)              { it.iter.Seek(key) }
func (it *badgerIterator) Valid() bool                  { return it.iter.Valid() }
func (it *badgerIterator) ValidForPrefix(p []byte) bool { return it.iter.ValidForPrefix(p) }
func (it *badgerIterator) Next()                        { it.iter.Next() }
func (it *badgerIterator) Close()                       { it.iter.Close() }
func (it *badgerIterator) Err() error                   { return nil }

func (it *badgerIterator) Item() types.BlobItem {
	return badgerItem{item: it.iter.Item()}
}

// errorIterator is returned when the iterator cannot be created
type errorIterator struct {
	err error
}

func (it *errorIterator) Rewind()                    {}
func (it *errorIterator) Seek([]byte)                {}
func (it *errorIterator) Valid() bool                { return false }
func (it *errorIterator) ValidForPrefix([]byte) bool { return false }
func (it *errorIterator) Next()                      {}
func (it *errorIterator) Item() types.BlobItem       { return nil }
func (it *errorIterator) Close()                     {}
func (it *errorIterator) Err() error                 { return it.err }

type badgerItem struct {
	item *badger.Item
}

func (i badgerItem) Key() []byte {
	return i.item.KeyCopy(nil)
}

func (i badgerItem) ValueCopy(dst []byte) ([]byte, error) {
	return i.item.ValueCopy(dst)
}
