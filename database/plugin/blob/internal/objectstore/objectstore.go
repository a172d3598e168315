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

// Package objectstore implements the blob store contract on top of a plain
// object storage backend. Writes are buffered in the transaction and only
// reach the backend on commit, so a rolled back transaction leaves no trace.
package objectstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/hubd/database/types"
)

const (
	DefaultTimeout = 60 * time.Second

	commitTimestampKey = "_commit_timestamp"
)

// ErrObjectNotFound is returned by backends for missing objects
var ErrObjectNotFound = errors.New("object not found")

// Backend is the minimal object storage API needed by Store
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

type storeMetrics struct {
	ops   *prometheus.CounterVec
	bytes *prometheus.CounterVec
}

// Store adapts a Backend to the blob store interface
type Store struct {
	backend Backend
	logger  *slog.Logger
	metrics *storeMetrics
	timeout time.Duration
	// commitMutex serializes flushing of committed transactions
	commitMutex sync.Mutex
}

// New returns a Store for the given backend
func New(
	backend Backend,
	name string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	timeout time.Duration,
) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Store{
		backend: backend,
		logger:  logger,
		timeout: timeout,
	}
	if promRegistry != nil {
		factory := promauto.With(promRegistry)
		s.metrics = &storeMetrics{
			ops: factory.NewCounterVec(
				prometheus.CounterOpts{
					Name:        "hubd_blob_object_ops_total",
					Help:        "Total number of object storage operations",
					ConstLabels: prometheus.Labels{"backend": name},
				},
				[]string{"op"},
			),
			bytes: factory.NewCounterVec(
				prometheus.CounterOpts{
					Name:        "hubd_blob_object_bytes_total",
					Help:        "Total bytes read or written through object storage",
					ConstLabels: prometheus.Labels{"backend": name},
				},
				[]string{"op"},
			),
		}
	}
	return s
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Store) observe(op string, size int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ops.WithLabelValues(op).Inc()
	if size > 0 {
		s.metrics.bytes.WithLabelValues(op).Add(float64(size))
	}
}

// NewTransaction returns a new buffered transaction
func (s *Store) NewTransaction(readWrite bool) types.Txn {
	return &Txn{
		store:     s,
		readWrite: readWrite,
		pending:   make(map[string]pendingWrite),
	}
}

func (s *Store) validateTxn(txn types.Txn) (*Txn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	t, ok := txn.(*Txn)
	if !ok || t.store != s {
		return nil, types.ErrTxnWrongType
	}
	if t.finished {
		return nil, errors.New("transaction already finished")
	}
	return t, nil
}

// Get returns the value for key, including uncommitted writes made in txn
func (s *Store) Get(txn types.Txn, key []byte) ([]byte, error) {
	t, err := s.validateTxn(txn)
	if err != nil {
		return nil, err
	}
	if pw, ok := t.pending[string(key)]; ok {
		if pw.deleted {
			return nil, types.ErrBlobKeyNotFound
		}
		return bytes.Clone(pw.value), nil
	}
	ctx, cancel := s.opContext()
	defer cancel()
	data, err := s.backend.Get(ctx, string(key))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, types.ErrBlobKeyNotFound
		}
		s.logger.Error(
			"object get failed",
			"component", "database",
			"key", string(key),
			"error", err,
		)
		return nil, err
	}
	s.observe("get", len(data))
	return data, nil
}

// Set buffers a write of val to key
func (s *Store) Set(txn types.Txn, key, val []byte) error {
	t, err := s.validateTxn(txn)
	if err != nil {
		return err
	}
	if !t.readWrite {
		return errors.New("transaction is read-only")
	}
	t.pending[string(key)] = pendingWrite{value: bytes.Clone(val)}
	return nil
}

// Delete buffers removal of key
func (s *Store) Delete(txn types.Txn, key []byte) error {
	t, err := s.validateTxn(txn)
	if err != nil {
		return err
	}
	if !t.readWrite {
		return errors.New("transaction is read-only")
	}
	t.pending[string(key)] = pendingWrite{deleted: true}
	return nil
}

// NewIterator lists keys visible to txn in key order
func (s *Store) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	t, err := s.validateTxn(txn)
	if err != nil {
		return &iterator{err: err}
	}
	ctx, cancel := s.opContext()
	defer cancel()
	keys, err := s.backend.List(ctx, string(opts.Prefix))
	if err != nil {
		return &iterator{err: err}
	}
	s.observe("list", 0)
	visible := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		visible[key] = struct{}{}
	}
	for key, pw := range t.pending {
		if !strings.HasPrefix(key, string(opts.Prefix)) {
			continue
		}
		if pw.deleted {
			delete(visible, key)
		} else {
			visible[key] = struct{}{}
		}
	}
	ret := make([]string, 0, len(visible))
	for key := range visible {
		ret = append(ret, key)
	}
	slices.Sort(ret)
	if opts.Reverse {
		slices.Reverse(ret)
	}
	return &iterator{txn: t, keys: ret, reverse: opts.Reverse}
}

// GetCommitTimestamp returns the last committed timestamp, or 0 if none
func (s *Store) GetCommitTimestamp() (int64, error) {
	txn := s.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := s.Get(txn, []byte(commitTimestampKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf(
			"invalid commit timestamp length: %d",
			len(val),
		)
	}
	// #nosec G115
	return int64(binary.BigEndian.Uint64(val)), nil
}

// SetCommitTimestamp buffers the commit timestamp in txn. It is always
// flushed after every other write in the transaction.
func (s *Store) SetCommitTimestamp(timestamp int64, txn types.Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	val := make([]byte, 8)
	// #nosec G115
	binary.BigEndian.PutUint64(val, uint64(timestamp))
	return s.Set(txn, []byte(commitTimestampKey), val)
}

func (s *Store) flush(t *Txn) error {
	s.commitMutex.Lock()
	defer s.commitMutex.Unlock()
	keys := make([]string, 0, len(t.pending))
	for key := range t.pending {
		if key == commitTimestampKey {
			continue
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)
	if _, ok := t.pending[commitTimestampKey]; ok {
		keys = append(keys, commitTimestampKey)
	}
	ctx, cancel := s.opContext()
	defer cancel()
	for _, key := range keys {
		pw := t.pending[key]
		if pw.deleted {
			err := s.backend.Delete(ctx, key)
			if err != nil && !errors.Is(err, ErrObjectNotFound) {
				return fmt.Errorf("delete %q: %w", key, err)
			}
			s.observe("delete", 0)
			continue
		}
		if err := s.backend.Put(ctx, key, pw.value); err != nil {
			return fmt.Errorf("put %q: %w", key, err)
		}
		s.observe("put", len(pw.value))
	}
	return nil
}

type pendingWrite struct {
	value   []byte
	deleted bool
}

// Txn buffers writes until commit
type Txn struct {
	store     *Store
	pending   map[string]pendingWrite
	readWrite bool
	finished  bool
}

func (t *Txn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if !t.readWrite || len(t.pending) == 0 {
		return nil
	}
	return t.store.flush(t)
}

func (t *Txn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.pending = nil
	return nil
}

type iterator struct {
	txn     *Txn
	err     error
	keys    []string
	idx     int
	reverse bool
}

func (it *iterator) Rewind() {
	it.idx = 0
}

func (it *iterator) Seek(prefix []byte) {
	target := string(prefix)
	it.idx = len(it.keys)
	for i, key := range it.keys {
		if (!it.reverse && key >= target) || (it.reverse && key <= target) {
			it.idx = i
			break
		}
	}
}

func (it *iterator) Valid() bool {
	return it.err == nil && it.idx < len(it.keys)
}

func (it *iterator) ValidForPrefix(prefix []byte) bool {
	return it.Valid() && strings.HasPrefix(it.keys[it.idx], string(prefix))
}

func (it *iterator) Next() {
	if it.idx < len(it.keys) {
		it.idx++
	}
}

func (it *iterator) Item() types.BlobItem {
	if !it.Valid() {
		return nil
	}
	return &item{txn: it.txn, key: it.keys[it.idx]}
}

func (it *iterator) Close() {}

func (it *iterator) Err() error {
	return it.err
}

type item struct {
	txn *Txn
	key string
}

func (i *item) Key() []byte {
	return []byte(i.key)
}

func (i *item) ValueCopy(dst []byte) ([]byte, error) {
	data, err := i.txn.store.Get(i.txn, []byte(i.key))
	if err != nil {
		return nil, err
	}
	return append(dst[:0], data...), nil
}
