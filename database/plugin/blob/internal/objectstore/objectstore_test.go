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

package objectstore_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/hubd/database/plugin/blob/internal/objectstore"
	"github.com/blinklabs-io/hubd/database/types"
)

type memoryBackend struct {
	mu       sync.Mutex
	objects  map[string][]byte
	putOrder []string
	failPut  string
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{objects: make(map[string][]byte)}
}

func (m *memoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.objects[key]
	if !ok {
		return nil, objectstore.ErrObjectNotFound
	}
	return slices.Clone(val), nil
}

func (m *memoryBackend) Put(_ context.Context, key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.failPut {
		return errors.New("put failed")
	}
	m.objects[key] = slices.Clone(val)
	m.putOrder = append(m.putOrder, key)
	return nil
}

func (m *memoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return objectstore.ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *memoryBackend) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ret []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			ret = append(ret, key)
		}
	}
	return ret, nil
}

func TestBufferedWrites(t *testing.T) {
	backend := newMemoryBackend()
	store := objectstore.New(backend, "memory", nil, nil, 0)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("ra"), []byte("1")))
	// Read your own writes
	val, err := store.Get(txn, []byte("ra"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
	// Nothing reaches the backend before commit
	assert.Empty(t, backend.objects)
	require.NoError(t, txn.Commit())
	assert.Equal(t, []byte("1"), backend.objects["ra"])

	// Finished transactions are rejected
	_, err = store.Get(txn, []byte("ra"))
	require.Error(t, err)
}

func TestRollbackDiscards(t *testing.T) {
	backend := newMemoryBackend()
	store := objectstore.New(backend, "memory", nil, nil, 0)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("ra"), []byte("1")))
	require.NoError(t, txn.Rollback())
	assert.Empty(t, backend.objects)

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	_, err := store.Get(readTxn, []byte("ra"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestReadOnlyTransaction(t *testing.T) {
	store := objectstore.New(newMemoryBackend(), "memory", nil, nil, 0)
	txn := store.NewTransaction(false)
	require.Error(t, store.Set(txn, []byte("k"), []byte("v")))
	require.Error(t, store.Delete(txn, []byte("k")))
}

func TestDeleteAndIterate(t *testing.T) {
	backend := newMemoryBackend()
	backend.objects["rb"] = []byte("b")
	backend.objects["rc"] = []byte("c")
	backend.objects["x"] = []byte("x")
	store := objectstore.New(backend, "memory", nil, nil, 0)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, []byte("rb")))
	require.NoError(t, store.Set(txn, []byte("ra"), []byte("a")))

	iter := store.NewIterator(txn, types.BlobIteratorOptions{Prefix: []byte("r")})
	var keys []string
	var vals []string
	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		keys = append(keys, string(item.Key()))
		val, err := item.ValueCopy(nil)
		require.NoError(t, err)
		vals = append(vals, string(val))
	}
	require.NoError(t, iter.Err())
	iter.Close()
	assert.Equal(t, []string{"ra", "rc"}, keys)
	assert.Equal(t, []string{"a", "c"}, vals)

	iter = store.NewIterator(
		txn,
		types.BlobIteratorOptions{Prefix: []byte("r"), Reverse: true},
	)
	iter.Rewind()
	require.True(t, iter.Valid())
	assert.Equal(t, []byte("rc"), iter.Item().Key())

	require.NoError(t, txn.Commit())
	_, ok := backend.objects["rb"]
	assert.False(t, ok)
}

func TestCommitTimestampWrittenLast(t *testing.T) {
	backend := newMemoryBackend()
	store := objectstore.New(backend, "memory", nil, nil, 0)

	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1234, txn))
	require.NoError(t, store.Set(txn, []byte("rz"), []byte("z")))
	require.NoError(t, store.Set(txn, []byte("ra"), []byte("a")))
	require.NoError(t, txn.Commit())
	assert.Equal(t, []string{"ra", "rz", "_commit_timestamp"}, backend.putOrder)

	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1234), ts)
}

func TestFailedFlushLeavesTimestamp(t *testing.T) {
	backend := newMemoryBackend()
	backend.failPut = "rb"
	store := objectstore.New(backend, "memory", nil, nil, 0)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("ra"), []byte("a")))
	require.NoError(t, store.Set(txn, []byte("rb"), []byte("b")))
	require.NoError(t, store.SetCommitTimestamp(99, txn))
	require.Error(t, txn.Commit())
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
}

func TestWrongTxn(t *testing.T) {
	store1 := objectstore.New(newMemoryBackend(), "memory", nil, nil, 0)
	store2 := objectstore.New(newMemoryBackend(), "memory", nil, nil, 0)
	txn := store1.NewTransaction(true)
	_, err := store2.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrTxnWrongType)
	_, err = store2.Get(nil, []byte("k"))
	require.ErrorIs(t, err, types.ErrNilTxn)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := objectstore.New(newMemoryBackend(), "memory", nil, reg, 0)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("ra"), []byte("abc")))
	require.NoError(t, txn.Commit())
	count, err := testutil.GatherAndCount(reg, "hubd_blob_object_ops_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
