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

package sqlite

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/database/models"
	"github.com/blinklabs-io/hubd/database/types"
)

func newTestStore(t *testing.T) *MetadataStoreSqlite {
	t.Helper()
	store, err := New("", nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.Start())
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testAddr(t *testing.T, namespace string, seeds ...string) address.Address {
	t.Helper()
	tmpSeeds := make([][]byte, 0, len(seeds))
	for _, seed := range seeds {
		tmpSeeds = append(tmpSeeds, []byte(seed))
	}
	addr, err := address.Derive(namespace, tmpSeeds...)
	require.NoError(t, err)
	return addr
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	store1 := newTestStore(t)
	store2 := newTestStore(t)
	hub := &models.Hub{
		Handle:    "isolated",
		Address:   testAddr(t, address.NamespaceHub, "isolated"),
		Authority: testAddr(t, "principal", "owner"),
		CreatedAt: 1,
	}
	require.NoError(t, store1.AddHub(hub, nil))
	hubs, err := store2.GetHubs(0, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, hubs)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	require.ErrorIs(t, store.SetCommitTimestamp(123, nil), types.ErrNilTxn)

	txn := store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(123, txn))
	require.NoError(t, txn.Commit())
	txn = store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(456, txn))
	require.NoError(t, txn.Commit())

	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(456), ts)
}

func TestDuplicateHubArtist(t *testing.T) {
	store := newTestStore(t)
	hub := testAddr(t, address.NamespaceHub, "dup")
	artist := testAddr(t, "principal", "artist")
	row := models.HubArtist{
		Address:       testAddr(t, address.NamespaceHubArtist, "dup", "artist"),
		Hub:           hub,
		Artist:        artist,
		CanAddRelease: true,
	}
	first := row
	require.NoError(t, store.AddHubArtist(&first, nil))
	second := row
	err := store.AddHubArtist(&second, nil)
	require.ErrorIs(t, err, types.ErrDuplicateRecord)

	require.NoError(t, store.SetHubArtistCapability(row.Address, false, nil))
	artists, err := store.GetHubArtists(hub, nil)
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.False(t, artists[0].CanAddRelease)
	assert.Equal(t, artist, artists[0].Artist)
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStore(t)
	hub := testAddr(t, address.NamespaceHub, "rollback")
	txn := store.Transaction()
	require.NoError(t, store.AddHubCollaborator(
		&models.HubCollaborator{
			Address:       testAddr(t, address.NamespaceHubCollaborator, "rollback", "c"),
			Hub:           hub,
			Collaborator:  testAddr(t, "principal", "c"),
			CanAddContent: true,
		},
		txn,
	))
	require.NoError(t, txn.Rollback())
	collaborators, err := store.GetHubCollaborators(hub, nil)
	require.NoError(t, err)
	assert.Empty(t, collaborators)
	// Finished transactions can no longer be used
	_, err = store.GetHubCollaborators(hub, txn)
	require.Error(t, err)
}

type fakeTxn struct{}

func (fakeTxn) Commit() error   { return nil }
func (fakeTxn) Rollback() error { return nil }

func TestWrongTransactionType(t *testing.T) {
	store := newTestStore(t)
	err := store.AddRelease(&models.Release{}, fakeTxn{})
	require.ErrorIs(t, err, types.ErrTxnWrongType)
}

func TestHubContentOrdering(t *testing.T) {
	store := newTestStore(t)
	hub := testAddr(t, address.NamespaceHub, "ordered")
	other := testAddr(t, address.NamespaceHub, "other")
	// Appended out of datetime order, with a tie at 200
	datetimes := []int64{300, 100, 200, 200}
	for i, dt := range datetimes {
		child := testAddr(t, address.NamespacePost, "ordered", fmt.Sprint(i))
		require.NoError(t, store.AppendHubContent(
			&models.HubContent{
				Address:  testAddr(t, address.NamespaceHubContent, "ordered", fmt.Sprint(i)),
				Hub:      hub,
				Child:    child,
				AddedBy:  testAddr(t, "principal", "p"),
				Datetime: dt,
			},
			nil,
		))
	}
	require.NoError(t, store.AppendHubContent(
		&models.HubContent{
			Address:  testAddr(t, address.NamespaceHubContent, "other", "0"),
			Hub:      other,
			Child:    testAddr(t, address.NamespacePost, "other", "0"),
			AddedBy:  testAddr(t, "principal", "p"),
			Datetime: 50,
		},
		nil,
	))

	count, err := store.CountHubContent(hub, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	entries, err := store.GetHubContent(hub, 0, 10, false, nil)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	got := make([]int64, 0, len(entries))
	for _, entry := range entries {
		got = append(got, entry.Datetime)
	}
	assert.Equal(t, []int64{100, 200, 200, 300}, got)
	// Ties keep append order
	assert.Less(t, entries[1].ID, entries[2].ID)

	page, err := store.GetHubContent(hub, 1, 2, true, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(200), page[0].Datetime)
	assert.Equal(t, int64(200), page[1].Datetime)
	assert.Greater(t, page[0].ID, page[1].ID)
}

func TestPostUpdate(t *testing.T) {
	store := newTestStore(t)
	hub := testAddr(t, address.NamespaceHub, "posts")
	postAddr := testAddr(t, address.NamespacePost, "posts", "first")
	hubPostAddr := testAddr(t, address.NamespaceHubPost, "posts", "first")
	require.NoError(t, store.AddPost(&models.Post{
		Slug:                "first",
		Uri:                 "ar://one",
		CreatedAt:           10,
		UpdatedAt:           10,
		Address:             postAddr,
		Hub:                 hub,
		Author:              testAddr(t, "principal", "author"),
		PublishedThroughHub: true,
	}, nil))
	require.NoError(t, store.AddHubPost(&models.HubPost{
		VersionUri: "ar://one",
		Address:    hubPostAddr,
		Hub:        hub,
		Post:       postAddr,
	}, nil))
	require.NoError(t, store.UpdatePost(postAddr, "ar://two", 20, nil))
	require.NoError(t, store.SetHubPostVersionUri(hubPostAddr, "ar://two", nil))

	var post models.Post
	require.NoError(t, store.DB().Where("address = ?", postAddr).First(&post).Error)
	assert.Equal(t, "ar://two", post.Uri)
	assert.Equal(t, int64(20), post.UpdatedAt)
	assert.Equal(t, int64(10), post.CreatedAt)
	var hubPost models.HubPost
	require.NoError(t, store.DB().Where("address = ?", hubPostAddr).First(&hubPost).Error)
	assert.Equal(t, "ar://two", hubPost.VersionUri)
}

func TestHubReleaseSales(t *testing.T) {
	store := newTestStore(t)
	addr := testAddr(t, address.NamespaceHubRelease, "h", "r")
	require.NoError(t, store.AddHubRelease(&models.HubRelease{
		Address: addr,
		Hub:     testAddr(t, address.NamespaceHub, "h"),
		Release: testAddr(t, address.NamespaceRelease, "a", "r"),
	}, nil))
	require.NoError(t, store.SetHubReleaseSales(addr, 1<<63+5, nil))
	var row models.HubRelease
	require.NoError(t, store.DB().Where("address = ?", addr).First(&row).Error)
	assert.Equal(t, types.Uint64(1<<63+5), row.Sales)
}

func TestSubscriptions(t *testing.T) {
	store := newTestStore(t)
	from := testAddr(t, "principal", "fan")
	to := testAddr(t, address.NamespaceHub, "band")
	addr := testAddr(t, address.NamespaceSubscription, "fan", "band")
	require.NoError(t, store.AddSubscription(&models.Subscription{
		Address:  addr,
		From:     from,
		To:       to,
		Datetime: 5,
	}, nil))
	fromSubs, err := store.GetSubscriptionsFrom(from, nil)
	require.NoError(t, err)
	require.Len(t, fromSubs, 1)
	assert.Equal(t, to, fromSubs[0].To)
	toSubs, err := store.GetSubscriptionsTo(to, nil)
	require.NoError(t, err)
	require.Len(t, toSubs, 1)
	assert.Equal(t, from, toSubs[0].From)

	require.NoError(t, store.DeleteSubscription(addr, nil))
	toSubs, err = store.GetSubscriptionsTo(to, nil)
	require.NoError(t, err)
	assert.Empty(t, toSubs)
}

func TestFileBackedStore(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.Start())
	require.NoError(t, store.AddHub(&models.Hub{
		Handle:    "persisted",
		Address:   testAddr(t, address.NamespaceHub, "persisted"),
		Authority: testAddr(t, "principal", "owner"),
		CreatedAt: 1,
	}, nil))
	require.NoError(t, store.Close())
	// Closing twice is harmless
	require.NoError(t, store.Close())

	reopened, err := New(dir, nil, nil)
	require.NoError(t, err)
	require.NoError(t, reopened.Start())
	defer reopened.Close() //nolint:errcheck
	hubs, err := reopened.GetHubs(0, 10, nil)
	require.NoError(t, err)
	require.Len(t, hubs, 1)
	assert.Equal(t, "persisted", hubs[0].Handle)
}
