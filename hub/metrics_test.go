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

package hub_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/hub"
)

func TestOperationMetrics(t *testing.T) {
	db, err := database.New(&database.Config{DataDir: ""})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	reg := prometheus.NewRegistry()
	manager, err := hub.NewManager(hub.ManagerConfig{
		Database:     db,
		PromRegistry: reg,
	})
	require.NoError(t, err)
	ctx := t.Context()
	owner := principal(t, "owner")

	_, err = manager.InitHub(ctx, owner, "hub")
	require.NoError(t, err)
	_, err = manager.InitHub(ctx, owner, "hub")
	require.ErrorIs(t, err, hub.ErrDuplicateRecord)
	_, err = manager.InitPostViaHub(ctx, "hub", "p", "u", principal(t, "x"))
	require.ErrorIs(t, err, hub.ErrUnauthorized)

	count, err := testutil.GatherAndCount(reg, "hub_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNewManagerRequiresDatabase(t *testing.T) {
	_, err := hub.NewManager(hub.ManagerConfig{})
	require.Error(t, err)
}
