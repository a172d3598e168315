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

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/blinklabs-io/hubd/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/hubd/database/plugin/metadata/sqlite"
)

func TestPluginListing(t *testing.T) {
	assert.Empty(t, pluginListing("badger", "sqlite"))

	blob := pluginListing("list", "sqlite")
	assert.True(t, strings.HasPrefix(blob, "Available blob plugins:\n"))
	assert.Contains(t, blob, "  badger: ")
	assert.NotContains(t, blob, "metadata")

	both := pluginListing("list", "list")
	assert.Contains(t, both, "\n\nAvailable metadata plugins:\n")
	assert.Contains(t, both, "  sqlite: ")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "hubd "))
}
