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

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/hubd/database/types"
)

func TestUint64RoundTrip(t *testing.T) {
	for _, val := range []uint64{0, 123, 18446744073709551615} {
		u := types.Uint64(val)
		out, err := u.Value()
		require.NoError(t, err)
		str, ok := out.(string)
		require.True(t, ok)

		var fromString, fromBytes types.Uint64
		require.NoError(t, fromString.Scan(str))
		require.NoError(t, fromBytes.Scan([]byte(str)))
		assert.Equal(t, u, fromString)
		assert.Equal(t, u, fromBytes)
	}
}

func TestUint64Scan(t *testing.T) {
	testDefs := []struct {
		name    string
		in      any
		want    types.Uint64
		wantErr bool
	}{
		{name: "int64", in: int64(42), want: 42},
		{name: "negative int64", in: int64(-1), wantErr: true},
		{name: "float", in: 1.5, wantErr: true},
		{name: "garbage", in: "twelve", wantErr: true},
		{name: "nil", in: nil, wantErr: true},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			var u types.Uint64
			err := u.Scan(testDef.in)
			if testDef.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testDef.want, u)
		})
	}
}

func TestRecordBlobKey(t *testing.T) {
	assert.Equal(t, []byte{'r', 0xab, 0xcd}, types.RecordBlobKey([]byte{0xab, 0xcd}))
}
