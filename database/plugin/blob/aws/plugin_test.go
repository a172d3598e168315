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

package aws

import (
	"errors"
	"fmt"
	"testing"
	"time"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/hubd/database/plugin"
	"github.com/blinklabs-io/hubd/database/plugin/blob/internal/objectstore"
)

func TestNewFromLocation(t *testing.T) {
	testDefs := []struct {
		location string
		bucket   string
		prefix   string
		wantErr  bool
	}{
		{location: "s3://bucket", bucket: "bucket"},
		{location: "s3://bucket/", bucket: "bucket"},
		{location: "s3://bucket/hubs/prod/", bucket: "bucket", prefix: "hubs/prod/"},
		{location: "s3://", wantErr: true},
		{location: "gcs://bucket", wantErr: true},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.location, func(t *testing.T) {
			store, err := New(testDef.location, nil, nil)
			if testDef.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testDef.bucket, store.Bucket())
			assert.Equal(t, testDef.prefix, store.prefix)
		})
	}
}

func TestNewFromCmdlineOptions(t *testing.T) {
	pluginOptsMu.Lock()
	original := pluginOpts
	pluginOpts = pluginOptions{
		bucket:         "test-bucket",
		region:         "us-east-1",
		prefix:         "test-prefix",
		timeoutSeconds: 5,
	}
	pluginOptsMu.Unlock()
	defer func() {
		pluginOptsMu.Lock()
		pluginOpts = original
		pluginOptsMu.Unlock()
	}()

	p := NewFromCmdlineOptions(plugin.StartOptions{})
	store, ok := p.(*BlobStoreS3)
	require.True(t, ok)
	assert.Equal(t, "test-bucket", store.bucket)
	assert.Equal(t, "us-east-1", store.region)
	assert.Equal(t, "test-prefix/", store.prefix)
	assert.Equal(t, 5*time.Second, store.timeout)
}

func TestDefaultTimeout(t *testing.T) {
	store, err := NewWithOptions(WithBucket("b"))
	require.NoError(t, err)
	assert.Equal(t, objectstore.DefaultTimeout, store.timeout)
}

func TestStartWithoutBucket(t *testing.T) {
	store, err := NewWithOptions()
	require.NoError(t, err)
	require.Error(t, store.Start())
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&s3types.NoSuchKey{}))
	assert.True(t, isS3NotFound(
		fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NotFound"}),
	))
	assert.False(t, isS3NotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3NotFound(errors.New("boom")))
}
