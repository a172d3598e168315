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

package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/blinklabs-io/hubd/database/plugin/blob/internal/objectstore"
)

type BlobStoreGCS struct {
	*objectstore.Store

	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	client          *storage.Client
	bucketName      string
	prefix          string
	credentialsFile string
}

// New creates a GCS-backed blob store. The location must be
// "gcs://bucket" or "gcs://bucket/prefix".
func New(
	location string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreGCS, error) {
	after, ok := strings.CutPrefix(location, "gcs://")
	if !ok {
		return nil, errors.New(
			"gcs blob: expected location 'gcs://<bucket>[/prefix]'",
		)
	}
	bucketName, prefix, _ := strings.Cut(after, "/")
	if bucketName == "" {
		return nil, errors.New("gcs blob: bucket not set")
	}
	return NewWithOptions(
		WithBucket(bucketName),
		WithPrefix(prefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

func NewWithOptions(opts ...BlobStoreGCSOptionFunc) (*BlobStoreGCS, error) {
	db := &BlobStoreGCS{}

	// Apply options
	for _, opt := range opts {
		opt(db)
	}

	// Set defaults
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	db.prefix = strings.Trim(db.prefix, "/")
	if db.prefix != "" {
		db.prefix += "/"
	}

	return db, nil
}

// validateCredentials checks that an explicitly configured credentials file
// exists before handing it to the client
func validateCredentials(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf(
				"GCS credentials file does not exist: %s",
				path,
			)
		}
		return fmt.Errorf("GCS credentials file: %w", err)
	}
	return nil
}

func (d *BlobStoreGCS) Start() error {
	// Validate required fields
	if d.bucketName == "" {
		return errors.New("gcs blob: bucket not set")
	}
	if err := validateCredentials(d.credentialsFile); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), objectstore.DefaultTimeout)
	defer cancel()

	clientOpts := []option.ClientOption{storage.WithDisabledClientMetrics()}
	if d.credentialsFile != "" {
		clientOpts = append(
			clientOpts,
			option.WithCredentialsFile(d.credentialsFile),
		)
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return fmt.Errorf(
			"gcs blob: failed in creating storage client: %w",
			err,
		)
	}
	d.client = client
	d.Store = objectstore.New(
		&gcsBackend{bucket: client.Bucket(d.bucketName), prefix: d.prefix},
		"gcs",
		d.logger,
		d.promRegistry,
		objectstore.DefaultTimeout,
	)
	d.logger.Info(
		"using gcs blob store",
		"component", "database",
		"bucket", d.bucketName,
		"prefix", d.prefix,
	)
	return nil
}

func (d *BlobStoreGCS) Stop() error {
	return d.Close()
}

func (d *BlobStoreGCS) Close() error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}

type gcsBackend struct {
	bucket *storage.BucketHandle
	prefix string
}

func (b *gcsBackend) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := b.bucket.Object(b.prefix + key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *gcsBackend) Put(ctx context.Context, key string, val []byte) error {
	w := b.bucket.Object(b.prefix + key).NewWriter(ctx)
	if _, err := w.Write(val); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b *gcsBackend) Delete(ctx context.Context, key string) error {
	err := b.bucket.Object(b.prefix + key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return objectstore.ErrObjectNotFound
	}
	return err
}

func (b *gcsBackend) List(ctx context.Context, prefix string) ([]string, error) {
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: b.prefix + prefix})
	keys := make([]string, 0)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, b.prefix))
	}
	return keys, nil
}
