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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/hubd/database/plugin/blob/internal/objectstore"
)

// BlobStoreS3 stores data in an AWS S3 bucket
type BlobStoreS3 struct {
	*objectstore.Store

	promRegistry prometheus.Registerer
	logger       *slog.Logger
	client       *s3.Client
	bucket       string
	prefix       string
	region       string
	endpoint     string
	timeout      time.Duration
}

// New creates a new S3-backed blob store. The location must be
// "s3://bucket" or "s3://bucket/prefix".
func New(
	location string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreS3, error) {
	const scheme = "s3://"
	if !strings.HasPrefix(location, scheme) {
		return nil, errors.New(
			"s3 blob: expected location 's3://<bucket>[/prefix]'",
		)
	}
	path := strings.TrimPrefix(location, scheme)
	bucket, keyPrefix, _ := strings.Cut(path, "/")
	if bucket == "" {
		return nil, errors.New("s3 blob: bucket not set")
	}
	return NewWithOptions(
		WithBucket(bucket),
		WithPrefix(keyPrefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a new S3-backed blob store using options.
func NewWithOptions(opts ...BlobStoreS3OptionFunc) (*BlobStoreS3, error) {
	db := &BlobStoreS3{}

	// Apply options
	for _, opt := range opts {
		opt(db)
	}

	// Set defaults (no side effects)
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if db.timeout == 0 {
		db.timeout = objectstore.DefaultTimeout
	}
	db.prefix = normalizePrefix(db.prefix)

	// Note: AWS config loading and validation happens in Start()
	return db, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// Start implements the plugin.Plugin interface.
func (d *BlobStoreS3) Start() error {
	if d.bucket == "" {
		return errors.New("s3 blob: bucket not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	var loadOpts []func(*config.LoadOptions) error
	if d.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(d.region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("s3 blob: load default AWS config: %w", err)
	}
	d.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if d.endpoint != "" {
			o.BaseEndpoint = aws.String(d.endpoint)
			o.UsePathStyle = true
		}
	})
	d.Store = objectstore.New(
		&s3Backend{client: d.client, bucket: d.bucket, prefix: d.prefix},
		"s3",
		d.logger,
		d.promRegistry,
		d.timeout,
	)
	d.logger.Info(
		"using s3 blob store",
		"component", "database",
		"bucket", d.bucket,
		"prefix", d.prefix,
	)
	return nil
}

// Stop implements the plugin.Plugin interface.
func (d *BlobStoreS3) Stop() error {
	// S3 client doesn't need explicit closing
	return nil
}

// Close implements the BlobStore interface.
func (d *BlobStoreS3) Close() error {
	return d.Stop()
}

// Client returns the S3 client
func (d *BlobStoreS3) Client() *s3.Client {
	return d.client
}

// Bucket returns the bucket name
func (d *BlobStoreS3) Bucket() string {
	return d.bucket
}

type s3Backend struct {
	client *s3.Client
	bucket string
	prefix string
}

// fullKey returns the S3 key with the configured prefix
func (b *s3Backend) fullKey(key string) *string {
	return aws.String(b.prefix + key)
}

func (b *s3Backend) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    b.fullKey(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (b *s3Backend) Put(ctx context.Context, key string, val []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    b.fullKey(key),
		Body:   bytes.NewReader(val),
	})
	return err
}

func (b *s3Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    b.fullKey(key),
	})
	if err != nil && isS3NotFound(err) {
		return objectstore.ErrObjectNotFound
	}
	return err
}

func (b *s3Backend) List(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: b.fullKey(prefix),
	}
	paginator := s3.NewListObjectsV2Paginator(b.client, input)
	keys := make([]string, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), b.prefix))
		}
	}
	return keys, nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
