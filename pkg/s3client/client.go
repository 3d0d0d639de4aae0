// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

// Package s3client wraps the minio-go SDK behind a backend-neutral interface
// and owns the process-wide credential context.
package s3client

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/cors"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/minio/minio-go/v7/pkg/sse"
	"github.com/minio/minio-go/v7/pkg/tags"
	"github.com/zeebo/errs"
)

// Error is a class of s3client errors.
var Error = errs.Class("s3client")

// ErrObjectTooLarge is returned when an object exceeds the per-call data
// limit for inline transfer.
var ErrObjectTooLarge = errs.Class("object too large")

// PublicAccessBlock mirrors the S3 PublicAccessBlockConfiguration document.
type PublicAccessBlock struct {
	BlockPublicACLs       bool `json:"block_public_acls"`
	IgnorePublicACLs      bool `json:"ignore_public_acls"`
	BlockPublicPolicy     bool `json:"block_public_policy"`
	RestrictPublicBuckets bool `json:"restrict_public_buckets"`
}

// Client is the set of backend calls the tools need. Implementations must be
// safe for concurrent use.
type Client interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	MakeBucket(ctx context.Context, bucket, region string) error
	RemoveBucket(ctx context.Context, bucket string) error

	SetPublicAccessBlock(ctx context.Context, bucket string, block PublicAccessBlock) error
	SetVersioning(ctx context.Context, bucket string, enabled bool) error
	SetEncryption(ctx context.Context, bucket, algorithm, kmsKeyID string) error

	ListObjects(ctx context.Context, bucket, prefix, startAfter string, maxKeys int) (_ []minio.ObjectInfo, hasMore bool, err error)
	GetObject(ctx context.Context, bucket, key string, maxSize int64) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	RemoveObject(ctx context.Context, bucket, key string) error
	CopyObject(ctx context.Context, srcBucket, srcKey, destBucket, destKey string) (etag string, err error)

	PresignGetObject(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	PresignPutObject(ctx context.Context, bucket, key string, expires time.Duration) (string, error)

	GetBucketPolicy(ctx context.Context, bucket string) (string, error)
	SetBucketPolicy(ctx context.Context, bucket, policy string) error
	DeleteBucketPolicy(ctx context.Context, bucket string) error

	GetBucketLifecycle(ctx context.Context, bucket string) (*lifecycle.Configuration, error)
	SetBucketLifecycle(ctx context.Context, bucket string, config *lifecycle.Configuration) error

	GetObjectTagging(ctx context.Context, bucket, key string) (map[string]string, error)
	SetObjectTagging(ctx context.Context, bucket, key string, tagSet map[string]string) error

	GetBucketCors(ctx context.Context, bucket string) (*cors.Config, error)
	SetBucketCors(ctx context.Context, bucket string, config *cors.Config) error

	UploadFile(ctx context.Context, bucket, key, localPath string) (size int64, err error)
	DownloadFile(ctx context.Context, bucket, key, localPath string) error
}

// Minio implements Client with minio-go.
type Minio struct {
	api    *minio.Client
	config Config
	creds  Credentials
}

var _ Client = (*Minio)(nil)

// NewMinio creates a new backend client. Construction performs no network
// I/O; the first backend call does.
func NewMinio(config Config, creds Credentials) (Client, error) {
	api, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKeyID, creds.SecretAccessKey, ""),
		Secure: !config.InsecureDisableTLS,
		Region: creds.Region,
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Minio{api: api, config: config, creds: creds}, nil
}

// ListBuckets lists all buckets.
func (client *Minio) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	buckets, err := client.api.ListBuckets(ctx)
	return buckets, Error.Wrap(err)
}

// MakeBucket makes a new bucket. If region is empty the credential region is
// used.
func (client *Minio) MakeBucket(ctx context.Context, bucket, region string) error {
	if region == "" {
		region = client.creds.Region
	}
	return Error.Wrap(client.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}))
}

// RemoveBucket removes an empty bucket.
func (client *Minio) RemoveBucket(ctx context.Context, bucket string) error {
	return Error.Wrap(client.api.RemoveBucket(ctx, bucket))
}

// SetVersioning enables or suspends bucket versioning.
func (client *Minio) SetVersioning(ctx context.Context, bucket string, enabled bool) error {
	if enabled {
		return Error.Wrap(client.api.EnableVersioning(ctx, bucket))
	}
	return Error.Wrap(client.api.SuspendVersioning(ctx, bucket))
}

// SetEncryption sets the default server-side encryption for a bucket.
// Algorithm is either "AES256" or "aws:kms"; kmsKeyID is only meaningful for
// the latter.
func (client *Minio) SetEncryption(ctx context.Context, bucket, algorithm, kmsKeyID string) error {
	var config *sse.Configuration
	if algorithm == "aws:kms" {
		config = sse.NewConfigurationSSEKMS(kmsKeyID)
	} else {
		config = sse.NewConfigurationSSES3()
	}
	return Error.Wrap(client.api.SetBucketEncryption(ctx, bucket, config))
}

// ListObjects lists up to maxKeys objects and reports whether more remain.
func (client *Minio) ListObjects(ctx context.Context, bucket, prefix, startAfter string, maxKeys int) (_ []minio.ObjectInfo, hasMore bool, err error) {
	// one extra object tells us whether the listing was truncated.
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []minio.ObjectInfo
	for object := range client.api.ListObjects(listCtx, bucket, minio.ListObjectsOptions{
		Prefix:     prefix,
		StartAfter: startAfter,
		Recursive:  true,
		MaxKeys:    maxKeys + 1,
	}) {
		if object.Err != nil {
			return nil, false, Error.Wrap(object.Err)
		}
		if len(objects) == maxKeys {
			return objects, true, nil
		}
		objects = append(objects, object)
	}

	return objects, false, nil
}

// GetObject reads a whole object, failing with ErrObjectTooLarge when it
// exceeds maxSize.
func (client *Minio) GetObject(ctx context.Context, bucket, key string, maxSize int64) ([]byte, error) {
	object, err := client.api.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { _ = object.Close() }()

	data, err := io.ReadAll(io.LimitReader(object, maxSize+1))
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrObjectTooLarge.New("object %s/%s exceeds the %d byte inline limit; use generate_presigned_url instead", bucket, key, maxSize)
	}
	return data, nil
}

// PutObject uploads object data.
func (client *Minio) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := client.api.PutObject(
		ctx, bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return Error.Wrap(err)
}

// RemoveObject deletes an object.
func (client *Minio) RemoveObject(ctx context.Context, bucket, key string) error {
	return Error.Wrap(client.api.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}))
}

// CopyObject performs a server-side copy and returns the new object's ETag.
func (client *Minio) CopyObject(ctx context.Context, srcBucket, srcKey, destBucket, destKey string) (string, error) {
	info, err := client.api.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: destBucket, Object: destKey},
		minio.CopySrcOptions{Bucket: srcBucket, Object: srcKey})
	if err != nil {
		return "", Error.Wrap(err)
	}
	return info.ETag, nil
}

// PresignGetObject signs a download URL locally; no network call is made.
func (client *Minio) PresignGetObject(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	u, err := client.api.PresignedGetObject(ctx, bucket, key, expires, url.Values{})
	if err != nil {
		return "", Error.Wrap(err)
	}
	return u.String(), nil
}

// PresignPutObject signs an upload URL locally; no network call is made.
func (client *Minio) PresignPutObject(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	u, err := client.api.PresignedPutObject(ctx, bucket, key, expires)
	if err != nil {
		return "", Error.Wrap(err)
	}
	return u.String(), nil
}

// GetBucketPolicy returns the bucket policy document, or empty when none is
// configured.
func (client *Minio) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	policy, err := client.api.GetBucketPolicy(ctx, bucket)
	return policy, Error.Wrap(err)
}

// SetBucketPolicy sets or replaces the bucket policy document.
func (client *Minio) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	return Error.Wrap(client.api.SetBucketPolicy(ctx, bucket, policy))
}

// DeleteBucketPolicy removes the bucket policy. The S3 API treats an empty
// policy as removal.
func (client *Minio) DeleteBucketPolicy(ctx context.Context, bucket string) error {
	return Error.Wrap(client.api.SetBucketPolicy(ctx, bucket, ""))
}

// GetBucketLifecycle returns the lifecycle configuration.
func (client *Minio) GetBucketLifecycle(ctx context.Context, bucket string) (*lifecycle.Configuration, error) {
	config, err := client.api.GetBucketLifecycle(ctx, bucket)
	return config, Error.Wrap(err)
}

// SetBucketLifecycle sets the lifecycle configuration.
func (client *Minio) SetBucketLifecycle(ctx context.Context, bucket string, config *lifecycle.Configuration) error {
	return Error.Wrap(client.api.SetBucketLifecycle(ctx, bucket, config))
}

// GetObjectTagging returns an object's tag set.
func (client *Minio) GetObjectTagging(ctx context.Context, bucket, key string) (map[string]string, error) {
	tagging, err := client.api.GetObjectTagging(ctx, bucket, key, minio.GetObjectTaggingOptions{})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return tagging.ToMap(), nil
}

// SetObjectTagging replaces an object's tag set.
func (client *Minio) SetObjectTagging(ctx context.Context, bucket, key string, tagSet map[string]string) error {
	tagging, err := tags.NewTags(tagSet, true)
	if err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(client.api.PutObjectTagging(ctx, bucket, key, tagging, minio.PutObjectTaggingOptions{}))
}

// GetBucketCors returns the CORS configuration.
func (client *Minio) GetBucketCors(ctx context.Context, bucket string) (*cors.Config, error) {
	config, err := client.api.GetBucketCors(ctx, bucket)
	return config, Error.Wrap(err)
}

// SetBucketCors sets the CORS configuration.
func (client *Minio) SetBucketCors(ctx context.Context, bucket string, config *cors.Config) error {
	return Error.Wrap(client.api.SetBucketCors(ctx, bucket, config))
}

// UploadFile streams a local file to the backend.
func (client *Minio) UploadFile(ctx context.Context, bucket, key, localPath string) (int64, error) {
	info, err := client.api.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{})
	if err != nil {
		return 0, Error.Wrap(err)
	}
	return info.Size, nil
}

// DownloadFile streams an object to a local file.
func (client *Minio) DownloadFile(ctx context.Context, bucket, key, localPath string) error {
	return Error.Wrap(client.api.FGetObject(ctx, bucket, key, localPath, minio.GetObjectOptions{}))
}
