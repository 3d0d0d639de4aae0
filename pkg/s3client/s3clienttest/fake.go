// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

// Package s3clienttest provides an in-memory s3client.Client double with
// call counters and fault injection.
package s3clienttest

import (
	"context"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/cors"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"storj.io/s3-mcp/pkg/s3client"
)

type fakeBucket struct {
	created    time.Time
	region     string
	objects    map[string][]byte
	tags       map[string]map[string]string
	policy     string
	lifecycle  *lifecycle.Configuration
	cors       *cors.Config
	versioning bool
	encryption string
	block      *s3client.PublicAccessBlock
}

// Fake is an in-memory Client.
type Fake struct {
	mu      sync.Mutex
	buckets map[string]*fakeBucket
	calls   map[string]int
	faults  map[string]error
}

var _ s3client.Client = (*Fake)(nil)

// New creates an empty fake backend.
func New() *Fake {
	return &Fake{
		buckets: make(map[string]*fakeBucket),
		calls:   make(map[string]int),
		faults:  make(map[string]error),
	}
}

// FailWith makes every subsequent call to method return err. A nil err
// clears the fault.
func (f *Fake) FailWith(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.faults, method)
		return
	}
	f.faults[method] = err
}

// Calls returns how many times method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns how many backend calls were made in total.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// record must be called with the mutex held.
func (f *Fake) record(method string) error {
	f.calls[method]++
	return f.faults[method]
}

// NoSuchBucket builds the backend error for a missing bucket.
func NoSuchBucket(bucket string) error {
	return minio.ErrorResponse{Code: "NoSuchBucket", Message: "The specified bucket does not exist", BucketName: bucket, StatusCode: http.StatusNotFound}
}

// NoSuchKey builds the backend error for a missing object.
func NoSuchKey(bucket, key string) error {
	return minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist", BucketName: bucket, Key: key, StatusCode: http.StatusNotFound}
}

// Throttle builds a backend throttling error.
func Throttle() error {
	return minio.ErrorResponse{Code: "SlowDown", Message: "Please reduce your request rate", StatusCode: http.StatusServiceUnavailable}
}

// AccessDenied builds a backend access-denied error.
func AccessDenied() error {
	return minio.ErrorResponse{Code: "AccessDenied", Message: "Access Denied", StatusCode: http.StatusForbidden}
}

func notConfigured(code string) error {
	return minio.ErrorResponse{Code: code, StatusCode: http.StatusNotFound}
}

func (f *Fake) bucket(name string) (*fakeBucket, error) {
	b, ok := f.buckets[name]
	if !ok {
		return nil, NoSuchBucket(name)
	}
	return b, nil
}

// ListBuckets implements Client.
func (f *Fake) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListBuckets"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.buckets))
	for name := range f.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	infos := make([]minio.BucketInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, minio.BucketInfo{Name: name, CreationDate: f.buckets[name].created})
	}
	return infos, nil
}

// MakeBucket implements Client.
func (f *Fake) MakeBucket(ctx context.Context, bucket, region string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("MakeBucket"); err != nil {
		return err
	}
	if _, ok := f.buckets[bucket]; ok {
		return minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou", StatusCode: http.StatusConflict, BucketName: bucket}
	}
	f.buckets[bucket] = &fakeBucket{
		created: time.Now().UTC(),
		region:  region,
		objects: make(map[string][]byte),
		tags:    make(map[string]map[string]string),
	}
	return nil
}

// RemoveBucket implements Client.
func (f *Fake) RemoveBucket(ctx context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RemoveBucket"); err != nil {
		return err
	}
	if _, err := f.bucket(bucket); err != nil {
		return err
	}
	delete(f.buckets, bucket)
	return nil
}

// SetPublicAccessBlock implements Client.
func (f *Fake) SetPublicAccessBlock(ctx context.Context, bucket string, block s3client.PublicAccessBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetPublicAccessBlock"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.block = &block
	return nil
}

// SetVersioning implements Client.
func (f *Fake) SetVersioning(ctx context.Context, bucket string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetVersioning"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.versioning = enabled
	return nil
}

// Versioning reports the stored versioning state for assertions.
func (f *Fake) Versioning(bucket string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.buckets[bucket]; ok {
		return b.versioning
	}
	return false
}

// SetEncryption implements Client.
func (f *Fake) SetEncryption(ctx context.Context, bucket, algorithm, kmsKeyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetEncryption"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.encryption = algorithm
	return nil
}

// ListObjects implements Client.
func (f *Fake) ListObjects(ctx context.Context, bucket, prefix, startAfter string, maxKeys int) ([]minio.ObjectInfo, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListObjects"); err != nil {
		return nil, false, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, false, err
	}
	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		if len(prefix) > 0 && (len(key) < len(prefix) || key[:len(prefix)] != prefix) {
			continue
		}
		if startAfter != "" && key <= startAfter {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var infos []minio.ObjectInfo
	for _, key := range keys {
		if len(infos) == maxKeys {
			return infos, true, nil
		}
		infos = append(infos, minio.ObjectInfo{
			Key:          key,
			Size:         int64(len(b.objects[key])),
			LastModified: b.created,
		})
	}
	return infos, false, nil
}

// GetObject implements Client.
func (f *Fake) GetObject(ctx context.Context, bucket, key string, maxSize int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetObject"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	data, ok := b.objects[key]
	if !ok {
		return nil, NoSuchKey(bucket, key)
	}
	if int64(len(data)) > maxSize {
		return nil, s3client.ErrObjectTooLarge.New("object %s/%s exceeds the %d byte inline limit", bucket, key, maxSize)
	}
	return append([]byte(nil), data...), nil
}

// PutObject implements Client.
func (f *Fake) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PutObject"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.objects[key] = append([]byte(nil), data...)
	return nil
}

// RemoveObject implements Client.
func (f *Fake) RemoveObject(ctx context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RemoveObject"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	delete(b.objects, key)
	return nil
}

// CopyObject implements Client.
func (f *Fake) CopyObject(ctx context.Context, srcBucket, srcKey, destBucket, destKey string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CopyObject"); err != nil {
		return "", err
	}
	src, err := f.bucket(srcBucket)
	if err != nil {
		return "", err
	}
	data, ok := src.objects[srcKey]
	if !ok {
		return "", NoSuchKey(srcBucket, srcKey)
	}
	dest, err := f.bucket(destBucket)
	if err != nil {
		return "", err
	}
	dest.objects[destKey] = append([]byte(nil), data...)
	return "fake-etag", nil
}

// PresignGetObject implements Client.
func (f *Fake) PresignGetObject(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PresignGetObject"); err != nil {
		return "", err
	}
	return "https://s3.test/" + bucket + "/" + key + "?X-Amz-Expires=" + expires.String(), nil
}

// PresignPutObject implements Client.
func (f *Fake) PresignPutObject(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PresignPutObject"); err != nil {
		return "", err
	}
	return "https://s3.test/" + bucket + "/" + key + "?upload&X-Amz-Expires=" + expires.String(), nil
}

// GetBucketPolicy implements Client.
func (f *Fake) GetBucketPolicy(ctx context.Context, bucket string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetBucketPolicy"); err != nil {
		return "", err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return "", err
	}
	return b.policy, nil
}

// SetBucketPolicy implements Client.
func (f *Fake) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetBucketPolicy"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.policy = policy
	return nil
}

// DeleteBucketPolicy implements Client.
func (f *Fake) DeleteBucketPolicy(ctx context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteBucketPolicy"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.policy = ""
	return nil
}

// GetBucketLifecycle implements Client.
func (f *Fake) GetBucketLifecycle(ctx context.Context, bucket string) (*lifecycle.Configuration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetBucketLifecycle"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	if b.lifecycle == nil {
		return nil, notConfigured("NoSuchLifecycleConfiguration")
	}
	return b.lifecycle, nil
}

// SetBucketLifecycle implements Client.
func (f *Fake) SetBucketLifecycle(ctx context.Context, bucket string, config *lifecycle.Configuration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetBucketLifecycle"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.lifecycle = config
	return nil
}

// GetObjectTagging implements Client.
func (f *Fake) GetObjectTagging(ctx context.Context, bucket, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetObjectTagging"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	if _, ok := b.objects[key]; !ok {
		return nil, NoSuchKey(bucket, key)
	}
	return b.tags[key], nil
}

// SetObjectTagging implements Client.
func (f *Fake) SetObjectTagging(ctx context.Context, bucket, key string, tagSet map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetObjectTagging"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	if _, ok := b.objects[key]; !ok {
		return NoSuchKey(bucket, key)
	}
	b.tags[key] = tagSet
	return nil
}

// GetBucketCors implements Client.
func (f *Fake) GetBucketCors(ctx context.Context, bucket string) (*cors.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetBucketCors"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	if b.cors == nil {
		return nil, notConfigured("NoSuchCORSConfiguration")
	}
	return b.cors, nil
}

// SetBucketCors implements Client.
func (f *Fake) SetBucketCors(ctx context.Context, bucket string, config *cors.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetBucketCors"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.cors = config
	return nil
}

// UploadFile implements Client.
func (f *Fake) UploadFile(ctx context.Context, bucket, key, localPath string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UploadFile"); err != nil {
		return 0, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return 0, err
	}
	b.objects[key] = data
	return int64(len(data)), nil
}

// DownloadFile implements Client.
func (f *Fake) DownloadFile(ctx context.Context, bucket, key, localPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DownloadFile"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	data, ok := b.objects[key]
	if !ok {
		return NoSuchKey(bucket, key)
	}
	return os.WriteFile(localPath, data, 0o644)
}
