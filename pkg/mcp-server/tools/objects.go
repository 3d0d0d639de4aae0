// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	minio "github.com/minio/minio-go/v7"

	"storj.io/s3-mcp/pkg/errdata"
	"storj.io/s3-mcp/pkg/s3client"
)

func (t *Tools) listObjects(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	prefix := args.String("prefix")
	maxKeys := args.Int("max_keys")

	var infos []minio.ObjectInfo
	var hasMore bool
	err = t.withRetry(ctx, func() error {
		infos, hasMore, err = client.ListObjects(ctx, bucket, prefix, args.String("start_after"), maxKeys)
		return err
	})
	if err != nil {
		return nil, err
	}

	objects := make([]ObjectItem, 0, len(infos))
	for _, info := range infos {
		objects = append(objects, ObjectItem{
			Key:      info.Key,
			Size:     info.Size,
			Modified: info.LastModified.UTC().Format(time.RFC3339),
		})
	}

	nextCursor := ""
	if hasMore && len(objects) > 0 {
		nextCursor = objects[len(objects)-1].Key
	}

	return &ListObjectsResponse{
		Summary:    fmt.Sprintf("Found %d objects in bucket %q", len(objects), bucket),
		Bucket:     bucket,
		Prefix:     prefix,
		Objects:    objects,
		Count:      len(objects),
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, nil
}

func (t *Tools) getObject(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	key := args.String("key")

	var data []byte
	err = t.withRetry(ctx, func() error {
		data, err = client.GetObject(ctx, bucket, key, t.config.MaxInlineSize.Int64())
		return err
	})
	if err != nil {
		if s3client.ErrObjectTooLarge.Has(err) {
			return nil, errdata.WithKind(err, errdata.KindConflictingInput)
		}
		return nil, err
	}

	return &GetObjectResponse{
		Bucket:   bucket,
		Key:      key,
		Data:     base64.StdEncoding.EncodeToString(data),
		Size:     len(data),
		Encoding: "base64",
	}, nil
}

func (t *Tools) putObject(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	key := args.String("key")
	hasBody := args.Has("body")
	hasPath := args.Has("local_path")

	switch {
	case hasBody && hasPath:
		return nil, errdata.WithKind(
			Error.New("body and local_path are mutually exclusive"),
			errdata.KindConflictingInput)
	case !hasBody && !hasPath:
		return nil, errdata.WithKind(
			Error.New("one of body or local_path is required"),
			errdata.KindMissingField)
	}

	if hasPath {
		localPath := args.String("local_path")
		if err := probeReadable(localPath); err != nil {
			return nil, err
		}

		var size int64
		err = t.withRetry(ctx, func() error {
			size, err = client.UploadFile(ctx, bucket, key, localPath)
			return err
		})
		if err != nil {
			return nil, err
		}

		return &PutObjectResponse{
			Summary: fmt.Sprintf("Uploaded %s to %s/%s", localPath, bucket, key),
			Bucket:  bucket,
			Key:     key,
			Size:    size,
			Status:  "uploaded",
		}, nil
	}

	data, err := base64.StdEncoding.DecodeString(args.String("body"))
	if err != nil {
		return nil, errdata.WithKind(
			Error.New("body must be valid base64: %v", err),
			errdata.KindTypeMismatch)
	}

	err = t.withRetry(ctx, func() error {
		return client.PutObject(ctx, bucket, key, data)
	})
	if err != nil {
		return nil, err
	}

	return &PutObjectResponse{
		Summary: fmt.Sprintf("Uploaded %d bytes to %s/%s", len(data), bucket, key),
		Bucket:  bucket,
		Key:     key,
		Size:    int64(len(data)),
		Status:  "uploaded",
	}, nil
}

func (t *Tools) deleteObject(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	key := args.String("key")

	err = t.withRetry(ctx, func() error {
		return client.RemoveObject(ctx, bucket, key)
	})
	if err != nil {
		return nil, err
	}

	return &DeleteObjectResponse{
		Summary: fmt.Sprintf("Deleted %s/%s", bucket, key),
		Bucket:  bucket,
		Key:     key,
		Status:  "deleted",
	}, nil
}

func (t *Tools) copyObject(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	srcBucket := args.String("src_bucket")
	srcKey := args.String("src_key")
	dstBucket := args.String("dst_bucket")
	dstKey := args.String("dst_key")

	var etag string
	err = t.withRetry(ctx, func() error {
		etag, err = client.CopyObject(ctx, srcBucket, srcKey, dstBucket, dstKey)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &CopyObjectResponse{
		Summary:   fmt.Sprintf("Copied %s/%s to %s/%s", srcBucket, srcKey, dstBucket, dstKey),
		SrcBucket: srcBucket,
		SrcKey:    srcKey,
		DstBucket: dstBucket,
		DstKey:    dstKey,
		ETag:      etag,
		Status:    "copied",
	}, nil
}

func (t *Tools) generatePresignedURL(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	key := args.String("key")
	operation := args.String("operation")
	expiresIn := args.Int("expires_in_seconds")
	expires := time.Duration(expiresIn) * time.Second

	// signing is local, so there is nothing to retry.
	var url string
	switch operation {
	case "get":
		url, err = client.PresignGetObject(ctx, bucket, key, expires)
	case "put":
		url, err = client.PresignPutObject(ctx, bucket, key, expires)
	}
	if err != nil {
		return nil, err
	}

	return &PresignedURLResponse{
		Bucket:    bucket,
		Key:       key,
		Operation: operation,
		URL:       url,
		ExpiresIn: expiresIn,
	}, nil
}
