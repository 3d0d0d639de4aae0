// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"storj.io/s3-mcp/pkg/errdata"
	"storj.io/s3-mcp/pkg/s3client"
)

func (t *Tools) uploadLocalFile(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	key := args.String("key")
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

	return &UploadFileResponse{
		Summary:   fmt.Sprintf("Uploaded %s to %s/%s", localPath, bucket, key),
		Bucket:    bucket,
		Key:       key,
		LocalPath: localPath,
		Size:      size,
		Status:    "uploaded",
	}, nil
}

func (t *Tools) downloadFileToLocal(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	key := args.String("key")
	localPath := args.String("local_path")

	if err := probeWritable(localPath); err != nil {
		return nil, err
	}

	err = t.withRetry(ctx, func() error {
		return client.DownloadFile(ctx, bucket, key, localPath)
	})
	if err != nil {
		return nil, err
	}

	return &DownloadFileResponse{
		Summary:   fmt.Sprintf("Downloaded %s/%s to %s", bucket, key, localPath),
		Bucket:    bucket,
		Key:       key,
		LocalPath: localPath,
		Status:    "downloaded",
	}, nil
}

// probeReadable verifies that localPath is an existing readable file before
// any backend call is made.
func probeReadable(localPath string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return errdata.WithKind(Error.Wrap(err), errdata.KindLocalIO)
	}
	if info.IsDir() {
		return errdata.WithKind(
			Error.New("local path %q is a directory", localPath),
			errdata.KindLocalIO)
	}
	f, err := os.Open(localPath)
	if err != nil {
		return errdata.WithKind(Error.Wrap(err), errdata.KindLocalIO)
	}
	return Error.Wrap(f.Close())
}

// probeWritable verifies that localPath's parent directory exists and is
// writable before any backend call is made.
func probeWritable(localPath string) error {
	dir := filepath.Dir(localPath)
	info, err := os.Stat(dir)
	if err != nil {
		return errdata.WithKind(Error.Wrap(err), errdata.KindLocalIO)
	}
	if !info.IsDir() {
		return errdata.WithKind(
			Error.New("parent path %q is not a directory", dir),
			errdata.KindLocalIO)
	}
	f, err := os.CreateTemp(dir, ".s3-mcp-probe-*")
	if err != nil {
		return errdata.WithKind(Error.Wrap(err), errdata.KindLocalIO)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return errdata.WithKind(Error.Wrap(err), errdata.KindLocalIO)
	}
	return Error.Wrap(os.Remove(name))
}
