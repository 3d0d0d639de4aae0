// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

import (
	"context"
	"fmt"
	"time"

	"storj.io/s3-mcp/pkg/errdata"
	"storj.io/s3-mcp/pkg/s3client"
)

func (t *Tools) listBuckets(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	var buckets []BucketItem
	err = t.withRetry(ctx, func() error {
		infos, err := client.ListBuckets(ctx)
		if err != nil {
			return err
		}
		buckets = make([]BucketItem, 0, len(infos))
		for _, info := range infos {
			buckets = append(buckets, BucketItem{
				Name:    info.Name,
				Created: info.CreationDate.UTC().Format(time.RFC3339),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ListBucketsResponse{
		Summary: fmt.Sprintf("Found %d buckets", len(buckets)),
		Buckets: buckets,
		Count:   len(buckets),
	}, nil
}

// configStep is one follow-up configuration call applied after a bucket has
// been created.
type configStep struct {
	name  string
	apply func(ctx context.Context) error
}

func (t *Tools) createBucket(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	region := args.String("region")

	// parse the whole configuration up front so an invalid request never
	// creates a bucket.
	steps, err := parseCreateBucketConfig(client, bucket, args.Object("config"))
	if err != nil {
		return nil, err
	}

	err = t.withRetry(ctx, func() error {
		return client.MakeBucket(ctx, bucket, region)
	})
	if err != nil {
		return nil, err
	}

	// the bucket exists now; configuration failures are reported, not
	// rolled back.
	var applied []string
	var failed []ConfigFailure
	for _, step := range steps {
		stepErr := t.withRetry(ctx, func() error {
			return step.apply(ctx)
		})
		if stepErr != nil {
			failed = append(failed, ConfigFailure{Name: step.name, Error: stepErr.Error()})
			continue
		}
		applied = append(applied, step.name)
	}

	summary := fmt.Sprintf("Created bucket %q", bucket)
	if len(failed) > 0 {
		summary = fmt.Sprintf("Created bucket %q, but %d of %d configuration steps failed", bucket, len(failed), len(steps))
	}

	return &CreateBucketResponse{
		Summary:       summary,
		Bucket:        bucket,
		Region:        region,
		Status:        "created",
		AppliedConfig: applied,
		FailedConfig:  failed,
	}, nil
}

// parseCreateBucketConfig validates the optional create_bucket configuration
// and returns the follow-up steps to run. It performs no backend calls.
func parseCreateBucketConfig(client s3client.Client, bucket string, config map[string]any) ([]configStep, error) {
	if config == nil {
		return nil, nil
	}

	var steps []configStep

	if raw, ok := config["blockPublicAccess"]; ok && raw != nil {
		settings, ok := raw.(map[string]any)
		if !ok {
			return nil, errTypeMismatch("config.blockPublicAccess", "object", raw)
		}
		var block s3client.PublicAccessBlock
		for name, target := range map[string]*bool{
			"block_public_acls":       &block.BlockPublicACLs,
			"ignore_public_acls":      &block.IgnorePublicACLs,
			"block_public_policy":     &block.BlockPublicPolicy,
			"restrict_public_buckets": &block.RestrictPublicBuckets,
		} {
			value, ok := settings[name]
			if !ok || value == nil {
				continue
			}
			b, ok := value.(bool)
			if !ok {
				return nil, errTypeMismatch("config.blockPublicAccess."+name, "boolean", value)
			}
			*target = b
		}
		steps = append(steps, configStep{
			name: "blockPublicAccess",
			apply: func(ctx context.Context) error {
				return client.SetPublicAccessBlock(ctx, bucket, block)
			},
		})
	}

	if raw, ok := config["versioning"]; ok && raw != nil {
		enabled, ok := raw.(bool)
		if !ok {
			return nil, errTypeMismatch("config.versioning", "boolean", raw)
		}
		if enabled {
			steps = append(steps, configStep{
				name: "versioning",
				apply: func(ctx context.Context) error {
					return client.SetVersioning(ctx, bucket, true)
				},
			})
		}
	}

	if raw, ok := config["encryption"]; ok && raw != nil {
		algorithm, ok := raw.(string)
		if !ok {
			return nil, errTypeMismatch("config.encryption", "string", raw)
		}
		switch algorithm {
		case "none", "":
		case "AES256", "aws:kms":
			kmsKeyID, _ := config["kms_key_id"].(string)
			steps = append(steps, configStep{
				name: "encryption",
				apply: func(ctx context.Context) error {
					return client.SetEncryption(ctx, bucket, algorithm, kmsKeyID)
				},
			})
		default:
			return nil, errdata.WithKind(
				Error.New("config.encryption must be one of [none AES256 aws:kms], got %q", algorithm),
				errdata.KindTypeMismatch)
		}
	}

	return steps, nil
}

func (t *Tools) deleteBucket(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	err = t.withRetry(ctx, func() error {
		return client.RemoveBucket(ctx, bucket)
	})
	if err != nil {
		return nil, err
	}

	return &DeleteBucketResponse{
		Summary: fmt.Sprintf("Deleted bucket %q", bucket),
		Bucket:  bucket,
		Status:  "deleted",
	}, nil
}
