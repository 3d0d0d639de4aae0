// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7/pkg/cors"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"storj.io/s3-mcp/pkg/errdata"
	"storj.io/s3-mcp/pkg/s3client"
)

func (t *Tools) getBucketPolicy(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")

	var policy string
	err = t.withRetry(ctx, func() error {
		policy, err = client.GetBucketPolicy(ctx, bucket)
		return err
	})
	if err != nil {
		if isNotConfigured(err) {
			return &BucketPolicyResponse{Bucket: bucket, Configured: false}, nil
		}
		return nil, err
	}
	if policy == "" {
		return &BucketPolicyResponse{Bucket: bucket, Configured: false}, nil
	}

	return &BucketPolicyResponse{Bucket: bucket, Configured: true, Policy: policy}, nil
}

func (t *Tools) setBucketPolicy(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	policy := args.String("policy")

	if !json.Valid([]byte(policy)) {
		return nil, errdata.WithKind(
			Error.New("policy must be a valid JSON document"),
			errdata.KindTypeMismatch)
	}

	err = t.withRetry(ctx, func() error {
		return client.SetBucketPolicy(ctx, bucket, policy)
	})
	if err != nil {
		return nil, err
	}

	return &SetBucketPolicyResponse{
		Summary: fmt.Sprintf("Set policy on bucket %q", bucket),
		Bucket:  bucket,
		Status:  "updated",
	}, nil
}

func (t *Tools) deleteBucketPolicy(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	err = t.withRetry(ctx, func() error {
		return client.DeleteBucketPolicy(ctx, bucket)
	})
	if err != nil {
		return nil, err
	}

	return &SetBucketPolicyResponse{
		Summary: fmt.Sprintf("Deleted policy from bucket %q", bucket),
		Bucket:  bucket,
		Status:  "deleted",
	}, nil
}

func (t *Tools) getLifecycleConfiguration(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")

	var config *lifecycle.Configuration
	err = t.withRetry(ctx, func() error {
		config, err = client.GetBucketLifecycle(ctx, bucket)
		return err
	})
	if err != nil {
		if isNotConfigured(err) {
			return &LifecycleResponse{Bucket: bucket, Configured: false}, nil
		}
		return nil, err
	}
	if config == nil || len(config.Rules) == 0 {
		return &LifecycleResponse{Bucket: bucket, Configured: false}, nil
	}

	rules, err := toRawRules(config.Rules)
	if err != nil {
		return nil, err
	}

	return &LifecycleResponse{Bucket: bucket, Configured: true, Rules: rules}, nil
}

func (t *Tools) setLifecycleConfiguration(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	raw := args.Array("rules")
	if len(raw) == 0 {
		return nil, errdata.WithKind(
			Error.New("rules must contain at least one lifecycle rule"),
			errdata.KindTypeMismatch)
	}

	var rules []lifecycle.Rule
	if err := reshape(raw, &rules); err != nil {
		return nil, errdata.WithKind(
			Error.New("rules are not valid lifecycle rules: %v", err),
			errdata.KindTypeMismatch)
	}

	err = t.withRetry(ctx, func() error {
		return client.SetBucketLifecycle(ctx, bucket, &lifecycle.Configuration{Rules: rules})
	})
	if err != nil {
		return nil, err
	}

	return &SetLifecycleResponse{
		Summary:   fmt.Sprintf("Set %d lifecycle rules on bucket %q", len(rules), bucket),
		Bucket:    bucket,
		RuleCount: len(rules),
		Status:    "updated",
	}, nil
}

func (t *Tools) getObjectTagging(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	key := args.String("key")

	var tagSet map[string]string
	err = t.withRetry(ctx, func() error {
		tagSet, err = client.GetObjectTagging(ctx, bucket, key)
		return err
	})
	if err != nil {
		if isNotConfigured(err) {
			tagSet = map[string]string{}
		} else {
			return nil, err
		}
	}
	if tagSet == nil {
		tagSet = map[string]string{}
	}

	return &ObjectTaggingResponse{
		Bucket: bucket,
		Key:    key,
		Tags:   tagSet,
		Count:  len(tagSet),
	}, nil
}

func (t *Tools) setObjectTagging(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	key := args.String("key")
	raw := args.Object("tags")

	tagSet := make(map[string]string, len(raw))
	for name, value := range raw {
		s, ok := value.(string)
		if !ok {
			return nil, errTypeMismatch("tags."+name, "string", value)
		}
		tagSet[name] = s
	}

	err = t.withRetry(ctx, func() error {
		return client.SetObjectTagging(ctx, bucket, key, tagSet)
	})
	if err != nil {
		return nil, err
	}

	return &SetObjectTaggingResponse{
		Summary: fmt.Sprintf("Set %d tags on %s/%s", len(tagSet), bucket, key),
		Bucket:  bucket,
		Key:     key,
		Count:   len(tagSet),
		Status:  "updated",
	}, nil
}

func (t *Tools) getBucketCors(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")

	var config *cors.Config
	err = t.withRetry(ctx, func() error {
		config, err = client.GetBucketCors(ctx, bucket)
		return err
	})
	if err != nil {
		if isNotConfigured(err) {
			return &BucketCorsResponse{Bucket: bucket, Configured: false}, nil
		}
		return nil, err
	}
	if config == nil || len(config.CORSRules) == 0 {
		return &BucketCorsResponse{Bucket: bucket, Configured: false}, nil
	}

	rules, err := toRawRules(config.CORSRules)
	if err != nil {
		return nil, err
	}

	return &BucketCorsResponse{Bucket: bucket, Configured: true, Rules: rules}, nil
}

func (t *Tools) setBucketCors(ctx context.Context, client s3client.Client, args Args) (_ any, err error) {
	defer mon.Task()(&ctx)(&err)

	bucket := args.String("bucket_name")
	raw := args.Array("rules")
	if len(raw) == 0 {
		return nil, errdata.WithKind(
			Error.New("rules must contain at least one CORS rule"),
			errdata.KindTypeMismatch)
	}

	var rules []cors.Rule
	if err := reshape(raw, &rules); err != nil {
		return nil, errdata.WithKind(
			Error.New("rules are not valid CORS rules: %v", err),
			errdata.KindTypeMismatch)
	}

	err = t.withRetry(ctx, func() error {
		return client.SetBucketCors(ctx, bucket, cors.NewConfig(rules))
	})
	if err != nil {
		return nil, err
	}

	return &SetBucketCorsResponse{
		Summary:   fmt.Sprintf("Set %d CORS rules on bucket %q", len(rules), bucket),
		Bucket:    bucket,
		RuleCount: len(rules),
		Status:    "updated",
	}, nil
}

// reshape converts loosely-typed JSON values into a concrete document type by
// round-tripping through encoding/json.
func reshape(from, to any) error {
	data, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, to)
}

// toRawRules renders typed rule documents back into generic JSON values for
// the response payload.
func toRawRules(rules any) ([]any, error) {
	data, err := json.Marshal(rules)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Error.Wrap(err)
	}
	return raw, nil
}
