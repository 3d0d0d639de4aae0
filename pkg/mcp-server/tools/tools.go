// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

// Package tools implements the MCP tool dispatch core: a schema-driven
// registry of object-storage operations, request validation, credentialed
// backend calls with bounded retries, and normalization of every outcome
// into a uniform result envelope.
package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/common/memory"
	"storj.io/eventkit"
	"storj.io/s3-mcp/pkg/errdata"
	"storj.io/s3-mcp/pkg/s3client"
)

var (
	mon = monkit.Package()
	ek  = eventkit.Package()

	// Error is a class of tools errors.
	Error = errs.Class("tools")
)

// Tool names.
const (
	ToolListBuckets  = "list_buckets"
	ToolCreateBucket = "create_bucket"
	ToolDeleteBucket = "delete_bucket"

	ToolListObjects  = "list_objects"
	ToolGetObject    = "get_object"
	ToolPutObject    = "put_object"
	ToolDeleteObject = "delete_object"
	ToolCopyObject   = "copy_object"

	ToolGeneratePresignedURL = "generate_presigned_url"

	ToolGetBucketPolicy    = "get_bucket_policy"
	ToolSetBucketPolicy    = "set_bucket_policy"
	ToolDeleteBucketPolicy = "delete_bucket_policy"

	ToolGetLifecycleConfiguration = "get_lifecycle_configuration"
	ToolSetLifecycleConfiguration = "set_lifecycle_configuration"

	ToolGetObjectTagging = "get_object_tagging"
	ToolSetObjectTagging = "set_object_tagging"

	ToolGetBucketCors = "get_bucket_cors"
	ToolSetBucketCors = "set_bucket_cors"

	ToolUploadLocalFile     = "upload_local_file"
	ToolDownloadFileToLocal = "download_file_to_local"
)

const (
	maxListKeys          = 1000
	defaultPresignExpiry = 3600
)

// Config is a config struct for configuring Tools.
type Config struct {
	MaxRetries    int         `help:"maximum retries for transient backend faults" default:"3"`
	MaxInlineSize memory.Size `help:"maximum object size for inline get_object transfer" default:"10MiB"`
	RetryBackoff  backoffConfig
}

type backoffConfig struct {
	Min time.Duration `help:"minimum retry backoff delay" default:"100ms"`
	Max time.Duration `help:"maximum retry backoff delay" default:"5s"`
}

// Tools is the set of registered object-storage tools sharing one
// credential context and dispatch pipeline.
type Tools struct {
	config   Config
	registry *Registry
	creds    *s3client.Context
}

// New creates Tools with every operation registered.
func New(config Config, creds *s3client.Context) (*Tools, error) {
	t := &Tools{
		config:   config,
		registry: NewRegistry(),
		creds:    creds,
	}

	bucketName := Field{Name: "bucket_name", Type: TypeString, Required: true, Description: "Name of the bucket"}
	objectKey := Field{Name: "key", Type: TypeString, Required: true, Description: "Object key"}

	for _, desc := range []*Descriptor{
		{
			Name:        ToolListBuckets,
			Description: "List all buckets with their creation dates.",
			Handle:      t.listBuckets,
		},
		{
			Name:        ToolCreateBucket,
			Description: "Create a new bucket with optional security configuration (public access block, versioning, default encryption). Follow-up configuration failures are reported without rolling back the bucket.",
			Schema: Schema{Fields: []Field{
				{Name: "bucket_name", Type: TypeString, Required: true, Description: "Name of the bucket to create"},
				{Name: "region", Type: TypeString, Description: "Region to create the bucket in (defaults to the credential region)"},
				{Name: "config", Type: TypeObject, Description: "Optional configuration: blockPublicAccess{block_public_acls, ignore_public_acls, block_public_policy, restrict_public_buckets}, versioning (boolean), encryption (none, AES256, or aws:kms), kms_key_id"},
			}},
			Handle: t.createBucket,
		},
		{
			Name:        ToolDeleteBucket,
			Description: "Delete an empty bucket.",
			Schema:      Schema{Fields: []Field{bucketName}},
			Handle:      t.deleteBucket,
		},
		{
			Name:        ToolListObjects,
			Description: "List objects in a bucket with optional prefix filtering. Results are paginated by max_keys; pass the returned nextCursor as start_after to continue.",
			Schema: Schema{Fields: []Field{
				bucketName,
				{Name: "prefix", Type: TypeString, Default: "", Description: "Only list objects whose keys begin with this prefix"},
				{Name: "max_keys", Type: TypeInteger, Positive: true, Default: maxListKeys, Description: "Maximum number of objects to return"},
				{Name: "start_after", Type: TypeString, Default: "", Description: "Key to start listing after (use nextCursor from a previous response)"},
			}},
			Handle: t.listObjects,
		},
		{
			Name:        ToolGetObject,
			Description: "Read a whole object, returned base64-encoded. Objects above the inline size cap are rejected; use generate_presigned_url for those.",
			Schema:      Schema{Fields: []Field{bucketName, objectKey}},
			Handle:      t.getObject,
		},
		{
			Name:        ToolPutObject,
			Description: "Upload an object from base64-encoded body data or from a local file path. body and local_path are mutually exclusive.",
			Schema: Schema{Fields: []Field{
				bucketName, objectKey,
				{Name: "body", Type: TypeString, Description: "Base64-encoded object data"},
				{Name: "local_path", Type: TypeString, Description: "Path to a local file to upload instead of body"},
			}},
			Handle: t.putObject,
		},
		{
			Name:        ToolDeleteObject,
			Description: "Delete an object from a bucket.",
			Schema:      Schema{Fields: []Field{bucketName, objectKey}},
			Handle:      t.deleteObject,
		},
		{
			Name:        ToolCopyObject,
			Description: "Server-side copy of an object from one location to another.",
			Schema: Schema{Fields: []Field{
				{Name: "src_bucket", Type: TypeString, Required: true, Description: "Source bucket name"},
				{Name: "src_key", Type: TypeString, Required: true, Description: "Source object key"},
				{Name: "dst_bucket", Type: TypeString, Required: true, Description: "Destination bucket name"},
				{Name: "dst_key", Type: TypeString, Required: true, Description: "Destination object key"},
			}},
			Handle: t.copyObject,
		},
		{
			Name:        ToolGeneratePresignedURL,
			Description: "Generate a time-limited presigned URL for downloading (get) or uploading (put) an object.",
			Schema: Schema{Fields: []Field{
				bucketName, objectKey,
				{Name: "operation", Type: TypeString, Required: true, Enum: []string{"get", "put"}, Description: "Operation the URL grants: get or put"},
				{Name: "expires_in_seconds", Type: TypeInteger, Positive: true, Default: defaultPresignExpiry, Description: "URL validity in seconds"},
			}},
			Handle: t.generatePresignedURL,
		},
		{
			Name:        ToolGetBucketPolicy,
			Description: "Retrieve the bucket policy document. Reports configured=false when the bucket has no policy.",
			Schema:      Schema{Fields: []Field{bucketName}},
			Handle:      t.getBucketPolicy,
		},
		{
			Name:        ToolSetBucketPolicy,
			Description: "Set or replace the bucket policy from a JSON policy document.",
			Schema: Schema{Fields: []Field{
				bucketName,
				{Name: "policy", Type: TypeString, Required: true, Description: "Bucket policy as a JSON document"},
			}},
			Handle: t.setBucketPolicy,
		},
		{
			Name:        ToolDeleteBucketPolicy,
			Description: "Delete the bucket policy.",
			Schema:      Schema{Fields: []Field{bucketName}},
			Handle:      t.deleteBucketPolicy,
		},
		{
			Name:        ToolGetLifecycleConfiguration,
			Description: "Retrieve the bucket lifecycle configuration. Reports configured=false when none is set.",
			Schema:      Schema{Fields: []Field{bucketName}},
			Handle:      t.getLifecycleConfiguration,
		},
		{
			Name:        ToolSetLifecycleConfiguration,
			Description: "Set the bucket lifecycle configuration from a list of lifecycle rules.",
			Schema: Schema{Fields: []Field{
				bucketName,
				{Name: "rules", Type: TypeArray, Required: true, Description: "Lifecycle rules as S3 lifecycle rule documents"},
			}},
			Handle: t.setLifecycleConfiguration,
		},
		{
			Name:        ToolGetObjectTagging,
			Description: "Get the tag set of an object.",
			Schema:      Schema{Fields: []Field{bucketName, objectKey}},
			Handle:      t.getObjectTagging,
		},
		{
			Name:        ToolSetObjectTagging,
			Description: "Replace the tag set of an object with key-value string pairs.",
			Schema: Schema{Fields: []Field{
				bucketName, objectKey,
				{Name: "tags", Type: TypeObject, Required: true, Description: "Tags as key-value string pairs"},
			}},
			Handle: t.setObjectTagging,
		},
		{
			Name:        ToolGetBucketCors,
			Description: "Retrieve the bucket CORS configuration. Reports configured=false when none is set.",
			Schema:      Schema{Fields: []Field{bucketName}},
			Handle:      t.getBucketCors,
		},
		{
			Name:        ToolSetBucketCors,
			Description: "Set the bucket CORS configuration from a list of CORS rules.",
			Schema: Schema{Fields: []Field{
				bucketName,
				{Name: "rules", Type: TypeArray, Required: true, Description: "CORS rules as S3 CORS rule documents"},
			}},
			Handle: t.setBucketCors,
		},
		{
			Name:        ToolUploadLocalFile,
			Description: "Upload a local file to a bucket. The file is streamed, so it may exceed the inline size cap.",
			Schema: Schema{Fields: []Field{
				bucketName, objectKey,
				{Name: "local_path", Type: TypeString, Required: true, Description: "Path to the local file to upload"},
			}},
			Handle: t.uploadLocalFile,
		},
		{
			Name:        ToolDownloadFileToLocal,
			Description: "Download an object to a local file path. The parent directory must exist and be writable.",
			Schema: Schema{Fields: []Field{
				bucketName, objectKey,
				{Name: "local_path", Type: TypeString, Required: true, Description: "Local path to write the downloaded object to"},
			}},
			Handle: t.downloadFileToLocal,
		},
	} {
		if err := t.registry.Register(desc); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Registry returns the tool registry.
func (t *Tools) Registry() *Registry {
	return t.registry
}

// Add adds the tools to an MCP server.
func (t *Tools) Add(mcpServer *server.MCPServer) {
	for _, desc := range t.registry.All() {
		name := desc.Name
		mcpServer.AddTool(desc.MCPTool(), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			envelope := t.Dispatch(ctx, name, request.GetArguments())
			data, err := json.Marshal(envelope)
			if err != nil {
				return mcp.NewToolResultError("failed to marshal result: " + err.Error()), nil
			}
			if envelope.Status == StatusError {
				return mcp.NewToolResultError(string(data)), nil
			}
			return mcp.NewToolResultText(string(data)), nil
		})
	}
}

// Dispatch is the single entry point for a tool invocation: lookup,
// validation, client acquisition, handler call, and normalization, each
// failing closed into an error envelope. A fault never escapes
// unclassified.
func (t *Tools) Dispatch(ctx context.Context, name string, raw map[string]any) (envelope *Envelope) {
	var err error
	defer mon.Task()(&ctx)(&err)

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = Error.New("panic in tool %q: %v", name, rec)
			envelope = errorEnvelope(err)
		}

		kind := ""
		if envelope.Error != nil {
			kind = envelope.Error.Kind
		}
		ek.Event("tool-call",
			eventkit.String("tool", name),
			eventkit.String("status", envelope.Status),
			eventkit.String("error-kind", kind),
			eventkit.Duration("duration", time.Since(start)))
	}()

	desc, err := t.registry.Lookup(name)
	if err != nil {
		return errorEnvelope(err)
	}

	args, err := desc.Schema.Validate(raw)
	if err != nil {
		return errorEnvelope(err)
	}

	client, err := t.creds.Client(ctx)
	if err != nil {
		return errorEnvelope(err)
	}

	payload, err := desc.Handle(ctx, client, args)
	if err != nil {
		if Classify(err) == errdata.KindTimeout && ctx.Err() == nil {
			// the transport failed while the request context is still
			// live: rebuild the shared handle before the next dispatch.
			t.creds.Invalidate()
		}
		return errorEnvelope(err)
	}

	return successEnvelope(payload)
}
