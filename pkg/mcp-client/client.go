// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

// Package mcpclient is a typed client for the object-storage MCP tools.
package mcpclient

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/zeebo/errs"

	"storj.io/s3-mcp/pkg/mcp-server/tools"
)

// Error is a class of mcp-client errors.
var Error = errs.Class("mcp-client")

// ToolError is a classified error envelope returned by the server.
type ToolError struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return e.Kind + ": " + e.Message
}

// Client is used to interact with MCP tools.
type Client struct {
	c *client.Client
}

// New creates a new Client.
func New(serverURL string, headers map[string]string) (*Client, error) {
	transport, err := transport.NewStreamableHTTP(
		serverURL,
		transport.WithHTTPHeaders(headers),
	)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	c := client.NewClient(transport)

	_, err = c.Initialize(context.Background(), mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		},
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return &Client{c: c}, nil
}

// ListBuckets calls the list_buckets tool to retrieve a list of buckets.
func (c *Client) ListBuckets(ctx context.Context) (*tools.ListBucketsResponse, error) {
	var resp tools.ListBucketsResponse
	if err := c.callTool(ctx, tools.ToolListBuckets, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBucketRequest is a type of request to create a new bucket.
type CreateBucketRequest struct {
	BucketName string         `json:"bucket_name"`
	Region     string         `json:"region,omitempty"`
	Config     map[string]any `json:"config,omitempty"`
}

// CreateBucket calls the create_bucket tool to create a new bucket.
func (c *Client) CreateBucket(ctx context.Context, req CreateBucketRequest) (*tools.CreateBucketResponse, error) {
	var resp tools.CreateBucketResponse
	if err := c.callTool(ctx, tools.ToolCreateBucket, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteBucketRequest is a type of request to delete a bucket.
type DeleteBucketRequest struct {
	BucketName string `json:"bucket_name"`
}

// DeleteBucket calls the delete_bucket tool to delete an empty bucket.
func (c *Client) DeleteBucket(ctx context.Context, req DeleteBucketRequest) (*tools.DeleteBucketResponse, error) {
	var resp tools.DeleteBucketResponse
	if err := c.callTool(ctx, tools.ToolDeleteBucket, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListObjectsRequest is a type of request to list objects in a bucket.
type ListObjectsRequest struct {
	BucketName string `json:"bucket_name"`
	Prefix     string `json:"prefix,omitempty"`
	MaxKeys    int    `json:"max_keys,omitempty"`
	StartAfter string `json:"start_after,omitempty"`
}

// ListObjects calls the list_objects tool to retrieve a list of objects in a bucket.
func (c *Client) ListObjects(ctx context.Context, req ListObjectsRequest) (*tools.ListObjectsResponse, error) {
	var resp tools.ListObjectsResponse
	if err := c.callTool(ctx, tools.ToolListObjects, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetObjectRequest is a type of request to read an object.
type GetObjectRequest struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
}

// GetObject calls the get_object tool to read a whole object.
func (c *Client) GetObject(ctx context.Context, req GetObjectRequest) (*tools.GetObjectResponse, error) {
	var resp tools.GetObjectResponse
	if err := c.callTool(ctx, tools.ToolGetObject, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PutObjectRequest is a type of request to upload an object.
type PutObjectRequest struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
	Body       string `json:"body,omitempty"`
	LocalPath  string `json:"local_path,omitempty"`
}

// PutObject calls the put_object tool to upload an object.
func (c *Client) PutObject(ctx context.Context, req PutObjectRequest) (*tools.PutObjectResponse, error) {
	var resp tools.PutObjectResponse
	if err := c.callTool(ctx, tools.ToolPutObject, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteObjectRequest is a type of request to delete an object.
type DeleteObjectRequest struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
}

// DeleteObject calls the delete_object tool to delete an object.
func (c *Client) DeleteObject(ctx context.Context, req DeleteObjectRequest) (*tools.DeleteObjectResponse, error) {
	var resp tools.DeleteObjectResponse
	if err := c.callTool(ctx, tools.ToolDeleteObject, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CopyObjectRequest is a type of request to copy an object from one location to another.
type CopyObjectRequest struct {
	SrcBucket string `json:"src_bucket"`
	SrcKey    string `json:"src_key"`
	DstBucket string `json:"dst_bucket"`
	DstKey    string `json:"dst_key"`
}

// CopyObject calls the copy_object tool to copy an object.
func (c *Client) CopyObject(ctx context.Context, req CopyObjectRequest) (*tools.CopyObjectResponse, error) {
	var resp tools.CopyObjectResponse
	if err := c.callTool(ctx, tools.ToolCopyObject, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GeneratePresignedURLRequest is a type of request to generate a presigned URL.
type GeneratePresignedURLRequest struct {
	BucketName       string `json:"bucket_name"`
	Key              string `json:"key"`
	Operation        string `json:"operation"`
	ExpiresInSeconds int    `json:"expires_in_seconds,omitempty"`
}

// GeneratePresignedURL calls the generate_presigned_url tool to create a
// time-limited URL for an object.
func (c *Client) GeneratePresignedURL(ctx context.Context, req GeneratePresignedURLRequest) (*tools.PresignedURLResponse, error) {
	var resp tools.PresignedURLResponse
	if err := c.callTool(ctx, tools.ToolGeneratePresignedURL, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBucketPolicyRequest is a type of request to retrieve a bucket policy.
type GetBucketPolicyRequest struct {
	BucketName string `json:"bucket_name"`
}

// GetBucketPolicy calls the get_bucket_policy tool to retrieve the bucket policy.
func (c *Client) GetBucketPolicy(ctx context.Context, req GetBucketPolicyRequest) (*tools.BucketPolicyResponse, error) {
	var resp tools.BucketPolicyResponse
	if err := c.callTool(ctx, tools.ToolGetBucketPolicy, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetBucketPolicyRequest is a type of request to set a bucket policy.
type SetBucketPolicyRequest struct {
	BucketName string `json:"bucket_name"`
	Policy     string `json:"policy"`
}

// SetBucketPolicy calls the set_bucket_policy tool to set the bucket policy.
func (c *Client) SetBucketPolicy(ctx context.Context, req SetBucketPolicyRequest) (*tools.SetBucketPolicyResponse, error) {
	var resp tools.SetBucketPolicyResponse
	if err := c.callTool(ctx, tools.ToolSetBucketPolicy, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteBucketPolicyRequest is a type of request to delete a bucket policy.
type DeleteBucketPolicyRequest struct {
	BucketName string `json:"bucket_name"`
}

// DeleteBucketPolicy calls the delete_bucket_policy tool to delete the bucket policy.
func (c *Client) DeleteBucketPolicy(ctx context.Context, req DeleteBucketPolicyRequest) (*tools.SetBucketPolicyResponse, error) {
	var resp tools.SetBucketPolicyResponse
	if err := c.callTool(ctx, tools.ToolDeleteBucketPolicy, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetLifecycleConfigurationRequest is a type of request to retrieve a bucket
// lifecycle configuration.
type GetLifecycleConfigurationRequest struct {
	BucketName string `json:"bucket_name"`
}

// GetLifecycleConfiguration calls the get_lifecycle_configuration tool.
func (c *Client) GetLifecycleConfiguration(ctx context.Context, req GetLifecycleConfigurationRequest) (*tools.LifecycleResponse, error) {
	var resp tools.LifecycleResponse
	if err := c.callTool(ctx, tools.ToolGetLifecycleConfiguration, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetLifecycleConfigurationRequest is a type of request to set a bucket
// lifecycle configuration.
type SetLifecycleConfigurationRequest struct {
	BucketName string `json:"bucket_name"`
	Rules      []any  `json:"rules"`
}

// SetLifecycleConfiguration calls the set_lifecycle_configuration tool.
func (c *Client) SetLifecycleConfiguration(ctx context.Context, req SetLifecycleConfigurationRequest) (*tools.SetLifecycleResponse, error) {
	var resp tools.SetLifecycleResponse
	if err := c.callTool(ctx, tools.ToolSetLifecycleConfiguration, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetObjectTaggingRequest is a type of request to retrieve an object's tags.
type GetObjectTaggingRequest struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
}

// GetObjectTagging calls the get_object_tagging tool to retrieve an object's tag set.
func (c *Client) GetObjectTagging(ctx context.Context, req GetObjectTaggingRequest) (*tools.ObjectTaggingResponse, error) {
	var resp tools.ObjectTaggingResponse
	if err := c.callTool(ctx, tools.ToolGetObjectTagging, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetObjectTaggingRequest is a type of request to replace an object's tags.
type SetObjectTaggingRequest struct {
	BucketName string            `json:"bucket_name"`
	Key        string            `json:"key"`
	Tags       map[string]string `json:"tags"`
}

// SetObjectTagging calls the set_object_tagging tool to replace an object's tag set.
func (c *Client) SetObjectTagging(ctx context.Context, req SetObjectTaggingRequest) (*tools.SetObjectTaggingResponse, error) {
	var resp tools.SetObjectTaggingResponse
	if err := c.callTool(ctx, tools.ToolSetObjectTagging, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBucketCorsRequest is a type of request to retrieve a bucket CORS
// configuration.
type GetBucketCorsRequest struct {
	BucketName string `json:"bucket_name"`
}

// GetBucketCors calls the get_bucket_cors tool.
func (c *Client) GetBucketCors(ctx context.Context, req GetBucketCorsRequest) (*tools.BucketCorsResponse, error) {
	var resp tools.BucketCorsResponse
	if err := c.callTool(ctx, tools.ToolGetBucketCors, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetBucketCorsRequest is a type of request to set a bucket CORS configuration.
type SetBucketCorsRequest struct {
	BucketName string `json:"bucket_name"`
	Rules      []any  `json:"rules"`
}

// SetBucketCors calls the set_bucket_cors tool.
func (c *Client) SetBucketCors(ctx context.Context, req SetBucketCorsRequest) (*tools.SetBucketCorsResponse, error) {
	var resp tools.SetBucketCorsResponse
	if err := c.callTool(ctx, tools.ToolSetBucketCors, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadLocalFileRequest is a type of request to upload a local file.
type UploadLocalFileRequest struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
	LocalPath  string `json:"local_path"`
}

// UploadLocalFile calls the upload_local_file tool to stream a local file to a bucket.
func (c *Client) UploadLocalFile(ctx context.Context, req UploadLocalFileRequest) (*tools.UploadFileResponse, error) {
	var resp tools.UploadFileResponse
	if err := c.callTool(ctx, tools.ToolUploadLocalFile, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DownloadFileToLocalRequest is a type of request to download an object to a
// local file.
type DownloadFileToLocalRequest struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
	LocalPath  string `json:"local_path"`
}

// DownloadFileToLocal calls the download_file_to_local tool to stream an
// object to a local file.
func (c *Client) DownloadFileToLocal(ctx context.Context, req DownloadFileToLocalRequest) (*tools.DownloadFileResponse, error) {
	var resp tools.DownloadFileResponse
	if err := c.callTool(ctx, tools.ToolDownloadFileToLocal, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// callTool invokes a tool and decodes the result envelope. Error envelopes
// are returned as *ToolError.
func (c *Client) callTool(ctx context.Context, name string, req, payload any) error {
	args := make(map[string]any)
	jsonData, err := json.Marshal(req)
	if err != nil {
		return Error.Wrap(err)
	}
	if err := json.Unmarshal(jsonData, &args); err != nil {
		return Error.Wrap(err)
	}

	r, err := c.c.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return Error.Wrap(err)
	}

	var message string
	if len(r.Content) > 0 {
		if text, ok := r.Content[0].(mcp.TextContent); ok {
			message = text.Text
		}
	}

	var envelope struct {
		Status  string          `json:"status"`
		Payload json.RawMessage `json:"payload"`
		Error   *ToolError      `json:"error"`
	}
	if err := json.Unmarshal([]byte(message), &envelope); err != nil {
		if r.IsError {
			return Error.New("tool call failed: %s", message)
		}
		return Error.New("failed to unmarshal response: %w", err)
	}

	if envelope.Status == tools.StatusError {
		if envelope.Error == nil {
			return Error.New("tool call failed: %s", message)
		}
		return envelope.Error
	}

	if len(envelope.Payload) > 0 {
		if err := json.Unmarshal(envelope.Payload, payload); err != nil {
			return Error.New("failed to unmarshal payload: %w", err)
		}
	}

	return nil
}
