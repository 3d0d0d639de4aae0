// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package tools

// BucketItem is one bucket in a ListBucketsResponse.
type BucketItem struct {
	Name    string `json:"name"`
	Created string `json:"created"`
}

// ListBucketsResponse is the payload of list_buckets.
type ListBucketsResponse struct {
	Summary string       `json:"summary"`
	Buckets []BucketItem `json:"buckets"`
	Count   int          `json:"count"`
}

// ConfigFailure records one follow-up configuration step that failed after
// bucket creation succeeded.
type ConfigFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// CreateBucketResponse is the payload of create_bucket.
type CreateBucketResponse struct {
	Summary       string          `json:"summary"`
	Bucket        string          `json:"bucket"`
	Region        string          `json:"region"`
	Status        string          `json:"status"`
	AppliedConfig []string        `json:"appliedConfig,omitempty"`
	FailedConfig  []ConfigFailure `json:"failedConfig,omitempty"`
}

// DeleteBucketResponse is the payload of delete_bucket.
type DeleteBucketResponse struct {
	Summary string `json:"summary"`
	Bucket  string `json:"bucket"`
	Status  string `json:"status"`
}

// ObjectItem is one object in a ListObjectsResponse.
type ObjectItem struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// ListObjectsResponse is the payload of list_objects.
type ListObjectsResponse struct {
	Summary    string       `json:"summary"`
	Bucket     string       `json:"bucket"`
	Prefix     string       `json:"prefix,omitempty"`
	Objects    []ObjectItem `json:"objects"`
	Count      int          `json:"count"`
	HasMore    bool         `json:"hasMore"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// GetObjectResponse is the payload of get_object.
type GetObjectResponse struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Data     string `json:"data"`
	Size     int    `json:"size"`
	Encoding string `json:"encoding"`
}

// PutObjectResponse is the payload of put_object.
type PutObjectResponse struct {
	Summary string `json:"summary"`
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Size    int64  `json:"size"`
	Status  string `json:"status"`
}

// DeleteObjectResponse is the payload of delete_object.
type DeleteObjectResponse struct {
	Summary string `json:"summary"`
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Status  string `json:"status"`
}

// CopyObjectResponse is the payload of copy_object.
type CopyObjectResponse struct {
	Summary   string `json:"summary"`
	SrcBucket string `json:"srcBucket"`
	SrcKey    string `json:"srcKey"`
	DstBucket string `json:"dstBucket"`
	DstKey    string `json:"dstKey"`
	ETag      string `json:"etag,omitempty"`
	Status    string `json:"status"`
}

// PresignedURLResponse is the payload of generate_presigned_url.
type PresignedURLResponse struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	Operation string `json:"operation"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

// BucketPolicyResponse is the payload of get_bucket_policy.
type BucketPolicyResponse struct {
	Bucket     string `json:"bucket"`
	Configured bool   `json:"configured"`
	Policy     string `json:"policy,omitempty"`
}

// SetBucketPolicyResponse is the payload of set_bucket_policy and
// delete_bucket_policy.
type SetBucketPolicyResponse struct {
	Summary string `json:"summary"`
	Bucket  string `json:"bucket"`
	Status  string `json:"status"`
}

// LifecycleResponse is the payload of get_lifecycle_configuration.
type LifecycleResponse struct {
	Bucket     string `json:"bucket"`
	Configured bool   `json:"configured"`
	Rules      []any  `json:"rules,omitempty"`
}

// SetLifecycleResponse is the payload of set_lifecycle_configuration.
type SetLifecycleResponse struct {
	Summary   string `json:"summary"`
	Bucket    string `json:"bucket"`
	RuleCount int    `json:"ruleCount"`
	Status    string `json:"status"`
}

// ObjectTaggingResponse is the payload of get_object_tagging.
type ObjectTaggingResponse struct {
	Bucket string            `json:"bucket"`
	Key    string            `json:"key"`
	Tags   map[string]string `json:"tags"`
	Count  int               `json:"count"`
}

// SetObjectTaggingResponse is the payload of set_object_tagging.
type SetObjectTaggingResponse struct {
	Summary string `json:"summary"`
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Count   int    `json:"count"`
	Status  string `json:"status"`
}

// BucketCorsResponse is the payload of get_bucket_cors.
type BucketCorsResponse struct {
	Bucket     string `json:"bucket"`
	Configured bool   `json:"configured"`
	Rules      []any  `json:"rules,omitempty"`
}

// SetBucketCorsResponse is the payload of set_bucket_cors.
type SetBucketCorsResponse struct {
	Summary   string `json:"summary"`
	Bucket    string `json:"bucket"`
	RuleCount int    `json:"ruleCount"`
	Status    string `json:"status"`
}

// UploadFileResponse is the payload of upload_local_file.
type UploadFileResponse struct {
	Summary   string `json:"summary"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	LocalPath string `json:"localPath"`
	Size      int64  `json:"size"`
	Status    string `json:"status"`
}

// DownloadFileResponse is the payload of download_file_to_local.
type DownloadFileResponse struct {
	Summary   string `json:"summary"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	LocalPath string `json:"localPath"`
	Status    string `json:"status"`
}
