// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package s3client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"io"
	"net/http"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/signer"
)

// minio-go has no PublicAccessBlock API, so the request is built and signed
// by hand against the ?publicAccessBlock subresource.
type publicAccessBlockConfiguration struct {
	XMLName               xml.Name `xml:"PublicAccessBlockConfiguration"`
	Xmlns                 string   `xml:"xmlns,attr"`
	BlockPublicAcls       bool     `xml:"BlockPublicAcls"`
	IgnorePublicAcls      bool     `xml:"IgnorePublicAcls"`
	BlockPublicPolicy     bool     `xml:"BlockPublicPolicy"`
	RestrictPublicBuckets bool     `xml:"RestrictPublicBuckets"`
}

// SetPublicAccessBlock applies a public access block configuration to a
// bucket.
func (client *Minio) SetPublicAccessBlock(ctx context.Context, bucket string, block PublicAccessBlock) error {
	body, err := xml.Marshal(publicAccessBlockConfiguration{
		Xmlns:                 "http://s3.amazonaws.com/doc/2006-03-01/",
		BlockPublicAcls:       block.BlockPublicACLs,
		IgnorePublicAcls:      block.IgnorePublicACLs,
		BlockPublicPolicy:     block.BlockPublicPolicy,
		RestrictPublicBuckets: block.RestrictPublicBuckets,
	})
	if err != nil {
		return Error.Wrap(err)
	}

	scheme := "https"
	if client.config.InsecureDisableTLS {
		scheme = "http"
	}
	endpointURL := scheme + "://" + client.config.Endpoint + "/" + bucket + "?publicAccessBlock"

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpointURL, bytes.NewReader(body))
	if err != nil {
		return Error.Wrap(err)
	}
	req.ContentLength = int64(len(body))

	sum := sha256.Sum256(body)
	req.Header.Set("X-Amz-Content-Sha256", hex.EncodeToString(sum[:]))

	sreq := signer.SignV4(*req, client.creds.AccessKeyID, client.creds.SecretAccessKey, "", client.creds.Region)
	resp, err := http.DefaultClient.Do(sreq)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Error.Wrap(httpRespToErrorResponse(resp.StatusCode, respBody))
	}
	return nil
}

// httpRespToErrorResponse decodes an S3 error document so failures from the
// hand-signed request classify the same as SDK failures.
func httpRespToErrorResponse(statusCode int, body []byte) error {
	errResp := minio.ErrorResponse{StatusCode: statusCode}
	if err := xml.Unmarshal(body, &errResp); err != nil || errResp.Code == "" {
		errResp.Code = http.StatusText(statusCode)
		errResp.Message = string(body)
	}
	errResp.StatusCode = statusCode
	return errResp
}
