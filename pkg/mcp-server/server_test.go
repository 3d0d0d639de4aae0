// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package mcpserver_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/common/errs2"
	"storj.io/common/memory"
	"storj.io/common/testcontext"
	"storj.io/s3-mcp/pkg/errdata"
	mcpclient "storj.io/s3-mcp/pkg/mcp-client"
	mcpserver "storj.io/s3-mcp/pkg/mcp-server"
	"storj.io/s3-mcp/pkg/s3client"
	"storj.io/s3-mcp/pkg/s3client/s3clienttest"
)

func runTestServer(t *testing.T, ctx *testcontext.Context) (*mcpserver.Peer, *s3clienttest.Fake) {
	t.Setenv(s3client.EnvAccessKeyID, "AKIATEST")
	t.Setenv(s3client.EnvSecretAccessKey, "secret")
	t.Setenv(s3client.EnvRegion, "us-east-1")

	fake := s3clienttest.New()
	creds := s3client.NewContextWithBuilder(s3client.Config{},
		func(s3client.Config, s3client.Credentials) (s3client.Client, error) {
			return fake, nil
		})

	var config mcpserver.Config
	config.Address = "127.0.0.1:0"
	config.AddressTLS = "127.0.0.1:0"
	config.InsecureDisableTLS = true
	config.CORSOrigins = "*"
	config.IdleTimeout = time.Minute
	config.Tools.MaxRetries = 2
	config.Tools.MaxInlineSize = 10 * memory.MiB
	config.Tools.RetryBackoff.Min = time.Millisecond
	config.Tools.RetryBackoff.Max = 10 * time.Millisecond

	peer, err := mcpserver.NewWithCredentials(zaptest.NewLogger(t), config, creds)
	require.NoError(t, err)

	serverCtx, serverCancel := context.WithCancel(context.Background())
	ctx.Go(func() error {
		return errs2.IgnoreCanceled(peer.Run(serverCtx))
	})
	t.Cleanup(func() {
		require.NoError(t, peer.Close())
		serverCancel()
	})

	return peer, fake
}

func TestServerEndToEnd(t *testing.T) {
	ctx := testcontext.New(t)

	peer, _ := runTestServer(t, ctx)

	client, err := mcpclient.New("http://"+peer.Address()+"/mcp", nil)
	require.NoError(t, err)

	buckets, err := client.ListBuckets(ctx)
	require.NoError(t, err)
	require.Zero(t, buckets.Count)

	created, err := client.CreateBucket(ctx, mcpclient.CreateBucketRequest{
		BucketName: "photos",
		Config:     map[string]any{"versioning": true},
	})
	require.NoError(t, err)
	require.Equal(t, "created", created.Status)
	require.Equal(t, []string{"versioning"}, created.AppliedConfig)

	body := base64.StdEncoding.EncodeToString([]byte("hello over mcp"))
	put, err := client.PutObject(ctx, mcpclient.PutObjectRequest{
		BucketName: "photos",
		Key:        "greeting.txt",
		Body:       body,
	})
	require.NoError(t, err)
	require.Equal(t, int64(14), put.Size)

	got, err := client.GetObject(ctx, mcpclient.GetObjectRequest{
		BucketName: "photos",
		Key:        "greeting.txt",
	})
	require.NoError(t, err)
	require.Equal(t, body, got.Data)
	require.Equal(t, "base64", got.Encoding)

	listed, err := client.ListObjects(ctx, mcpclient.ListObjectsRequest{BucketName: "photos"})
	require.NoError(t, err)
	require.Equal(t, 1, listed.Count)
	require.Equal(t, "greeting.txt", listed.Objects[0].Key)

	presigned, err := client.GeneratePresignedURL(ctx, mcpclient.GeneratePresignedURLRequest{
		BucketName: "photos",
		Key:        "greeting.txt",
		Operation:  "get",
	})
	require.NoError(t, err)
	require.NotEmpty(t, presigned.URL)
	require.Equal(t, 3600, presigned.ExpiresIn)
}

func TestServerErrorEnvelope(t *testing.T) {
	ctx := testcontext.New(t)

	peer, _ := runTestServer(t, ctx)

	client, err := mcpclient.New("http://"+peer.Address()+"/mcp", nil)
	require.NoError(t, err)

	_, err = client.GetObject(ctx, mcpclient.GetObjectRequest{
		BucketName: "nope",
		Key:        "a.txt",
	})
	require.Error(t, err)

	var toolErr *mcpclient.ToolError
	require.ErrorAs(t, err, &toolErr)
	require.Equal(t, string(errdata.KindNotFound), toolErr.Kind)
	require.False(t, toolErr.Retryable)
	require.NotEmpty(t, toolErr.Message)
}

func TestServerHealthEndpoint(t *testing.T) {
	ctx := testcontext.New(t)

	peer, _ := runTestServer(t, ctx)

	resp, err := http.Get("http://" + peer.Address() + "/health")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
