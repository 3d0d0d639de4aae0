// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package s3client_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/common/testcontext"
	"storj.io/s3-mcp/pkg/errdata"
	"storj.io/s3-mcp/pkg/s3client"
	"storj.io/s3-mcp/pkg/s3client/s3clienttest"
)

func setTestCredentials(t *testing.T) {
	t.Setenv(s3client.EnvAccessKeyID, "AKIATEST")
	t.Setenv(s3client.EnvSecretAccessKey, "secret")
	t.Setenv(s3client.EnvRegion, "us-east-1")
}

func TestResolveCredentials(t *testing.T) {
	setTestCredentials(t)

	creds, err := s3client.ResolveCredentials()
	require.NoError(t, err)
	require.Equal(t, "AKIATEST", creds.AccessKeyID)
	require.Equal(t, "secret", creds.SecretAccessKey)
	require.Equal(t, "us-east-1", creds.Region)
}

func TestResolveCredentialsMissing(t *testing.T) {
	for _, missing := range []string{
		s3client.EnvAccessKeyID,
		s3client.EnvSecretAccessKey,
		s3client.EnvRegion,
	} {
		setTestCredentials(t)
		t.Setenv(missing, "")

		_, err := s3client.ResolveCredentials()
		require.Error(t, err)
		require.Equal(t, errdata.KindMissingCredentials, errdata.GetKind(err, ""))
		require.Contains(t, err.Error(), missing)
	}
}

func TestContextBuildsClientOnce(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	setTestCredentials(t)

	builds := 0
	credsCtx := s3client.NewContextWithBuilder(s3client.Config{},
		func(config s3client.Config, creds s3client.Credentials) (s3client.Client, error) {
			builds++
			return s3clienttest.New(), nil
		})

	first, err := credsCtx.Client(ctx)
	require.NoError(t, err)
	second, err := credsCtx.Client(ctx)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, builds)
}

func TestContextInvalidateRebuilds(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	setTestCredentials(t)

	builds := 0
	credsCtx := s3client.NewContextWithBuilder(s3client.Config{},
		func(config s3client.Config, creds s3client.Credentials) (s3client.Client, error) {
			builds++
			return s3clienttest.New(), nil
		})

	_, err := credsCtx.Client(ctx)
	require.NoError(t, err)

	credsCtx.Invalidate()

	_, err = credsCtx.Client(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, builds)
}

func TestContextMissingCredentials(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	setTestCredentials(t)
	t.Setenv(s3client.EnvAccessKeyID, "")

	credsCtx := s3client.NewContextWithBuilder(s3client.Config{},
		func(config s3client.Config, creds s3client.Credentials) (s3client.Client, error) {
			t.Fatal("builder must not run without credentials")
			return nil, nil
		})

	_, err := credsCtx.Client(ctx)
	require.Error(t, err)
	require.Equal(t, errdata.KindMissingCredentials, errdata.GetKind(err, ""))
}
