// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package s3client

import (
	"os"

	"storj.io/s3-mcp/pkg/errdata"
)

// Environment variables holding the backend credentials. They are read
// lazily, on the first dispatch that needs a client, so the process can
// start and advertise tools without them.
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvRegion          = "AWS_REGION"
)

// Config configures the S3 backend client.
type Config struct {
	Endpoint           string `help:"S3 API endpoint to connect to" default:"s3.amazonaws.com"`
	InsecureDisableTLS bool   `help:"Connect to the endpoint without TLS" releaseDefault:"false" devDefault:"true"`
}

// Credentials hold the resolved backend credentials. They are immutable for
// the process lifetime.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// ResolveCredentials reads credentials from the environment. All three
// values are required.
func ResolveCredentials() (Credentials, error) {
	creds := Credentials{
		AccessKeyID:     os.Getenv(EnvAccessKeyID),
		SecretAccessKey: os.Getenv(EnvSecretAccessKey),
		Region:          os.Getenv(EnvRegion),
	}

	for _, required := range []struct {
		name, value string
	}{
		{EnvAccessKeyID, creds.AccessKeyID},
		{EnvSecretAccessKey, creds.SecretAccessKey},
		{EnvRegion, creds.Region},
	} {
		if required.value == "" {
			return Credentials{}, errdata.WithKind(
				Error.New("missing %s environment variable", required.name),
				errdata.KindMissingCredentials)
		}
	}

	return creds, nil
}
