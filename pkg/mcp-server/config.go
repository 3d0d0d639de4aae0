// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

package mcpserver

import (
	"time"

	"storj.io/s3-mcp/pkg/mcp-server/tools"
	"storj.io/s3-mcp/pkg/s3client"
)

// Config configures the MCP server.
type Config struct {
	Address            string        `help:"Address to serve HTTP requests" default:":20110"`
	AddressTLS         string        `help:"Address to serve TLS requests" default:":20111"`
	InsecureDisableTLS bool          `help:"Listen using insecure connections only" releaseDefault:"false" devDefault:"true"`
	CertFile           string        `help:"Path to a TLS certificate file" default:""`
	KeyFile            string        `help:"Path to a TLS key file" default:""`
	LetsEncrypt        bool          `help:"Use Let's Encrypt to obtain a TLS certificate" default:"false"`
	PublicURL          string        `help:"Public URL of this server, used when obtaining a Let's Encrypt certificate" default:""`
	ConfigDir          string        `help:"Directory for storing Let's Encrypt certificate cache data" default:""`
	CORSOrigins        string        `help:"Comma-separated list of allowed CORS origins" default:"*"`
	Stdio              bool          `help:"Serve MCP over stdio instead of HTTP" default:"false"`
	IdleTimeout        time.Duration `help:"Maximum time to wait for the next request" default:"60s"`
	ShutdownDelay      time.Duration `help:"Time to delay server shutdown while returning 503s on the health endpoint" devDefault:"1s" releaseDefault:"45s"`

	Client s3client.Config
	Tools  tools.Config
}
