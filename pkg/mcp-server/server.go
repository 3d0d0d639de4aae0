// Copyright (C) 2025 Storj Labs, Inc.
// See LICENSE for copying information.

// Package mcpserver serves the object-storage tools over the MCP streamable
// HTTP transport.
package mcpserver

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/common/errs2"
	"storj.io/common/http/requestid"
	"storj.io/common/version"
	"storj.io/s3-mcp/pkg/httpserver"
	"storj.io/s3-mcp/pkg/mcp-server/middleware"
	"storj.io/s3-mcp/pkg/mcp-server/tools"
	"storj.io/s3-mcp/pkg/s3client"
)

// Error is a class of mcp-server errors.
var Error = errs.Class("mcp-server")

// Peer represents an MCP server.
type Peer struct {
	log       *zap.Logger
	server    *httpserver.Server
	mcpServer *server.MCPServer
	tools     *tools.Tools
	config    Config

	inShutdown int32
}

// New returns a new instance of an MCP server.
func New(log *zap.Logger, config Config) (*Peer, error) {
	return NewWithCredentials(log, config, s3client.NewContext(config.Client))
}

// NewMCPServer creates the MCP server with all tools registered and no
// transport attached.
func NewMCPServer(config Config, creds *s3client.Context) (*server.MCPServer, *tools.Tools, error) {
	t, err := tools.New(config.Tools, creds)
	if err != nil {
		return nil, nil, Error.Wrap(err)
	}

	mcpServer := server.NewMCPServer("s3-mcp", version.Build.Version.String())
	t.Add(mcpServer)

	return mcpServer, t, nil
}

// NewWithCredentials returns a new instance of an MCP server using the
// provided credential context.
func NewWithCredentials(log *zap.Logger, config Config, creds *s3client.Context) (*Peer, error) {
	mcpServer, t, err := NewMCPServer(config, creds)
	if err != nil {
		return nil, err
	}

	peer := &Peer{
		log:       log,
		mcpServer: mcpServer,
		tools:     t,
		config:    config,
	}

	r := mux.NewRouter()
	r.Use(requestid.AddToContext)

	mcpRouter := r.PathPrefix("/mcp").Subrouter()
	mcpRouter.Use(middleware.EventHandler)
	mcpRouter.Use(middleware.NewLogRequests(log))
	mcpRouter.Use(middleware.NewLogResponses(log))
	mcpRouter.NewRoute().Handler(server.NewStreamableHTTPServer(mcpServer))

	r.HandleFunc("/health", peer.healthCheck)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(config.CORSOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(r)

	var tlsConfig *httpserver.TLSConfig
	if !config.InsecureDisableTLS {
		tlsConfig = &httpserver.TLSConfig{
			LetsEncrypt: config.LetsEncrypt,
			PublicURLs:  strings.Split(config.PublicURL, ","),
			ConfigDir:   config.ConfigDir,
			CertFile:    config.CertFile,
			KeyFile:     config.KeyFile,
		}
	}

	httpServer, err := httpserver.New(log, corsHandler, httpserver.Config{
		Name:        "mcp",
		Address:     config.Address,
		AddressTLS:  config.AddressTLS,
		TLSConfig:   tlsConfig,
		IdleTimeout: config.IdleTimeout,
	})
	if err != nil {
		return nil, err
	}

	peer.server = httpServer

	return peer, nil
}

// MCPServer returns the underlying MCP server, e.g. for serving over stdio.
func (s *Peer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tools returns the registered tools.
func (s *Peer) Tools() *tools.Tools {
	return s.tools
}

// Run starts the MCP server.
func (s *Peer) Run(ctx context.Context) error {
	var g errs2.Group
	g.Go(func() error {
		return s.server.Run(ctx)
	})
	return errs.Combine(g.Wait()...)
}

// Close shuts down the server and all underlying resources.
func (s *Peer) Close() error {
	atomic.StoreInt32(&s.inShutdown, 1)
	if s.config.ShutdownDelay > 0 {
		s.log.Info("Waiting before server shutdown", zap.Duration("Delay", s.config.ShutdownDelay))
		time.Sleep(s.config.ShutdownDelay)
	}

	return s.server.Shutdown()
}

// Address returns the web address the peer is listening on.
func (s *Peer) Address() string {
	return s.server.Addr()
}

// AddressTLS returns the TLS web address the peer is listening on.
func (s *Peer) AddressTLS() string {
	return s.server.AddrTLS()
}

func (s *Peer) healthCheck(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&s.inShutdown) != 0 {
		http.Error(w, "down", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
