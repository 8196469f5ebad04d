// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// ServerConfig holds the parameters for NewServer.
type ServerConfig struct {
	// Address is the TCP listen address, e.g. ":9090" or
	// "127.0.0.1:0".
	Address string

	Handler http.Handler

	// ShutdownTimeout bounds graceful shutdown. Defaults to 10s.
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

// Server serves a handler until its context is cancelled.
type Server struct {
	address         string
	handler         http.Handler
	shutdownTimeout time.Duration
	logger          *slog.Logger

	ready chan struct{}
	addr  net.Addr
}

// NewServer returns a Server. Call Serve to start listening.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Address == "" {
		return nil, errors.New("health: listen address is required")
	}
	if config.Handler == nil {
		return nil, errors.New("health: handler is required")
	}
	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		address:         config.Address,
		handler:         config.Handler,
		shutdownTimeout: timeout,
		logger:          logger,
		ready:           make(chan struct{}),
	}, nil
}

// Ready is closed once the listener is bound.
func (server *Server) Ready() <-chan struct{} { return server.ready }

// Addr returns the bound address. Valid after Ready is closed.
func (server *Server) Addr() net.Addr { return server.addr }

// Serve listens and serves until ctx is cancelled, then shuts down
// gracefully.
func (server *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", server.address)
	if err != nil {
		return fmt.Errorf("health: listening on %s: %w", server.address, err)
	}
	server.addr = listener.Addr()
	close(server.ready)

	httpServer := &http.Server{
		Handler:           server.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	server.logger.Info("status server listening", "address", server.addr.String())

	serveDone := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveDone <- err
		}
		close(serveDone)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveDone:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("health: shutdown: %w", err)
	}
	server.logger.Info("status server stopped")
	return nil
}
