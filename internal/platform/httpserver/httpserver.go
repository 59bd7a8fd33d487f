// Package httpserver owns the HTTP server defaults and shutdown policy.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second

	// ShutdownTimeout bounds the graceful drain on SIGTERM. Requests here are
	// short CRUD calls, so ten seconds outlasts anything in flight.
	ShutdownTimeout = 10 * time.Second
)

// New builds an HTTP server with the project defaults.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// Shutdown drains the server, giving in-flight requests ShutdownTimeout to
// finish.
func Shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
