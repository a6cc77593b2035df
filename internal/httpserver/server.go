package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Timeouts bound how long a single connection may take. Writes are generous
// because uploads and large responses share the server.
type Timeouts struct {
	ReadHeader time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// DefaultTimeouts are used for any zero field passed to New.
var DefaultTimeouts = Timeouts{
	ReadHeader: 5 * time.Second,
	Write:      5 * time.Minute,
	Idle:       60 * time.Second,
}

// Server wraps the http.Server with sensible defaults.
type Server struct {
	inner *http.Server
}

// New constructs a server listening on the provided port.
func New(port int, handler http.Handler, timeouts Timeouts) *Server {
	if timeouts.ReadHeader <= 0 {
		timeouts.ReadHeader = DefaultTimeouts.ReadHeader
	}
	if timeouts.Write <= 0 {
		timeouts.Write = DefaultTimeouts.Write
	}
	if timeouts.Idle <= 0 {
		timeouts.Idle = DefaultTimeouts.Idle
	}

	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
			WriteTimeout:      timeouts.Write,
			IdleTimeout:       timeouts.Idle,
		},
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully terminates the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
