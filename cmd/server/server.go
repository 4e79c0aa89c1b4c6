package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// newHTTPServer builds the HTTP server. Every request context derives from a base context that the
// returned stop function cancels, which ends open event streams when the server shuts down.
func newHTTPServer(addr string, handler http.Handler) (*http.Server, context.CancelFunc) {
	baseCtx, stop := context.WithCancel(context.Background())
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}, stop
}

// shutdownServer cancels in-flight requests, then waits up to timeout for connections to drain.
// Whatever is still open after that is closed.
func shutdownServer(srv *http.Server, stop context.CancelFunc, timeout time.Duration, logger *zap.Logger) {
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Graceful shutdown timed out, closing remaining connections", zap.Error(err))
		_ = srv.Close()
	}
}
