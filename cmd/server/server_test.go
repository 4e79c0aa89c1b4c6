package main

import (
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestShutdownServer_EndsOpenStreams(t *testing.T) {
	streaming := make(chan struct{})
	streamEnded := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		close(streaming)
		<-r.Context().Done()
		close(streamEnded)
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv, stop := newHTTPServer(listener.Addr().String(), handler)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(listener) }()

	go func() {
		resp, err := http.Get("http://" + listener.Addr().String() + "/api/v1/ticks")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	select {
	case <-streaming:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not start")
	}

	start := time.Now()
	shutdownServer(srv, stop, 5*time.Second, zap.NewNop())

	assert.Less(t, time.Since(start), 2*time.Second)
	select {
	case <-streamEnded:
	default:
		t.Fatal("stream handler still running after shutdown")
	}
	assert.True(t, errors.Is(<-served, http.ErrServerClosed))
}
