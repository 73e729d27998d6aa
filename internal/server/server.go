package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BioHazard786/roomlink/internal/config"
	"github.com/BioHazard786/roomlink/internal/signaling"
)

const shutdownTimeout = 5 * time.Second

// NewHub builds a hub from the server configuration.
func NewHub(cfg *config.Server) (*signaling.Hub, error) {
	gen, err := signaling.NewIDGenerator(cfg.IDFormat)
	if err != nil {
		return nil, err
	}
	return signaling.NewHub(
		signaling.WithIDGenerator(gen),
		signaling.WithLimits(cfg.Limits()),
	), nil
}

// Run serves the signaling endpoints on cfg.Addr until ctx is cancelled or
// the listener fails.
func Run(ctx context.Context, cfg *config.Server) error {
	hub, err := NewHub(cfg)
	if err != nil {
		return err
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting signaling server", "addr", cfg.Addr, "id_format", cfg.IDFormat)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down signaling server")

	// Upgraded connections are hijacked, so Shutdown does not wait for them.
	// Stopping the hub closes every peer's socket.
	stopHub()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
