package server

import (
	"context"
	"testing"
	"time"

	"github.com/BioHazard786/roomlink/internal/config"
)

func testConfig() *config.Server {
	return &config.Server{
		Addr:            "127.0.0.1:0",
		IDFormat:        "words",
		SendQueue:       8,
		MaxMessageBytes: 1024,
		PongWait:        time.Second,
		WriteWait:       time.Second,
	}
}

func TestNewHubRejectsUnknownIDFormat(t *testing.T) {
	cfg := testConfig()
	cfg.IDFormat = "emoji"
	if _, err := NewHub(cfg); err == nil {
		t.Fatalf("NewHub accepted an unknown id format")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, testConfig()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRunReportsListenErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Addr = "127.0.0.1:-1"
	if err := Run(context.Background(), cfg); err == nil {
		t.Fatalf("Run returned nil for an unusable address")
	}
}
