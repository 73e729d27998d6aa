package main

import (
	"log/slog"

	"github.com/BioHazard786/roomlink/internal/logging"
)

func main() {
	// The terminal client only logs errors unless LOG_LEVEL says otherwise.
	logging.Init(slog.LevelError, "")
	Execute()
}
