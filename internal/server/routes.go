package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/BioHazard786/roomlink/internal/signaling"
)

// Origin and transport security are left to whatever fronts the server.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewRouter wires the websocket endpoint and the health and stats endpoints.
func NewRouter(hub *signaling.Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthCheckHandler)
	mux.HandleFunc("GET /stats", statsHandler(hub))
	mux.HandleFunc("/ws", ServeWs(hub))
	return mux
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signaling server is healthy."))
}

func statsHandler(hub *signaling.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.Stats()); err != nil {
			slog.Warn("writing stats", "err", err)
		}
	}
}

// ServeWs returns an http.HandlerFunc that upgrades the request, registers
// the new peer with the hub and starts its pumps.
func ServeWs(hub *signaling.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("failed to upgrade connection", "remote", r.RemoteAddr, "err", err)
			return
		}

		client := hub.NewClient(conn)
		if err := hub.Register(client); err != nil {
			slog.Warn("peer rejected", "remote", r.RemoteAddr, "err", err)
			if errors.Is(err, signaling.ErrHubStopped) {
				conn.Close()
				return
			}
			// The queue holds the error reply and is closed; flush it.
			client.WritePump()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
