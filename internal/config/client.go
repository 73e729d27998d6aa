package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Default client values.
const (
	DefaultServerURL = "ws://localhost:8080/ws"
	DefaultSTUN      = "stun:stun.l.google.com:19302"
)

// Client holds the terminal peer configuration.
type Client struct {
	// ServerURL is the websocket endpoint of the signaling server.
	ServerURL string

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string

	// ForceRelay restricts ICE to TURN relay candidates.
	ForceRelay bool
}

// ClientOptions carries CLI flag overrides.
type ClientOptions struct {
	ServerURL  string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool
}

// LoadClient reads configuration with the following priority:
// 1. CLI flags (passed via ClientOptions) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func LoadClient(opts ClientOptions) (*Client, error) {
	cfg := &Client{
		ServerURL:  firstNonEmpty(opts.ServerURL, os.Getenv("SIGNALING_URL"), DefaultServerURL),
		STUNServer: firstNonEmpty(opts.STUNServer, os.Getenv("STUN_SERVER"), DefaultSTUN),
		TURNServer: firstNonEmpty(opts.TURNServer, os.Getenv("TURN_SERVER")),
		TURNUser:   firstNonEmpty(opts.TURNUser, os.Getenv("TURN_USERNAME")),
		TURNPass:   firstNonEmpty(opts.TURNPass, os.Getenv("TURN_PASSWORD")),
		ForceRelay: opts.ForceRelay,
	}

	if v := os.Getenv("FORCE_RELAY"); v != "" && !cfg.ForceRelay {
		force, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FORCE_RELAY %q: %w", v, err)
		}
		cfg.ForceRelay = force
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be ws or wss", cfg.ServerURL)
	}

	return cfg, nil
}

// GetSTUNServers returns STUN server URLs
func (c *Client) GetSTUNServers() []string {
	if c.STUNServer == "" {
		return nil
	}
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Client) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Client) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
