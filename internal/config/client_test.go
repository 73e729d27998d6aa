package config

import (
	"slices"
	"testing"
)

func clearClientEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SIGNALING_URL", "STUN_SERVER", "TURN_SERVER", "TURN_USERNAME", "TURN_PASSWORD", "FORCE_RELAY"} {
		t.Setenv(key, "")
	}
}

func TestLoadClientDefaults(t *testing.T) {
	clearClientEnv(t)

	cfg, err := LoadClient(ClientOptions{})
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if got := cfg.GetSTUNServers(); !slices.Equal(got, []string{DefaultSTUN}) {
		t.Errorf("STUN = %v", got)
	}
	if got := cfg.GetTURNServers(); got != nil {
		t.Errorf("TURN = %v, want none", got)
	}
}

func TestLoadClientPrecedence(t *testing.T) {
	clearClientEnv(t)
	t.Setenv("SIGNALING_URL", "wss://env.example/ws")
	t.Setenv("TURN_SERVER", "turn:env.example")
	t.Setenv("TURN_USERNAME", "env-user")
	t.Setenv("TURN_PASSWORD", "env-pass")

	cfg, err := LoadClient(ClientOptions{TURNUser: "flag-user"})
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.ServerURL != "wss://env.example/ws" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	user, pass := cfg.GetTURNCredentials()
	if user != "flag-user" || pass != "env-pass" {
		t.Errorf("credentials = %q/%q", user, pass)
	}
	want := []string{"turn:env.example:3478?transport=udp", "turn:env.example:3478?transport=tcp"}
	if got := cfg.GetTURNServers(); !slices.Equal(got, want) {
		t.Errorf("TURN = %v", got)
	}

	cfg, err = LoadClient(ClientOptions{ServerURL: "ws://flag.example:8080/ws"})
	if err != nil || cfg.ServerURL != "ws://flag.example:8080/ws" {
		t.Errorf("flag ServerURL = %v, %v", cfg, err)
	}
}

func TestLoadClientRejectsNonWebsocketURL(t *testing.T) {
	clearClientEnv(t)

	for _, url := range []string{"http://example.com/ws", "example.com", "://bad"} {
		if _, err := LoadClient(ClientOptions{ServerURL: url}); err == nil {
			t.Errorf("LoadClient accepted %q", url)
		}
	}
}

func TestLoadClientForceRelay(t *testing.T) {
	clearClientEnv(t)

	t.Setenv("FORCE_RELAY", "true")
	cfg, err := LoadClient(ClientOptions{})
	if err != nil || !cfg.ForceRelay {
		t.Fatalf("FORCE_RELAY=true: %+v, %v", cfg, err)
	}

	t.Setenv("FORCE_RELAY", "maybe")
	if _, err := LoadClient(ClientOptions{}); err == nil {
		t.Fatalf("FORCE_RELAY=maybe accepted")
	}
	if cfg, err := LoadClient(ClientOptions{ForceRelay: true}); err != nil || !cfg.ForceRelay {
		t.Fatalf("flag should win over a bad env value: %v", err)
	}
}
