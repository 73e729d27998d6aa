package p2p

import (
	"net"
	"testing"

	pion "github.com/pion/webrtc/v4"

	"github.com/BioHazard786/roomlink/internal/config"
)

func TestLooksLikeTunnel(t *testing.T) {
	for name, want := range map[string]bool{
		"wg0":            true,
		"utun3":          true,
		"CloudflareWARP": true,
		"eth0":           false,
		"en0":            false,
	} {
		if got := looksLikeTunnel(name); got != want {
			t.Errorf("looksLikeTunnel(%q) = %v", name, got)
		}
	}
}

func TestInCGNAT(t *testing.T) {
	if !inCGNAT(&net.IPNet{IP: net.ParseIP("100.100.1.2")}) {
		t.Errorf("100.100.1.2 should be in the shared range")
	}
	if inCGNAT(&net.IPAddr{IP: net.ParseIP("192.168.1.2")}) {
		t.Errorf("192.168.1.2 is not in the shared range")
	}
}

func TestICEConfiguration(t *testing.T) {
	cfg := &config.Client{STUNServer: "stun:stun.example:3478"}
	ice := ICEConfiguration(cfg)
	if len(ice.ICEServers) != 1 || ice.ICETransportPolicy == pion.ICETransportPolicyRelay {
		t.Fatalf("STUN only: %+v", ice)
	}

	cfg.TURNServer = "turn:turn.example"
	cfg.TURNUser, cfg.TURNPass = "u", "p"
	cfg.ForceRelay = true
	ice = ICEConfiguration(cfg)
	if len(ice.ICEServers) != 2 {
		t.Fatalf("servers = %+v", ice.ICEServers)
	}
	if turn := ice.ICEServers[1]; turn.Username != "u" || turn.Credential != "p" {
		t.Fatalf("TURN server = %+v", turn)
	}
	if ice.ICETransportPolicy != pion.ICETransportPolicyRelay {
		t.Fatalf("relay not forced")
	}
}
