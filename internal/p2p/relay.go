package p2p

import (
	"net"
	"strings"
)

// tunnelHints are interface name fragments used by VPN and tunnel drivers.
var tunnelHints = []string{"tun", "tap", "wg", "ppp", "warp"}

// cgnat is the shared address space (100.64.0.0/10) used by carrier NAT,
// Tailscale and Cloudflare WARP.
var cgnat = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// behindTunnel reports whether an active interface looks like a VPN or sits
// behind carrier NAT. Direct candidates rarely work from such hosts.
func behindTunnel() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if looksLikeTunnel(iface.Name) {
			return true
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if inCGNAT(addr) {
				return true
			}
		}
	}
	return false
}

func looksLikeTunnel(name string) bool {
	name = strings.ToLower(name)
	for _, hint := range tunnelHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

func inCGNAT(addr net.Addr) bool {
	var ip net.IP
	switch v := addr.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	}
	return ip != nil && cgnat.Contains(ip)
}
