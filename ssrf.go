package main

import (
	"context"
	"fmt"
	"net"
	"os"
)

// isBlockedIP reports whether an address must not be fetched: loopback,
// RFC1918, link-local, unspecified, or IPv6 unique-local. Share links live
// on public hosts; anything resolving inward is treated as hostile.
func isBlockedIP(ip net.IP) bool {
	if os.Getenv("CHATMD_TEST_ALLOW_LOCAL") == "1" {
		return false
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	// IPv6 unique-local (fc00::/7) is not covered by IsPrivate.
	if v6 := ip.To16(); ip.To4() == nil && v6 != nil && v6[0]&0xfe == 0xfc {
		return true
	}
	return false
}

// safeDialContext wraps a dialer to refuse connections to blocked IPs.
// The hostname is resolved once and the chosen IP dialed directly, so a
// second resolution can't swap in a different address. For TLS the caller
// keeps SNI on the original hostname.
func safeDialContext(dialer *net.Dialer) func(context.Context, string, string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		ips, err := net.LookupIP(host)
		if err != nil {
			return nil, err
		}

		for _, ip := range ips {
			if isBlockedIP(ip) {
				continue
			}
			return dialer.DialContext(ctx, network, net.JoinHostPort(ip.String(), port))
		}
		return nil, fmt.Errorf("refusing connection to private/local address for %s", host)
	}
}
