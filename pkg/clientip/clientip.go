package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealClientIP returns the peer address of r as a normalised IP string, used as the
// rate-limit and access-log key. Proxy headers are ignored.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	host = strings.TrimSpace(host)

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return host
	}
	// ::ffff:1.2.3.4 and 1.2.3.4 share a bucket; zones are dropped
	return addr.Unmap().WithZone("").String()
}
