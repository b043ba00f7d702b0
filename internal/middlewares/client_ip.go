package middlewares

import (
	"net"
	"net/http"
	"strings"
)

// ClientIPMiddleware rewrites RemoteAddr to the originating client as "IP:port". Forwarding headers are
// only read when the socket peer is inside one of the trusted networks.
func ClientIPMiddleware(trusted []*net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if clientIP := extractClientIP(r, trusted); clientIP != "" {
				_, port, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil || port == "" {
					port = "0"
				}
				r.RemoteAddr = net.JoinHostPort(clientIP, port)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractClientIP(r *http.Request, trusted []*net.IPNet) string {
	peer := socketIP(r.RemoteAddr)
	if peer == nil {
		return ""
	}

	if !isTrustedProxy(peer, trusted) {
		return peer.String()
	}

	for _, header := range []string{"True-Client-IP", "X-Real-IP"} {
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get(header))); ip != nil {
			return ip.String()
		}
	}

	// Walk X-Forwarded-For from the nearest hop, stopping at the first address no trusted proxy vouches for.
	hops := forwardedHops(r.Header.Values("X-Forwarded-For"))
	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(hops[i])
		if ip == nil {
			break
		}
		client = ip
		if !isTrustedProxy(ip, trusted) {
			break
		}
	}

	return client.String()
}

func socketIP(remoteAddr string) net.IP {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return net.ParseIP(host)
}

func forwardedHops(values []string) []string {
	var hops []string
	for _, value := range values {
		for _, hop := range strings.Split(value, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	return hops
}

func isTrustedProxy(ip net.IP, trusted []*net.IPNet) bool {
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
