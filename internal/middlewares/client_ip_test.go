package middlewares

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustNetworks(t *testing.T, cidrs ...string) []*net.IPNet {
	t.Helper()

	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			t.Fatalf("invalid cidr %q: %v", cidr, err)
		}
		networks = append(networks, network)
	}
	return networks
}

func TestClientIPMiddleware(t *testing.T) {
	trusted := mustNetworks(t, "10.0.0.0/8", "2001:db8:ffff::/48")

	tests := []struct {
		name           string
		remoteAddr     string
		headers        map[string]string
		expectedRemote string
	}{
		{
			name:           "direct connection keeps socket address",
			remoteAddr:     "203.0.113.1:54321",
			expectedRemote: "203.0.113.1:54321",
		},
		{
			name:           "direct connection without port",
			remoteAddr:     "203.0.113.1",
			expectedRemote: "203.0.113.1:0",
		},
		{
			name:       "untrusted peer cannot claim another address",
			remoteAddr: "198.51.100.7:4000",
			headers: map[string]string{
				"True-Client-IP":  "192.0.2.1",
				"X-Real-IP":       "192.0.2.2",
				"X-Forwarded-For": "192.0.2.3",
			},
			expectedRemote: "198.51.100.7:4000",
		},
		{
			name:           "trusted proxy true-client-ip",
			remoteAddr:     "10.0.0.1:12345",
			headers:        map[string]string{"True-Client-IP": "198.51.100.1"},
			expectedRemote: "198.51.100.1:12345",
		},
		{
			name:           "trusted proxy x-real-ip",
			remoteAddr:     "10.0.0.1:12345",
			headers:        map[string]string{"X-Real-IP": "198.51.100.2"},
			expectedRemote: "198.51.100.2:12345",
		},
		{
			name:           "trusted proxy x-forwarded-for takes nearest untrusted hop",
			remoteAddr:     "10.0.0.1:12345",
			headers:        map[string]string{"X-Forwarded-For": "192.0.2.99, 198.51.100.3, 10.0.0.2"},
			expectedRemote: "198.51.100.3:12345",
		},
		{
			name:           "garbage hop stops the walk",
			remoteAddr:     "10.0.0.1:12345",
			headers:        map[string]string{"X-Forwarded-For": "198.51.100.3, not-an-ip"},
			expectedRemote: "10.0.0.1:12345",
		},
		{
			name:           "ipv6 client behind ipv6 proxy",
			remoteAddr:     "[2001:db8:ffff::1]:443",
			headers:        map[string]string{"X-Forwarded-For": "2001:db8::1"},
			expectedRemote: "[2001:db8::1]:443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := ClientIPMiddleware(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expectedRemote, got)
		})
	}
}

func TestExtractClientIP_NoTrustedProxies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	req.Header.Set("X-Forwarded-For", "198.51.100.3")

	assert.Equal(t, "10.0.0.1", extractClientIP(req, nil))

	req.RemoteAddr = "not-an-address"
	assert.Equal(t, "", extractClientIP(req, nil))
}
