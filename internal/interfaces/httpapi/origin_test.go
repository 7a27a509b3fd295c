package httpapi

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginOf(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    clientOrigin
	}{
		{
			name:    "fly edge wins",
			headers: map[string]string{"Fly-Client-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1", "Fly-Client-Country": "id"},
			want:    clientOrigin{IP: "203.0.113.7", Country: "ID"},
		},
		{
			name:    "first forwarded hop",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.1:4711, 10.0.0.2", "CF-IPCountry": "GB"},
			want:    clientOrigin{IP: "198.51.100.1", Country: "GB"},
		},
		{
			name:    "garbage header falls through to remote addr",
			headers: map[string]string{"X-Real-IP": "not-an-ip", "CF-IPCountry": "XX1"},
			remote:  "[2001:db8::1]:52000",
			want:    clientOrigin{IP: "2001:db8::1", Country: unknownCountry},
		},
		{
			name:    "ipv4 mapped address",
			headers: map[string]string{"X-Real-IP": "::ffff:192.0.2.10"},
			want:    clientOrigin{IP: "192.0.2.10", Country: unknownCountry},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/dashboard", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, originOf(req))
		})
	}
}
