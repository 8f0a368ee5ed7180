package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwaggerProtection(t *testing.T) {
	tests := []struct {
		name       string
		cfg        SwaggerConfig
		remoteAddr string
		want       int
	}{
		{"disabled", SwaggerConfig{Enabled: false}, "10.0.0.1:1234", http.StatusNotFound},
		{"enabled for everyone", SwaggerConfig{Enabled: true}, "8.8.8.8:1234", http.StatusOK},
		{"single ip allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, "10.0.0.1:1234", http.StatusOK},
		{"cidr allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.0/16"}}, "192.168.4.2:1234", http.StatusOK},
		{"outside cidr", SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.0/16"}}, "10.0.0.1:1234", http.StatusForbidden},
		{"ipv6 allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"::1"}}, "[::1]:1234", http.StatusOK},
		{"only invalid entries", SwaggerConfig{Enabled: true, AllowedIPs: []string{"not-an-ip"}}, "10.0.0.1:1234", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			w := httptest.NewRecorder()
			okRouter(SwaggerProtection(tt.cfg)).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
