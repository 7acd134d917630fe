package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "127.0.0.1:8080"},
		{"bind all", "0.0.0.0:9000", "127.0.0.1:9000"},
		{"port only", ":8081", "127.0.0.1:8081"},
		{"explicit host", "10.0.0.5:8080", "10.0.0.5:8080"},
		{"ipv6 bind all", "[::]:8080", "127.0.0.1:8080"},
		{"missing port", "localhost", "127.0.0.1:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddr(tt.raw))
		})
	}
}

func TestFetchHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"healthy", http.StatusOK, `{"status":"ok","time":"2026-01-01T00:00:00Z"}`, ""},
		{"degraded status", http.StatusOK, `{"status":"starting"}`, `"starting"`},
		{"not json", http.StatusOK, `<html>proxy page</html>`, "decoding"},
		{"server error", http.StatusInternalServerError, `{"status":"ok"}`, "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/health", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			err := fetchHealth(context.Background(), srv.Client(), srv.URL+"/api/v1/health")
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFetchHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/api/v1/health"
	srv.Close()

	require.Error(t, fetchHealth(context.Background(), srv.Client(), url))
}
