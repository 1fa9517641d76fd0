package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/njchilds90/gocas/internal/config"
	"github.com/njchilds90/gocas/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	srv := httptest.NewServer(newRouter(cfg, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func TestToolEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := `{"tool":"diff","params":{"expr":"x^3","var":"x"}}`
	resp, err := http.Post(srv.URL+"/tool", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))

	var out tool.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Error)
	assert.Equal(t, "3*x^2", out.String)
}

func TestToolEndpointErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"malformed json", `{"tool":`, http.StatusBadRequest, "invalid"},
		{"unknown field", `{"tool":"eval","extra":1}`, http.StatusBadRequest, "invalid"},
		{"trailing data", `{"tool":"eval","params":{"expr":"1"}} {}`, http.StatusBadRequest, "invalid"},
		{"engine error", `{"tool":"eval","params":{"expr":"1/0"}}`, http.StatusOK, "division_by_zero"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/tool", "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			var out tool.Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tc.kind, out.Kind)
		})
	}
}

func TestSchemaAndHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	defer resp.Body.Close()
	var spec map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&spec))
	assert.Contains(t, spec, "tools")

	resp2, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp3.StatusCode)
}
