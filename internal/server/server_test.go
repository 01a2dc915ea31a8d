package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/componentbridge/internal/config"
	"github.com/GriffinCanCode/componentbridge/internal/logging"
)

func setupServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Logging.Development = true
	srv, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestNewServerRequiresConfig(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	_, ts := setupServer(t)

	status, body := getJSON(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 0, body["connections"])
}

func TestTraceHeaders(t *testing.T) {
	_, ts := setupServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, strings.HasPrefix(resp.Header.Get("X-Trace-ID"), "trc_"))
	assert.NotEmpty(t, resp.Header.Get("X-Span-ID"))
}

func TestRoot(t *testing.T) {
	_, ts := setupServer(t)

	status, body := getJSON(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "web", body["environment"])
}

func TestItems(t *testing.T) {
	srv, ts := setupServer(t)

	status, body := getJSON(t, ts.URL+"/items?content_type=Note")
	assert.Equal(t, http.StatusOK, status)
	items := body["items"].([]any)
	require.Len(t, items, 1)

	id := srv.store.ContextItem()["uuid"].(string)
	status, body = getJSON(t, ts.URL+"/items/"+id)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, body["item"].(map[string]any)["uuid"])

	status, _ = getJSON(t, ts.URL+"/items/missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBroadcastThemesEndpoint(t *testing.T) {
	_, ts := setupServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/component", nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage() // registration
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/themes", "application/json",
		bytes.NewBufferString(`{"themes":["https://themes.example/dark.css"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(frame), `"action":"themes"`)
	assert.Contains(t, string(frame), "dark.css")
}

func TestBroadcastThemesRejectsBadBody(t *testing.T) {
	_, ts := setupServer(t)

	resp, err := http.Post(ts.URL+"/themes", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoints(t *testing.T) {
	_, ts := setupServer(t)

	getJSON(t, ts.URL+"/health")

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "componentbridge_http_requests_total")

	status, body := getJSON(t, ts.URL+"/metrics/json")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "total_requests")
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	srv, err := NewServer(cfg, logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, srv.Close())
}
