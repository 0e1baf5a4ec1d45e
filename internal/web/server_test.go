package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/bridgegen/internal/config"
	"github.com/peterkuimelis/bridgegen/internal/lin"
	"github.com/peterkuimelis/bridgegen/internal/view"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 5
	ts := httptest.NewServer(NewServer(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func sessionView(t *testing.T, data []byte) view.SessionView {
	t.Helper()
	var sv view.SessionView
	require.NoError(t, json.Unmarshal(data, &sv), string(data))
	return sv
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, data := do(t, http.MethodPost, ts.URL+"/api/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sv := sessionView(t, data)
	require.NotEmpty(t, sv.ID)
	return sv.ID
}

// waitIdle polls until the session finishes generating.
func waitIdle(t *testing.T, ts *httptest.Server, id string) view.SessionView {
	t.Helper()
	var sv view.SessionView
	require.Eventually(t, func() bool {
		_, data := do(t, http.MethodGet, ts.URL+"/api/sessions/"+id, "")
		sv = sessionView(t, data)
		return !sv.Generating
	}, 5*time.Second, 10*time.Millisecond)
	return sv
}

func TestIndexAndPresets(t *testing.T) {
	ts := newTestServer(t)

	resp, data := do(t, http.MethodGet, ts.URL+"/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "<title>bridgegen</title>")

	resp, _ = do(t, http.MethodGet, ts.URL+"/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, data = do(t, http.MethodGet, ts.URL+"/api/presets", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var presets []PresetInfo
	require.NoError(t, json.Unmarshal(data, &presets))
	require.NotEmpty(t, presets)
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	assert.Contains(t, names, "strong-notrump")
}

func TestGenerateIsAsync(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp, data := do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/generate",
		`{"count": "3", "hcp": {"mode": "per_seat", "seats": {"N": {"min": 10, "max": "abc"}}}}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(data))
	sv := sessionView(t, data)
	require.Len(t, sv.Issues, 1)
	assert.Equal(t, "abc", sv.Issues[0].Value)

	sv = waitIdle(t, ts, id)
	require.Len(t, sv.Boards, 3)
	for i, b := range sv.Boards {
		assert.Equal(t, i+1, b.Number)
		assert.GreaterOrEqual(t, b.Hands["N"].HCP, 10)
	}
	assert.Empty(t, sv.Error)
}

func TestGenerateRejectsBadMode(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/generate", `{"hcp": {"mode": "sideways"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/generate", `{"preset": "missing"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, http.MethodGet, ts.URL+"/api/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, ts.URL+"/ws?session=missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEditingEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)
	base := ts.URL + "/api/sessions/" + id

	resp, _ := do(t, http.MethodPost, base+"/generate", `{"count": 4}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	before := waitIdle(t, ts, id)
	require.Len(t, before.Boards, 4)

	resp, data := do(t, http.MethodPost, base+"/boards/move", `{"from": 4, "to": 1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sv := sessionView(t, data)
	assert.Equal(t, before.Boards[3].Hands, sv.Boards[0].Hands)
	assert.Equal(t, 1, sv.Boards[0].Number)
	assert.Equal(t, "South", sv.Boards[0].Dealer)

	resp, data = do(t, http.MethodDelete, base+"/boards/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, sessionView(t, data).Boards, 3)

	resp, _ = do(t, http.MethodDelete, base+"/boards/7", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, base+"/boards/1/vulnerability", `{"vulnerability": "both"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data = do(t, http.MethodPut, base+"/policy", `{"policy": "fixed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fixed", sessionView(t, data).Policy)

	resp, data = do(t, http.MethodPut, base+"/boards/1/vulnerability", `{"vulnerability": "both"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "both", sessionView(t, data).Boards[0].Vulnerability)

	resp, data = do(t, http.MethodGet, base+"/lin", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, lin.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), lin.FileName)
	assert.Len(t, strings.Split(string(data), "\n"), 3)
	assert.Contains(t, string(data), "|sv|b|")

	resp, data = do(t, http.MethodDelete, base+"/boards", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, sessionView(t, data).Boards)

	resp, _ = do(t, http.MethodGet, base+"/lin", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/generate", `{"count": 1}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	waitIdle(t, ts, id)

	resp, data := do(t, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := string(data)
	assert.Contains(t, body, "bridgegen_sessions")
	assert.Contains(t, body, `bridgegen_generations_total{outcome="ok"}`)
	assert.Contains(t, body, "(ok, budget, generic)")
}

func TestWebSocketStreamsSession(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=" + id
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var msg view.ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.Equal(t, "session", msg.Type)
	assert.Equal(t, id, msg.Session.ID)

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/generate", `{"count": 2}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var sawEvent bool
	for {
		var m view.ServerMessage
		require.NoError(t, wsjson.Read(ctx, conn, &m))
		if m.Type == "event" {
			sawEvent = true
		}
		if m.Type == "session" && !m.Session.Generating && len(m.Session.Boards) == 2 {
			break
		}
	}
	assert.True(t, sawEvent)
	conn.Close(websocket.StatusNormalClosure, "")
}
