package console

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pigeonsec/kestrel-admin/internal/session"
	"github.com/pigeonsec/kestrel-admin/pkg/client"
)

const testToken = "tok-ops"

type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

// harness wires a real client and session manager to an httptest backend.
type harness struct {
	t    *testing.T
	srv  *httptest.Server
	mgr  *session.Manager
	orch *Orchestrator

	mu       sync.Mutex
	requests []recorded
	notices  []Notice
}

func newHarness(t *testing.T, routes map[string]http.HandlerFunc) *harness {
	t.Helper()
	h := &harness{t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"token": testToken,
			"user":  map[string]any{"username": "ops", "is_admin": true},
		})
	})
	for pattern, fn := range routes {
		mux.HandleFunc(pattern, fn)
	}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			if len(data) > 0 {
				_ = json.Unmarshal(data, &rec.Body)
			}
			r.Body = io.NopCloser(bytes.NewReader(data))
		}
		if r.URL.Path != "/api/auth/login" {
			h.mu.Lock()
			h.requests = append(h.requests, rec)
			h.mu.Unlock()
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(h.srv.Close)

	h.mgr = session.NewManager(session.NewFileStore(filepath.Join(t.TempDir(), "token")), zerolog.Nop())
	api := client.New(h.srv.URL, h.mgr)
	h.mgr.SetAuthenticator(api)
	h.orch = New(api, h.mgr, WithNotifier(NotifierFunc(func(n Notice) {
		h.mu.Lock()
		h.notices = append(h.notices, n)
		h.mu.Unlock()
	})))
	return h
}

func (h *harness) login() {
	h.t.Helper()
	_, err := h.mgr.Login(context.Background(), "ops", "x")
	require.NoError(h.t, err)
}

func (h *harness) calls() []recorded {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recorded(nil), h.requests...)
}

func (h *harness) lastNotice() Notice {
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(h.t, h.notices, "expected a notice")
	return h.notices[len(h.notices)-1]
}

func (h *harness) noticeMessages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.notices))
	for i, n := range h.notices {
		out[i] = n.Message
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func apiError(status int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]string{"error": msg})
	}
}
