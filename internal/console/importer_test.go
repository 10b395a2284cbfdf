package console

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pigeonsec/kestrel-admin/internal/session"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

const importDoc = `
feed: phishing-2024
category: Phishing
access_level: free
iocs:
  - type: domain
    value: login-micros0ft.test
    context: credential harvesting kit
  - type: ip
    value: 203.0.113.9
    feed: c2-infra
    category: C2
  - type: mutex
    value: Global\evil
  - type: url
    value: http://rejected.test/
`

func TestImport(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/ioc": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if _, ok := body["url"]; ok {
				apiError(http.StatusBadRequest, "invalid url")(w, r)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
		},
		"GET /api/iocs": iocsHandler(),
	})
	h.login()

	report, err := h.orch.Import(context.Background(), strings.NewReader(importDoc))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Created)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, 2, report.Failed[0].Index)
	assert.True(t, IsKind(report.Failed[0].Err, FailurePrecondition))
	assert.Equal(t, 3, report.Failed[1].Index)
	assert.True(t, IsKind(report.Failed[1].Err, FailureValidation))

	var posts, lists int
	for _, c := range h.calls() {
		switch c.Method {
		case http.MethodPost:
			posts++
		case http.MethodGet:
			lists++
		}
	}
	assert.Equal(t, 3, posts)
	assert.Equal(t, 1, lists, "a single re-list at the end")

	first := h.calls()[0].Body
	assert.Equal(t, "login-micros0ft.test", first["domain"])
	assert.Equal(t, "phishing-2024", first["feed"])
	assert.Equal(t, "Phishing", first["category"])
	assert.Equal(t, "free", first["access_level"])
	assert.Equal(t, "credential harvesting kit", first["comment"])

	second := h.calls()[1].Body
	assert.Equal(t, "203.0.113.9", second["ip"])
	assert.Equal(t, "c2-infra", second["feed"])
	assert.Equal(t, "C2", second["category"])

	assert.Contains(t, h.noticeMessages(), "Imported 2 of 4 IOCs")
}

func TestImport_AuthFailureAborts(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/ioc": apiError(http.StatusUnauthorized, "Invalid token"),
	})
	h.login()

	report, err := h.orch.Import(context.Background(), strings.NewReader(importDoc))
	assert.True(t, IsKind(err, FailureAuth))
	assert.Equal(t, 0, report.Created)
	assert.Len(t, h.calls(), 1, "nothing is sent after the first rejection")
	assert.Equal(t, session.StatusUnauthenticated, h.mgr.Status())
}

func TestImport_UnknownField(t *testing.T) {
	h := newHarness(t, nil)
	h.login()
	_, err := h.orch.Import(context.Background(), strings.NewReader("iocs:\n  - type: ip\n    vlaue: 1.1.1.1\n"))
	assert.True(t, IsKind(err, FailurePrecondition))
	assert.Empty(t, h.calls())
}

func TestBuildIndicatorRequest(t *testing.T) {
	for _, typ := range domain.IndicatorTypes {
		t.Run(string(typ), func(t *testing.T) {
			req, err := BuildIndicatorRequest(IndicatorDraft{Type: typ, Value: " v ", Feed: "f1"})
			require.NoError(t, err)
			fields := map[domain.IndicatorType]string{
				domain.IndicatorDomain: req.Domain,
				domain.IndicatorIP:     req.IP,
				domain.IndicatorURL:    req.URL,
				domain.IndicatorHash:   req.Hash,
				domain.IndicatorEmail:  req.Email,
			}
			for k, v := range fields {
				if k == typ {
					assert.Equal(t, "v", v)
				} else {
					assert.Empty(t, v, "field for %s must stay empty", k)
				}
			}
			assert.Equal(t, domain.DefaultCategory, req.Category)
			assert.Equal(t, string(domain.DefaultAccessLevel), req.AccessLevel)
		})
	}
}

func TestBuildIndicatorRequest_Preconditions(t *testing.T) {
	tests := []struct {
		name  string
		draft IndicatorDraft
		field string
	}{
		{"unknown type", IndicatorDraft{Type: "mutex", Value: "x", Feed: "f"}, "type"},
		{"blank value", IndicatorDraft{Value: "  ", Feed: "f"}, "value"},
		{"missing feed", IndicatorDraft{Value: "x"}, "feed"},
		{"bad tier", IndicatorDraft{Value: "x", Feed: "f", AccessLevel: "public"}, "access_level"},
		{"hash type on domain", IndicatorDraft{Value: "x", Feed: "f", HashType: "md5"}, "hash_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildIndicatorRequest(tt.draft)
			f, ok := AsFailure(err)
			require.True(t, ok)
			assert.Equal(t, FailurePrecondition, f.Kind)
			assert.True(t, strings.HasPrefix(f.Message, tt.field+":"), f.Message)
		})
	}
}
