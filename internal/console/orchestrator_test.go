package console

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pigeonsec/kestrel-admin/internal/session"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

func iocsHandler(iocs ...domain.Indicator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"iocs": iocs, "count": len(iocs)})
	}
}

func TestListIndicators_AttachesBearerAfterLogin(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/iocs": iocsHandler(
			domain.Indicator{Value: "evil.test", Type: domain.IndicatorDomain, Feed: "f1"},
			domain.Indicator{Value: "1.2.3.4", Type: domain.IndicatorIP},
		),
	})
	h.login()
	assert.Equal(t, session.StatusAuthenticated, h.mgr.Status())

	items, err := h.orch.ListIndicators(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, items, h.orch.Indicators())

	calls := h.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer "+testToken, calls[0].Auth)
	assert.Empty(t, calls[0].Query)
}

func TestListIndicators_FeedFilter(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{"GET /api/iocs": iocsHandler()})
	h.login()
	h.orch.SetIndicatorFeedFilter("phish feed")

	_, err := h.orch.ListIndicators(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "feed=phish+feed", h.calls()[0].Query)
}

func TestCreateIndicator_PopulatesOnlyTheTypedField(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/ioc": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
		},
		"GET /api/iocs": iocsHandler(domain.Indicator{Value: "evil.test", Type: domain.IndicatorDomain, Feed: "f1"}),
	})
	h.login()

	err := h.orch.CreateIndicator(context.Background(), IndicatorDraft{
		Type:        domain.IndicatorDomain,
		Value:       "evil.test",
		Feed:        "f1",
		Category:    "Malware",
		AccessLevel: domain.AccessPaid,
	})
	require.NoError(t, err)

	calls := h.calls()
	require.Len(t, calls, 2, "create then re-list")
	body := calls[0].Body
	assert.Equal(t, "evil.test", body["domain"])
	assert.Equal(t, "Malware", body["category"])
	assert.Equal(t, "f1", body["feed"])
	assert.Equal(t, "paid", body["access_level"])
	for _, field := range []string{"ip", "url", "hash", "email"} {
		assert.NotContains(t, body, field)
	}
	assert.Equal(t, http.MethodGet, calls[1].Method)
	assert.Equal(t, "/api/iocs", calls[1].Path)

	assert.Contains(t, h.noticeMessages(), msgIndicatorAdded)
	assert.Len(t, h.orch.Indicators(), 1)
}

func TestCreateIndicator_BackendMessageVerbatim(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/ioc": apiError(http.StatusBadRequest, "invalid domain format"),
	})
	h.login()

	err := h.orch.CreateIndicator(context.Background(), IndicatorDraft{Type: domain.IndicatorDomain, Value: "bad", Feed: "f1"})
	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, FailureValidation, f.Kind)
	assert.Equal(t, "invalid domain format", f.Message)
	assert.Equal(t, SeverityError, h.lastNotice().Severity)
	assert.Equal(t, "invalid domain format", h.lastNotice().Message)
	assert.Len(t, h.calls(), 1, "no re-list after a failed create")
}

func TestCreateIndicator_GenericMessageWithoutBackendError(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/ioc": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream broke", http.StatusBadGateway)
		},
	})
	h.login()

	err := h.orch.CreateIndicator(context.Background(), IndicatorDraft{Value: "evil.test", Feed: "f1"})
	assert.True(t, IsKind(err, FailureTransport))
	assert.Equal(t, msgIndicatorAdd, h.lastNotice().Message)
}

func TestDeleteIndicator_WithoutFeedNeverCallsBackend(t *testing.T) {
	h := newHarness(t, nil)
	h.login()
	var asked bool
	c := ConfirmFunc(func(context.Context, string) (bool, error) {
		asked = true
		return true, nil
	})

	err := h.orch.DeleteIndicator(context.Background(), domain.Indicator{Value: "1.2.3.0", Type: domain.IndicatorIP}, c)
	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, FailurePrecondition, f.Kind)
	assert.Equal(t, msgIndicatorNoFeed, f.Message)
	assert.False(t, asked, "no confirmation for an undeletable indicator")
	assert.Empty(t, h.calls())
	assert.Equal(t, msgIndicatorNoFeed, h.lastNotice().Message)
}

func TestDeleteIndicator_ConfirmDeclined(t *testing.T) {
	h := newHarness(t, nil)
	h.login()
	var prompt string
	c := ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompt = p
		return false, nil
	})

	err := h.orch.DeleteIndicator(context.Background(), domain.Indicator{Value: "evil.test", Feed: "f1"}, c)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, "Delete IOC evil.test?", prompt)
	assert.Empty(t, h.calls())
}

func TestDeleteIndicator_Success(t *testing.T) {
	var deleted atomic.Value
	h := newHarness(t, map[string]http.HandlerFunc{
		"DELETE /api/ioc/{value}": func(w http.ResponseWriter, r *http.Request) {
			deleted.Store(r.PathValue("value") + "@" + r.URL.Query().Get("feed"))
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		},
		"GET /api/iocs": iocsHandler(),
	})
	h.login()

	err := h.orch.DeleteIndicator(context.Background(), domain.Indicator{Value: "evil.test", Feed: "f1"}, Confirmed)
	require.NoError(t, err)
	assert.Equal(t, "evil.test@f1", deleted.Load())
	assert.Contains(t, h.noticeMessages(), msgIndicatorDeleted)
	assert.Equal(t, "/api/iocs", h.calls()[1].Path)
}

func TestListFeeds_FailureEmptiesCache(t *testing.T) {
	var fail atomic.Bool
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/feeds": func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"feeds": []map[string]any{
				{"name": "f1", "count": 3, "access_level": "free"},
				{"name": "f2", "count": 1},
			}})
		},
	})
	h.login()

	feeds, err := h.orch.ListFeeds(context.Background())
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, domain.AccessPaid, feeds[1].AccessLevel, "omitted tier defaults to paid")

	fail.Store(true)
	_, err = h.orch.ListFeeds(context.Background())
	assert.True(t, IsKind(err, FailureTransport))
	assert.Empty(t, h.orch.Feeds(), "a failed list leaves an empty collection, not the previous one")
	assert.Equal(t, msgFeedsFetch, h.lastNotice().Message)
	assert.Equal(t, session.StatusAuthenticated, h.mgr.Status())
}

func TestSetFeedAccessLevel_ShowsConfirmedTier(t *testing.T) {
	tests := []struct {
		name    string
		applies bool
		want    domain.AccessLevel
	}{
		{"backend applies the change", true, domain.AccessPrivate},
		{"backend overrides the change", false, domain.AccessPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				tier        atomic.Value
				cachedOnPut []domain.Feed
				h           *harness
			)
			tier.Store("paid")
			h = newHarness(t, map[string]http.HandlerFunc{
				"GET /api/feeds": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, http.StatusOK, map[string]any{"feeds": []map[string]any{
						{"name": "f1", "count": 3, "access_level": tier.Load()},
					}})
				},
				"PUT /api/feeds/{name}/permissions": func(w http.ResponseWriter, r *http.Request) {
					cachedOnPut = h.orch.Feeds()
					if tt.applies {
						tier.Store("private")
					}
					writeJSON(w, http.StatusOK, map[string]string{"access_level": "private"})
				},
			})
			h.login()
			_, err := h.orch.ListFeeds(context.Background())
			require.NoError(t, err)

			got, err := h.orch.SetFeedAccessLevel(context.Background(), "f1", domain.AccessPrivate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.AccessLevel)
			assert.Equal(t, tt.want, h.orch.Feeds()[0].AccessLevel)

			require.Len(t, cachedOnPut, 1)
			assert.Equal(t, domain.AccessPaid, cachedOnPut[0].AccessLevel, "no optimistic update while the call is in flight")

			calls := h.calls()
			require.Len(t, calls, 3)
			assert.Equal(t, "private", calls[1].Body["access_level"])
			assert.Equal(t, "/api/feeds", calls[2].Path)
		})
	}
}

func TestSetFeedAccessLevel_RejectsUnknownTier(t *testing.T) {
	h := newHarness(t, nil)
	h.login()
	_, err := h.orch.SetFeedAccessLevel(context.Background(), "f1", "public")
	assert.True(t, IsKind(err, FailurePrecondition))
	assert.Empty(t, h.calls())
}

func TestSetFeedAccessLevel_ForbiddenExpiresSession(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"PUT /api/feeds/{name}/permissions": apiError(http.StatusForbidden, "admin only"),
	})
	h.login()

	_, err := h.orch.SetFeedAccessLevel(context.Background(), "f1", domain.AccessFree)
	assert.True(t, IsKind(err, FailureAuth))
	assert.Equal(t, session.StatusUnauthenticated, h.mgr.Status())
}

func TestListAPIKeys_UnauthorizedInvalidatesSession(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/iocs": iocsHandler(domain.Indicator{Value: "evil.test", Feed: "f1"}),
		"GET /api/keys": apiError(http.StatusUnauthorized, "Invalid token"),
	})
	h.login()
	_, err := h.orch.ListIndicators(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, h.orch.Indicators())

	var transitions []session.Status
	h.mgr.OnChange(func(_, to session.Status) { transitions = append(transitions, to) })

	_, err = h.orch.ListAPIKeys(context.Background())
	assert.True(t, IsKind(err, FailureAuth))
	assert.Equal(t, session.StatusUnauthenticated, h.mgr.Status())
	assert.Equal(t, []session.Status{session.StatusExpired, session.StatusUnauthenticated}, transitions)
	assert.Empty(t, h.orch.APIKeys())
	assert.Empty(t, h.orch.Indicators(), "every cache is dropped with the session")

	// Nothing more reaches the backend until the operator signs in again.
	before := len(h.calls())
	_, err = h.orch.ListIndicators(context.Background())
	assert.True(t, IsKind(err, FailureAuth))
	assert.Len(t, h.calls(), before)

	h.login()
	_, err = h.orch.ListIndicators(context.Background())
	require.NoError(t, err)
}

func TestListAPIKeys_EndpointMissing(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	keys, err := h.orch.ListAPIKeys(context.Background())
	assert.Error(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, h.orch.APIKeys())
	n := h.lastNotice()
	assert.Equal(t, SeverityInfo, n.Severity)
	assert.Equal(t, msgKeysUnavailable, n.Message)
	assert.Equal(t, session.StatusAuthenticated, h.mgr.Status())
}

func TestCreateAPIKey(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /api/keys": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusCreated, map[string]any{
				"status": "created",
				"key": map[string]any{
					"id": "k1", "name": "siem", "key": "kst_0123456789abcdefghijklmnop",
					"role": "reader", "created_at": "2026-01-02T03:04:05Z",
				},
			})
		},
		"GET /api/keys": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"keys": []map[string]any{
				{"id": "k1", "name": "siem", "key": "kst_0123456789abcdefghijklmnop", "role": "reader", "created_at": "2026-01-02T03:04:05Z"},
			}})
		},
	})
	h.login()

	key, err := h.orch.CreateAPIKey(context.Background(), "siem", domain.RoleReader)
	require.NoError(t, err)
	assert.Equal(t, "kst_0123456789abcdefghijklmnop", key.Secret)
	assert.Equal(t, "siem", h.calls()[0].Body["name"])
	assert.Equal(t, "reader", h.calls()[0].Body["role"])
	require.Len(t, h.orch.APIKeys(), 1)
	assert.Equal(t, "kst_0123456789abcdef...", h.orch.APIKeys()[0].MaskedSecret())
}

func TestCreateAPIKey_Preconditions(t *testing.T) {
	h := newHarness(t, nil)
	h.login()

	_, err := h.orch.CreateAPIKey(context.Background(), "  ", domain.RoleReader)
	assert.True(t, IsKind(err, FailurePrecondition))
	_, err = h.orch.CreateAPIKey(context.Background(), "siem", "owner")
	assert.True(t, IsKind(err, FailurePrecondition))
	assert.Empty(t, h.calls())
}

func TestDeleteAPIKey(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"DELETE /api/keys/{id}": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
		"GET /api/keys": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"keys": []any{}})
		},
	})
	h.login()
	var prompt string
	c := ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompt = p
		return true, nil
	})

	require.NoError(t, h.orch.DeleteAPIKey(context.Background(), "k1", c))
	assert.Equal(t, msgKeyDeletePrompt, prompt)
	assert.Equal(t, "/api/keys/k1", h.calls()[0].Path)
	assert.Contains(t, h.noticeMessages(), msgKeyDeleted)
}

func TestNoCredential_FailsLocally(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.orch.ListFeeds(context.Background())
	assert.True(t, IsKind(err, FailureAuth))
	err = h.orch.CreateIndicator(context.Background(), IndicatorDraft{Value: "evil.test", Feed: "f1"})
	assert.True(t, IsKind(err, FailureAuth))
	assert.Empty(t, h.calls())
	assert.Equal(t, msgSignedOut, h.lastNotice().Message)
}

func TestStats(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /api/iocs": iocsHandler(domain.Indicator{Value: "a"}, domain.Indicator{Value: "b"}),
		"GET /api/feeds": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"feeds": []map[string]any{{"name": "f1"}}})
		},
	})
	h.login()

	s, err := h.orch.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Indicators: 2, Feeds: 1, APIKeys: 0}, s)
}
