package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"PantauSiKecil_AI/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves every endpoint the aggregator knows about and records
// the requests it received.
type fakeBackend struct {
	mu       sync.Mutex
	requests []*http.Request
	override map[string]http.HandlerFunc
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	h, ok := f.override[r.URL.Path]
	f.mu.Unlock()

	if ok {
		h(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/auth/me":
		_, _ = w.Write([]byte(`{"success":true,"data":{"user":{"id":7,"email":"ibu@example.com"}}}`))
	default:
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "path": r.URL.Path, "query": r.URL.RawQuery})
	}
}

func (f *fakeBackend) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.URL.Path)
	}
	return out
}

func (f *fakeBackend) find(path string) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.URL.Path == path {
			return r
		}
	}
	return nil
}

func newTestClient(t *testing.T, fb *fakeBackend) *Client {
	t.Helper()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	c := NewClient(&config.Config{
		BackendURL:     srv.URL,
		BackendTimeout: 2 * time.Second,
		Location:       time.UTC,
	})
	c.now = func() time.Time { return time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC) }
	return c
}

func TestFetchContext_Chat(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb)

	bundle, err := c.FetchContext(context.Background(), "tok-123", KindChat)
	require.NoError(t, err)

	assert.JSONEq(t, `7`, string(bundle.UserID()))
	for _, key := range append([]string{KeyUserData}, Sections(KindChat)...) {
		assert.Contains(t, bundle, key)
	}
	assert.NotContains(t, bundle, KeyFoodDatabase)
	assert.NotContains(t, bundle, KeyActivityDatabase)

	assert.ElementsMatch(t, []string{
		"/api/auth/me",
		"/api/users/7/profile",
		"/api/users/7/nutrition/meals",
		"/api/users/7/activities/history",
		"/api/users/7/activities/today",
		"/api/users/7/nutrition/summary",
		"/api/users/7/nutrition/needs",
	}, fb.paths())

	for _, p := range fb.paths() {
		assert.Equal(t, "Bearer tok-123", fb.find(p).Header.Get("Authorization"), p)
	}

	assert.Equal(t, "2025-06-01", fb.find("/api/users/7/nutrition/meals").URL.Query().Get("date"))
	history := fb.find("/api/users/7/activities/history").URL.Query()
	assert.Equal(t, "1945-08-17", history.Get("startDate"))
	assert.Equal(t, "2045-08-17", history.Get("endDate"))
}

func TestFetchContext_FoodRecommendation(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb)

	bundle, err := c.FetchContext(context.Background(), "tok", KindFoodRecommendation)
	require.NoError(t, err)

	assert.Contains(t, bundle, KeyFoodDatabase)
	assert.Contains(t, bundle, KeyUserNutritionNeed)
	assert.NotContains(t, bundle, KeyActivityDatabase)
	assert.NotNil(t, fb.find("/api/nutrition/food"))
}

func TestFetchContext_ActivityRecommendation(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb)

	bundle, err := c.FetchContext(context.Background(), "tok", KindActivityRecommendation)
	require.NoError(t, err)

	assert.Contains(t, bundle, KeyActivityDatabase)
	assert.Contains(t, bundle, KeyUserActivityHistory)
	assert.NotContains(t, bundle, KeyUserActivityTrack)
	assert.NotNil(t, fb.find("/api/activities"))
}

func TestFetchContext_StringUserID(t *testing.T) {
	fb := &fakeBackend{override: map[string]http.HandlerFunc{
		"/api/auth/me": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"user":{"id":"a1b2"}}}`))
		},
	}}
	c := newTestClient(t, fb)

	bundle, err := c.FetchContext(context.Background(), "tok", KindChat)
	require.NoError(t, err)
	assert.JSONEq(t, `"a1b2"`, string(bundle.UserID()))
	assert.NotNil(t, fb.find("/api/users/a1b2/profile"))
}

func TestFetchContext_IdentityFailure(t *testing.T) {
	fb := &fakeBackend{override: map[string]http.HandlerFunc{
		"/api/auth/me": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
		},
	}}
	c := newTestClient(t, fb)

	bundle, err := c.FetchContext(context.Background(), "tok", KindChat)
	require.Error(t, err)
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusInternalServerError, upErr.StatusCode)
	assert.Equal(t, []string{"/api/auth/me"}, fb.paths(), "nothing else is fetched without an identity")
}

func TestFetchContext_IdentityWithoutID(t *testing.T) {
	fb := &fakeBackend{override: map[string]http.HandlerFunc{
		"/api/auth/me": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"message":"Access token required"}`))
		},
	}}
	c := newTestClient(t, fb)

	_, err := c.FetchContext(context.Background(), "", KindChat)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetchContext_SectionFailureDiscardsBundle(t *testing.T) {
	fb := &fakeBackend{override: map[string]http.HandlerFunc{
		"/api/users/7/nutrition/needs": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		},
	}}
	c := newTestClient(t, fb)

	bundle, err := c.FetchContext(context.Background(), "tok", KindFoodRecommendation)
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "/nutrition/needs")
}

func TestFetchContext_MalformedJSON(t *testing.T) {
	fb := &fakeBackend{override: map[string]http.HandlerFunc{
		"/api/activities": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>gateway</html>`))
		},
	}}
	c := newTestClient(t, fb)

	_, err := c.FetchContext(context.Background(), "tok", KindActivityRecommendation)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetchContext_NoTokenStillCallsUpstream(t *testing.T) {
	fb := &fakeBackend{}
	c := newTestClient(t, fb)

	_, err := c.FetchContext(context.Background(), "", KindChat)
	require.NoError(t, err)

	me := fb.find("/api/auth/me")
	require.NotNil(t, me)
	assert.Empty(t, me.Header.Get("Authorization"))
}

func TestFetchContext_Timeout(t *testing.T) {
	fb := &fakeBackend{override: map[string]http.HandlerFunc{
		"/api/users/7/profile": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		},
	}}
	c := newTestClient(t, fb)
	c.timeout = 50 * time.Millisecond

	_, err := c.FetchContext(context.Background(), "tok", KindChat)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetchContext_UnknownKind(t *testing.T) {
	c := newTestClient(t, &fakeBackend{})

	_, err := c.FetchContext(context.Background(), "tok", Kind("horoscope"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
}
