package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mpdharvest/internal/cache"
	"mpdharvest/internal/dash"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger is a no-op logger for testing purposes.
type mockLogger struct{}

func (m *mockLogger) Debugf(format string, v ...interface{}) {}
func (m *mockLogger) Infof(format string, v ...interface{})  {}
func (m *mockLogger) Warnf(format string, v ...interface{})  {}
func (m *mockLogger) Errorf(format string, v ...interface{}) {}

const manifest = `<MPD mediaPresentationDuration="PT4S"><Period><AdaptationSet mimeType="audio/mp4">
<SegmentTemplate timescale="1" duration="2" initialization="$RepresentationID$/init.mp4" media="$RepresentationID$/$Number$.m4s"/>
<Representation id="a" bandwidth="64000"/>
</AdaptationSet></Period></MPD>`

type fakeFetcher struct {
	calls int
	data  string
	err   error
}

func (f *fakeFetcher) FetchManifest(ctx context.Context, manifestURL string) ([]byte, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte(f.data), strings.Replace(manifestURL, "origin", "edge", 1), nil
}

func newTestAPI(f *fakeFetcher) http.Handler {
	return New(f, cache.New(&mockLogger{}, time.Minute), &mockLogger{})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestResolveRemote(t *testing.T) {
	f := &fakeFetcher{data: manifest}
	handler := newTestAPI(f)

	req := httptest.NewRequest(http.MethodGet, "/resolve?url=http://origin.test/live/m.mpd", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.Equal(t, "http://edge.test/live/", resp.BaseURL)
	assert.Equal(t, []string{
		"http://edge.test/live/a/init.mp4",
		"http://edge.test/live/a/1.m4s",
		"http://edge.test/live/a/2.m4s",
	}, resp.URLs)

	// Second request is served from the cache.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/resolve?url=http://origin.test/live/m.mpd", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.calls)
}

func TestResolveBody(t *testing.T) {
	handler := newTestAPI(&fakeFetcher{})

	req := httptest.NewRequest(http.MethodPost, "/resolve?url=http://test.com/x/m.mpd", strings.NewReader(manifest))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Len(t, resp.URLs, 3)
	assert.NotNil(t, resp.Diagnostics)
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		name    string
		fetcher *fakeFetcher
		method  string
		target  string
		body    string
		status  int
	}{
		{"missing url", &fakeFetcher{}, http.MethodGet, "/resolve", "", http.StatusBadRequest},
		{"fetch failure", &fakeFetcher{err: errors.New("unreachable")}, http.MethodGet, "/resolve?url=http://h/m.mpd", "", http.StatusBadGateway},
		{"malformed", &fakeFetcher{data: "<MPD>"}, http.MethodGet, "/resolve?url=http://h/m.mpd", "", http.StatusUnprocessableEntity},
		{"no base url", &fakeFetcher{}, http.MethodPost, "/resolve?url=m.mpd", manifest, http.StatusUnprocessableEntity},
		{"post without url", &fakeFetcher{}, http.MethodPost, "/resolve", manifest, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestAPI(c.fetcher).ServeHTTP(rec, httptest.NewRequest(c.method, c.target, strings.NewReader(c.body)))
			assert.Equal(t, c.status, rec.Code)
		})
	}
}

func TestResolveReportsDiagnostics(t *testing.T) {
	doc := `<MPD><Period><AdaptationSet><Representation id="x" bandwidth="1"/></AdaptationSet></Period></MPD>`
	rec := httptest.NewRecorder()
	newTestAPI(&fakeFetcher{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/resolve?url=http://h/m.mpd", strings.NewReader(doc)))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Empty(t, resp.URLs)
	assert.Contains(t, resp.Diagnostics, dash.Diagnostic{
		Scope:   dash.ScopeRepresentation,
		Message: `segment template not present for representation "x", other addressing modes not supported`,
	})
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestAPI(&fakeFetcher{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
