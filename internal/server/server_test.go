package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/skelly-dev/doxsearch/internal/config"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

const cppref = "http://en.cppreference.com/w/"

func sampleIndex(t *testing.T, names ...string) *searchdata.Index {
	t.Helper()
	b := searchdata.NewBuilder()
	for _, name := range names {
		section := "classes"
		if strings.HasPrefix(name, "std::") {
			section = "functions"
		}
		label := strings.TrimPrefix(name, "std::")
		sym := searchdata.Symbol{Name: label, Section: section, URL: cppref + "cpp/" + label, External: true}
		if label != name {
			sym.Scope = "std"
		}
		if err := b.Add(sym); err != nil {
			t.Fatalf("Add(%q): %v", name, err)
		}
	}
	idx, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func staticLoader(idx *searchdata.Index) Loader {
	return func(context.Context) (*searchdata.Index, error) { return idx, nil }
}

func testConfig() config.ServerConfig {
	cfg := config.Default().Server
	cfg.DefaultLimit = 10
	cfg.MaxLimit = 2
	return cfg
}

func newTestServer(t *testing.T, load Loader) *Server {
	t.Helper()
	s, err := New(context.Background(), testConfig(), load)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeSearch(t *testing.T, rec *httptest.ResponseRecorder) SearchResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestSearchPrefix(t *testing.T) {
	s := newTestServer(t, staticLoader(sampleIndex(t, "va_list", "valarray", "vector")))
	resp := decodeSearch(t, get(t, s.Handler(), "/api/v1/search?q=va&limit=10"))

	if resp.Mode != ModePrefix || resp.Section != searchdata.SectionAll {
		t.Fatalf("mode/section = %q/%q", resp.Mode, resp.Section)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	if resp.Results[0].Label != "va_list" || resp.Results[1].Label != "valarray" {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
	if !resp.Results[0].External {
		t.Fatalf("expected external flag to survive: %+v", resp.Results[0])
	}
}

func TestSearchClampsLimit(t *testing.T) {
	s := newTestServer(t, staticLoader(sampleIndex(t, "va_list", "valarray", "vector")))
	resp := decodeSearch(t, get(t, s.Handler(), "/api/v1/search?q=v&limit=50"))
	if resp.Total != 3 || len(resp.Results) != 2 {
		t.Fatalf("total=%d returned=%d, want 3/2", resp.Total, len(resp.Results))
	}
}

func TestSearchSubstringAndSection(t *testing.T) {
	s := newTestServer(t, staticLoader(sampleIndex(t, "vector", "std::swap", "std::vswap")))

	resp := decodeSearch(t, get(t, s.Handler(), "/api/v1/search?q=swap&mode=substring&section=functions"))
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2: %+v", resp.Total, resp.Results)
	}
	for _, result := range resp.Results {
		if result.Scope != "std" {
			t.Fatalf("expected std scope, got %+v", result)
		}
	}

	resp = decodeSearch(t, get(t, s.Handler(), "/api/v1/search?q=swap&section=functions"))
	if resp.Total != 1 || resp.Results[0].Label != "swap" {
		t.Fatalf("prefix lookup in functions = %+v", resp.Results)
	}
}

func TestSearchZeroResultsSuggests(t *testing.T) {
	s := newTestServer(t, staticLoader(sampleIndex(t, "vector", "valarray")))
	resp := decodeSearch(t, get(t, s.Handler(), "/api/v1/search?q=vectr"))

	if resp.Total != 0 || len(resp.Results) != 0 {
		t.Fatalf("expected no results, got %+v", resp.Results)
	}
	if len(resp.Suggestions) == 0 || resp.Suggestions[0].Label != "vector" {
		t.Fatalf("expected vector suggestion, got %+v", resp.Suggestions)
	}
}

func TestSearchRejectsBadRequests(t *testing.T) {
	s := newTestServer(t, staticLoader(sampleIndex(t, "vector")))

	tests := []struct {
		target string
		status int
	}{
		{"/api/v1/search", http.StatusBadRequest},
		{"/api/v1/search?q=v&limit=0", http.StatusBadRequest},
		{"/api/v1/search?q=v&limit=abc", http.StatusBadRequest},
		{"/api/v1/search?q=v&mode=fuzzy", http.StatusBadRequest},
		{"/api/v1/search?q=v&section=pages", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := get(t, s.Handler(), tt.target)
		if rec.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d", tt.target, rec.Code, tt.status)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Fatalf("%s: expected error body, got %s", tt.target, rec.Body.String())
		}
	}
}

func TestSectionsAndHealth(t *testing.T) {
	s := newTestServer(t, staticLoader(sampleIndex(t, "vector", "valarray", "std::swap")))

	rec := get(t, s.Handler(), "/api/v1/sections")
	var body struct {
		Sections []SectionInfo `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode sections: %v", err)
	}
	if len(body.Sections) != 3 {
		t.Fatalf("expected all, classes, functions; got %+v", body.Sections)
	}
	if body.Sections[0].Name != "all" || body.Sections[0].Keys != 3 {
		t.Fatalf("unexpected all section: %+v", body.Sections[0])
	}
	if got := strings.Join(body.Sections[0].Letters, ""); got != "sv" {
		t.Fatalf("letters = %q, want sv", got)
	}

	if rec := get(t, s.Handler(), "/health/live"); rec.Code != http.StatusOK {
		t.Fatalf("live = %d", rec.Code)
	}
	if rec := get(t, s.Handler(), "/health/ready"); rec.Code != http.StatusOK {
		t.Fatalf("ready = %d", rec.Code)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t, staticLoader(sampleIndex(t, "vector")))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
		t.Fatalf("request id = %q, want req-42", got)
	}

	rec = get(t, s.Handler(), "/health/live")
	if got := rec.Header().Get(RequestIDHeader); len(got) != 36 {
		t.Fatalf("expected generated uuid, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, staticLoader(sampleIndex(t, "vector", "valarray")))
	get(t, s.Handler(), "/api/v1/search?q=v")
	get(t, s.Handler(), "/api/v1/search?q=zzz")

	rec := get(t, s.Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`doxsearch_lookups_total{mode="prefix",outcome="hit"} 1`,
		`doxsearch_lookups_total{mode="prefix",outcome="zero_result"} 1`,
		`doxsearch_index_entries{section="all"} 2`,
		`doxsearch_http_requests_total{method="GET",path="GET /api/v1/search",status="200"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestReloadKeepsPreviousIndexOnFailure(t *testing.T) {
	first := sampleIndex(t, "vector")
	second := sampleIndex(t, "vector", "valarray")
	calls := 0
	load := func(context.Context) (*searchdata.Index, error) {
		calls++
		switch calls {
		case 1:
			return first, nil
		case 2:
			return nil, errors.New("disk on fire")
		default:
			return second, nil
		}
	}
	s := newTestServer(t, load)

	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("expected reload failure")
	}
	if resp := decodeSearch(t, get(t, s.Handler(), "/api/v1/search?q=v")); resp.Total != 1 {
		t.Fatalf("expected previous index after failed reload, total = %d", resp.Total)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp := decodeSearch(t, get(t, s.Handler(), "/api/v1/search?q=v")); resp.Total != 2 {
		t.Fatalf("expected reloaded index, total = %d", resp.Total)
	}
}

func TestNewRejectsIndexWithoutAllSection(t *testing.T) {
	empty, err := searchdata.NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := New(context.Background(), testConfig(), staticLoader(empty)); !errors.Is(err, ErrNoAllSection) {
		t.Fatalf("expected ErrNoAllSection, got %v", err)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, staticLoader(sampleIndex(t, "vector")))
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + "/health/live"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("live status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
