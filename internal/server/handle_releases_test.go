package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/armsx2/site-api/internal/github"
)

func releasesRouter(apiURL string) *chi.Mux {
	gh := github.NewClient(github.Config{APIBaseURL: apiURL, Repo: "ARMSX2/ARMSX2"})
	r := chi.NewRouter()
	r.Get("/api/releases", handleReleases(testLogger(), gh))
	return r
}

func TestReleasesResolvesDownloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id": 3, "tag_name": "nightly-20251030", "name": "Nightly 2025-10-30",
				"prerelease":   true,
				"published_at": "2025-10-30T00:00:00Z",
				"assets":       []map[string]string{{"browser_download_url": "https://example.com/nightly.APK"}},
			},
			{
				"id": 2, "tag_name": "v0.12.1", "name": "",
				"prerelease":   false,
				"published_at": "2025-10-01T00:00:00Z",
				"assets": []map[string]string{
					{"browser_download_url": "https://example.com/checksums.txt"},
					{"browser_download_url": "https://example.com/armsx2-0.12.1.apk"},
				},
			},
			{
				"id": 1, "tag_name": "v0.11.0", "name": "First release",
				"prerelease":   false,
				"published_at": "2025-09-01T00:00:00Z",
				// No downloadable asset: dropped from the response.
				"assets": []map[string]string{{"browser_download_url": "https://example.com/source.zip"}},
			},
		})
	}))
	defer srv.Close()

	r := releasesRouter(srv.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/releases", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ReleasesResponse
	json.NewDecoder(w.Body).Decode(&resp)

	if len(resp.Stable) != 1 || len(resp.Nightly) != 1 {
		t.Fatalf("expected 1 stable and 1 nightly, got %d/%d", len(resp.Stable), len(resp.Nightly))
	}
	// The newest release with a download wins, prerelease included.
	if resp.Latest == nil || resp.Latest.ID != 3 || !resp.Latest.Prerelease {
		t.Errorf("expected latest to be the newest downloadable release, got %+v", resp.Latest)
	}
	if resp.Stable[0].Name != "v0.12.1" {
		t.Errorf("expected tag name fallback for empty release name, got %q", resp.Stable[0].Name)
	}
	if resp.Stable[0].URL != "https://example.com/armsx2-0.12.1.apk" {
		t.Errorf("expected apk asset resolved, got %q", resp.Stable[0].URL)
	}
	if resp.Nightly[0].URL != "https://example.com/nightly.APK" {
		t.Errorf("expected case-insensitive asset match, got %q", resp.Nightly[0].URL)
	}
}

func TestReleasesUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	r := releasesRouter(srv.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/releases", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestCleanVersion(t *testing.T) {
	cases := []struct{ tag, want string }{
		{"v0.12.1", "0.12.1"},
		{"release-1.2.3-hotfix", "1.2.3"},
		{"v20251030", "20251030"},
		{"nightly", "nightly"},
		{"", "0"},
	}
	for _, c := range cases {
		if got := cleanVersion(c.tag); got != c.want {
			t.Errorf("cleanVersion(%q) = %q, want %q", c.tag, got, c.want)
		}
	}
}
