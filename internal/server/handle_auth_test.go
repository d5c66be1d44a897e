package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/armsx2/site-api/internal/github"
	"github.com/armsx2/site-api/internal/oauthstate"
)

const testFrontendOrigin = "http://localhost:5173"

// fakeGitHub serves both the OAuth token endpoint and the user API.
func fakeGitHub(t *testing.T, tokenStatus int, tokenBody, userBody map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login/oauth/access_token":
			w.WriteHeader(tokenStatus)
			json.NewEncoder(w).Encode(tokenBody)
		case "/user":
			json.NewEncoder(w).Encode(userBody)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func authRouter(gh *github.Client, states oauthstate.Store) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/auth/github", handleAuthStart(testLogger(), gh, states))
	r.Get("/auth/github/callback", handleAuthCallback(testLogger(), gh, states, testFrontendOrigin))
	return r
}

func TestAuthStartRedirects(t *testing.T) {
	states := oauthstate.NewMemory()
	gh := github.NewClient(github.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		CallbackURL:  "http://localhost:4000/auth/github/callback",
	})
	r := authRouter(gh, states)

	req := httptest.NewRequest(http.MethodGet, "/auth/github", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}

	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parsing redirect location: %v", err)
	}
	if loc.Host != "github.com" || loc.Path != "/login/oauth/authorize" {
		t.Errorf("unexpected redirect target: %s", loc)
	}

	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("expected state parameter in redirect")
	}
	ok, err := states.TakeIfValid(context.Background(), state)
	if err != nil || !ok {
		t.Errorf("expected issued state to be stored, ok=%v err=%v", ok, err)
	}
}

func TestAuthStartUnconfigured(t *testing.T) {
	r := authRouter(github.NewClient(github.Config{}), oauthstate.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/auth/github", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when OAuth unconfigured, got %d", w.Code)
	}
}

func TestCallbackMissingParams(t *testing.T) {
	r := authRouter(github.NewClient(github.Config{ClientID: "id", ClientSecret: "s"}), oauthstate.NewMemory())

	for _, path := range []string{
		"/auth/github/callback",
		"/auth/github/callback?code=abc",
		"/auth/github/callback?state=abc",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestCallbackUnknownState(t *testing.T) {
	r := authRouter(github.NewClient(github.Config{ClientID: "id", ClientSecret: "s"}), oauthstate.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=never-issued", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown state, got %d", w.Code)
	}
}

func TestCallbackSuccessPostsIdentity(t *testing.T) {
	srv := fakeGitHub(t, http.StatusOK,
		map[string]any{"access_token": "gho_token"},
		map[string]any{"login": "octocat", "avatar_url": "https://example.com/a.png"},
	)
	defer srv.Close()

	gh := github.NewClient(github.Config{
		ClientID: "id", ClientSecret: "secret",
		OAuthBaseURL: srv.URL, APIBaseURL: srv.URL,
	})
	states := oauthstate.NewMemory()
	r := authRouter(gh, states)

	if err := states.Put(context.Background(), "state-1"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=state-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML response, got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "armsx2/github-auth") {
		t.Errorf("expected success message type in page")
	}
	if !strings.Contains(body, "octocat") {
		t.Errorf("expected username in page payload")
	}
	if !strings.Contains(body, testFrontendOrigin) {
		t.Errorf("expected message targeted at the frontend origin")
	}
}

func TestCallbackStateSingleUse(t *testing.T) {
	srv := fakeGitHub(t, http.StatusOK,
		map[string]any{"access_token": "gho_token"},
		map[string]any{"login": "octocat"},
	)
	defer srv.Close()

	gh := github.NewClient(github.Config{
		ClientID: "id", ClientSecret: "secret",
		OAuthBaseURL: srv.URL, APIBaseURL: srv.URL,
	})
	states := oauthstate.NewMemory()
	r := authRouter(gh, states)

	if err := states.Put(context.Background(), "state-1"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=state-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first callback: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=state-1", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("replayed state: expected 400, got %d", w.Code)
	}
}

func TestCallbackExchangeFailure(t *testing.T) {
	srv := fakeGitHub(t, http.StatusOK,
		map[string]any{"error": "bad_verification_code", "error_description": "The code is expired."},
		nil,
	)
	defer srv.Close()

	gh := github.NewClient(github.Config{
		ClientID: "id", ClientSecret: "secret",
		OAuthBaseURL: srv.URL, APIBaseURL: srv.URL,
	})
	states := oauthstate.NewMemory()
	r := authRouter(gh, states)

	states.Put(context.Background(), "state-1")

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=bad&state=state-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "armsx2/github-auth-error") {
		t.Errorf("expected error message type in page")
	}
	if !strings.Contains(body, "expired") {
		t.Errorf("expected provider message surfaced in page")
	}
}
