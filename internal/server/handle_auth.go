package server

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/armsx2/site-api/internal/github"
	"github.com/armsx2/site-api/internal/oauthstate"
)

const (
	authSuccessType = "armsx2/github-auth"
	authErrorType   = "armsx2/github-auth-error"
)

// authResultPage posts the handshake result to the opener window and closes
// the popup. The message targets only the configured frontend origin.
var authResultPage = template.Must(template.New("authresult").Parse(`<!DOCTYPE html>
<html>
  <body style="background:#0b0c11;color:#e3e3e3;font-family:Arial,sans-serif;display:flex;align-items:center;justify-content:center;height:100vh;">
    <div>
      <h3>GitHub authentication complete.</h3>
      <p>You can close this window.</p>
    </div>
    <script>
      (function() {
        var data = { type: {{.Type}}, payload: {{.Payload}} };
        if (window.opener) {
          window.opener.postMessage(data, {{.Origin}});
          setTimeout(function() { window.close(); }, 400);
        }
      })();
    </script>
  </body>
</html>`))

func renderAuthResult(w http.ResponseWriter, status int, origin, msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = authResultPage.Execute(w, struct {
		Type    string
		Payload template.JS
		Origin  string
	}{
		Type:    msgType,
		Payload: template.JS(raw),
		Origin:  origin,
	})
}

// AuthUserPayload is the identity relayed to the opener on success.
type AuthUserPayload struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type authErrorPayload struct {
	Message string `json:"message"`
}

func handleAuthStart(logger *slog.Logger, gh *github.Client, states oauthstate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !gh.Configured() {
			writeError(w, http.StatusInternalServerError, "GitHub OAuth is not configured")
			return
		}

		token, err := oauthstate.NewToken()
		if err != nil {
			logger.Error("generating oauth state", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := states.Put(r.Context(), token); err != nil {
			logger.Error("storing oauth state", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.Redirect(w, r, gh.AuthorizeURL(token), http.StatusFound)
	}
}

func handleAuthCallback(logger *slog.Logger, gh *github.Client, states oauthstate.Store, frontendOrigin string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			writeError(w, http.StatusBadRequest, "missing code or state")
			return
		}

		ok, err := states.TakeIfValid(r.Context(), state)
		if err != nil {
			logger.Error("validating oauth state", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid or expired state")
			return
		}

		if !gh.Configured() {
			writeError(w, http.StatusInternalServerError, "GitHub OAuth is not configured")
			return
		}

		accessToken, err := gh.ExchangeCode(r.Context(), code, state)
		if err != nil {
			logger.Error("github token exchange failed", "error", err)
			renderAuthResult(w, http.StatusInternalServerError, frontendOrigin, authErrorType,
				authErrorPayload{Message: err.Error()})
			return
		}

		user, err := gh.FetchUser(r.Context(), accessToken)
		if err != nil {
			logger.Error("github profile fetch failed", "error", err)
			renderAuthResult(w, http.StatusInternalServerError, frontendOrigin, authErrorType,
				authErrorPayload{Message: "Failed to fetch GitHub user profile."})
			return
		}

		logger.Info("github identity verified", "login", user.Login)
		renderAuthResult(w, http.StatusOK, frontendOrigin, authSuccessType, AuthUserPayload{
			Username: user.Login,
			Avatar:   user.AvatarURL,
		})
	}
}
