package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi31"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi31.Spec {
	r := openapi31.NewReflector()
	r.Spec.Info.Title = "ARMSX2 Site API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the ARMSX2 emulator website: compatibility list, GitHub identity handshake, contact relay, and download resolution.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/compatibility
	getCompat, _ := r.NewOperationContext(http.MethodGet, "/api/compatibility")
	getCompat.SetSummary("Aggregated compatibility list")
	getCompat.SetDescription("Returns the per-title compatibility groups aggregated from the curated seed list and all community submissions.")
	getCompat.AddRespStructure(CompatibilityResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getCompat)

	// POST /api/compatibility
	postCompat, _ := r.NewOperationContext(http.MethodPost, "/api/compatibility")
	postCompat.SetSummary("Submit a compatibility report")
	postCompat.SetDescription("Validates and stores one community compatibility report, then returns the refreshed aggregated list.")
	postCompat.AddRespStructure(SubmitResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postCompat.AddRespStructure(ValidationErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postCompat.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(postCompat)

	// GET /api/releases
	getReleases, _ := r.NewOperationContext(http.MethodGet, "/api/releases")
	getReleases.SetSummary("Resolved download links")
	getReleases.SetDescription("Fetches the project's GitHub releases and resolves stable and nightly download URLs.")
	getReleases.AddRespStructure(ReleasesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getReleases.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(getReleases)

	// POST /api/send-email
	postContact, _ := r.NewOperationContext(http.MethodPost, "/api/send-email")
	postContact.SetSummary("Contact form relay")
	postContact.SetDescription("Relays a contact-form message to the site team over SMTP.")
	postContact.AddReqStructure(ContactRequest{})
	postContact.AddRespStructure(ContactResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postContact.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postContact.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(postContact)

	// GET /auth/github
	getAuth, _ := r.NewOperationContext(http.MethodGet, "/auth/github")
	getAuth.SetSummary("Start GitHub OAuth")
	getAuth.SetDescription("Generates a single-use state token and redirects the popup to GitHub's authorize page.")
	getAuth.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusFound))
	getAuth.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(getAuth)

	// GET /auth/github/callback
	getCallback, _ := r.NewOperationContext(http.MethodGet, "/auth/github/callback")
	getCallback.SetSummary("GitHub OAuth callback")
	getCallback.SetDescription("Consumes the state token, exchanges the code for an access token, and renders an HTML page that posts the identity to the opener window.")
	getCallback.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK), openapi.WithContentType("text/html"))
	getCallback.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getCallback.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusInternalServerError), openapi.WithContentType("text/html"))
	_ = r.AddOperation(getCallback)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
