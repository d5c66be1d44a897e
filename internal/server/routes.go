package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, d Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("ARMSX2 Site API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(d.Logger, d.Checks))

	r.Get("/api/compatibility", handleGetCompatibility(d.Store))
	r.Post("/api/compatibility", handleSubmitCompatibility(d.Logger, d.Store))
	r.Get("/api/releases", handleReleases(d.Logger, d.GitHub))
	r.Post("/api/send-email", handleContact(d.Logger, d.Mailer, d.Config.ContactRecipient))

	r.Get("/auth/github", handleAuthStart(d.Logger, d.GitHub, d.States))
	r.Get("/auth/github/callback", handleAuthCallback(d.Logger, d.GitHub, d.States, d.Config.FrontendOrigin))
}
