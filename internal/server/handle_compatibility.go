package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/armsx2/site-api/internal/compat"
	"github.com/armsx2/site-api/internal/store"
)

// CompatibilityMetadata describes the aggregated list as a whole.
type CompatibilityMetadata struct {
	TotalGames  int    `json:"totalGames"`
	GeneratedAt string `json:"generatedAt"`
}

// CompatibilityResponse is the body of GET /api/compatibility.
type CompatibilityResponse struct {
	Games    []compat.Game         `json:"games"`
	Metadata CompatibilityMetadata `json:"metadata"`
}

// SubmitResponse is the body of a successful POST /api/compatibility.
type SubmitResponse struct {
	Message string        `json:"message"`
	Games   []compat.Game `json:"games"`
}

// ValidationErrorResponse lists the missing or empty required fields.
type ValidationErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing"`
}

// loadGames reads both store documents, normalizes every record, and
// aggregates. Seed records are attributed to the official identity,
// community records without an explicit identity to "community".
func loadGames(st *store.Store) []compat.Game {
	seed := make([]compat.Submission, 0)
	for _, raw := range st.LoadSeed() {
		seed = append(seed, compat.Normalize(raw, compat.Defaults{SubmittedBy: "official-seed"}))
	}

	community := make([]compat.Submission, 0)
	for _, raw := range st.LoadSubmissions() {
		community = append(community, compat.Normalize(raw, compat.Defaults{SubmittedBy: "community"}))
	}

	return compat.Aggregate(seed, community)
}

func handleGetCompatibility(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games := loadGames(st)
		writeJSON(w, http.StatusOK, CompatibilityResponse{
			Games: games,
			Metadata: CompatibilityMetadata{
				TotalGames:  len(games),
				GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			},
		})
	}
}

func handleSubmitCompatibility(logger *slog.Logger, st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw compat.RawSubmission
		if err := readJSON(r, &raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if missing := missingFields(raw); len(missing) > 0 {
			writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Missing: missing,
			})
			return
		}

		if !chipsComplete(raw.Chips()) {
			writeError(w, http.StatusBadRequest,
				"each tested chip entry must include chipName, vulkanStatus, and openglStatus")
			return
		}

		sub := compat.Normalize(raw, compat.Defaults{})
		if err := st.AppendSubmission(sub); err != nil {
			logger.Error("persisting submission", "titleId", sub.TitleID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not save submission")
			return
		}

		logger.Info("submission stored",
			"titleId", sub.TitleID,
			"region", sub.Region,
			"status", sub.Status,
			"submittedBy", sub.SubmittedBy,
		)

		writeJSON(w, http.StatusCreated, SubmitResponse{
			Message: "Submission stored successfully.",
			Games:   loadGames(st),
		})
	}
}

// missingFields returns the required fields that are absent or blank,
// reported under their canonical names.
func missingFields(raw compat.RawSubmission) []string {
	var missing []string

	required := []struct {
		name  string
		value string
	}{
		{"title", raw.Title},
		{"status", raw.Status},
		{"notes", raw.Notes},
		{"region", raw.Region},
		{"version", raw.Version},
		{"titleId", raw.ResolvedTitleID()},
		{"submittedBy", raw.ResolvedSubmitter()},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}

	if len(raw.Chips()) == 0 {
		missing = append(missing, "testedChips")
	}

	return missing
}

// chipsComplete requires every entry to be an object carrying all three
// sub-fields. The lenient bare-string and defaulting paths are for stored
// records only, not new submissions.
func chipsComplete(chips []compat.RawChip) bool {
	for _, c := range chips {
		if !c.Present || c.BareName || c.Name == "" || c.Vulkan == "" || c.OpenGL == "" {
			return false
		}
	}
	return true
}
