package server

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/armsx2/site-api/internal/github"
)

const downloadExt = ".apk"

var versionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// ReleaseInfo is one resolved download entry.
type ReleaseInfo struct {
	ID         int64  `json:"id"`
	Version    string `json:"version"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Date       string `json:"date"`
	Prerelease bool   `json:"isPrerelease"`
}

// ReleasesResponse is the body of GET /api/releases. Stable and nightly
// lists keep the provider's newest-first order; Latest is the newest release
// with a download, prerelease or not.
type ReleasesResponse struct {
	Latest  *ReleaseInfo  `json:"latest"`
	Stable  []ReleaseInfo `json:"stable"`
	Nightly []ReleaseInfo `json:"nightly"`
}

func handleReleases(logger *slog.Logger, gh *github.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		releases, err := gh.ListReleases(r.Context())
		if err != nil {
			logger.Error("fetching releases", "error", err)
			writeError(w, http.StatusBadGateway, "could not fetch releases")
			return
		}

		resp := ReleasesResponse{
			Stable:  []ReleaseInfo{},
			Nightly: []ReleaseInfo{},
		}
		for _, rel := range releases {
			url := downloadAsset(rel)
			if url == "" {
				continue
			}
			info := ReleaseInfo{
				ID:         rel.ID,
				Version:    cleanVersion(rel.TagName),
				Name:       rel.Name,
				URL:        url,
				Date:       rel.PublishedAt,
				Prerelease: rel.Prerelease,
			}
			if info.Name == "" {
				info.Name = rel.TagName
			}
			if rel.Prerelease {
				resp.Nightly = append(resp.Nightly, info)
			} else {
				resp.Stable = append(resp.Stable, info)
			}
			if resp.Latest == nil {
				latest := info
				resp.Latest = &latest
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// downloadAsset returns the release's downloadable asset URL, or "" when the
// release carries none.
func downloadAsset(rel github.Release) string {
	for _, asset := range rel.Assets {
		if strings.HasSuffix(strings.ToLower(asset.BrowserDownloadURL), downloadExt) {
			return asset.BrowserDownloadURL
		}
	}
	return ""
}

// cleanVersion extracts a bare x.y.z from a tag name, stripping a leading
// "v" when no full triple is present.
func cleanVersion(tag string) string {
	if tag == "" {
		return "0"
	}
	if m := versionPattern.FindStringSubmatch(tag); m != nil {
		return m[1]
	}
	return strings.TrimPrefix(tag, "v")
}
