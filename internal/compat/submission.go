// Package compat holds the compatibility list domain: the canonical
// submission shape, normalization of the heterogeneous record formats found
// in the seed file and community log, and the per-title aggregation that
// produces the published list.
package compat

import (
	"encoding/json"
	"strings"
	"time"
)

// TestedChip is one device chip report: per graphics backend status for a
// single SoC.
type TestedChip struct {
	ChipName     string `json:"chipName"`
	VulkanStatus string `json:"vulkanStatus"`
	OpenGLStatus string `json:"openglStatus"`
}

// Submission is the canonical compatibility report. Every text field is a
// non-empty defaulted string after Normalize; TestedChips may be empty.
type Submission struct {
	Title       string       `json:"title"`
	TitleID     string       `json:"titleId"`
	Region      string       `json:"region"`
	Status      string       `json:"status"`
	Notes       string       `json:"notes"`
	TestedChips []TestedChip `json:"testedChips"`
	Version     string       `json:"version"`
	SubmittedBy string       `json:"submittedBy"`
	CreatedAt   string       `json:"createdAt"`
}

// RawChip is a tested-chip entry as it appears on the wire or on disk.
// Accepted shapes: a bare chip name string, an object in any of the known
// field spellings, or null. Decoding never fails; unrecognized shapes decode
// as an absent entry.
type RawChip struct {
	Name   string
	Vulkan string
	OpenGL string

	// Present is false for null or undecodable entries.
	Present bool
	// BareName marks entries that were a plain string.
	BareName bool
}

func (c *RawChip) UnmarshalJSON(data []byte) error {
	*c = RawChip{}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Name = name
		c.Present = true
		c.BareName = true
		return nil
	}

	var obj struct {
		ChipName     string `json:"chipName"`
		SocName      string `json:"soc_name"`
		Name         string `json:"name"`
		VulkanStatus string `json:"vulkanStatus"`
		VulkanSnake  string `json:"vulkan_status"`
		Vulkan       string `json:"vulkan"`
		OpenGLStatus string `json:"openglStatus"`
		OpenGLSnake  string `json:"opengl_status"`
		OpenGL       string `json:"opengl"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}

	c.Name = firstNonEmpty(obj.ChipName, obj.SocName, obj.Name)
	c.Vulkan = firstNonEmpty(obj.VulkanStatus, obj.VulkanSnake, obj.Vulkan)
	c.OpenGL = firstNonEmpty(obj.OpenGLStatus, obj.OpenGLSnake, obj.OpenGL)
	c.Present = true
	return nil
}

// RawSubmission is a record straight out of the seed file, the community log,
// or a POST body. Both accepted spellings of each field are retained until
// Normalize resolves them.
type RawSubmission struct {
	Title         string    `json:"title"`
	TitleID       string    `json:"titleId"`
	TitleIDHyphen string    `json:"title-id"`
	Region        string    `json:"region"`
	Status        string    `json:"status"`
	Compatibility string    `json:"compatibility"`
	Notes         string    `json:"notes"`
	TestedChips   []RawChip `json:"testedChips"`
	TestedSocs    []RawChip `json:"tested_socs"`
	Version       string    `json:"version"`
	GithubUser    string    `json:"githubUser"`
	SubmittedBy   string    `json:"submittedBy"`
	CreatedAt     string    `json:"createdAt"`
}

// ParseRaw decodes a stored record best-effort. Type mismatches on single
// fields leave those fields zero rather than rejecting the record.
func ParseRaw(data []byte) RawSubmission {
	var raw RawSubmission
	_ = json.Unmarshal(data, &raw)
	return raw
}

// ResolvedTitleID returns the title id under either accepted spelling.
func (r RawSubmission) ResolvedTitleID() string {
	return firstNonEmpty(r.TitleIDHyphen, r.TitleID)
}

// ResolvedStatus returns the status under either accepted spelling.
func (r RawSubmission) ResolvedStatus() string {
	return firstNonEmpty(r.Status, r.Compatibility)
}

// ResolvedSubmitter returns the submitter identity, preferring the explicit
// GitHub login field.
func (r RawSubmission) ResolvedSubmitter() string {
	return firstNonEmpty(r.GithubUser, r.SubmittedBy)
}

// Chips returns the tested-chip list under either accepted spelling.
func (r RawSubmission) Chips() []RawChip {
	if r.TestedSocs != nil {
		return r.TestedSocs
	}
	return r.TestedChips
}

// Defaults supplies fallbacks for fields absent from a raw record.
type Defaults struct {
	// SubmittedBy is used when the record carries no submitter identity.
	SubmittedBy string
	// Now stamps records without a createdAt. time.Now when nil.
	Now func() time.Time
}

// Normalize converts a raw record into the canonical submission shape. It
// never fails: absent or malformed optional fields fall back to defaults,
// and every text field in the result is non-empty except Notes.
func Normalize(raw RawSubmission, d Defaults) Submission {
	status := trimOr(raw.ResolvedStatus(), "Unknown")

	rawChips := raw.Chips()
	chips := make([]TestedChip, 0, len(rawChips))
	for _, c := range rawChips {
		chips = append(chips, normalizeChip(c, status))
	}

	submitter := raw.ResolvedSubmitter()
	if submitter == "" {
		submitter = d.SubmittedBy
	}
	if submitter == "" {
		submitter = "anonymous"
	}

	createdAt := raw.CreatedAt
	if createdAt == "" {
		now := time.Now
		if d.Now != nil {
			now = d.Now
		}
		createdAt = now().UTC().Format(time.RFC3339)
	}

	return Submission{
		Title:       trimOr(raw.Title, "Unknown Title"),
		TitleID:     trimOr(raw.ResolvedTitleID(), "UNKNOWN"),
		Region:      trimOr(raw.Region, "NTSC-U"),
		Status:      status,
		Notes:       strings.TrimSpace(raw.Notes),
		TestedChips: chips,
		Version:     trimOr(raw.Version, "Unknown"),
		SubmittedBy: submitter,
		CreatedAt:   createdAt,
	}
}

// normalizeChip coerces one raw chip entry to the canonical triple. A bare
// chip name inherits the record's overall status for both backends; an
// absent entry becomes the unknown chip with the fallback status.
func normalizeChip(c RawChip, fallbackStatus string) TestedChip {
	fb := fallbackStatus
	if fb == "" {
		fb = "Unknown"
	}

	if !c.Present || (c.BareName && c.Name == "") {
		return TestedChip{ChipName: "Unknown SoC", VulkanStatus: fb, OpenGLStatus: fb}
	}
	if c.BareName {
		return TestedChip{ChipName: c.Name, VulkanStatus: fb, OpenGLStatus: fb}
	}

	return TestedChip{
		ChipName:     firstNonEmpty(c.Name, "Unknown SoC"),
		VulkanStatus: firstNonEmpty(c.Vulkan, fb),
		OpenGLStatus: firstNonEmpty(c.OpenGL, fb),
	}
}

func trimOr(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
