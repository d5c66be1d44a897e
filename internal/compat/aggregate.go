package compat

import (
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NoteEntry is one submission's note in a group's history.
type NoteEntry struct {
	Note        string `json:"note"`
	Status      string `json:"status"`
	SubmittedBy string `json:"submittedBy"`
	CreatedAt   string `json:"createdAt"`
	Version     string `json:"version"`
}

// Game is one aggregated per-title record, recomputed on every read and
// never persisted.
type Game struct {
	Title           string         `json:"title"`
	TitleID         string         `json:"titleId"`
	Region          string         `json:"region"`
	Status          string         `json:"status"`
	GlobalScore     float64        `json:"globalScore"`
	Version         string         `json:"version"`
	Notes           string         `json:"notes"`
	NotesList       []NoteEntry    `json:"notesList"`
	TestedChips     []TestedChip   `json:"testedChips"`
	Submissions     []Submission   `json:"submissions"`
	SubmissionCount int            `json:"submissionCount"`
	StatusBreakdown map[string]int `json:"statusBreakdown"`
}

// Aggregate groups seed and community submissions by title identity and
// computes each group's consensus status, score, and chip union. It is a
// pure function: identical inputs yield identical output. Seed submissions
// are appended first, which is the tiebreak for identical timestamps.
func Aggregate(seed, community []Submission) []Game {
	type group struct {
		title   string
		titleID string
		region  string
		subs    []Submission
	}

	groups := make(map[string]*group)
	var order []string

	add := func(s Submission) {
		idPart := s.TitleID
		if idPart == "" {
			idPart = s.Title
		}
		regionPart := s.Region
		if regionPart == "" {
			regionPart = "GLOBAL"
		}
		key := strings.ToUpper(idPart) + "::" + strings.ToUpper(regionPart)

		g, ok := groups[key]
		if !ok {
			g = &group{title: s.Title, titleID: s.TitleID, region: s.Region}
			groups[key] = g
			order = append(order, key)
		}
		g.subs = append(g.subs, s)
	}

	for _, s := range seed {
		add(s)
	}
	for _, s := range community {
		add(s)
	}

	games := make([]Game, 0, len(order))
	for _, key := range order {
		g := groups[key]

		sort.SliceStable(g.subs, func(i, j int) bool {
			return parseCreatedAt(g.subs[i].CreatedAt).Before(parseCreatedAt(g.subs[j].CreatedAt))
		})

		var total float64
		for _, s := range g.subs {
			total += ScoreForStatus(s.Status)
		}
		avg := 0.0
		if len(g.subs) > 0 {
			avg = total / float64(len(g.subs))
		}

		notesList := make([]NoteEntry, 0, len(g.subs))
		breakdown := make(map[string]int, len(g.subs))
		for _, s := range g.subs {
			notesList = append(notesList, NoteEntry{
				Note:        s.Notes,
				Status:      s.Status,
				SubmittedBy: s.SubmittedBy,
				CreatedAt:   s.CreatedAt,
				Version:     s.Version,
			})
			status := strings.ToLower(s.Status)
			if status == "" {
				status = "unknown"
			}
			breakdown[status]++
		}

		latest := g.subs[len(g.subs)-1]
		version := latest.Version
		if version == "" {
			version = "Unknown"
		}

		games = append(games, Game{
			Title:           g.title,
			TitleID:         g.titleID,
			Region:          g.region,
			Status:          StatusFromAverage(avg),
			GlobalScore:     math.Round(avg*100) / 100,
			Version:         version,
			Notes:           latest.Notes,
			NotesList:       notesList,
			TestedChips:     unionChips(g.subs),
			Submissions:     g.subs,
			SubmissionCount: len(g.subs),
			StatusBreakdown: breakdown,
		})
	}

	c := collate.New(language.English)
	sort.SliceStable(games, func(i, j int) bool {
		return c.CompareString(games[i].Title, games[j].Title) < 0
	})

	return games
}

// unionChips merges the members' chip lists, deduplicating on the exact
// (name, vulkan, opengl) triple. First occurrence keeps its position.
func unionChips(subs []Submission) []TestedChip {
	seen := make(map[string]struct{})
	var union []TestedChip

	for _, s := range subs {
		for _, chip := range s.TestedChips {
			key := chip.ChipName + "|" + chip.VulkanStatus + "|" + chip.OpenGLStatus
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			union = append(union, chip)
		}
	}

	return union
}

// parseCreatedAt tolerates malformed timestamps by treating them as the zero
// time, which sorts such submissions first.
func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
