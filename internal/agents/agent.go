// internal/agents/agent.go

// Package agents defines the shared contract every data-retrieval agent
// implements and the collaborator interfaces the agents fetch through.
package agents

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"airquality-agent/internal/models"
)

// Request carries the resolved location(s) and query-specific parameters
// from the workflow engine to one agent.
type Request struct {
	Location models.LocationCandidate   `json:"location"`
	Targets  []models.LocationCandidate `json:"targets,omitempty"` // comparison only
	Metric   string                     `json:"metric"`
	Duration string                     `json:"duration,omitempty"` // raw phrase, e.g. "7 days"
}

// Outcome is the normalized agent result. NoData marks the valid
// "nothing measured here" case, which is not a failure.
type Outcome struct {
	Kind    models.Intent          `json:"kind"`
	NoData  bool                   `json:"noData"`
	Summary string                 `json:"summary"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Agent is one data-retrieval adapter. Fetch returns an error only for
// invalid parameters or collaborator failure; absent data is an Outcome
// with NoData set.
type Agent interface {
	Kind() models.Intent
	Fetch(ctx context.Context, req *Request) (*Outcome, error)
}

// durationPhrase matches "7 days", "2 weeks", "last month" style fragments.
var durationPhrase = regexp.MustCompile(`(\d+)?\s*(hour|day|week|month|year)s?`)

// ParseDurationPhrase converts a parser duration entity into a window.
// Unrecognized phrases fall back to the given default.
func ParseDurationPhrase(phrase string, fallback time.Duration) time.Duration {
	m := durationPhrase.FindStringSubmatch(phrase)
	if m == nil {
		return fallback
	}

	count := 1
	if m[1] != "" {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			count = n
		}
	}

	var unit time.Duration
	switch m[2] {
	case "hour":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	case "month":
		unit = 30 * 24 * time.Hour
	case "year":
		unit = 365 * 24 * time.Hour
	default:
		return fallback
	}

	return time.Duration(count) * unit
}
