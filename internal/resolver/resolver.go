// internal/resolver/resolver.go
package resolver

import (
	"context"
	"errors"
	"sort"
	"time"

	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
)

// Searcher is the external location-search collaborator. An empty slice is
// a valid "no match" result; errors indicate transport failure.
type Searcher interface {
	Search(ctx context.Context, text string) ([]models.LocationCandidate, error)
}

// Config bounds a Resolver.
type Config struct {
	Timeout      time.Duration
	CandidateCap int
}

// Resolver normalizes the raw candidate stream from a Searcher into the
// ordered, deduplicated, capped list the workflow disambiguates over.
type Resolver struct {
	searcher Searcher
	config   Config
	logger   logger.Logger
}

func New(searcher Searcher, config Config, log logger.Logger) *Resolver {
	if config.CandidateCap <= 0 {
		config.CandidateCap = 20
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	return &Resolver{
		searcher: searcher,
		config:   config,
		logger:   log.WithFields(map[string]interface{}{"component": "resolver"}),
	}
}

// Resolve returns the candidates for a location reference. Zero candidates
// is a valid result, not an error. Exact and prefix matches always suppress
// fuzzy matches: fuzzy results only survive when no exact/prefix match
// exists at all.
func (r *Resolver) Resolve(ctx context.Context, locationText string) ([]models.LocationCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	raw, err := r.searcher.Search(ctx, locationText)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewSearchTimeoutError(locationText)
		}
		return nil, stderrors.NewUpstreamUnavailableError("location-search", err)
	}

	candidates := normalize(raw)
	if len(candidates) > r.config.CandidateCap {
		candidates = candidates[:r.config.CandidateCap]
	}

	r.logger.Debug("location resolved", map[string]interface{}{
		"locationText": locationText,
		"candidates":   len(candidates),
	})
	return candidates, nil
}

func normalize(raw []models.LocationCandidate) []models.LocationCandidate {
	exact := make([]models.LocationCandidate, 0, len(raw))
	fuzzy := make([]models.LocationCandidate, 0, len(raw))
	for _, c := range raw {
		if c.MatchType == models.MatchFuzzy {
			fuzzy = append(fuzzy, c)
		} else {
			exact = append(exact, c)
		}
	}

	var candidates []models.LocationCandidate
	if len(exact) > 0 {
		// Stable secondary key so equal-rank candidates always present in
		// the same order across calls.
		sort.SliceStable(exact, func(i, j int) bool {
			return exact[i].Code < exact[j].Code
		})
		candidates = exact
	} else {
		sort.SliceStable(fuzzy, func(i, j int) bool {
			if fuzzy[i].Similarity != fuzzy[j].Similarity {
				return fuzzy[i].Similarity > fuzzy[j].Similarity
			}
			return fuzzy[i].Code < fuzzy[j].Code
		})
		candidates = fuzzy
	}

	return dedupe(candidates)
}

type levelCode struct {
	level models.LocationLevel
	code  string
}

func dedupe(candidates []models.LocationCandidate) []models.LocationCandidate {
	seen := make(map[levelCode]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := levelCode{level: c.Level, code: c.Code}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
