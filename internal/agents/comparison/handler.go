// internal/agents/comparison/handler.go

// Package comparison fetches current readings for multiple locations and
// ranks them. Individual locations failing or lacking data do not abort
// the comparison; they are reported as excluded.
package comparison

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"airquality-agent/internal/agents"
	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
)

// Handler implements agents.Agent for comparison queries.
type Handler struct {
	reader agents.CurrentReader
	config Config
	logger logger.Logger
}

func NewHandler(reader agents.CurrentReader, config Config, log logger.Logger) *Handler {
	return &Handler{
		reader: reader,
		config: config,
		logger: log.WithFields(map[string]interface{}{"agent": "comparison"}),
	}
}

func (h *Handler) Kind() models.Intent {
	return models.IntentComparison
}

func (h *Handler) Fetch(ctx context.Context, req *agents.Request) (*agents.Outcome, error) {
	input := Input{Targets: req.Targets, Metric: req.Metric}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.logger.WithError(err).Error("comparison fetch failed", map[string]interface{}{
			"targets": len(input.Targets),
			"metric":  input.Metric,
		})
		return nil, err
	}

	return h.toOutcome(input, output), nil
}

func (h *Handler) execute(ctx context.Context, input Input) (*Output, error) {
	if len(input.Targets) < 2 {
		return nil, stderrors.NewInsufficientInputError("comparison requires at least two locations")
	}
	if input.Metric == "" {
		return nil, stderrors.NewInsufficientInputError("metric is required")
	}

	output := &Output{Entries: make([]Entry, 0, len(input.Targets))}
	fetchErrors := 0

	for _, target := range input.Targets {
		entry := Entry{Name: target.DisplayName(), Code: target.Code, Level: target.Level}

		reading, err := h.fetchOne(ctx, target, input.Metric)
		if err != nil {
			// A timed-out target is excluded like any other per-target
			// failure; only all targets failing aborts the comparison.
			fetchErrors++
			h.logger.WithError(err).Warn("comparison target fetch failed", map[string]interface{}{
				"locationCode": target.Code,
			})
		} else if reading != nil {
			v := reading.Value
			entry.Value = &v
			entry.Category = models.AirQualityCategory(v)
		}

		if entry.Value == nil {
			output.Excluded = append(output.Excluded, entry.Name)
		}
		output.Entries = append(output.Entries, entry)
	}

	// Every target failing on transport means the store is down, not that
	// the locations lack data.
	if fetchErrors == len(input.Targets) {
		return nil, stderrors.NewUpstreamUnavailableError("metric-store",
			fmt.Errorf("all %d comparison fetches failed", fetchErrors))
	}

	h.rank(output)
	return output, nil
}

func (h *Handler) fetchOne(ctx context.Context, target models.LocationCandidate, metric string) (*models.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	reading, err := h.reader.CurrentReading(ctx, target.Code, target.Level, metric)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewMetricFetchTimeoutError("comparison")
		}
		return nil, err
	}
	return reading, nil
}

// rank orders entries with values ascending and fills the derived stats.
// The sort is stable so equal values keep their input order.
func (h *Handler) rank(output *Output) {
	ranked := make([]Entry, 0, len(output.Entries))
	for _, e := range output.Entries {
		if e.Value != nil {
			ranked = append(ranked, e)
		}
	}
	if len(ranked) == 0 {
		output.NoData = true
		return
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Value < *ranked[j].Value
	})
	output.Ranked = ranked

	best := ranked[0]
	worst := ranked[len(ranked)-1]
	output.Best = &best
	output.Worst = &worst
	output.Difference = *worst.Value - *best.Value

	output.AllSafe = true
	output.AllUnhealthy = true
	for _, e := range ranked {
		if *e.Value > h.config.SafeBound {
			output.AllSafe = false
		}
		if *e.Value <= h.config.UnhealthyBand {
			output.AllUnhealthy = false
		}
	}
}

func (h *Handler) toOutcome(input Input, output *Output) *agents.Outcome {
	label := agents.MetricLabel(input.Metric)

	if output.NoData {
		return &agents.Outcome{
			Kind:    models.IntentComparison,
			NoData:  true,
			Summary: fmt.Sprintf("No %s data is available for any of the requested locations.", label),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s comparison: %s has the lowest level (%.1f) and %s the highest (%.1f), a difference of %.1f.",
		label, output.Best.Name, *output.Best.Value, output.Worst.Name, *output.Worst.Value, output.Difference)
	if output.AllSafe {
		b.WriteString(" Air quality is within the safe range everywhere compared.")
	} else if output.AllUnhealthy {
		b.WriteString(" Air quality is unhealthy in every location compared.")
	}
	if len(output.Excluded) > 0 {
		fmt.Fprintf(&b, " No data for: %s.", strings.Join(output.Excluded, ", "))
	}

	return &agents.Outcome{
		Kind:    models.IntentComparison,
		Summary: b.String(),
		Data: map[string]interface{}{
			"entries":      output.Entries,
			"ranked":       output.Ranked,
			"best":         output.Best,
			"worst":        output.Worst,
			"difference":   output.Difference,
			"allSafe":      output.AllSafe,
			"allUnhealthy": output.AllUnhealthy,
			"excluded":     output.Excluded,
		},
	}
}
