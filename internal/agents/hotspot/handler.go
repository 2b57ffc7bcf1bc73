// internal/agents/hotspot/handler.go

// Package hotspot fetches elevated-pollution clusters within a location
// and classifies them by severity.
package hotspot

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

// Handler implements agents.Agent for hotspot queries.
type Handler struct {
	reader agents.HotspotReader
	config Config
	logger logger.Logger
}

func NewHandler(reader agents.HotspotReader, config Config, log logger.Logger) *Handler {
	return &Handler{
		reader: reader,
		config: config,
		logger: log.WithFields(map[string]interface{}{"agent": "hotspot"}),
	}
}

func (h *Handler) Kind() models.Intent {
	return models.IntentHotspot
}

func (h *Handler) Fetch(ctx context.Context, req *agents.Request) (*agents.Outcome, error) {
	input := Input{Location: req.Location, Duration: req.Duration}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.logger.WithError(err).Error("hotspot fetch failed", map[string]interface{}{
			"locationCode": input.Location.Code,
		})
		return nil, err
	}

	return h.toOutcome(input, output), nil
}

func (h *Handler) execute(ctx context.Context, input Input) (*Output, error) {
	if input.Location.Code == "" {
		return nil, stderrors.NewInsufficientInputError("location code is required")
	}

	window := agents.ParseDurationPhrase(input.Duration, h.config.DefaultWindow)

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	records, err := h.reader.Hotspots(ctx, input.Location.Code, input.Location.Level, window)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewMetricFetchTimeoutError("hotspot")
		}
		return nil, stderrors.NewUpstreamUnavailableError("metric-store", err)
	}

	classified := make([]ClassifiedHotspot, 0, len(records))
	for _, rec := range records {
		if rec.Value <= h.config.Minimum {
			continue
		}
		classified = append(classified, ClassifiedHotspot{
			HotspotRecord: rec,
			Severity:      h.severity(rec.Value),
		})
	}

	if len(classified) == 0 {
		return &Output{NoData: true}, nil
	}

	sort.SliceStable(classified, func(i, j int) bool {
		return classified[i].Value > classified[j].Value
	})
	return &Output{Hotspots: classified}, nil
}

func (h *Handler) severity(value float64) string {
	switch {
	case value > h.config.Severe:
		return "Severe"
	case value > h.config.VeryPoor:
		return "Very Poor"
	case value > h.config.Poor:
		return "Poor"
	default:
		return "Moderate"
	}
}

func (h *Handler) toOutcome(input Input, output *Output) *agents.Outcome {
	place := input.Location.DisplayName()

	if output.NoData {
		return &agents.Outcome{
			Kind:    models.IntentHotspot,
			NoData:  true,
			Summary: fmt.Sprintf("No pollution hotspots detected in %s.", place),
		}
	}

	worst := output.Hotspots[0]
	names := make([]string, 0, len(output.Hotspots))
	for _, hs := range output.Hotspots {
		names = append(names, hs.LocalityName)
	}

	return &agents.Outcome{
		Kind: models.IntentHotspot,
		Summary: fmt.Sprintf("%d pollution hotspot(s) in %s; worst is %s at %.1f (%s). Affected: %s.",
			len(output.Hotspots), place, worst.LocalityName, worst.Value, worst.Severity,
			strings.Join(names, ", ")),
		Data: map[string]interface{}{
			"hotspots": output.Hotspots,
		},
	}
}
