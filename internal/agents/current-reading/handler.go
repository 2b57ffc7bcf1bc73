// internal/agents/current-reading/handler.go

// Package currentreading fetches the latest measurement for a single
// resolved location.
package currentreading

import (
	"context"
	"errors"
	"fmt"

	"airquality-agent/internal/agents"
	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
)

// Handler implements agents.Agent for current-reading queries.
type Handler struct {
	reader agents.CurrentReader
	config Config
	logger logger.Logger
}

func NewHandler(reader agents.CurrentReader, config Config, log logger.Logger) *Handler {
	return &Handler{
		reader: reader,
		config: config,
		logger: log.WithFields(map[string]interface{}{"agent": "current-reading"}),
	}
}

func (h *Handler) Kind() models.Intent {
	return models.IntentCurrentReading
}

func (h *Handler) Fetch(ctx context.Context, req *agents.Request) (*agents.Outcome, error) {
	input := Input{Location: req.Location, Metric: req.Metric}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.logger.WithError(err).Error("current reading fetch failed", map[string]interface{}{
			"locationCode": input.Location.Code,
			"metric":       input.Metric,
		})
		return nil, err
	}

	return h.toOutcome(input, output), nil
}

func (h *Handler) execute(ctx context.Context, input Input) (*Output, error) {
	if input.Location.Code == "" {
		return nil, stderrors.NewInsufficientInputError("location code is required")
	}
	if input.Metric == "" {
		return nil, stderrors.NewInsufficientInputError("metric is required")
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	reading, err := h.reader.CurrentReading(ctx, input.Location.Code, input.Location.Level, input.Metric)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewMetricFetchTimeoutError("current-reading")
		}
		return nil, stderrors.NewUpstreamUnavailableError("metric-store", err)
	}

	if reading == nil {
		return &Output{NoData: true}, nil
	}

	return &Output{
		Reading:  reading,
		Category: models.AirQualityCategory(reading.Value),
	}, nil
}

func (h *Handler) toOutcome(input Input, output *Output) *agents.Outcome {
	label := agents.MetricLabel(input.Metric)
	place := input.Location.DisplayName()

	if output.NoData {
		return &agents.Outcome{
			Kind:    models.IntentCurrentReading,
			NoData:  true,
			Summary: fmt.Sprintf("No %s data is currently available for %s.", label, place),
		}
	}

	return &agents.Outcome{
		Kind: models.IntentCurrentReading,
		Summary: fmt.Sprintf("Current %s in %s: %.1f %s (%s).",
			label, place, output.Reading.Value, output.Reading.Unit, output.Category),
		Data: map[string]interface{}{
			"reading":  output.Reading,
			"category": output.Category,
		},
	}
}
