// internal/agents/forecast/handler.go

// Package forecast fetches predicted values for one location over a
// horizon derived from the query's duration phrase.
package forecast

import (
	"context"
	"errors"
	"fmt"

	"airquality-agent/internal/agents"
	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
)

// Handler implements agents.Agent for forecast queries.
type Handler struct {
	reader agents.ForecastReader
	config Config
	logger logger.Logger
}

func NewHandler(reader agents.ForecastReader, config Config, log logger.Logger) *Handler {
	return &Handler{
		reader: reader,
		config: config,
		logger: log.WithFields(map[string]interface{}{"agent": "forecast"}),
	}
}

func (h *Handler) Kind() models.Intent {
	return models.IntentForecast
}

func (h *Handler) Fetch(ctx context.Context, req *agents.Request) (*agents.Outcome, error) {
	input := Input{Location: req.Location, Metric: req.Metric, Duration: req.Duration}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.logger.WithError(err).Error("forecast fetch failed", map[string]interface{}{
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

	horizon := agents.ParseDurationPhrase(input.Duration, h.config.DefaultHorizon)

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	points, err := h.reader.Forecast(ctx, input.Location.Code, input.Location.Level, input.Metric, horizon)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewMetricFetchTimeoutError("forecast")
		}
		return nil, stderrors.NewUpstreamUnavailableError("metric-store", err)
	}

	if len(points) == 0 {
		return &Output{NoData: true}, nil
	}

	output := &Output{Points: points}
	peak := points[0]
	low := points[0]
	for _, p := range points[1:] {
		if p.Predicted > peak.Predicted {
			peak = p
		}
		if p.Predicted < low.Predicted {
			low = p
		}
	}
	output.Peak = &peak
	output.Low = &low
	return output, nil
}

func (h *Handler) toOutcome(input Input, output *Output) *agents.Outcome {
	label := agents.MetricLabel(input.Metric)
	place := input.Location.DisplayName()

	if output.NoData {
		return &agents.Outcome{
			Kind:    models.IntentForecast,
			NoData:  true,
			Summary: fmt.Sprintf("No %s forecast is available for %s.", label, place),
		}
	}

	return &agents.Outcome{
		Kind: models.IntentForecast,
		Summary: fmt.Sprintf("%s forecast for %s: peak %.1f (%s) around %s, low %.1f.",
			label, place, output.Peak.Predicted, models.AirQualityCategory(output.Peak.Predicted),
			output.Peak.Period.Format("Jan 2 15:04"), output.Low.Predicted),
		Data: map[string]interface{}{
			"points": output.Points,
			"peak":   output.Peak,
			"low":    output.Low,
		},
	}
}
