// internal/agents/trend/handler.go

// Package trend fetches a historical series for one location and derives
// direction statistics from it.
package trend

import (
	"context"
	"errors"
	"fmt"

	"airquality-agent/internal/agents"
	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
)

// Handler implements agents.Agent for trend queries.
type Handler struct {
	reader agents.SeriesReader
	config Config
	logger logger.Logger
}

func NewHandler(reader agents.SeriesReader, config Config, log logger.Logger) *Handler {
	return &Handler{
		reader: reader,
		config: config,
		logger: log.WithFields(map[string]interface{}{"agent": "trend"}),
	}
}

func (h *Handler) Kind() models.Intent {
	return models.IntentTrend
}

func (h *Handler) Fetch(ctx context.Context, req *agents.Request) (*agents.Outcome, error) {
	input := Input{Location: req.Location, Metric: req.Metric, Duration: req.Duration}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.logger.WithError(err).Error("trend fetch failed", map[string]interface{}{
			"locationCode": input.Location.Code,
			"metric":       input.Metric,
			"duration":     input.Duration,
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

	window := agents.ParseDurationPhrase(input.Duration, h.config.DefaultWindow)

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	samples, err := h.reader.Series(ctx, input.Location.Code, input.Location.Level, input.Metric, window)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewMetricFetchTimeoutError("trend")
		}
		return nil, stderrors.NewUpstreamUnavailableError("metric-store", err)
	}

	if len(samples) == 0 {
		return &Output{NoData: true, Direction: DirectionInsufficient}, nil
	}

	output := &Output{Samples: samples}
	output.Mean, output.Min, output.Max = summarize(samples)
	output.Direction, output.ChangePercent = direction(samples, h.config.DeltaPercent)
	return output, nil
}

func summarize(samples []models.Sample) (mean, min, max float64) {
	min = samples[0].Value
	max = samples[0].Value
	var sum float64
	for _, s := range samples {
		sum += s.Value
		if s.Value < min {
			min = s.Value
		}
		if s.Value > max {
			max = s.Value
		}
	}
	return sum / float64(len(samples)), min, max
}

// direction compares the mean of the earlier half of the series against the
// later half. A change larger than deltaPercent in either direction yields a
// direction call; anything smaller is stable. Fewer than two samples cannot
// support a call at all.
func direction(samples []models.Sample, deltaPercent float64) (string, float64) {
	if len(samples) < 2 {
		return DirectionInsufficient, 0
	}

	mid := len(samples) / 2
	earlier := meanOf(samples[:mid])
	later := meanOf(samples[mid:])

	if earlier == 0 {
		if later > 0 {
			return DirectionIncreasing, 100
		}
		return DirectionStable, 0
	}

	change := (later - earlier) / earlier * 100
	switch {
	case change > deltaPercent:
		return DirectionIncreasing, change
	case change < -deltaPercent:
		return DirectionDecreasing, change
	default:
		return DirectionStable, change
	}
}

func meanOf(samples []models.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s.Value
	}
	return sum / float64(len(samples))
}

func (h *Handler) toOutcome(input Input, output *Output) *agents.Outcome {
	label := agents.MetricLabel(input.Metric)
	place := input.Location.DisplayName()

	if output.NoData {
		return &agents.Outcome{
			Kind:    models.IntentTrend,
			NoData:  true,
			Summary: fmt.Sprintf("No historical %s data is available for %s.", label, place),
		}
	}

	var summary string
	if output.Direction == DirectionInsufficient {
		summary = fmt.Sprintf("Not enough %s data for %s to determine a trend.", label, place)
	} else {
		summary = fmt.Sprintf("%s in %s is %s (%.1f%% change); average %.1f, range %.1f to %.1f.",
			label, place, output.Direction, output.ChangePercent, output.Mean, output.Min, output.Max)
	}

	return &agents.Outcome{
		Kind:    models.IntentTrend,
		Summary: summary,
		Data: map[string]interface{}{
			"samples":       output.Samples,
			"mean":          output.Mean,
			"min":           output.Min,
			"max":           output.Max,
			"direction":     output.Direction,
			"changePercent": output.ChangePercent,
		},
	}
}
