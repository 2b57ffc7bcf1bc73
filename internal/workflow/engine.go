// internal/workflow/engine.go

// Package workflow runs the query lifecycle: parse, resolve, disambiguate,
// fetch, format. A workflow either completes in one Submit call or suspends
// for a user selection and finishes in Resume.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"airquality-agent/internal/agents"
	"airquality-agent/internal/cache"
	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/common/observability"
	"airquality-agent/internal/models"
	"airquality-agent/internal/parser"
	"airquality-agent/internal/resolver"
)

// Config bounds the engine.
type Config struct {
	ResultTTL time.Duration // cache validity for formatted results
}

// Engine orchestrates the workflow. All collaborators are injected; the
// engine owns no goroutines and is safe for concurrent Submits.
type Engine struct {
	parser   *parser.Parser
	resolver *resolver.Resolver
	agents   map[models.Intent]agents.Agent
	cache    *cache.Cache
	store    StateStore
	observer observability.Observer
	logger   logger.Logger
	config   Config
}

func NewEngine(
	p *parser.Parser,
	r *resolver.Resolver,
	agentList []agents.Agent,
	resultCache *cache.Cache,
	store StateStore,
	observer observability.Observer,
	log logger.Logger,
	config Config,
) *Engine {
	byIntent := make(map[models.Intent]agents.Agent, len(agentList))
	for _, a := range agentList {
		byIntent[a.Kind()] = a
	}
	if config.ResultTTL <= 0 {
		config.ResultTTL = time.Hour
	}
	if observer == nil {
		observer = observability.NoopObserver{}
	}
	return &Engine{
		parser:   p,
		resolver: r,
		agents:   byIntent,
		cache:    resultCache,
		store:    store,
		observer: observer,
		logger:   log.WithFields(map[string]interface{}{"component": "workflow"}),
		config:   config,
	}
}

// Submit runs a new query. Domain failures land in the returned state's
// Error field; the error return is reserved for infrastructure faults the
// caller cannot express as a workflow outcome.
func (e *Engine) Submit(ctx context.Context, rawQuery string) (*State, error) {
	state := newState(rawQuery)
	log := e.logger.WithFields(map[string]interface{}{"workflowId": state.ID})

	e.step(state, StepParsing, "")
	parsed := e.parser.Parse(rawQuery)
	state.Parsed = parsed
	log.Debug("query parsed", map[string]interface{}{
		"intent":     parsed.Intent,
		"confidence": parsed.Confidence,
	})

	e.step(state, StepResolvingLocation, "")
	if parsed.Intent == models.IntentComparison {
		if done := e.resolveTargets(ctx, state); done {
			return state, nil
		}
		return e.runFromFetch(ctx, state)
	}

	// An unknown intent is a valid classification, not a failure: resolution
	// still runs off a location-like tail and the query is answered as a
	// current reading at zero confidence.
	locationText := parsed.Location()
	if locationText == "" && parsed.Intent == models.IntentUnknown {
		locationText = fallbackLocation(rawQuery)
	}
	if locationText == "" {
		if parsed.Intent == models.IntentUnknown {
			return e.failState(state, stderrors.NewLocationNotFoundError(rawQuery)), nil
		}
		return e.failState(state, stderrors.NewInsufficientInputError("query does not name a location")), nil
	}

	candidates, err := e.resolve(ctx, locationText)
	if err != nil {
		return e.failState(state, asStandard(err)), nil
	}

	switch len(candidates) {
	case 0:
		return e.failState(state, stderrors.NewLocationNotFoundError(locationText)), nil
	case 1:
		state.Candidates = candidates
		state.Selected = &candidates[0]
	default:
		state.suspend(candidates)
		e.step(state, StepWaitingForSelection, fmt.Sprintf("%d candidates", len(candidates)))
		if err := e.store.Save(ctx, state); err != nil {
			log.WithError(err).Error("suspend save failed", nil)
			return e.failState(state, stderrors.NewUpstreamUnavailableError("state-store", err)), nil
		}
		return state, nil
	}

	return e.runFromFetch(ctx, state)
}

// Resume continues a suspended workflow with the user's selection. The
// stored parse and candidate list are reused as-is; resolution never
// re-runs. The stored state stays available until its TTL, so repeating
// the same selection yields the same result again, served from the result
// cache. An out-of-range selection fails the workflow and consumes the
// state; failed workflows are never resumable.
func (e *Engine) Resume(ctx context.Context, id string, index int) (*State, error) {
	state, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, stderrors.NewWorkflowNotWaitingError("unknown_or_expired")
	}
	if !state.WaitingForUser || state.Status != StatusWaiting {
		return nil, stderrors.NewWorkflowNotWaitingError(string(state.Status))
	}

	if index < 0 || index >= len(state.Candidates) {
		e.failState(state, stderrors.NewInvalidSelectionError(index, len(state.Candidates)))
		e.discard(ctx, id)
		return state, nil
	}

	selected := state.Candidates[index]
	state.Selected = &selected
	state.WaitingForUser = false
	state.Status = StatusRunning
	e.step(state, StepResolvingLocation, "selection applied")

	return e.runFromFetch(ctx, state)
}

// resolveTargets resolves every comparison target, auto-selecting the top
// candidate for each. Reports true when the workflow already terminated.
func (e *Engine) resolveTargets(ctx context.Context, state *State) bool {
	list := state.Parsed.Entities[models.EntityLocations]
	names := strings.Split(list, ",")

	targets := make([]models.LocationCandidate, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		candidates, err := e.resolve(ctx, name)
		if err != nil {
			e.failState(state, asStandard(err))
			return true
		}
		if len(candidates) == 0 {
			e.failState(state, stderrors.NewLocationNotFoundError(name))
			return true
		}
		targets = append(targets, candidates[0])
	}

	if len(targets) < 2 {
		e.failState(state, stderrors.NewInsufficientInputError("comparison requires at least two resolvable locations"))
		return true
	}

	state.Targets = targets
	return false
}

// resolve runs location search through the result cache so repeated
// references to the same text within the TTL share one search, with the
// same per-key single-flight guarantee as data fetches.
func (e *Engine) resolve(ctx context.Context, text string) ([]models.LocationCandidate, error) {
	value, err := e.cache.GetOrCompute(cache.Key("resolve", text), e.config.ResultTTL, func() (interface{}, error) {
		return e.resolver.Resolve(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	candidates, _ := value.([]models.LocationCandidate)
	return candidates, nil
}

func (e *Engine) runFromFetch(ctx context.Context, state *State) (*State, error) {
	e.step(state, StepFetchingData, "")

	intent := state.Parsed.Intent
	if intent == models.IntentUnknown {
		// unclassified queries default to a current reading
		intent = models.IntentCurrentReading
	}
	agent, ok := e.agents[intent]
	if !ok {
		return e.failState(state, &stderrors.StandardError{
			Code:      stderrors.ErrCodeInternal,
			Message:   "No agent registered for intent",
			Details:   string(state.Parsed.Intent),
			Timestamp: time.Now().UTC(),
		}), nil
	}

	req := &agents.Request{
		Metric:   state.Parsed.Metric(),
		Duration: state.Parsed.Entities[models.EntityDuration],
		Targets:  state.Targets,
	}
	if state.Selected != nil {
		req.Location = *state.Selected
	}

	computed := false
	value, err := e.cache.GetOrCompute(e.resultKey(state, req), e.config.ResultTTL, func() (interface{}, error) {
		computed = true
		return agent.Fetch(ctx, req)
	})
	if err != nil {
		code := stderrors.CodeOf(err)
		e.observer.AgentFailure(string(state.Parsed.Intent), string(code))
		return e.failState(state, asStandard(err)), nil
	}

	outcome, ok := value.(*agents.Outcome)
	if !ok {
		return e.failState(state, &stderrors.StandardError{
			Code:      stderrors.ErrCodeInternal,
			Message:   "Unexpected cached value type",
			Timestamp: time.Now().UTC(),
		}), nil
	}

	e.step(state, StepFormatting, "")
	result := &Result{
		Answer:    outcome.Summary,
		Intent:    state.Parsed.Intent,
		Location:  state.Selected,
		Locations: state.Targets,
		Data:      outcome.Data,
		Cached:    !computed,
		NoData:    outcome.NoData,
	}

	state.complete(result)
	e.observer.StepTransition(string(StepDone))
	return state, nil
}

// resultKey derives the cache key from the semantic arguments of the fetch:
// intent, canonical entities, and the resolved location codes. Workflow id
// and raw phrasing differences that parse identically share a key.
func (e *Engine) resultKey(state *State, req *agents.Request) string {
	codes := make([]string, 0, len(req.Targets)+1)
	if state.Selected != nil {
		codes = append(codes, string(state.Selected.Level)+":"+state.Selected.Code)
	}
	for _, t := range req.Targets {
		codes = append(codes, string(t.Level)+":"+t.Code)
	}
	return cache.Key(string(state.Parsed.Intent), req.Metric, req.Duration, codes)
}

func (e *Engine) step(state *State, step Step, note string) {
	state.transition(step, note)
	e.observer.StepTransition(string(step))
}

func (e *Engine) failState(state *State, stdErr *stderrors.StandardError) *State {
	state.fail(stdErr)
	e.observer.StepTransition(string(StepFailed))
	e.observer.WorkflowFailed(string(stdErr.Code))
	e.logger.Warn("workflow failed", map[string]interface{}{
		"workflowId": state.ID,
		"errorCode":  stdErr.Code,
		"details":    stdErr.Details,
	})
	return state
}

func (e *Engine) discard(ctx context.Context, id string) {
	if err := e.store.Delete(ctx, id); err != nil {
		e.logger.WithError(err).Warn("state delete failed", map[string]interface{}{"workflowId": id})
	}
}

// fallbackLocation pulls a location-like tail out of a query the rule
// table could not classify, so resolution still gets a chance to run.
func fallbackLocation(raw string) string {
	text := strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "?!. "))
	for _, sep := range []string{" in ", " at ", " for "} {
		if idx := strings.LastIndex(text, sep); idx >= 0 {
			if loc := strings.TrimSpace(text[idx+len(sep):]); loc != "" {
				return loc
			}
		}
	}
	return ""
}

func asStandard(err error) *stderrors.StandardError {
	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &stderrors.StandardError{
		Code:      stderrors.ErrCodeInternal,
		Message:   "Internal error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}
