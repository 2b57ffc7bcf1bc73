// internal/transport/httpapi/handlers.go
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/metrics"
	"airquality-agent/internal/workflow"
)

const maxBodyBytes = 1 << 16

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if err := validateBody(queryRequestValidator, body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req QueryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request is not valid JSON")
		return
	}

	start := time.Now()
	state, err := s.engine.Submit(r.Context(), req.Query)
	if err != nil {
		s.logger.WithError(err).Error("submit failed", nil)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if state.Parsed != nil {
		metrics.QueriesSubmitted.WithLabelValues(string(state.Parsed.Intent)).Inc()
		metrics.WorkflowDuration.WithLabelValues(string(state.Parsed.Intent)).Observe(time.Since(start).Seconds())
	}
	s.record(r.Context(), start, string(state.Status))

	s.writeState(w, state)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if err := validateBody(selectRequestValidator, body); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SelectRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request is not valid JSON")
		return
	}

	start := time.Now()
	state, err := s.engine.Resume(r.Context(), req.WorkflowID, req.Selection)
	if err != nil {
		code := stderrors.CodeOf(err)
		if code == stderrors.ErrCodeWorkflowNotWaiting {
			s.writeJSON(w, http.StatusConflict, QueryResponse{
				WorkflowID: req.WorkflowID,
				Status:     string(workflow.StatusFailed),
				Error:      asStandard(err),
			})
			return
		}
		s.logger.WithError(err).Error("resume failed", map[string]interface{}{
			"workflowId": req.WorkflowID,
		})
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.record(r.Context(), start, string(state.Status))
	s.writeState(w, state)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK
	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			resp.Checks[check.Name] = err.Error()
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.cache.Stats())
}

// writeState maps a terminal or suspended workflow state onto the wire.
func (s *Server) writeState(w http.ResponseWriter, state *workflow.State) {
	resp := QueryResponse{
		WorkflowID: state.ID,
		Status:     string(state.Status),
	}

	switch state.Status {
	case workflow.StatusWaiting:
		resp.Candidates = make([]CandidateView, 0, len(state.Candidates))
		for i, c := range state.Candidates {
			resp.Candidates = append(resp.Candidates, CandidateView{
				Index:       i,
				DisplayName: c.DisplayName(),
				Level:       string(c.Level),
				Code:        c.Code,
			})
		}
		s.writeJSON(w, http.StatusOK, resp)
	case workflow.StatusDone:
		resp.Result = state.Result
		if state.Result != nil {
			resp.Answer = state.Result.Answer
		}
		s.writeJSON(w, http.StatusOK, resp)
	case workflow.StatusFailed:
		resp.Error = state.Error
		s.writeJSON(w, httpStatusFor(state.Error), resp)
	default:
		s.writeJSON(w, http.StatusOK, resp)
	}
}

func httpStatusFor(stdErr *stderrors.StandardError) int {
	if stdErr == nil {
		return http.StatusInternalServerError
	}
	switch stdErr.Code {
	case stderrors.ErrCodeLocationNotFound:
		return http.StatusNotFound
	case stderrors.ErrCodeInvalidSelection, stderrors.ErrCodeInsufficientInput:
		return http.StatusBadRequest
	case stderrors.ErrCodeWorkflowNotWaiting:
		return http.StatusConflict
	case stderrors.ErrCodeUpstreamUnavailable, stderrors.ErrCodeSearchTimeout, stderrors.ErrCodeMetricFetchTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func asStandard(err error) *stderrors.StandardError {
	var stdErr *stderrors.StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &stderrors.StandardError{
		Code:      stderrors.ErrCodeInternal,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

func (s *Server) record(ctx context.Context, start time.Time, status string) {
	if s.obs == nil {
		return
	}
	s.obs.RecordQueryProcessed(ctx, status)
	s.obs.RecordQueryDuration(ctx, time.Since(start), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("response encode failed", nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
