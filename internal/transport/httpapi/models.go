// internal/transport/httpapi/models.go
package httpapi

import (
	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/workflow"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// SelectRequest is the body of POST /query/select.
type SelectRequest struct {
	WorkflowID string `json:"workflowId"`
	Selection  int    `json:"selection"`
}

// CandidateView is one disambiguation option offered to the client. Index
// is what the client sends back in SelectRequest.Selection.
type CandidateView struct {
	Index       int    `json:"index"`
	DisplayName string `json:"displayName"`
	Level       string `json:"level"`
	Code        string `json:"code"`
}

// QueryResponse is the uniform body for both query endpoints.
type QueryResponse struct {
	WorkflowID string                   `json:"workflowId"`
	Status     string                   `json:"status"`
	Answer     string                   `json:"answer,omitempty"`
	Result     *workflow.Result         `json:"result,omitempty"`
	Candidates []CandidateView          `json:"candidates,omitempty"`
	Error      *stderrors.StandardError `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
