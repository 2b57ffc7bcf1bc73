// internal/workflow/state.go
package workflow

import (
	"time"

	"github.com/google/uuid"

	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/models"
)

// Status is the lifecycle phase of one workflow.
type Status string

const (
	StatusRunning Status = "running"
	StatusWaiting Status = "waiting_for_user"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Step names the stations a workflow passes through. They appear in the
// trace and in the transition metric labels.
type Step string

const (
	StepParsing             Step = "PARSING"
	StepResolvingLocation   Step = "RESOLVING_LOCATION"
	StepWaitingForSelection Step = "WAITING_FOR_SELECTION"
	StepFetchingData        Step = "FETCHING_DATA"
	StepFormatting          Step = "FORMATTING"
	StepDone                Step = "DONE"
	StepFailed              Step = "FAILED"
)

// TraceEntry records one transition for diagnostics. Seq is the position
// of the entry in the trace, so assertions and log correlation never depend
// on wall-clock timestamps.
type TraceEntry struct {
	Seq       int       `json:"seq"`
	Step      Step      `json:"step"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// Result is the final answer handed back to the client.
type Result struct {
	Answer    string                     `json:"answer"`
	Intent    models.Intent              `json:"intent"`
	Location  *models.LocationCandidate  `json:"location,omitempty"`
	Locations []models.LocationCandidate `json:"locations,omitempty"`
	Data      map[string]interface{}     `json:"data,omitempty"`
	Cached    bool                       `json:"cached"`
	NoData    bool                       `json:"noData"`
}

// State is the full workflow record. It round-trips through the suspended
// state store as JSON, so every field a resumption needs is serializable.
//
// WaitingForUser holds exactly when disambiguation produced more than one
// candidate and none has been selected yet.
type State struct {
	ID         string                     `json:"id"`
	RawQuery   string                     `json:"rawQuery"`
	Parsed     *models.ParsedQuery        `json:"parsed,omitempty"`
	Candidates []models.LocationCandidate `json:"candidates,omitempty"`
	Selected   *models.LocationCandidate  `json:"selected,omitempty"`
	Targets    []models.LocationCandidate `json:"targets,omitempty"` // comparison only

	WaitingForUser bool                     `json:"waitingForUser"`
	Status         Status                   `json:"status"`
	Result         *Result                  `json:"result,omitempty"`
	Error          *stderrors.StandardError `json:"error,omitempty"`
	Trace          []TraceEntry             `json:"trace,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newState(rawQuery string) *State {
	now := time.Now().UTC()
	return &State{
		ID:        uuid.New().String(),
		RawQuery:  rawQuery,
		Status:    StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *State) transition(step Step, note string) {
	s.UpdatedAt = time.Now().UTC()
	s.Trace = append(s.Trace, TraceEntry{
		Seq:       len(s.Trace),
		Step:      step,
		Timestamp: s.UpdatedAt,
		Note:      note,
	})
}

// suspend parks the workflow at the selection step. Only called with more
// than one candidate; a single candidate auto-selects instead.
func (s *State) suspend(candidates []models.LocationCandidate) {
	s.Candidates = candidates
	s.Selected = nil
	s.WaitingForUser = true
	s.Status = StatusWaiting
}

// fail terminates the workflow with a taxonomy error.
func (s *State) fail(err *stderrors.StandardError) {
	s.Error = err
	s.WaitingForUser = false
	s.Status = StatusFailed
	s.transition(StepFailed, string(err.Code))
}

func (s *State) complete(result *Result) {
	s.Result = result
	s.WaitingForUser = false
	s.Status = StatusDone
	s.transition(StepDone, "")
}
