// internal/transport/httpapi/handlers_test.go
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airquality-agent/internal/agents"
	currentreading "airquality-agent/internal/agents/current-reading"
	"airquality-agent/internal/cache"
	"airquality-agent/internal/common/config"
	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
	"airquality-agent/internal/parser"
	"airquality-agent/internal/resolver"
	"airquality-agent/internal/workflow"
)

type fixedSearcher struct {
	byText map[string][]models.LocationCandidate
}

func (f *fixedSearcher) Search(ctx context.Context, text string) ([]models.LocationCandidate, error) {
	return f.byText[text], nil
}

type fixedReader struct {
	values map[string]float64
}

func (f *fixedReader) CurrentReading(ctx context.Context, code string, level models.LocationLevel, metric string) (*models.Reading, error) {
	if v, ok := f.values[code]; ok {
		return &models.Reading{Metric: metric, Value: v, Unit: "µg/m³", Timestamp: time.Now()}, nil
	}
	return nil, nil
}

func newTestServer(t *testing.T, searcher *fixedSearcher, reader *fixedReader, checks []HealthCheck) *httptest.Server {
	t.Helper()
	log := logger.NewTestLogger(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	resultCache := cache.New(time.Minute)
	t.Cleanup(resultCache.Close)

	engine := workflow.NewEngine(
		parser.New(),
		resolver.New(searcher, resolver.Config{}, log),
		[]agents.Agent{
			currentreading.NewHandler(reader, currentreading.Config{Timeout: time.Second}, log),
		},
		resultCache,
		workflow.NewRedisStateStore(client, time.Minute, log),
		nil,
		log,
		workflow.Config{ResultTTL: time.Minute},
	)

	srv := NewServer(engine, resultCache, nil, checks, config.ServerConfig{}, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func ariaSearcher() *fixedSearcher {
	return &fixedSearcher{byText: map[string][]models.LocationCandidate{
		"araria": {
			{Level: models.LevelDistrict, Name: "Araria", Code: "10-02", MatchType: models.MatchExact, Similarity: 1.0, StateName: "Bihar"},
			{Level: models.LevelSubDistrict, Name: "Araria", Code: "10-02-01", MatchType: models.MatchExact, Similarity: 1.0, StateName: "Bihar", DistrictName: "Araria"},
		},
		"patna": {
			{Level: models.LevelDistrict, Name: "Patna", Code: "10-28", MatchType: models.MatchExact, Similarity: 1.0, StateName: "Bihar"},
		},
	}}
}

func postJSON(t *testing.T, url string, payload interface{}) (*http.Response, QueryResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded QueryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestQuery_CompletesUnambiguousQuery(t *testing.T) {
	ts := newTestServer(t, ariaSearcher(), &fixedReader{values: map[string]float64{"10-28": 42.0}}, nil)

	resp, decoded := postJSON(t, ts.URL+"/query", QueryRequest{Query: "What is the PM2.5 level in Patna?"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(workflow.StatusDone), decoded.Status)
	assert.NotEmpty(t, decoded.WorkflowID)
	assert.Contains(t, decoded.Answer, "42.0")
}

func TestQuery_AmbiguousLocationReturnsCandidates(t *testing.T) {
	ts := newTestServer(t, ariaSearcher(), &fixedReader{}, nil)

	resp, decoded := postJSON(t, ts.URL+"/query", QueryRequest{Query: "What is the PM2.5 level in Araria?"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(workflow.StatusWaiting), decoded.Status)
	require.Len(t, decoded.Candidates, 2)
	assert.Equal(t, 0, decoded.Candidates[0].Index)
	assert.Equal(t, 1, decoded.Candidates[1].Index)
	assert.Contains(t, decoded.Candidates[0].DisplayName, "Araria")
}

func TestQuerySelect_ResumesSuspendedWorkflow(t *testing.T) {
	ts := newTestServer(t, ariaSearcher(), &fixedReader{values: map[string]float64{"10-02-01": 61.0}}, nil)

	_, submitted := postJSON(t, ts.URL+"/query", QueryRequest{Query: "What is the PM2.5 level in Araria?"})
	require.Equal(t, string(workflow.StatusWaiting), submitted.Status)

	resp, resumed := postJSON(t, ts.URL+"/query/select", SelectRequest{
		WorkflowID: submitted.WorkflowID,
		Selection:  1,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(workflow.StatusDone), resumed.Status)
	assert.Contains(t, resumed.Answer, "61.0")
}

func TestQuerySelect_UnknownWorkflowConflicts(t *testing.T) {
	ts := newTestServer(t, ariaSearcher(), &fixedReader{}, nil)

	resp, decoded := postJSON(t, ts.URL+"/query/select", SelectRequest{WorkflowID: "nope", Selection: 0})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, stderrors.ErrCodeWorkflowNotWaiting, decoded.Error.Code)
}

func TestQuery_LocationNotFound(t *testing.T) {
	ts := newTestServer(t, ariaSearcher(), &fixedReader{}, nil)

	resp, decoded := postJSON(t, ts.URL+"/query", QueryRequest{Query: "What is the PM2.5 level in Xyzzy?"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, stderrors.ErrCodeLocationNotFound, decoded.Error.Code)
}

func TestQuery_SchemaValidation(t *testing.T) {
	ts := newTestServer(t, ariaSearcher(), &fixedReader{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing query field", `{}`},
		{"empty query", `{"query": ""}`},
		{"unknown field", `{"query": "x", "extra": true}`},
		{"not json", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/query", "application/json", bytes.NewReader([]byte(tt.body)))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestQuery_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, ariaSearcher(), &fixedReader{}, nil)

	resp, err := http.Get(ts.URL + "/query")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealth_ReportsCheckResults(t *testing.T) {
	healthy := newTestServer(t, ariaSearcher(), &fixedReader{}, []HealthCheck{
		{Name: "postgres", Check: func(context.Context) error { return nil }},
	})
	resp, err := http.Get(healthy.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	broken := newTestServer(t, ariaSearcher(), &fixedReader{}, []HealthCheck{
		{Name: "postgres", Check: func(context.Context) error { return errors.New("down") }},
	})
	resp, err = http.Get(broken.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var decoded HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "unhealthy", decoded.Status)
	assert.Equal(t, "down", decoded.Checks["postgres"])
}

func TestCacheStats_Endpoint(t *testing.T) {
	ts := newTestServer(t, ariaSearcher(), &fixedReader{values: map[string]float64{"10-28": 42.0}}, nil)

	// Populate the cache through a completed query.
	postJSON(t, ts.URL+"/query", QueryRequest{Query: "What is the PM2.5 level in Patna?"})

	resp, err := http.Get(ts.URL + "/cache/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats cache.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Size)
}
