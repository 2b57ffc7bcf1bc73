// test/e2e/e2e_test.go

// End-to-end scenarios running the full stack over HTTP: parser, resolver,
// workflow engine with redis-backed suspended state, agents and cache.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airquality-agent/internal/agents"
	comparisonagent "airquality-agent/internal/agents/comparison"
	currentreading "airquality-agent/internal/agents/current-reading"
	"airquality-agent/internal/cache"
	"airquality-agent/internal/common/config"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
	"airquality-agent/internal/parser"
	"airquality-agent/internal/resolver"
	"airquality-agent/internal/transport/httpapi"
	"airquality-agent/internal/workflow"
)

type searcherStub struct {
	byText map[string][]models.LocationCandidate
}

func (s *searcherStub) Search(ctx context.Context, text string) ([]models.LocationCandidate, error) {
	return s.byText[text], nil
}

type readerStub struct {
	values map[string]float64
}

func (r *readerStub) CurrentReading(ctx context.Context, code string, level models.LocationLevel, metric string) (*models.Reading, error) {
	if v, ok := r.values[code]; ok {
		return &models.Reading{Metric: metric, Value: v, Unit: "µg/m³", Timestamp: time.Now()}, nil
	}
	return nil, nil
}

func startStack(t *testing.T, searcher *searcherStub, reader *readerStub) *httptest.Server {
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
			comparisonagent.NewHandler(reader, comparisonagent.Config{Timeout: time.Second, SafeBound: 60, UnhealthyBand: 90}, log),
		},
		resultCache,
		workflow.NewRedisStateStore(client, time.Minute, log),
		nil,
		log,
		workflow.Config{ResultTTL: time.Minute},
	)

	srv := httpapi.NewServer(engine, resultCache, nil, nil, config.ServerConfig{}, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, payload interface{}) (int, httpapi.QueryResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded httpapi.QueryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestDisambiguationRoundTrip(t *testing.T) {
	searcher := &searcherStub{byText: map[string][]models.LocationCandidate{
		"araria": {
			{Level: models.LevelDistrict, Name: "Araria", Code: "10-02", MatchType: models.MatchExact, Similarity: 1.0, StateName: "Bihar"},
			{Level: models.LevelSubDistrict, Name: "Araria", Code: "10-02-01", MatchType: models.MatchExact, Similarity: 1.0, StateName: "Bihar", DistrictName: "Araria"},
			{Level: models.LevelWard, Name: "Araria Ward 5", Code: "10-02-01-05", MatchType: models.MatchPrefix, Similarity: 0.9, StateName: "Bihar", DistrictName: "Araria"},
		},
	}}
	reader := &readerStub{values: map[string]float64{"10-02-01": 58.0}}
	ts := startStack(t, searcher, reader)

	// The ambiguous reference suspends the workflow with ordered options.
	status, submitted := post(t, ts.URL+"/query", httpapi.QueryRequest{Query: "What is the PM2.5 level in Araria?"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, string(workflow.StatusWaiting), submitted.Status)
	require.Len(t, submitted.Candidates, 3)
	require.NotEmpty(t, submitted.WorkflowID)

	// Selecting the second option completes without re-resolving.
	status, resumed := post(t, ts.URL+"/query/select", httpapi.SelectRequest{
		WorkflowID: submitted.WorkflowID,
		Selection:  1,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(workflow.StatusDone), resumed.Status)
	assert.Contains(t, resumed.Answer, "58.0")
	assert.Contains(t, resumed.Answer, "Satisfactory")

	// Repeating the same selection is idempotent: the stored state is
	// still there and the cached result comes back unchanged.
	status, repeated := post(t, ts.URL+"/query/select", httpapi.SelectRequest{
		WorkflowID: submitted.WorkflowID,
		Selection:  1,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(workflow.StatusDone), repeated.Status)
	assert.Equal(t, resumed.Answer, repeated.Answer)
}

func TestUnknownLocationFailsCleanly(t *testing.T) {
	ts := startStack(t, &searcherStub{}, &readerStub{})

	status, decoded := post(t, ts.URL+"/query", httpapi.QueryRequest{Query: "PM2.5 level in Xyz123"})
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, "LOCATION_NOT_FOUND", string(decoded.Error.Code))
}

func TestComparisonWithPartialData(t *testing.T) {
	searcher := &searcherStub{byText: map[string][]models.LocationCandidate{
		"delhi":   {{Level: models.LevelDistrict, Name: "Delhi", Code: "DL", MatchType: models.MatchExact, Similarity: 1.0}},
		"mumbai":  {{Level: models.LevelDistrict, Name: "Mumbai", Code: "MH", MatchType: models.MatchExact, Similarity: 1.0}},
		"chennai": {{Level: models.LevelDistrict, Name: "Chennai", Code: "TN", MatchType: models.MatchExact, Similarity: 1.0}},
	}}
	reader := &readerStub{values: map[string]float64{"DL": 150, "MH": 80}}
	ts := startStack(t, searcher, reader)

	status, decoded := post(t, ts.URL+"/query", httpapi.QueryRequest{Query: "Compare PM2.5 in Delhi, Mumbai and Chennai"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, string(workflow.StatusDone), decoded.Status)
	assert.Contains(t, decoded.Answer, "Mumbai")
	assert.Contains(t, decoded.Answer, "lowest")
	assert.Contains(t, decoded.Answer, "Chennai", "missing data is reported, not fatal")
}

func TestRepeatedQueryServedFromCache(t *testing.T) {
	searcher := &searcherStub{byText: map[string][]models.LocationCandidate{
		"patna": {{Level: models.LevelDistrict, Name: "Patna", Code: "10-28", MatchType: models.MatchExact, Similarity: 1.0}},
	}}
	reader := &readerStub{values: map[string]float64{"10-28": 42.0}}
	ts := startStack(t, searcher, reader)

	_, first := post(t, ts.URL+"/query", httpapi.QueryRequest{Query: "What is the PM2.5 level in Patna?"})
	require.Equal(t, string(workflow.StatusDone), first.Status)
	require.NotNil(t, first.Result)
	assert.False(t, first.Result.Cached)

	_, second := post(t, ts.URL+"/query", httpapi.QueryRequest{Query: "current pm2.5 in patna"})
	require.Equal(t, string(workflow.StatusDone), second.Status)
	require.NotNil(t, second.Result)
	assert.True(t, second.Result.Cached)
	assert.Equal(t, first.Answer, second.Answer)
}
