// internal/resolver/resolver_test.go
package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "airquality-agent/internal/common/errors"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/models"
)

type stubSearcher struct {
	candidates []models.LocationCandidate
	err        error
	calls      int
}

func (s *stubSearcher) Search(ctx context.Context, text string) ([]models.LocationCandidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func candidate(level models.LocationLevel, name, code string, match models.MatchType, sim float64) models.LocationCandidate {
	return models.LocationCandidate{Level: level, Name: name, Code: code, MatchType: match, Similarity: sim}
}

func TestResolve_ExactAndPrefixSuppressFuzzy(t *testing.T) {
	searcher := &stubSearcher{candidates: []models.LocationCandidate{
		candidate(models.LevelDistrict, "Araria", "10", models.MatchFuzzy, 0.95),
		candidate(models.LevelDistrict, "Araria", "02", models.MatchExact, 1.0),
		candidate(models.LevelWard, "Araria Ward 1", "05", models.MatchPrefix, 0.9),
	}}
	r := New(searcher, Config{}, logger.NewNoOpLogger())

	got, err := r.Resolve(context.Background(), "araria")
	require.NoError(t, err)
	require.Len(t, got, 2, "fuzzy candidates must be suppressed")
	for _, c := range got {
		assert.NotEqual(t, models.MatchFuzzy, c.MatchType)
	}
	// Ordered by code for a stable disambiguation prompt.
	assert.Equal(t, "02", got[0].Code)
	assert.Equal(t, "05", got[1].Code)
}

func TestResolve_FuzzyOnlyWhenNothingElseMatches(t *testing.T) {
	searcher := &stubSearcher{candidates: []models.LocationCandidate{
		candidate(models.LevelDistrict, "Arariya", "02", models.MatchFuzzy, 0.7),
		candidate(models.LevelTown, "Arera", "07", models.MatchFuzzy, 0.9),
	}}
	r := New(searcher, Config{}, logger.NewNoOpLogger())

	got, err := r.Resolve(context.Background(), "ararya")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "07", got[0].Code, "highest similarity first")
	assert.Equal(t, "02", got[1].Code)
}

func TestResolve_ZeroCandidatesIsNotAnError(t *testing.T) {
	r := New(&stubSearcher{}, Config{}, logger.NewNoOpLogger())

	got, err := r.Resolve(context.Background(), "xyz123")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolve_DeduplicatesByLevelAndCode(t *testing.T) {
	searcher := &stubSearcher{candidates: []models.LocationCandidate{
		candidate(models.LevelDistrict, "Araria", "02", models.MatchExact, 1.0),
		candidate(models.LevelDistrict, "Araria", "02", models.MatchPrefix, 0.9),
		candidate(models.LevelStateHQ, "Araria", "02", models.MatchExact, 1.0),
	}}
	r := New(searcher, Config{}, logger.NewNoOpLogger())

	got, err := r.Resolve(context.Background(), "araria")
	require.NoError(t, err)
	assert.Len(t, got, 2, "same level+code collapses, different level survives")
}

func TestResolve_CandidateCapApplies(t *testing.T) {
	many := make([]models.LocationCandidate, 0, 10)
	for i := 0; i < 10; i++ {
		many = append(many, candidate(models.LevelWard, "Ward", string(rune('a'+i)), models.MatchPrefix, 0.9))
	}
	r := New(&stubSearcher{candidates: many}, Config{CandidateCap: 3}, logger.NewNoOpLogger())

	got, err := r.Resolve(context.Background(), "ward")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestResolve_TimeoutMapsToSearchTimeout(t *testing.T) {
	r := New(&stubSearcher{err: context.DeadlineExceeded}, Config{Timeout: 10 * time.Millisecond}, logger.NewNoOpLogger())

	_, err := r.Resolve(context.Background(), "araria")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeSearchTimeout))
}

func TestResolve_TransportErrorMapsToUpstreamUnavailable(t *testing.T) {
	r := New(&stubSearcher{err: errors.New("connection refused")}, Config{}, logger.NewNoOpLogger())

	_, err := r.Resolve(context.Background(), "araria")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeUpstreamUnavailable))
}
