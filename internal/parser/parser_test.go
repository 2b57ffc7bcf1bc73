// internal/parser/parser_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airquality-agent/internal/models"
)

func TestParse_IntentClassification(t *testing.T) {
	p := New()

	tests := []struct {
		name         string
		query        string
		wantIntent   models.Intent
		wantEntities map[string]string
	}{
		{
			name:       "explicit current reading question",
			query:      "What is the PM2.5 level in Araria?",
			wantIntent: models.IntentCurrentReading,
			wantEntities: map[string]string{
				models.EntityMetric:   "pm25",
				models.EntityLocation: "araria",
			},
		},
		{
			name:       "terse current reading",
			query:      "PM level in Araria",
			wantIntent: models.IntentCurrentReading,
			wantEntities: map[string]string{
				models.EntityMetric:   "pm25",
				models.EntityLocation: "araria",
			},
		},
		{
			name:       "air quality phrasing without metric",
			query:      "How good is the air in Mumbai?",
			wantIntent: models.IntentCurrentReading,
			wantEntities: map[string]string{
				models.EntityLocation: "mumbai",
			},
		},
		{
			name:       "aqi spelled out",
			query:      "what is the air quality index in Patna",
			wantIntent: models.IntentCurrentReading,
			wantEntities: map[string]string{
				models.EntityMetric:   "aqi",
				models.EntityLocation: "patna",
			},
		},
		{
			name:       "trend with duration",
			query:      "Show the PM2.5 trend in Delhi over the last 7 days",
			wantIntent: models.IntentTrend,
			wantEntities: map[string]string{
				models.EntityMetric:   "pm25",
				models.EntityLocation: "delhi",
				models.EntityDuration: "7 days",
			},
		},
		{
			name:       "trend change phrasing",
			query:      "How has the PM2.5 changed in Delhi over the last 2 weeks?",
			wantIntent: models.IntentTrend,
			wantEntities: map[string]string{
				models.EntityMetric:   "pm25",
				models.EntityLocation: "delhi",
				models.EntityDuration: "2 weeks",
			},
		},
		{
			name:       "comparison with three locations",
			query:      "Compare PM2.5 in Delhi, Mumbai and Chennai",
			wantIntent: models.IntentComparison,
			wantEntities: map[string]string{
				models.EntityMetric:    "pm25",
				models.EntityLocations: "delhi,mumbai,chennai",
			},
		},
		{
			name:       "bare versus comparison",
			query:      "Delhi vs Mumbai",
			wantIntent: models.IntentComparison,
			wantEntities: map[string]string{
				models.EntityLocations: "delhi,mumbai",
			},
		},
		{
			name:       "forecast with horizon",
			query:      "What is the PM2.5 forecast for Delhi tomorrow?",
			wantIntent: models.IntentForecast,
			wantEntities: map[string]string{
				models.EntityMetric:   "pm25",
				models.EntityLocation: "delhi",
				models.EntityDuration: "tomorrow",
			},
		},
		{
			name:       "hotspots in a state",
			query:      "Show pollution hotspots in Bihar",
			wantIntent: models.IntentHotspot,
			wantEntities: map[string]string{
				models.EntityLocation: "bihar",
			},
		},
		{
			name:       "worst areas phrasing",
			query:      "Which are the most polluted areas in Delhi?",
			wantIntent: models.IntentHotspot,
			wantEntities: map[string]string{
				models.EntityLocation: "delhi",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := p.Parse(tt.query)
			require.NotNil(t, parsed)
			assert.Equal(t, tt.wantIntent, parsed.Intent)
			for slot, want := range tt.wantEntities {
				assert.Equal(t, want, parsed.Entities[slot], "slot %s", slot)
			}
			assert.Equal(t, tt.query, parsed.RawText)
			assert.Greater(t, parsed.Confidence, 0.0)
		})
	}
}

func TestParse_UnknownQueries(t *testing.T) {
	p := New()

	for _, query := range []string{
		"hello there",
		"what time is it",
		"",
		"tell me a joke",
	} {
		parsed := p.Parse(query)
		require.NotNil(t, parsed, "parse must be total")
		assert.Equal(t, models.IntentUnknown, parsed.Intent, "query %q", query)
		assert.Equal(t, 0.0, parsed.Confidence)
		assert.Equal(t, query, parsed.Entities[models.EntityRawQuery])
	}
}

func TestParse_CrossIntentCuesSuppressCatchAll(t *testing.T) {
	p := New()

	// Each of these contains "<metric> in <location>" which the generic
	// current-reading pattern would bind, yet the wording belongs to a
	// later intent group.
	tests := []struct {
		query string
		want  models.Intent
	}{
		{"compare pm2.5 in delhi and mumbai", models.IntentComparison},
		{"what is the pm2.5 forecast for delhi tomorrow", models.IntentForecast},
		{"pm2.5 trend in delhi", models.IntentTrend},
	}

	for _, tt := range tests {
		parsed := p.Parse(tt.query)
		assert.Equal(t, tt.want, parsed.Intent, "query %q", tt.query)
	}
}

func TestParse_UnitExtraction(t *testing.T) {
	p := New()

	parsed := p.Parse("what is the pm2.5 level in delhi in ug/m3")
	assert.Equal(t, models.IntentCurrentReading, parsed.Intent)
	assert.Equal(t, "delhi", parsed.Entities[models.EntityLocation])
	assert.Equal(t, "ug/m3", parsed.Entities[models.EntityUnit])
}

func TestParse_MetricCanonicalization(t *testing.T) {
	p := New()

	tests := []struct {
		query string
		want  string
	}{
		{"what is the pm 2.5 level in delhi", "pm25"},
		{"what is the ozone level in delhi", "o3"},
		{"what is the nitrogen dioxide level in delhi", "no2"},
		{"what is the pm10 level in delhi", "pm10"},
	}

	for _, tt := range tests {
		parsed := p.Parse(tt.query)
		require.Equal(t, models.IntentCurrentReading, parsed.Intent, "query %q", tt.query)
		assert.Equal(t, tt.want, parsed.Entities[models.EntityMetric], "query %q", tt.query)
	}
}

// Confidence must rise with the number of filled slots within an intent.
func TestParse_ConfidenceMonotonicInFilledSlots(t *testing.T) {
	p := New()

	withDuration := p.Parse("show the pm2.5 trend in delhi over the last 7 days")
	withoutDuration := p.Parse("pm2.5 trend in delhi")
	require.Equal(t, models.IntentTrend, withDuration.Intent)
	require.Equal(t, models.IntentTrend, withoutDuration.Intent)
	assert.Greater(t, withDuration.Confidence, withoutDuration.Confidence)

	withMetric := p.Parse("what is the pm2.5 level in mumbai")
	withoutMetric := p.Parse("how good is the air in mumbai")
	require.Equal(t, models.IntentCurrentReading, withMetric.Intent)
	require.Equal(t, models.IntentCurrentReading, withoutMetric.Intent)
	assert.Greater(t, withMetric.Confidence, withoutMetric.Confidence)
}

func TestParsedQuery_MetricDefault(t *testing.T) {
	p := New()

	parsed := p.Parse("how good is the air in mumbai")
	require.Equal(t, models.IntentCurrentReading, parsed.Intent)
	assert.Equal(t, "pm25", parsed.Metric())
	assert.Equal(t, "mumbai", parsed.Location())
}

type stubFallback struct {
	parsed *models.ParsedQuery
}

func (s *stubFallback) Parse(text string) (*models.ParsedQuery, bool) {
	if s.parsed == nil {
		return nil, false
	}
	return s.parsed, true
}

func TestParse_FallbackConsultedForUnknown(t *testing.T) {
	fb := &stubFallback{parsed: &models.ParsedQuery{
		Intent:     models.IntentCurrentReading,
		Entities:   map[string]string{models.EntityLocation: "delhi"},
		Confidence: 0.6,
	}}
	p := New().WithFallback(fb)

	parsed := p.Parse("gibberish the rules cannot bind")
	assert.Equal(t, models.IntentCurrentReading, parsed.Intent)
	assert.Equal(t, 0.6, parsed.Confidence)

	// Rule matches never reach the fallback.
	direct := p.Parse("what is the pm2.5 level in araria")
	assert.Equal(t, "araria", direct.Entities[models.EntityLocation])
}
