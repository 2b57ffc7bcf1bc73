// internal/parser/parser.go
package parser

import (
	"strings"

	"airquality-agent/internal/models"
)

// Confidence weights. One filled slot is worth more than the whole
// specificity band, which keeps confidence monotonic in filled-slot count
// for any intent with up to three expected slots.
const (
	confBase            = 0.55
	confSpecificityBand = 0.05
	confSlotBand        = 0.40
)

// Parser turns free text into a typed ParsedQuery. It never fails: text the
// rule table cannot bind yields intent=unknown with zero confidence.
type Parser struct {
	groups   []intentGroup
	fallback Fallback
}

func New() *Parser {
	return &Parser{groups: ruleTable}
}

// WithFallback returns a parser that consults fb for queries the rule table
// classifies as unknown.
func (p *Parser) WithFallback(fb Fallback) *Parser {
	return &Parser{groups: p.groups, fallback: fb}
}

// Parse classifies text. The result is immutable and safe to cache keyed on
// the raw text.
func (p *Parser) Parse(text string) *models.ParsedQuery {
	normalized, unit := normalize(text)

	for _, group := range p.groups {
		for _, r := range group.rules {
			if suppressed(r, normalized) {
				continue
			}
			entities, ok := bind(r, normalized)
			if !ok {
				continue
			}
			if unit != "" {
				entities[models.EntityUnit] = unit
			}
			canonicalizeMetric(entities)
			return &models.ParsedQuery{
				Intent:     group.intent,
				Entities:   entities,
				Confidence: confidence(r, group, entities),
				RawText:    text,
			}
		}
	}

	if p.fallback != nil {
		if parsed, ok := p.fallback.Parse(text); ok {
			return parsed
		}
	}

	return &models.ParsedQuery{
		Intent:     models.IntentUnknown,
		Entities:   map[string]string{models.EntityRawQuery: text},
		Confidence: 0.0,
		RawText:    text,
	}
}

// normalize lowercases, trims punctuation and extracts a trailing unit
// phrase so it cannot leak into a location capture.
func normalize(text string) (string, string) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.TrimRight(s, "?!. ")
	s = strings.Join(strings.Fields(s), " ")

	unit := ""
	if m := unitPattern.FindStringSubmatch(s); m != nil {
		unit = m[1]
		s = strings.TrimSpace(unitPattern.ReplaceAllString(s, ""))
	}
	return s, unit
}

func suppressed(r rule, text string) bool {
	for _, cue := range r.unlessAny {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

// bind attempts the pattern and collects non-empty named captures. A match
// with an empty location (or empty comparison list) does not bind.
func bind(r rule, text string) (map[string]string, bool) {
	match := r.pattern.FindStringSubmatch(text)
	if match == nil {
		return nil, false
	}

	entities := make(map[string]string)
	for i, name := range r.pattern.SubexpNames() {
		if name == "" || i >= len(match) {
			continue
		}
		value := strings.TrimSpace(match[i])
		if value == "" {
			continue
		}
		entities[name] = value
	}

	if locations, ok := entities[models.EntityLocations]; ok {
		targets := splitTargets(locations)
		if len(targets) < 2 {
			return nil, false
		}
		entities[models.EntityLocations] = strings.Join(targets, ",")
	} else if entities[models.EntityLocation] == "" {
		return nil, false
	}

	return entities, true
}

func splitTargets(list string) []string {
	parts := comparisonSplit.Split(list, -1)
	targets := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			targets = append(targets, part)
		}
	}
	return targets
}

func canonicalizeMetric(entities map[string]string) {
	raw, ok := entities[models.EntityMetric]
	if !ok {
		return
	}
	// Collapse internal whitespace so "pm 2.5" hits the synonym table.
	if canonical, ok := metricSynonyms[raw]; ok {
		entities[models.EntityMetric] = canonical
		return
	}
	compact := strings.Join(strings.Fields(raw), " ")
	if canonical, ok := metricSynonyms[compact]; ok {
		entities[models.EntityMetric] = canonical
		return
	}
	if canonical, ok := metricSynonyms[strings.ReplaceAll(compact, " ", "")]; ok {
		entities[models.EntityMetric] = canonical
	}
}

// confidence scores a successful bind. Specificity separates patterns that
// filled the same slots; each additional filled slot outweighs the entire
// specificity band.
func confidence(r rule, group intentGroup, entities map[string]string) float64 {
	filled := 0
	for _, slot := range group.expectedSlots {
		if entities[slot] != "" {
			filled++
		}
	}

	expected := len(group.expectedSlots)
	if expected == 0 {
		expected = 1
	}

	score := confBase + confSpecificityBand*r.specificity + confSlotBand*float64(filled)/float64(expected)
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}
