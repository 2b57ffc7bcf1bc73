// internal/parser/models.go
package parser

import (
	"regexp"

	"airquality-agent/internal/models"
)

// rule is one entry of the ordered intent-rule table. The first rule whose
// pattern binds decides the intent; rules are grouped by intent and groups
// are evaluated in declared order.
type rule struct {
	pattern *regexp.Regexp
	// specificity in [0,1]; more constrained patterns score higher. Its
	// weight in the confidence formula is deliberately smaller than one
	// filled slot so confidence stays monotonic in filled-slot count.
	specificity float64
	// unlessAny suppresses low-specificity catch-all patterns when the text
	// carries a cue word that belongs to a later intent group.
	unlessAny []string
}

// intentGroup binds an intent to its rules and the slot names a fully
// specified query of that intent would fill.
type intentGroup struct {
	intent        models.Intent
	expectedSlots []string
	rules         []rule
}

// Fallback is the hook for a learned model. It only runs when the rule
// table classifies a query as unknown; a nil Fallback keeps parsing fully
// deterministic.
type Fallback interface {
	Parse(text string) (*models.ParsedQuery, bool)
}
