// internal/parser/rules.go
package parser

import (
	"fmt"
	"regexp"

	"airquality-agent/internal/models"
)

const (
	// metricPat covers the metric spellings the synonym table canonicalizes.
	metricPat = `(?:air quality index|aqi|pm\s*2\.?5|pm\s*10|pm|ozone|o3|nitrogen dioxide|no2|sulphur dioxide|sulfur dioxide|so2|carbon monoxide|co)`
	// locPat is a non-greedy place-name fragment; anchoring decides its extent.
	locPat = `[a-z][a-z0-9 .'\-]*?`
	// durPat matches "7 days", "2 weeks", "month" style phrases.
	durPat = `[0-9]*\s*[a-z]+(?:\s+[a-z]+)?`
)

// metricSynonyms canonicalizes metric spellings. Keys are the lowercase
// forms the metric pattern can produce.
var metricSynonyms = map[string]string{
	"aqi":               "aqi",
	"air quality index": "aqi",
	"pm":                "pm25",
	"pm2.5":             "pm25",
	"pm25":              "pm25",
	"pm 2.5":            "pm25",
	"pm10":              "pm10",
	"pm 10":             "pm10",
	"ozone":             "o3",
	"o3":                "o3",
	"nitrogen dioxide":  "no2",
	"no2":               "no2",
	"sulphur dioxide":   "so2",
	"sulfur dioxide":    "so2",
	"so2":               "so2",
	"carbon monoxide":   "co",
	"co":                "co",
}

// crossIntentCues guards the catch-all current-reading pattern: when one of
// these appears the query belongs to a later intent group.
var crossIntentCues = []string{
	"trend", "history", "historical", "changed", "varied",
	"compare", "versus", " vs ", "difference between",
	"forecast", "predict", "tomorrow", "tonight", "will ",
	"hotspot", "worst", "most polluted",
}

func mustRule(specificity float64, format string, args ...interface{}) rule {
	return rule{
		pattern:     regexp.MustCompile(fmt.Sprintf(format, args...)),
		specificity: specificity,
	}
}

// ruleTable is evaluated top to bottom: current_reading, trend, comparison,
// forecast, hotspot. Within a group the first binding pattern wins.
var ruleTable = []intentGroup{
	{
		intent:        models.IntentCurrentReading,
		expectedSlots: []string{models.EntityMetric, models.EntityLocation},
		rules: []rule{
			mustRule(1.0, `^what(?:'s| is) (?:the )?(?:current |latest |present )?(?P<metric>%s)(?: level| levels| concentration| reading| value)? (?:in|at|for) (?P<location>%s)$`, metricPat, locPat),
			mustRule(0.9, `^(?:current|latest|today'?s) (?P<metric>%s)(?: level| levels| reading| value)? (?:in|at|for) (?P<location>%s)$`, metricPat, locPat),
			mustRule(0.8, `^how (?:good|bad|clean|polluted) is (?:the )?air(?: quality)? (?:in|at) (?P<location>%s)$`, locPat),
			{
				pattern:     regexp.MustCompile(fmt.Sprintf(`(?P<metric>%s)(?: level| levels| reading| value)? (?:in|at|for) (?P<location>%s)$`, metricPat, locPat)),
				specificity: 0.5,
				unlessAny:   crossIntentCues,
			},
		},
	},
	{
		intent:        models.IntentTrend,
		expectedSlots: []string{models.EntityMetric, models.EntityLocation, models.EntityDuration},
		rules: []rule{
			mustRule(1.0, `^(?:show |what(?:'s| is) )?(?:the )?(?P<metric>%s) trend (?:in|at|for) (?P<location>%s)(?: (?:over|for|during) (?:the )?(?:last|past) (?P<duration>%s))?$`, metricPat, locPat, durPat),
			mustRule(0.9, `^how has (?:the )?(?P<metric>%s) (?:changed|varied|moved) (?:in|at) (?P<location>%s)(?: (?:over|in|during) (?:the )?(?:last|past) (?P<duration>%s))?$`, metricPat, locPat, durPat),
			mustRule(0.7, `(?:trend|history) of (?:the )?(?P<metric>%s) (?:in|at|for) (?P<location>%s)(?: (?:over|for) (?:the )?(?:last|past) (?P<duration>%s))?$`, metricPat, locPat, durPat),
			mustRule(0.6, `^(?P<metric>%s) (?:history|variation) (?:in|at|for) (?P<location>%s)$`, metricPat, locPat),
		},
	},
	{
		intent:        models.IntentComparison,
		expectedSlots: []string{models.EntityMetric, models.EntityLocations},
		rules: []rule{
			mustRule(1.0, `^compare (?:the )?(?:(?P<metric>%s)(?: levels?| readings?)? )?(?:in |of |between |across )?(?P<locations>%s(?:(?:,| and| vs\.?| versus) %s)+)$`, metricPat, locPat, locPat),
			mustRule(0.9, `^(?:what(?:'s| is) )?(?:the )?difference in (?P<metric>%s) between (?P<locations>%s and %s)$`, metricPat, locPat, locPat),
			mustRule(0.7, `^(?:which is (?:cleaner|worse|more polluted)[,:]? )?(?P<locations>%s (?:vs\.?|versus|or) %s)$`, locPat, locPat),
		},
	},
	{
		intent:        models.IntentForecast,
		expectedSlots: []string{models.EntityMetric, models.EntityLocation, models.EntityDuration},
		rules: []rule{
			mustRule(1.0, `^(?:what(?:'s| is) )?(?:the )?(?P<metric>%s) forecast (?:in|at|for) (?P<location>%s)(?: (?P<duration>tomorrow|today|tonight|next %s))?$`, metricPat, locPat, durPat),
			mustRule(0.9, `^will (?:the )?(?:air quality|(?P<metric>%s)) (?:be |get )?(?:better |worse |good |bad |safe |unhealthy )?(?:in|at) (?P<location>%s) (?P<duration>tomorrow|tonight|next %s)$`, metricPat, locPat, durPat),
			mustRule(0.7, `(?:forecast|predicted|prediction|expected) (?:of |for )?(?P<metric>%s) (?:in|at|for) (?P<location>%s)$`, metricPat, locPat),
			mustRule(0.6, `^(?P<metric>%s) (?:in|at|for) (?P<location>%s) (?P<duration>tomorrow|tonight)$`, metricPat, locPat),
		},
	},
	{
		intent:        models.IntentHotspot,
		expectedSlots: []string{models.EntityLocation},
		rules: []rule{
			mustRule(1.0, `^(?:show |find |list )?(?:pollution |air )?hotspots? (?:in|near|around) (?P<location>%s)$`, locPat),
			mustRule(0.9, `^(?:what|which) (?:are|is) the (?:worst|most polluted) (?:areas?|places?|wards?|localities) (?:in|near|around) (?P<location>%s)$`, locPat),
			mustRule(0.7, `(?:worst|most polluted) (?:areas?|places?|spots?|wards?) (?:in|near|around) (?P<location>%s)$`, locPat),
			mustRule(0.6, `hotspots? (?:in|near|around) (?P<location>%s)$`, locPat),
		},
	},
}

// comparisonSplit separates the captured comparison tail into targets.
var comparisonSplit = regexp.MustCompile(`\s*(?:,| and | vs\.? | versus | or )\s*`)

// unitPattern is scanned before rule matching so unit phrases never leak
// into location captures.
var unitPattern = regexp.MustCompile(`\s+in\s+(µg/m³|µg/m3|ug/m3|mg/m3|ppm|ppb)\s*$`)
