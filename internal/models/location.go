// internal/models/location.go
package models

import "fmt"

// LocationLevel identifies the tier of the administrative hierarchy a
// resolved location belongs to.
type LocationLevel string

const (
	LevelState       LocationLevel = "state"
	LevelDistrict    LocationLevel = "district"
	LevelSubDistrict LocationLevel = "sub_district"
	LevelWard        LocationLevel = "ward"
	LevelTown        LocationLevel = "town"
	LevelStateHQ     LocationLevel = "state_hq"
	LevelDistrictHQ  LocationLevel = "district_hq"
)

// MatchType distinguishes how the search backend matched a candidate.
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchPrefix MatchType = "prefix"
	MatchFuzzy  MatchType = "fuzzy"
)

// LocationCandidate is one possible resolution of a location reference,
// pending disambiguation. Never mutated after the resolver produces it.
type LocationCandidate struct {
	Level        LocationLevel `json:"level"`
	Name         string        `json:"name"`
	Code         string        `json:"code"`
	ParentCode   string        `json:"parentCode,omitempty"`
	Similarity   float64       `json:"similarity"`
	MatchType    MatchType     `json:"matchType"`
	StateName    string        `json:"stateName,omitempty"`
	DistrictName string        `json:"districtName,omitempty"`
	SubDistrict  string        `json:"subDistrictName,omitempty"`
}

// DisplayName renders the candidate with enough hierarchy context for a
// disambiguation prompt, e.g. "Araria (district) - Bihar".
func (c LocationCandidate) DisplayName() string {
	switch {
	case c.StateName != "" && c.DistrictName != "" && c.Level != LevelDistrict:
		return fmt.Sprintf("%s (%s) - %s, %s", c.Name, c.Level, c.DistrictName, c.StateName)
	case c.StateName != "":
		return fmt.Sprintf("%s (%s) - %s", c.Name, c.Level, c.StateName)
	default:
		return fmt.Sprintf("%s (%s)", c.Name, c.Level)
	}
}
