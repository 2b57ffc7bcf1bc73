// internal/agents/hotspot/models.go
package hotspot

import "airquality-agent/internal/models"

// Input contains the parameters for one hotspot fetch.
type Input struct {
	Location models.LocationCandidate `json:"location"`
	Duration string                   `json:"duration"`
}

// ClassifiedHotspot is one cluster with its severity label attached.
type ClassifiedHotspot struct {
	models.HotspotRecord
	Severity string `json:"severity"`
}

// Output contains the clusters above the reporting floor, worst first.
type Output struct {
	Hotspots []ClassifiedHotspot `json:"hotspots,omitempty"`
	NoData   bool                `json:"noData"`
}
