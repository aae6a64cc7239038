package model

import "github.com/google/uuid"

// Statistics is the aggregated summary of one snapshot. It is a pure
// derivation of the merged groups, reports and links, rebuilt from
// scratch on every aggregation pass.
type Statistics struct {
	TotalGroups     int             `json:"total_groups"`
	TotalReports    int             `json:"total_reports"`
	TotalLinks      int             `json:"total_links"`
	ByCountry       map[string]int  `json:"by_country"`
	ByCategory      map[string]int  `json:"by_category"`
	ByFirstSeenYear map[int]int     `json:"by_first_seen_year"`
	ReportsByYear   map[int]int     `json:"reports_by_year"`
	Timeline        []TimelineEntry `json:"timeline"`
}

// TimelineEntry is one group on the chronological timeline, restricted
// to groups with a known first-seen year
type TimelineEntry struct {
	Year          int       `json:"year"`
	Identifier    uuid.UUID `json:"identifier"`
	CanonicalName string    `json:"canonical_name"`
	Country       string    `json:"country,omitempty"`
}
