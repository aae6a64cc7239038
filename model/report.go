package model

import (
	"strings"

	"github.com/google/uuid"
)

// Report represents one external document (advisory, whitepaper, blog
// post) that may mention threat groups. Reports are immutable except
// for LinkedGroups, which the document linker replaces wholesale on
// every linking pass.
type Report struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Filename     string          `json:"filename,omitempty"`
	Source       string          `json:"source,omitempty"`
	Date         string          `json:"date,omitempty"` // raw value, e.g. "2021-04-03"
	Metadata     Metadata        `json:"metadata,omitempty"`
	LinkedGroups LinkedGroupList `json:"linked_groups,omitempty"`
}

// LinkedGroup is the per-report summary of one linked threat group
type LinkedGroup struct {
	Identifier    uuid.UUID `json:"identifier"`
	CanonicalName string    `json:"canonical_name"`
	Country       string    `json:"country,omitempty"`
}

// SearchText returns the lower-cased text the document linker matches
// group terms against
func (r *Report) SearchText() string {
	return strings.ToLower(r.Title + " " + r.Filename)
}

// Year extracts the report's publication year from its raw date value
func (r *Report) Year() (int, bool) {
	return ParseYear(r.Date)
}
