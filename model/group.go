package model

import (
	"github.com/google/uuid"
)

// groupNamespace is the fixed UUID namespace used to derive group
// identifiers from canonical names. It must never change, otherwise
// identifiers stop being stable across rebuilds.
var groupNamespace = uuid.MustParse("7b12c1de-43a8-4c5b-9f2e-5d0a6b1c8e37")

// RawGroupRecord is one source's description of a threat group, as
// emitted by an ingestion adapter. Records are immutable once produced;
// the merge engine deep-copies every slice it keeps.
type RawGroupRecord struct {
	Name           string   `json:"name"`
	OriginalName   string   `json:"original_name,omitempty"`
	Description    string   `json:"description,omitempty"`
	Country        string   `json:"country,omitempty"`
	Aliases        []string `json:"aliases,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	References     []string `json:"references,omitempty"`
	FirstSeen      string   `json:"first_seen,omitempty"` // raw value, e.g. "2008" or "2008 – present"
	LastSeen       string   `json:"last_seen,omitempty"`
	SourceID       string   `json:"source_id"`
	SourcePriority int      `json:"source_priority"` // lower = more authoritative naming
}

// ThreatGroup is the merged, de-duplicated record for one real-world
// threat group, built from all raw records that resolve to the same
// canonical name. Slice fields carry set semantics with exact-string
// de-duplication in first-observed order.
type ThreatGroup struct {
	Identifier          uuid.UUID `json:"identifier"`
	CanonicalName       string    `json:"canonical_name"`
	OriginalName        string    `json:"original_name,omitempty"`
	Description         string    `json:"description,omitempty"`
	Country             string    `json:"country,omitempty"`
	Aliases             []string  `json:"aliases,omitempty"`
	Categories          []string  `json:"categories,omitempty"`
	References          []string  `json:"references,omitempty"`
	FirstSeen           *int      `json:"first_seen,omitempty"`
	FirstSeenSource     string    `json:"first_seen_source,omitempty"`
	LastSeen            *int      `json:"last_seen,omitempty"`
	ContributingSources []string  `json:"contributing_sources"`
	DocumentCount       int       `json:"document_count"`
}

// GroupIdentifier derives the stable identifier for a canonical name.
// Identifiers are UUIDv5 values under a fixed namespace, so a full
// rebuild assigns the same identifier to the same group.
func GroupIdentifier(canonicalName string) uuid.UUID {
	return uuid.NewSHA1(groupNamespace, []byte(canonicalName))
}
