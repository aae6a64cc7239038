package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/IgorDevApp/aptcatalog/core/resolve"
	"github.com/IgorDevApp/aptcatalog/helper"
	"github.com/IgorDevApp/aptcatalog/model"
)

// Merger folds raw per-source records into one ThreatGroup per
// resolved canonical name. Records are processed in the exact order
// supplied by the caller: the merge is commutative for years and set
// fields but first-wins for country and tie-broken description, so the
// caller must hand records over in source-priority order to get a
// deterministic result.
type Merger struct {
	registry *resolve.Registry
	log      *slog.Logger

	merged        int
	skipped       int
	unparsedDates int
}

// NewMerger creates a merger bound to an alias registry
func NewMerger(registry *resolve.Registry, logger *slog.Logger) (*Merger, error) {
	if registry == nil {
		return nil, helper.NewError("registry validation", fmt.Errorf("registry is nil"))
	}
	if logger == nil {
		return nil, helper.NewError("logger validation", fmt.Errorf("logger is nil"))
	}

	return &Merger{
		registry: registry,
		log:      logger,
	}, nil
}

// Merge processes the records in a single pass and returns the merged
// groups keyed by canonical name. Malformed records (empty name) are
// skipped and counted, never fatal. Aliases of every record are
// registered as the pass proceeds, so a later record naming an alias
// of an earlier one joins the same group.
func (m *Merger) Merge(records []model.RawGroupRecord) map[string]*model.ThreatGroup {
	groups := make(map[string]*model.ThreatGroup)

	for _, record := range records {
		if strings.TrimSpace(record.Name) == "" {
			m.skipped++
			m.log.Warn("Skipping record without name", slog.String("source", record.SourceID))
			continue
		}

		key := m.registry.Resolve(record.Name)
		m.registry.RegisterAliases(key, record.Aliases...)

		firstSeen := m.parseYear(record.FirstSeen)
		lastSeen := m.parseYear(record.LastSeen)

		group, ok := groups[key]
		if !ok {
			groups[key] = m.newGroup(key, record, firstSeen, lastSeen)
			m.merged++
			continue
		}

		m.mergeInto(group, record, firstSeen, lastSeen)
		m.merged++
	}

	return groups
}

// Merged returns the number of records merged since construction
func (m *Merger) Merged() int {
	return m.merged
}

// Skipped returns the number of malformed records skipped
func (m *Merger) Skipped() int {
	return m.skipped
}

// UnparsedDates returns the number of non-empty date values that could
// not be reduced to a year
func (m *Merger) UnparsedDates() int {
	return m.unparsedDates
}

func (m *Merger) newGroup(key string, record model.RawGroupRecord, firstSeen, lastSeen *int) *model.ThreatGroup {
	originalName := record.OriginalName
	if originalName == "" {
		originalName = record.Name
	}

	group := &model.ThreatGroup{
		Identifier:          model.GroupIdentifier(key),
		CanonicalName:       key,
		OriginalName:        originalName,
		Description:         record.Description,
		Country:             record.Country,
		Aliases:             uniqueStrings(record.Aliases),
		Categories:          uniqueStrings(record.Categories),
		References:          uniqueStrings(record.References),
		FirstSeen:           firstSeen,
		LastSeen:            lastSeen,
		ContributingSources: []string{record.SourceID},
	}
	if firstSeen != nil {
		group.FirstSeenSource = record.SourceID
	}

	return group
}

func (m *Merger) mergeInto(group *model.ThreatGroup, record model.RawGroupRecord, firstSeen, lastSeen *int) {
	if firstSeen != nil && (group.FirstSeen == nil || *firstSeen < *group.FirstSeen) {
		group.FirstSeen = firstSeen
		group.FirstSeenSource = record.SourceID
	}
	if lastSeen != nil && (group.LastSeen == nil || *lastSeen > *group.LastSeen) {
		group.LastSeen = lastSeen
	}

	// Exact-string union, no case folding
	for _, alias := range record.Aliases {
		group.Aliases = appendUnique(group.Aliases, alias)
	}
	for _, category := range record.Categories {
		group.Categories = appendUnique(group.Categories, category)
	}
	for _, reference := range record.References {
		group.References = appendUnique(group.References, reference)
	}

	// Strictly longer wins, equal length keeps the earlier arrival
	if len(record.Description) > len(group.Description) {
		group.Description = record.Description
	}

	// First source wins, never overwritten once set
	if group.Country == "" {
		group.Country = record.Country
	}

	group.ContributingSources = appendUnique(group.ContributingSources, record.SourceID)
}

// parseYear reduces a raw date value to a year pointer, counting
// non-empty values that cannot be reduced
func (m *Merger) parseYear(raw string) *int {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	year, ok := model.ParseYear(raw)
	if !ok {
		m.unparsedDates++
		return nil
	}
	return &year
}

func uniqueStrings(values []string) []string {
	var out []string
	for _, value := range values {
		out = appendUnique(out, value)
	}
	return out
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
