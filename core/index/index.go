package index

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/IgorDevApp/aptcatalog/model"
	"github.com/google/uuid"
)

// Indexes holds the lookup structures over one merged group set. An
// Indexes value is always built wholesale from a complete group
// mapping; there is no incremental update.
type Indexes struct {
	ByID       map[uuid.UUID]*model.ThreatGroup
	ByName     map[string]uuid.UUID // lower-cased name or alias -> identifier
	ByCountry  map[string][]uuid.UUID
	ByCategory map[string][]uuid.UUID

	// NameCollisions counts names or aliases claimed by more than one
	// group during the build. Last write wins.
	NameCollisions int
}

// Build constructs all indexes from the merged groups. Groups are
// visited in sorted canonical-name order so the result is
// deterministic. Name collisions are resolved last-write-wins and
// logged, because upstream data legitimately reuses aliases across
// groups in rare cases.
func Build(groups map[string]*model.ThreatGroup, logger *slog.Logger) *Indexes {
	idx := &Indexes{
		ByID:       make(map[uuid.UUID]*model.ThreatGroup, len(groups)),
		ByName:     make(map[string]uuid.UUID),
		ByCountry:  make(map[string][]uuid.UUID),
		ByCategory: make(map[string][]uuid.UUID),
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := groups[name]
		idx.ByID[group.Identifier] = group

		idx.addName(group.CanonicalName, group, logger)
		for _, alias := range group.Aliases {
			idx.addName(alias, group, logger)
		}

		if group.Country != "" {
			idx.ByCountry[group.Country] = append(idx.ByCountry[group.Country], group.Identifier)
		}
		for _, category := range group.Categories {
			idx.ByCategory[category] = append(idx.ByCategory[category], group.Identifier)
		}
	}

	return idx
}

// Lookup returns the group for a lower-cased name or alias
func (idx *Indexes) Lookup(name string) (*model.ThreatGroup, bool) {
	id, ok := idx.ByName[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	group, ok := idx.ByID[id]
	return group, ok
}

func (idx *Indexes) addName(name string, group *model.ThreatGroup, logger *slog.Logger) {
	key := strings.ToLower(name)
	if existing, ok := idx.ByName[key]; ok && existing != group.Identifier {
		idx.NameCollisions++
		logger.Warn("Name already indexed for another group",
			slog.String("name", name),
			slog.String("group", group.CanonicalName),
		)
	}
	idx.ByName[key] = group.Identifier
}
