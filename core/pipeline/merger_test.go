package pipeline

import (
	"io"
	"log/slog"
	"testing"

	"github.com/IgorDevApp/aptcatalog/core/resolve"
	"github.com/IgorDevApp/aptcatalog/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMerger(t *testing.T) *Merger {
	registry, err := resolve.NewRegistry(testLogger())
	require.NoError(t, err, "failed to create registry")

	merger, err := NewMerger(registry, testLogger())
	require.NoError(t, err, "failed to create merger")

	return merger
}

func TestNewMerger(t *testing.T) {
	t.Run("Valid call NewMerger", func(t *testing.T) {
		merger := newTestMerger(t)
		require.NotNil(t, merger, "Expected NewMerger to return a non-nil instance")
	})

	t.Run("Invalid call NewMerger with nil registry", func(t *testing.T) {
		_, err := NewMerger(nil, testLogger())
		assert.Error(t, err, "Expected error when creating Merger with nil registry")
		assert.Contains(t, err.Error(), "registry is nil", "Expected specific error message for nil registry")
	})

	t.Run("Invalid call NewMerger with nil logger", func(t *testing.T) {
		registry, err := resolve.NewRegistry(testLogger())
		require.NoError(t, err)

		_, err = NewMerger(registry, nil)
		assert.Error(t, err, "Expected error when creating Merger with nil logger")
	})
}

func TestMergerThreeSourceScenario(t *testing.T) {
	merger := newTestMerger(t)

	records := []model.RawGroupRecord{
		{Name: "APT29", Aliases: []string{"Cozy Bear"}, Country: "RU", SourceID: "source-a", SourcePriority: 1},
		{Name: "APT 29", Aliases: []string{"The Dukes"}, FirstSeen: "2008", LastSeen: "2025", SourceID: "source-b", SourcePriority: 2},
		{Name: "APT29", FirstSeen: "2010", SourceID: "source-c", SourcePriority: 3},
	}

	groups := merger.Merge(records)
	require.Len(t, groups, 1, "Expected all three records to merge into one group")

	group, ok := groups["APT29"]
	require.True(t, ok, "Expected the merge key to be the canonical name APT29")

	assert.Equal(t, "APT29", group.CanonicalName)
	assert.Equal(t, "RU", group.Country)
	require.NotNil(t, group.FirstSeen)
	assert.Equal(t, 2008, *group.FirstSeen, "Expected the minimum first-seen year to win")
	assert.Equal(t, "source-b", group.FirstSeenSource, "Expected the source that supplied the minimum year")
	require.NotNil(t, group.LastSeen)
	assert.Equal(t, 2025, *group.LastSeen)
	assert.ElementsMatch(t, []string{"Cozy Bear", "The Dukes"}, group.Aliases)
	assert.Equal(t, []string{"source-a", "source-b", "source-c"}, group.ContributingSources)
	assert.Equal(t, model.GroupIdentifier("APT29"), group.Identifier, "Expected a stable identifier derived from the canonical name")
}

func TestMergerFieldRules(t *testing.T) {
	t.Run("Country is first-wins and never overwritten", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "Turla", Country: "RU", SourceID: "a"},
			{Name: "Turla", Country: "CN", SourceID: "b"},
		})

		assert.Equal(t, "RU", groups["Turla"].Country)
	})

	t.Run("Country set by a later record when the first had none", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "Turla", SourceID: "a"},
			{Name: "Turla", Country: "RU", SourceID: "b"},
		})

		assert.Equal(t, "RU", groups["Turla"].Country)
	})

	t.Run("Description replaced only by a strictly longer one", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "Turla", Description: "Short.", SourceID: "a"},
			{Name: "Turla", Description: "A considerably longer description.", SourceID: "b"},
			{Name: "Turla", Description: "Another short one.", SourceID: "c"},
		})

		assert.Equal(t, "A considerably longer description.", groups["Turla"].Description)
	})

	t.Run("Equal-length descriptions keep the earlier arrival", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "Turla", Description: "first one", SourceID: "a"},
			{Name: "Turla", Description: "other one", SourceID: "b"},
		})

		assert.Equal(t, "first one", groups["Turla"].Description)
	})

	t.Run("Set fields union with exact-string dedup", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "Turla", Aliases: []string{"Snake", "Waterbug"}, Categories: []string{"Government"}, SourceID: "a"},
			{Name: "Turla", Aliases: []string{"Snake", "SNAKE"}, Categories: []string{"Government", "Defense"}, SourceID: "b"},
		})

		group := groups["Turla"]
		assert.Equal(t, []string{"Snake", "Waterbug", "SNAKE"}, group.Aliases, "Expected case-differing spellings to stay distinct")
		assert.Equal(t, []string{"Government", "Defense"}, group.Categories)
	})

	t.Run("First-seen minimum and last-seen maximum", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "Turla", FirstSeen: "2010", LastSeen: "2018", SourceID: "a"},
			{Name: "Turla", FirstSeen: "2004", LastSeen: "2015", SourceID: "b"},
			{Name: "Turla", LastSeen: "2023 – present", SourceID: "c"},
		})

		group := groups["Turla"]
		require.NotNil(t, group.FirstSeen)
		assert.Equal(t, 2004, *group.FirstSeen)
		assert.Equal(t, "b", group.FirstSeenSource)
		require.NotNil(t, group.LastSeen)
		assert.Equal(t, 2023, *group.LastSeen, "Expected open-ended values to reduce to their year")
	})
}

func TestMergerAliasResolution(t *testing.T) {
	t.Run("Static alias joins the canonical group", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "APT29", Country: "RU", SourceID: "a"},
			{Name: "Cozy Bear", FirstSeen: "2008", SourceID: "b"},
		})

		require.Len(t, groups, 1, "Expected the alias record to merge into the canonical group")
		require.NotNil(t, groups["APT29"].FirstSeen)
		assert.Equal(t, 2008, *groups["APT29"].FirstSeen)
	})

	t.Run("Dynamically registered alias joins a later record", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "Mustang Panda", Aliases: []string{"Bronze President"}, SourceID: "a"},
			{Name: "Bronze President", Categories: []string{"NGOs"}, SourceID: "b"},
		})

		require.Len(t, groups, 1, "Expected the second record to resolve through the registered alias")
		assert.Equal(t, []string{"NGOs"}, groups["Mustang Panda"].Categories)
	})
}

func TestMergerEdgeCases(t *testing.T) {
	t.Run("Records without a name are skipped and counted", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "", SourceID: "a"},
			{Name: "   ", SourceID: "a"},
			{Name: "Turla", SourceID: "a"},
		})

		assert.Len(t, groups, 1)
		assert.Equal(t, 2, merger.Skipped())
		assert.Equal(t, 1, merger.Merged())
	})

	t.Run("Unparseable dates are treated as absent and counted", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge([]model.RawGroupRecord{
			{Name: "Turla", FirstSeen: "unknown", LastSeen: "ongoing", SourceID: "a"},
		})

		group := groups["Turla"]
		assert.Nil(t, group.FirstSeen)
		assert.Nil(t, group.LastSeen)
		assert.Empty(t, group.FirstSeenSource)
		assert.Equal(t, 2, merger.UnparsedDates())
	})

	t.Run("Empty input yields an empty mapping", func(t *testing.T) {
		merger := newTestMerger(t)

		groups := merger.Merge(nil)

		assert.Empty(t, groups)
	})
}

func TestMergerIdempotence(t *testing.T) {
	merger := newTestMerger(t)

	records := []model.RawGroupRecord{
		{
			Name:        "APT29",
			Description: "State-sponsored espionage group.",
			Country:     "RU",
			Aliases:     []string{"Cozy Bear"},
			Categories:  []string{"Government"},
			References:  []string{"https://example.com/apt29"},
			FirstSeen:   "2008",
			LastSeen:    "2025",
			SourceID:    "a",
		},
	}

	groups := merger.Merge(records)
	group := groups["APT29"]

	// Feed the merged fields back in as a new record with identical values
	merged := model.RawGroupRecord{
		Name:        group.CanonicalName,
		Description: group.Description,
		Country:     group.Country,
		Aliases:     group.Aliases,
		Categories:  group.Categories,
		References:  group.References,
		FirstSeen:   "2008",
		LastSeen:    "2025",
		SourceID:    "a",
	}

	again := merger.Merge(append(records, merged))
	assert.Equal(t, group, again["APT29"], "Expected re-merging identical values to change nothing")
}

func TestMergerPartialCommutativity(t *testing.T) {
	records := []model.RawGroupRecord{
		{Name: "APT29", Aliases: []string{"Cozy Bear"}, FirstSeen: "2010", SourceID: "a"},
		{Name: "APT29", Aliases: []string{"The Dukes"}, FirstSeen: "2008", LastSeen: "2025", SourceID: "b"},
		{Name: "APT29", Categories: []string{"Government"}, LastSeen: "2020", SourceID: "c"},
	}
	reversed := []model.RawGroupRecord{records[2], records[1], records[0]}

	forward := newTestMerger(t).Merge(records)["APT29"]
	backward := newTestMerger(t).Merge(reversed)["APT29"]

	assert.Equal(t, *forward.FirstSeen, *backward.FirstSeen, "Expected first-seen to be order-independent")
	assert.Equal(t, *forward.LastSeen, *backward.LastSeen, "Expected last-seen to be order-independent")
	assert.ElementsMatch(t, forward.Aliases, backward.Aliases, "Expected alias set to be order-independent")
	assert.ElementsMatch(t, forward.Categories, backward.Categories, "Expected category set to be order-independent")
	assert.Equal(t, forward.Identifier, backward.Identifier)
}
