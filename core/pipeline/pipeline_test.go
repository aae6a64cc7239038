package pipeline

import (
	"testing"

	"github.com/IgorDevApp/aptcatalog/core/resolve"
	"github.com/IgorDevApp/aptcatalog/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) *Pipeline {
	registry, err := resolve.NewRegistry(testLogger())
	require.NoError(t, err, "failed to create registry")

	p, err := NewPipeline(registry, testLogger())
	require.NoError(t, err, "failed to create pipeline")

	return p
}

func testRecords() []model.RawGroupRecord {
	return []model.RawGroupRecord{
		{Name: "APT29", Aliases: []string{"Cozy Bear"}, Country: "RU", SourceID: "source-a", SourcePriority: 1},
		{Name: "APT 29", Aliases: []string{"The Dukes"}, FirstSeen: "2008", LastSeen: "2025", SourceID: "source-b", SourcePriority: 2},
		{Name: "APT29", FirstSeen: "2010", SourceID: "source-c", SourcePriority: 3},
		{Name: "Lazarus Group", Country: "KP", FirstSeen: "2009", Categories: []string{"Financial"}, SourceID: "source-b", SourcePriority: 2},
	}
}

func TestNewPipeline(t *testing.T) {
	t.Run("Valid call NewPipeline", func(t *testing.T) {
		p := newTestPipeline(t)
		require.NotNil(t, p, "Expected NewPipeline to return a non-nil instance")
	})

	t.Run("Invalid call NewPipeline with nil registry", func(t *testing.T) {
		_, err := NewPipeline(nil, testLogger())
		assert.Error(t, err, "Expected error when creating Pipeline with nil registry")
		assert.Contains(t, err.Error(), "registry is nil", "Expected specific error message for nil registry")
	})
}

func TestPipelineRun(t *testing.T) {
	p := newTestPipeline(t)

	reports := []*model.Report{
		{ID: uuid.New(), Title: "Cozy Bear targets government networks", Date: "2021"},
		{ID: uuid.New(), Title: "Lazarus Group heist analysis", Date: "2022"},
		{ID: uuid.New(), Title: "Unrelated advisory", Date: "2022"},
	}

	snapshot := p.Run(testRecords(), reports)
	require.NotNil(t, snapshot)

	t.Run("Groups are merged per canonical name", func(t *testing.T) {
		require.Len(t, snapshot.Groups, 2)
		group := snapshot.Groups["APT29"]
		require.NotNil(t, group)
		assert.Equal(t, "RU", group.Country)
		require.NotNil(t, group.FirstSeen)
		assert.Equal(t, 2008, *group.FirstSeen)
	})

	t.Run("Indexes are built over the merged groups", func(t *testing.T) {
		require.NotNil(t, snapshot.Indexes)
		group, ok := snapshot.Indexes.Lookup("the dukes")
		require.True(t, ok)
		assert.Equal(t, "APT29", group.CanonicalName)
	})

	t.Run("Reports are linked", func(t *testing.T) {
		require.Len(t, snapshot.Links, 2)
		assert.Equal(t, 1, snapshot.Groups["APT29"].DocumentCount)
		assert.Equal(t, 1, snapshot.Groups["Lazarus Group"].DocumentCount)
		assert.Empty(t, reports[2].LinkedGroups)
	})

	t.Run("Statistics are aggregated", func(t *testing.T) {
		require.NotNil(t, snapshot.Stats)
		assert.Equal(t, 2, snapshot.Stats.TotalGroups)
		assert.Equal(t, 3, snapshot.Stats.TotalReports)
		assert.Equal(t, map[int]int{2021: 1, 2022: 2}, snapshot.Stats.ReportsByYear)
	})

	t.Run("Diagnostics are recorded", func(t *testing.T) {
		assert.Equal(t, 3, snapshot.Diagnostics.SourcesProcessed)
		assert.Equal(t, 4, snapshot.Diagnostics.RecordsMerged)
		assert.Equal(t, 0, snapshot.Diagnostics.RecordsSkipped)
	})

	t.Run("BuiltAt is set", func(t *testing.T) {
		assert.False(t, snapshot.BuiltAt.IsZero())
	})
}

func TestPipelineRunOrdersBySourcePriority(t *testing.T) {
	p := newTestPipeline(t)

	// Arrival order is reversed, source priority must decide the
	// first-wins country
	records := []model.RawGroupRecord{
		{Name: "Turla", Country: "CN", SourceID: "low-priority", SourcePriority: 9},
		{Name: "Turla", Country: "RU", SourceID: "high-priority", SourcePriority: 1},
	}

	snapshot := p.Run(records, nil)

	assert.Equal(t, "RU", snapshot.Groups["Turla"].Country, "Expected the higher-priority source to win the country")
}

func TestPipelineRunDeterminism(t *testing.T) {
	reports := func() []*model.Report {
		return []*model.Report{
			{ID: uuid.MustParse("c1a96b37-6e4c-4a11-9f39-0a7f3c4f1a01"), Title: "Cozy Bear targets government networks"},
		}
	}

	first := newTestPipeline(t).Run(testRecords(), reports())
	second := newTestPipeline(t).Run(testRecords(), reports())

	assert.Equal(t, first.Groups, second.Groups, "Expected identical input to produce identical groups")
	assert.Equal(t, first.Links, second.Links, "Expected identical input to produce identical links")
	assert.Equal(t, first.Stats, second.Stats, "Expected identical input to produce identical statistics")
	assert.Equal(t, first.Diagnostics, second.Diagnostics, "Expected identical input to produce identical diagnostics")
}

func TestPipelineRunNeverFails(t *testing.T) {
	p := newTestPipeline(t)

	records := []model.RawGroupRecord{
		{Name: "", SourceID: "source-a", SourcePriority: 1},
		{Name: "Turla", FirstSeen: "unknown", SourceID: "source-a", SourcePriority: 1},
	}
	p.SetFailedSources(2)

	snapshot := p.Run(records, nil)

	require.NotNil(t, snapshot)
	assert.Equal(t, 1, snapshot.Diagnostics.RecordsSkipped)
	assert.Equal(t, 1, snapshot.Diagnostics.UnparsedDates)
	assert.Equal(t, 2, snapshot.Diagnostics.SourcesFailed)
	assert.Len(t, snapshot.Groups, 1)
}

func TestPipelineRunResetsBetweenPasses(t *testing.T) {
	p := newTestPipeline(t)

	first := p.Run([]model.RawGroupRecord{
		{Name: "Mustang Panda", Aliases: []string{"Bronze President"}, SourceID: "a", SourcePriority: 1},
	}, nil)
	require.Len(t, first.Groups, 1)

	// Without the registry reset, "Bronze President" would still
	// resolve to Mustang Panda in the second pass
	second := p.Run([]model.RawGroupRecord{
		{Name: "Bronze President", SourceID: "a", SourcePriority: 1},
	}, nil)

	require.Len(t, second.Groups, 1)
	_, ok := second.Groups["Bronze President"]
	assert.True(t, ok, "Expected dynamic aliases from the previous pass to be cleared")
}
