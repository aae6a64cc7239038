package pipeline

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/IgorDevApp/aptcatalog/core/index"
	"github.com/IgorDevApp/aptcatalog/core/linker"
	"github.com/IgorDevApp/aptcatalog/core/resolve"
	"github.com/IgorDevApp/aptcatalog/core/stats"
	"github.com/IgorDevApp/aptcatalog/helper"
	"github.com/IgorDevApp/aptcatalog/model"
	"github.com/google/uuid"
)

// Snapshot is the complete output of one rebuild pass. A snapshot is
// built in full and then published; readers never observe a partially
// merged state.
type Snapshot struct {
	Groups      map[string]*model.ThreatGroup
	Indexes     *index.Indexes
	Reports     []*model.Report
	Links       []model.Link
	Related     map[uuid.UUID][]linker.RelatedGroup
	Stats       *model.Statistics
	Diagnostics model.Diagnostics
	BuiltAt     time.Time
}

// Pipeline runs the full rebuild: order records by source priority,
// reset the registry, merge, index, link and aggregate. The stages run
// strictly sequentially; each consumes the complete output of the
// previous one.
type Pipeline struct {
	registry *resolve.Registry
	linker   *linker.Linker
	log      *slog.Logger

	failedSources int
}

// NewPipeline creates a pipeline bound to an alias registry
func NewPipeline(registry *resolve.Registry, logger *slog.Logger) (*Pipeline, error) {
	if registry == nil {
		return nil, helper.NewError("registry validation", fmt.Errorf("registry is nil"))
	}
	if logger == nil {
		return nil, helper.NewError("logger validation", fmt.Errorf("logger is nil"))
	}

	docLinker, err := linker.NewLinker(logger)
	if err != nil {
		return nil, helper.NewError("create linker", err)
	}

	return &Pipeline{
		registry: registry,
		linker:   docLinker,
		log:      logger,
	}, nil
}

// SetFailedSources lets the fetch collaborator report how many sources
// failed upstream, for the diagnostics record of the next run
func (p *Pipeline) SetFailedSources(n int) {
	p.failedSources = n
}

// Run executes one full rebuild pass and returns the snapshot. Run
// never fails: malformed records, alias collisions and unparseable
// dates are counted in the snapshot's diagnostics instead of aborting.
// Records are stable-sorted by source priority before merging, so the
// order-sensitive merge rules (country, tie-broken description) are
// deterministic regardless of fetch arrival order.
func (p *Pipeline) Run(records []model.RawGroupRecord, reports []*model.Report) *Snapshot {
	ordered := make([]model.RawGroupRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SourcePriority < ordered[j].SourcePriority
	})

	p.registry.Reset()

	merger, err := NewMerger(p.registry, p.log)
	if err != nil {
		// Unreachable, registry and logger are validated in NewPipeline
		panic(err)
	}

	groups := merger.Merge(ordered)
	indexes := index.Build(groups, p.log)
	links := p.linker.Link(groups, reports)
	related := linker.Related(links)
	statistics := stats.Aggregate(groups, reports, links)

	snapshot := &Snapshot{
		Groups:  groups,
		Indexes: indexes,
		Reports: reports,
		Links:   links,
		Related: related,
		Stats:   statistics,
		Diagnostics: model.Diagnostics{
			SourcesProcessed:  countSources(ordered),
			SourcesFailed:     p.failedSources,
			RecordsMerged:     merger.Merged(),
			RecordsSkipped:    merger.Skipped(),
			AliasesRegistered: p.registry.Registered(),
			AliasesResolved:   p.registry.Resolved(),
			AliasCollisions:   p.registry.Collisions(),
			IndexCollisions:   indexes.NameCollisions,
			UnparsedDates:     merger.UnparsedDates(),
		},
		BuiltAt: time.Now(),
	}

	p.log.Info("Rebuilt snapshot",
		slog.Int("groups", len(groups)),
		slog.Int("reports", len(reports)),
		slog.Int("links", len(links)),
		slog.Int("skipped", merger.Skipped()),
	)

	return snapshot
}

func countSources(records []model.RawGroupRecord) int {
	sources := make(map[string]bool)
	for _, record := range records {
		if record.SourceID != "" {
			sources[record.SourceID] = true
		}
	}
	return len(sources)
}
