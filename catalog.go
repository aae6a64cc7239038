package aptcatalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/IgorDevApp/aptcatalog/core/linker"
	"github.com/IgorDevApp/aptcatalog/core/pipeline"
	"github.com/IgorDevApp/aptcatalog/core/resolve"
	"github.com/IgorDevApp/aptcatalog/helper"
	"github.com/IgorDevApp/aptcatalog/model"
	"github.com/IgorDevApp/aptcatalog/store"
	loadSql "github.com/IgorDevApp/aptcatalog/sql"
	"github.com/google/uuid"
)

// Catalog provides a unified interface to the entity-resolution
// pipeline and the optional persistence handlers. The current snapshot
// is published through an atomic pointer swap, so readers observe
// either the previous or the fully rebuilt state, never a partial one.
type Catalog struct {
	Registry *resolve.Registry
	Pipeline *pipeline.Pipeline

	// Persistence handlers, nil unless created with NewCatalogWithStore
	DB        *helper.Database
	Groups    *store.GroupsDBHandler
	Reports   *store.ReportsDBHandler
	Links     *store.LinksDBHandler
	Snapshots *store.SnapshotsDBHandler

	snapshot atomic.Pointer[pipeline.Snapshot]
	// Logging
	log *slog.Logger
}

// NewCatalog creates an in-memory Catalog instance with the registry
// and pipeline initialized
func NewCatalog() (*Catalog, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	registry, err := resolve.NewRegistry(logger)
	if err != nil {
		return nil, helper.NewError("create registry", err)
	}

	rebuildPipeline, err := pipeline.NewPipeline(registry, logger)
	if err != nil {
		return nil, helper.NewError("create pipeline", err)
	}

	return &Catalog{
		Registry: registry,
		Pipeline: rebuildPipeline,
		log:      logger,
	}, nil
}

// NewCatalogWithStore creates a Catalog with all persistence handlers
// initialized against the configured Postgres database
func NewCatalogWithStore(config *helper.DatabaseConfiguration) (*Catalog, error) {
	catalog, err := NewCatalog()
	if err != nil {
		return nil, err
	}

	// Initialize database
	db := helper.NewDatabase("aptcatalog", config, catalog.log)
	err = loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers
	// force=false to not reload if functions already exist
	groups, err := store.NewGroupsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create groups handler", err)
	}

	reports, err := store.NewReportsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create reports handler", err)
	}

	links, err := store.NewLinksDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create links handler", err)
	}

	snapshots, err := store.NewSnapshotsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create snapshots handler", err)
	}

	catalog.DB = db
	catalog.Groups = groups
	catalog.Reports = reports
	catalog.Links = links
	catalog.Snapshots = snapshots

	return catalog, nil
}

// Close closes the database connection
func (c *Catalog) Close() error {
	if c.DB != nil && c.DB.Instance != nil {
		return c.DB.Instance.Close()
	}
	return nil
}

// Rebuild runs the full pipeline over the raw records and reports and
// publishes the resulting snapshot. Records may arrive in any order;
// the pipeline sorts them by source priority before merging. Rebuild
// never fails, all anomalies land in the snapshot's diagnostics.
func (c *Catalog) Rebuild(records []model.RawGroupRecord, reports []*model.Report) *pipeline.Snapshot {
	snapshot := c.Pipeline.Run(records, reports)
	c.snapshot.Store(snapshot)
	return snapshot
}

// Snapshot returns the currently published snapshot, or nil before the
// first rebuild
func (c *Catalog) Snapshot() *pipeline.Snapshot {
	return c.snapshot.Load()
}

// LookupGroup finds a group by any of its names or aliases
func (c *Catalog) LookupGroup(name string) (*model.ThreatGroup, bool) {
	snapshot := c.snapshot.Load()
	if snapshot == nil {
		return nil, false
	}
	return snapshot.Indexes.Lookup(c.Registry.Resolve(name))
}

// SameEntity reports whether two names resolve to the same group
func (c *Catalog) SameEntity(nameA, nameB string) bool {
	return c.Registry.SameEntity(nameA, nameB)
}

// RelatedGroups returns the groups co-mentioned with the given group,
// ranked by shared-report count
func (c *Catalog) RelatedGroups(groupID uuid.UUID) []linker.RelatedGroup {
	snapshot := c.snapshot.Load()
	if snapshot == nil {
		return nil
	}
	return snapshot.Related[groupID]
}

// PersistSnapshot writes the currently published snapshot to the
// database, replacing all previously stored groups, reports and links
func (c *Catalog) PersistSnapshot(ctx context.Context) error {
	if c.Groups == nil {
		return helper.NewError("persist snapshot", fmt.Errorf("store not initialized, use NewCatalogWithStore"))
	}

	snapshot := c.snapshot.Load()
	if snapshot == nil {
		return helper.NewError("persist snapshot", fmt.Errorf("no snapshot published, call Rebuild first"))
	}

	err := c.Groups.ReplaceAllGroups(ctx, snapshot.Groups)
	if err != nil {
		return helper.NewError("replace groups", err)
	}

	err = c.Reports.ReplaceAllReports(ctx, snapshot.Reports)
	if err != nil {
		return helper.NewError("replace reports", err)
	}

	err = c.Links.ReplaceAllLinks(ctx, snapshot.Links)
	if err != nil {
		return helper.NewError("replace links", err)
	}

	err = c.Snapshots.InsertSnapshot(&store.SnapshotRecord{
		BuiltAt:      snapshot.BuiltAt,
		TotalGroups:  snapshot.Stats.TotalGroups,
		TotalReports: snapshot.Stats.TotalReports,
		TotalLinks:   snapshot.Stats.TotalLinks,
		Diagnostics:  snapshot.Diagnostics,
	})
	if err != nil {
		return helper.NewError("insert snapshot record", err)
	}

	c.log.Info("Persisted snapshot",
		slog.Int("groups", snapshot.Stats.TotalGroups),
		slog.Int("reports", snapshot.Stats.TotalReports),
		slog.Int("links", snapshot.Stats.TotalLinks),
	)

	return nil
}
