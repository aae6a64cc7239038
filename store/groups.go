package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/IgorDevApp/aptcatalog/helper"
	"github.com/IgorDevApp/aptcatalog/model"
	loadSql "github.com/IgorDevApp/aptcatalog/sql"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// GroupsDBHandlerFunctions defines the interface for Groups database operations.
type GroupsDBHandlerFunctions interface {
	InsertGroup(group *model.ThreatGroup) error
	SelectGroup(identifier uuid.UUID) (*model.ThreatGroup, error)
	SelectGroupByName(canonicalName string) (*model.ThreatGroup, error)
	SelectAllGroups() ([]*model.ThreatGroup, error)
	SelectGroupsByCountry(country string) ([]*model.ThreatGroup, error)
	ReplaceAllGroups(ctx context.Context, groups map[string]*model.ThreatGroup) error
}

// GroupsDBHandler handles threat-group-related database operations
type GroupsDBHandler struct {
	db *helper.Database
}

// NewGroupsDBHandler creates a new groups database handler.
// It initializes the database connection and loads group-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewGroupsDBHandler(db *helper.Database, force bool) (*GroupsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	groupsDbHandler := &GroupsDBHandler{
		db: db,
	}

	err := loadSql.LoadGroupsSql(groupsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load groups sql", err)
	}

	err = groupsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized GroupsDBHandler")

	return groupsDbHandler, nil
}

// CreateTable creates the 'groups' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *GroupsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_groups();`)
	if err != nil {
		log.Panicf("error initializing groups table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table groups")

	return nil
}

// InsertGroup inserts a group (or replaces it if the identifier exists)
func (h *GroupsDBHandler) InsertGroup(group *model.ThreatGroup) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_group($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		group.Identifier,
		group.CanonicalName,
		group.OriginalName,
		group.Description,
		group.Country,
		textArray(group.Aliases),
		textArray(group.Categories),
		textArray(group.References),
		group.FirstSeen,
		group.FirstSeenSource,
		group.LastSeen,
		textArray(group.ContributingSources),
		group.DocumentCount,
	)

	return scanGroup(row, group)
}

// SelectGroup retrieves a group by identifier
func (h *GroupsDBHandler) SelectGroup(identifier uuid.UUID) (*model.ThreatGroup, error) {
	group := &model.ThreatGroup{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_group($1)`,
		identifier,
	)

	err := scanGroup(row, group)
	if err != nil {
		return nil, err
	}

	return group, nil
}

// SelectGroupByName retrieves a group by canonical name (case-insensitive)
func (h *GroupsDBHandler) SelectGroupByName(canonicalName string) (*model.ThreatGroup, error) {
	group := &model.ThreatGroup{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_group_by_name($1)`,
		canonicalName,
	)

	err := scanGroup(row, group)
	if err != nil {
		return nil, err
	}

	return group, nil
}

// SelectAllGroups retrieves all groups ordered by canonical name
func (h *GroupsDBHandler) SelectAllGroups() ([]*model.ThreatGroup, error) {
	return h.selectGroups(`SELECT * FROM select_all_groups()`)
}

// SelectGroupsByCountry retrieves all groups attributed to a country
func (h *GroupsDBHandler) SelectGroupsByCountry(country string) ([]*model.ThreatGroup, error) {
	return h.selectGroups(`SELECT * FROM select_groups_by_country($1)`, country)
}

// ReplaceAllGroups replaces the whole groups table with the given
// merged group set inside one transaction. Groups are rebuilt
// wholesale on every ingestion pass, so there is no partial update.
func (h *GroupsDBHandler) ReplaceAllGroups(ctx context.Context, groups map[string]*model.ThreatGroup) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `SELECT delete_all_groups()`)
	if err != nil {
		return helper.NewError("delete all groups", err)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := groups[name]
		_, err = tx.ExecContext(
			ctx,
			`SELECT insert_group($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			group.Identifier,
			group.CanonicalName,
			group.OriginalName,
			group.Description,
			group.Country,
			textArray(group.Aliases),
			textArray(group.Categories),
			textArray(group.References),
			group.FirstSeen,
			group.FirstSeenSource,
			group.LastSeen,
			textArray(group.ContributingSources),
			group.DocumentCount,
		)
		if err != nil {
			return helper.NewError(fmt.Sprintf("insert group %v", group.CanonicalName), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit transaction", err)
	}

	return nil
}

func (h *GroupsDBHandler) selectGroups(query string, args ...interface{}) ([]*model.ThreatGroup, error) {
	rows, err := h.db.Instance.Query(query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var groups []*model.ThreatGroup
	for rows.Next() {
		group := &model.ThreatGroup{}
		err := scanGroup(rows, group)
		if err != nil {
			return nil, err
		}

		groups = append(groups, group)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return groups, nil
}

// textArray binds a string set to a text[] parameter. Merged groups
// keep nil slices for sets no source supplied; those must bind as
// empty arrays, not SQL NULL, because the set columns are NOT NULL.
func textArray(values []string) interface{} {
	if values == nil {
		values = []string{}
	}
	return pq.Array(values)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGroup(row rowScanner, group *model.ThreatGroup) error {
	var (
		aliases             pq.StringArray
		categories          pq.StringArray
		references          pq.StringArray
		contributingSources pq.StringArray
		firstSeen           sql.NullInt64
		lastSeen            sql.NullInt64
		createdAt           time.Time
	)

	err := row.Scan(
		&group.Identifier,
		&group.CanonicalName,
		&group.OriginalName,
		&group.Description,
		&group.Country,
		&aliases,
		&categories,
		&references,
		&firstSeen,
		&group.FirstSeenSource,
		&lastSeen,
		&contributingSources,
		&group.DocumentCount,
		&createdAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	group.Aliases = aliases
	group.Categories = categories
	group.References = references
	group.ContributingSources = contributingSources
	group.FirstSeen = nullableYear(firstSeen)
	group.LastSeen = nullableYear(lastSeen)

	return nil
}

func nullableYear(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	year := int(value.Int64)
	return &year
}
