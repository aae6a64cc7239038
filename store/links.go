package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IgorDevApp/aptcatalog/helper"
	"github.com/IgorDevApp/aptcatalog/model"
	loadSql "github.com/IgorDevApp/aptcatalog/sql"
	"github.com/google/uuid"
)

// LinksDBHandlerFunctions defines the interface for Links database operations.
type LinksDBHandlerFunctions interface {
	InsertLink(link model.Link) error
	SelectAllLinks() ([]model.Link, error)
	SelectLinksForGroup(groupID uuid.UUID) ([]model.Link, error)
	SelectLinksForReport(reportID uuid.UUID) ([]model.Link, error)
	ReplaceAllLinks(ctx context.Context, links []model.Link) error
}

// LinksDBHandler handles link-related database operations
type LinksDBHandler struct {
	db *helper.Database
}

// NewLinksDBHandler creates a new links database handler.
// It initializes the database connection and loads link-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewLinksDBHandler(db *helper.Database, force bool) (*LinksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	linksDbHandler := &LinksDBHandler{
		db: db,
	}

	err := loadSql.LoadLinksSql(linksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load links sql", err)
	}

	err = linksDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized LinksDBHandler")

	return linksDbHandler, nil
}

// CreateTable creates the 'links' table in the database.
// If the table already exists, it does not create it again.
func (h *LinksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_links();`)
	if err != nil {
		log.Panicf("error initializing links table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table links")

	return nil
}

// InsertLink inserts a link, ignoring duplicates
func (h *LinksDBHandler) InsertLink(link model.Link) error {
	_, err := h.db.Instance.Exec(
		`SELECT insert_link($1, $2)`,
		link.ReportID,
		link.GroupID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectAllLinks retrieves all links
func (h *LinksDBHandler) SelectAllLinks() ([]model.Link, error) {
	return h.selectLinks(`SELECT * FROM select_all_links()`)
}

// SelectLinksForGroup retrieves all links pointing at a group
func (h *LinksDBHandler) SelectLinksForGroup(groupID uuid.UUID) ([]model.Link, error) {
	return h.selectLinks(`SELECT * FROM select_links_for_group($1)`, groupID)
}

// SelectLinksForReport retrieves all links of a report
func (h *LinksDBHandler) SelectLinksForReport(reportID uuid.UUID) ([]model.Link, error) {
	return h.selectLinks(`SELECT * FROM select_links_for_report($1)`, reportID)
}

// ReplaceAllLinks replaces the whole links table with the given link
// set inside one transaction
func (h *LinksDBHandler) ReplaceAllLinks(ctx context.Context, links []model.Link) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `SELECT delete_all_links()`)
	if err != nil {
		return helper.NewError("delete all links", err)
	}

	for _, link := range links {
		_, err = tx.ExecContext(
			ctx,
			`SELECT insert_link($1, $2)`,
			link.ReportID,
			link.GroupID,
		)
		if err != nil {
			return helper.NewError("insert link", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit transaction", err)
	}

	return nil
}

func (h *LinksDBHandler) selectLinks(query string, args ...interface{}) ([]model.Link, error) {
	rows, err := h.db.Instance.Query(query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var links []model.Link
	for rows.Next() {
		var link model.Link
		err := rows.Scan(&link.ReportID, &link.GroupID)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		links = append(links, link)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return links, nil
}
