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

// ReportsDBHandlerFunctions defines the interface for Reports database operations.
type ReportsDBHandlerFunctions interface {
	InsertReport(report *model.Report) error
	SelectReport(id uuid.UUID) (*model.Report, error)
	SelectAllReports() ([]*model.Report, error)
	ReplaceAllReports(ctx context.Context, reports []*model.Report) error
}

// ReportsDBHandler handles report-related database operations
type ReportsDBHandler struct {
	db *helper.Database
}

// NewReportsDBHandler creates a new reports database handler.
// It initializes the database connection and loads report-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewReportsDBHandler(db *helper.Database, force bool) (*ReportsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	reportsDbHandler := &ReportsDBHandler{
		db: db,
	}

	err := loadSql.LoadReportsSql(reportsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load reports sql", err)
	}

	err = reportsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ReportsDBHandler")

	return reportsDbHandler, nil
}

// CreateTable creates the 'reports' table in the database.
// If the table already exists, it does not create it again.
func (h *ReportsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_reports();`)
	if err != nil {
		log.Panicf("error initializing reports table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table reports")

	return nil
}

// InsertReport inserts a report (or replaces it if the id exists)
func (h *ReportsDBHandler) InsertReport(report *model.Report) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_report($1, $2, $3, $4, $5, $6, $7)`,
		report.ID,
		report.Title,
		report.Filename,
		report.Source,
		report.Date,
		report.Metadata,
		report.LinkedGroups,
	)

	return scanReport(row, report)
}

// SelectReport retrieves a report by id
func (h *ReportsDBHandler) SelectReport(id uuid.UUID) (*model.Report, error) {
	report := &model.Report{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_report($1)`,
		id,
	)

	err := scanReport(row, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

// SelectAllReports retrieves all reports ordered by title
func (h *ReportsDBHandler) SelectAllReports() ([]*model.Report, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_reports()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		report := &model.Report{}
		err := scanReport(rows, report)
		if err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return reports, nil
}

// ReplaceAllReports replaces the whole reports table with the given
// report corpus inside one transaction
func (h *ReportsDBHandler) ReplaceAllReports(ctx context.Context, reports []*model.Report) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `SELECT delete_all_reports()`)
	if err != nil {
		return helper.NewError("delete all reports", err)
	}

	for _, report := range reports {
		_, err = tx.ExecContext(
			ctx,
			`SELECT insert_report($1, $2, $3, $4, $5, $6, $7)`,
			report.ID,
			report.Title,
			report.Filename,
			report.Source,
			report.Date,
			report.Metadata,
			report.LinkedGroups,
		)
		if err != nil {
			return helper.NewError(fmt.Sprintf("insert report %v", report.ID), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit transaction", err)
	}

	return nil
}

func scanReport(row rowScanner, report *model.Report) error {
	var createdAt time.Time

	err := row.Scan(
		&report.ID,
		&report.Title,
		&report.Filename,
		&report.Source,
		&report.Date,
		&report.Metadata,
		&report.LinkedGroups,
		&createdAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}
