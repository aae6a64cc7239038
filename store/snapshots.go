package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IgorDevApp/aptcatalog/helper"
	"github.com/IgorDevApp/aptcatalog/model"
	loadSql "github.com/IgorDevApp/aptcatalog/sql"
)

// SnapshotRecord is the persisted metadata of one rebuild pass
type SnapshotRecord struct {
	ID           int64             `json:"id"`
	BuiltAt      time.Time         `json:"built_at"`
	TotalGroups  int               `json:"total_groups"`
	TotalReports int               `json:"total_reports"`
	TotalLinks   int               `json:"total_links"`
	Diagnostics  model.Diagnostics `json:"diagnostics"`
	CreatedAt    time.Time         `json:"created_at"`
}

// SnapshotsDBHandlerFunctions defines the interface for Snapshots database operations.
type SnapshotsDBHandlerFunctions interface {
	InsertSnapshot(record *SnapshotRecord) error
	SelectLatestSnapshot() (*SnapshotRecord, error)
}

// SnapshotsDBHandler handles snapshot-metadata database operations
type SnapshotsDBHandler struct {
	db *helper.Database
}

// NewSnapshotsDBHandler creates a new snapshots database handler.
// It initializes the database connection and loads snapshot-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewSnapshotsDBHandler(db *helper.Database, force bool) (*SnapshotsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	snapshotsDbHandler := &SnapshotsDBHandler{
		db: db,
	}

	err := loadSql.LoadSnapshotsSql(snapshotsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load snapshots sql", err)
	}

	err = snapshotsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized SnapshotsDBHandler")

	return snapshotsDbHandler, nil
}

// CreateTable creates the 'snapshots' table in the database.
// If the table already exists, it does not create it again.
func (h *SnapshotsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_snapshots();`)
	if err != nil {
		log.Panicf("error initializing snapshots table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table snapshots")

	return nil
}

// InsertSnapshot inserts the metadata of one rebuild pass
func (h *SnapshotsDBHandler) InsertSnapshot(record *SnapshotRecord) error {
	diagnostics, err := json.Marshal(record.Diagnostics)
	if err != nil {
		return helper.NewError("marshal diagnostics", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_snapshot($1, $2, $3, $4, $5)`,
		record.BuiltAt,
		record.TotalGroups,
		record.TotalReports,
		record.TotalLinks,
		diagnostics,
	)

	return scanSnapshot(row, record)
}

// SelectLatestSnapshot retrieves the most recently inserted snapshot record
func (h *SnapshotsDBHandler) SelectLatestSnapshot() (*SnapshotRecord, error) {
	record := &SnapshotRecord{}
	row := h.db.Instance.QueryRow(`SELECT * FROM select_latest_snapshot()`)

	err := scanSnapshot(row, record)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func scanSnapshot(row rowScanner, record *SnapshotRecord) error {
	var diagnostics []byte

	err := row.Scan(
		&record.ID,
		&record.BuiltAt,
		&record.TotalGroups,
		&record.TotalReports,
		&record.TotalLinks,
		&diagnostics,
		&record.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	err = json.Unmarshal(diagnostics, &record.Diagnostics)
	if err != nil {
		return helper.NewError("unmarshal diagnostics", err)
	}

	return nil
}
