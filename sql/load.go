package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed groups.sql
var groupsSQL string

//go:embed reports.sql
var reportsSQL string

//go:embed links.sql
var linksSQL string

//go:embed snapshots.sql
var snapshotsSQL string

// Function lists for verification
var GroupsFunctions = []string{
	"init_groups",
	"insert_group",
	"select_group",
	"select_group_by_name",
	"select_all_groups",
	"select_groups_by_country",
	"delete_all_groups",
}

var ReportsFunctions = []string{
	"init_reports",
	"insert_report",
	"select_report",
	"select_all_reports",
	"delete_all_reports",
}

var LinksFunctions = []string{
	"init_links",
	"insert_link",
	"select_all_links",
	"select_links_for_group",
	"select_links_for_report",
	"delete_all_links",
}

var SnapshotsFunctions = []string{
	"init_snapshots",
	"insert_snapshot",
	"select_latest_snapshot",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadGroupsSql loads group-related SQL functions
func LoadGroupsSql(db *sql.DB, force bool) error {
	return loadFunctions(db, force, "groups", groupsSQL, GroupsFunctions)
}

// LoadReportsSql loads report-related SQL functions
func LoadReportsSql(db *sql.DB, force bool) error {
	return loadFunctions(db, force, "reports", reportsSQL, ReportsFunctions)
}

// LoadLinksSql loads link-related SQL functions
func LoadLinksSql(db *sql.DB, force bool) error {
	return loadFunctions(db, force, "links", linksSQL, LinksFunctions)
}

// LoadSnapshotsSql loads snapshot-related SQL functions
func LoadSnapshotsSql(db *sql.DB, force bool) error {
	return loadFunctions(db, force, "snapshots", snapshotsSQL, SnapshotsFunctions)
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadGroupsSql(db, force); err != nil {
		return err
	}

	if err := LoadReportsSql(db, force); err != nil {
		return err
	}

	if err := LoadLinksSql(db, force); err != nil {
		return err
	}

	if err := LoadSnapshotsSql(db, force); err != nil {
		return err
	}

	return nil
}

func loadFunctions(db *sql.DB, force bool, name string, functionsSQL string, functions []string) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %v functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(functionsSQL)
	if err != nil {
		return fmt.Errorf("error executing %v SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Printf("SQL %v functions loaded successfully", name)
	return nil
}

// checkFunctions returns true if all named functions exist in the database
func checkFunctions(db *sql.DB, functions []string) (bool, error) {
	for _, function := range functions {
		var exists bool
		err := db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = $1)`,
			function,
		).Scan(&exists)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}
