package main

import (
	"context"
	"fmt"
	"log"

	"github.com/IgorDevApp/aptcatalog"
	"github.com/IgorDevApp/aptcatalog/helper"
	"github.com/IgorDevApp/aptcatalog/model"
	"github.com/google/uuid"
)

var feedRecords = []model.RawGroupRecord{
	{
		Name:           "APT28",
		Description:    "Russian military intelligence group conducting espionage operations.",
		Country:        "RU",
		Aliases:        []string{"Fancy Bear", "Sofacy"},
		Categories:     []string{"espionage"},
		FirstSeen:      "2004",
		SourceID:       "mitre",
		SourcePriority: 0,
	},
	{
		Name:           "Fancy Bear",
		Description:    "Actor observed in credential phishing campaigns against government targets.",
		References:     []string{"https://example.org/fancy-bear"},
		LastSeen:       "2024",
		SourceID:       "vendor-a",
		SourcePriority: 1,
	},
	{
		Name:           "Lazarus Group",
		Description:    "North Korean group behind financially motivated and destructive attacks.",
		Country:        "KP",
		Aliases:        []string{"Hidden Cobra"},
		Categories:     []string{"espionage", "financial"},
		FirstSeen:      "2009",
		SourceID:       "mitre",
		SourcePriority: 0,
	},
	{
		Name:           "Kimsuky",
		Description:    "North Korean group focused on think tanks and policy research.",
		Country:        "KP",
		Categories:     []string{"espionage"},
		FirstSeen:      "2012",
		SourceID:       "vendor-a",
		SourcePriority: 1,
	},
}

var feedReports = []*model.Report{
	{
		ID:     uuid.New(),
		Title:  "Sofacy spearphishing against defense ministries",
		Source: "vendor-a",
		Date:   "2020-03-11",
	},
	{
		ID:     uuid.New(),
		Title:  "Hidden Cobra cryptocurrency heists",
		Source: "cert",
		Date:   "2021-08-30",
		Metadata: model.Metadata{
			"tlp": "white",
		},
	},
	{
		ID:       uuid.New(),
		Title:    "DPRK activity overview",
		Filename: "lazarus_kimsuky_overview.pdf",
		Source:   "cert",
		Date:     "2023-01-19",
	},
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	catalog, err := aptcatalog.NewCatalogWithStore(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create catalog: %v", err)
	}
	defer catalog.Close()

	fmt.Println("Rebuilding catalog from feed records...")
	snapshot := catalog.Rebuild(feedRecords, feedReports)
	fmt.Printf("Built snapshot with %d groups, %d reports, %d links\n",
		snapshot.Stats.TotalGroups, snapshot.Stats.TotalReports, snapshot.Stats.TotalLinks)

	fmt.Println("Persisting snapshot...")
	if err := catalog.PersistSnapshot(context.Background()); err != nil {
		log.Fatalf("Failed to persist snapshot: %v", err)
	}

	// Query the persisted state back, the way a dashboard backend would
	groups, err := catalog.Groups.SelectAllGroups()
	if err != nil {
		log.Fatalf("Failed to select groups: %v", err)
	}
	fmt.Printf("\nStored groups (%d):\n", len(groups))
	for _, group := range groups {
		fmt.Printf("  %s  country=%s  aliases=%v  documents=%d\n",
			group.CanonicalName, group.Country, group.Aliases, group.DocumentCount)
	}

	northKorean, err := catalog.Groups.SelectGroupsByCountry("KP")
	if err != nil {
		log.Fatalf("Failed to select groups by country: %v", err)
	}
	fmt.Printf("\nGroups attributed to KP (%d):\n", len(northKorean))
	for _, group := range northKorean {
		fmt.Printf("  %s\n", group.CanonicalName)
	}

	reports, err := catalog.Reports.SelectAllReports()
	if err != nil {
		log.Fatalf("Failed to select reports: %v", err)
	}
	fmt.Printf("\nStored reports (%d):\n", len(reports))
	for _, report := range reports {
		fmt.Printf("  %q links %d groups\n", report.Title, len(report.LinkedGroups))
	}

	latest, err := catalog.Snapshots.SelectLatestSnapshot()
	if err != nil {
		log.Fatalf("Failed to select latest snapshot: %v", err)
	}
	fmt.Printf("\nLatest persisted snapshot: built at %s, %d groups, %d aliases resolved\n",
		latest.BuiltAt.Format("2006-01-02 15:04:05"), latest.TotalGroups, latest.Diagnostics.AliasesResolved)

	fmt.Println("\nDashboard example completed successfully!")
}
