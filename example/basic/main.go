package main

import (
	"fmt"
	"log"

	"github.com/IgorDevApp/aptcatalog"
	"github.com/IgorDevApp/aptcatalog/model"
	"github.com/google/uuid"
)

// Sample records as three ingestion adapters would emit them. The same
// real-world group appears under different spellings with conflicting
// field values, which is exactly what the merge engine resolves.
var sampleRecords = []model.RawGroupRecord{
	{
		Name:           "APT29",
		Description:    "Russian state-sponsored espionage group active since at least 2008.",
		Country:        "RU",
		Aliases:        []string{"Cozy Bear", "The Dukes"},
		Categories:     []string{"espionage"},
		FirstSeen:      "2008",
		SourceID:       "mitre",
		SourcePriority: 0,
	},
	{
		Name:           "apt 29",
		Description:    "Espionage actor.",
		Aliases:        []string{"Nobelium", "Midnight Blizzard"},
		References:     []string{"https://example.org/apt29-profile"},
		FirstSeen:      "2010 – present",
		LastSeen:       "2024",
		SourceID:       "vendor-a",
		SourcePriority: 1,
	},
	{
		Name:           "FIN7",
		Description:    "Financially motivated group targeting retail and hospitality.",
		Country:        "RU",
		Aliases:        []string{"Carbanak"},
		Categories:     []string{"financial"},
		FirstSeen:      "2013",
		SourceID:       "mitre",
		SourcePriority: 0,
	},
	{
		Name:           "TA505",
		Description:    "High-volume crimeware distributor.",
		Categories:     []string{"financial"},
		FirstSeen:      "2014",
		SourceID:       "vendor-a",
		SourcePriority: 1,
	},
}

var sampleReports = []*model.Report{
	{
		ID:    uuid.New(),
		Title: "Cozy Bear returns: new wave of diplomatic phishing",
		Date:  "2021-05-27",
	},
	{
		ID:       uuid.New(),
		Title:    "Quarterly crimeware roundup",
		Filename: "fin7_ta505_q3.pdf",
		Date:     "2022-10-02",
	},
	{
		ID:    uuid.New(),
		Title: "Midnight Blizzard and FIN7 tooling overlaps",
		Date:  "2023-02-14",
	},
}

func main() {
	catalog, err := aptcatalog.NewCatalog()
	if err != nil {
		log.Fatalf("Failed to create catalog: %v", err)
	}

	fmt.Println("Rebuilding catalog...")
	snapshot := catalog.Rebuild(sampleRecords, sampleReports)

	fmt.Printf("\nMerged %d records into %d groups:\n", snapshot.Diagnostics.RecordsMerged, snapshot.Stats.TotalGroups)
	for _, group := range snapshot.Groups {
		fmt.Printf("\n--- %s ---\n", group.CanonicalName)
		fmt.Printf("Identifier: %s\n", group.Identifier)
		fmt.Printf("Aliases: %v\n", group.Aliases)
		if group.FirstSeen != nil {
			fmt.Printf("First seen: %d (per %s)\n", *group.FirstSeen, group.FirstSeenSource)
		}
		fmt.Printf("Sources: %v\n", group.ContributingSources)
		fmt.Printf("Documents: %d\n", group.DocumentCount)
	}

	// Any alias resolves to the merged group
	group, found := catalog.LookupGroup("The Dukes")
	if !found {
		log.Fatalf("Expected alias lookup to find a group")
	}
	fmt.Printf("\n'The Dukes' resolves to %s\n", group.CanonicalName)
	fmt.Printf("'apt-29' and 'Cozy Bear' same entity: %v\n", catalog.SameEntity("apt-29", "Cozy Bear"))

	// Co-mention ranking from the linked reports
	related := catalog.RelatedGroups(group.Identifier)
	fmt.Printf("\nGroups co-mentioned with %s:\n", group.CanonicalName)
	for _, rel := range related {
		relGroup := snapshot.Indexes.ByID[rel.GroupID]
		fmt.Printf("  %s (%d shared reports)\n", relGroup.CanonicalName, rel.SharedReports)
	}

	fmt.Printf("\nReports by year: %v\n", snapshot.Stats.ReportsByYear)
	fmt.Println("\nBasic example completed successfully!")
}
