package model

import "github.com/google/uuid"

// Link is one de-duplicated (report, group) association produced by
// the document linker. A report links to a group at most once, even
// when several of the group's terms match the same report.
type Link struct {
	ReportID uuid.UUID `json:"report_id"`
	GroupID  uuid.UUID `json:"group_id"`
}
