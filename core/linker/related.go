package linker

import (
	"bytes"
	"sort"

	"github.com/IgorDevApp/aptcatalog/model"
	"github.com/google/uuid"
)

// RelatedGroup is one group co-mentioned with another, ranked by how
// many reports mention both
type RelatedGroup struct {
	GroupID       uuid.UUID `json:"group_id"`
	SharedReports int       `json:"shared_reports"`
}

// Related derives, for every group, the other groups it shares reports
// with, ranked by shared-report count descending. Ties are broken by
// identifier so the ranking is deterministic.
func Related(links []model.Link) map[uuid.UUID][]RelatedGroup {
	byReport := make(map[uuid.UUID][]uuid.UUID)
	for _, link := range links {
		byReport[link.ReportID] = append(byReport[link.ReportID], link.GroupID)
	}

	shared := make(map[uuid.UUID]map[uuid.UUID]int)
	for _, groupIDs := range byReport {
		for _, a := range groupIDs {
			for _, b := range groupIDs {
				if a == b {
					continue
				}
				if shared[a] == nil {
					shared[a] = make(map[uuid.UUID]int)
				}
				shared[a][b]++
			}
		}
	}

	related := make(map[uuid.UUID][]RelatedGroup, len(shared))
	for groupID, counts := range shared {
		entries := make([]RelatedGroup, 0, len(counts))
		for otherID, count := range counts {
			entries = append(entries, RelatedGroup{GroupID: otherID, SharedReports: count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].SharedReports != entries[j].SharedReports {
				return entries[i].SharedReports > entries[j].SharedReports
			}
			return bytes.Compare(entries[i].GroupID[:], entries[j].GroupID[:]) < 0
		})
		related[groupID] = entries
	}

	return related
}
