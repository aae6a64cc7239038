package stats

import (
	"sort"

	"github.com/IgorDevApp/aptcatalog/model"
)

// Aggregate derives the statistics summary from a merged group set,
// the report corpus and the link set. It is a pure function of its
// inputs and returns a fresh Statistics value on every call, so it can
// be re-invoked any time the group data changes and the result fully
// replaces prior output.
func Aggregate(groups map[string]*model.ThreatGroup, reports []*model.Report, links []model.Link) *model.Statistics {
	statistics := &model.Statistics{
		TotalGroups:     len(groups),
		TotalReports:    len(reports),
		TotalLinks:      len(links),
		ByCountry:       make(map[string]int),
		ByCategory:      make(map[string]int),
		ByFirstSeenYear: make(map[int]int),
		ReportsByYear:   make(map[int]int),
	}

	for _, group := range groups {
		if group.Country != "" {
			statistics.ByCountry[group.Country]++
		}
		for _, category := range group.Categories {
			statistics.ByCategory[category]++
		}
		if group.FirstSeen != nil {
			statistics.ByFirstSeenYear[*group.FirstSeen]++
			statistics.Timeline = append(statistics.Timeline, model.TimelineEntry{
				Year:          *group.FirstSeen,
				Identifier:    group.Identifier,
				CanonicalName: group.CanonicalName,
				Country:       group.Country,
			})
		}
	}

	sort.Slice(statistics.Timeline, func(i, j int) bool {
		if statistics.Timeline[i].Year != statistics.Timeline[j].Year {
			return statistics.Timeline[i].Year < statistics.Timeline[j].Year
		}
		return statistics.Timeline[i].CanonicalName < statistics.Timeline[j].CanonicalName
	})

	for _, report := range reports {
		if year, ok := report.Year(); ok {
			statistics.ReportsByYear[year]++
		}
	}

	return statistics
}
