package linker

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/IgorDevApp/aptcatalog/helper"
	"github.com/IgorDevApp/aptcatalog/model"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Linker associates reports with threat groups by scanning each
// report's title and filename for group names and aliases. All terms
// are compiled into a single Aho-Corasick automaton, so every report
// is scanned once regardless of how many terms exist.
type Linker struct {
	log *slog.Logger
}

// NewLinker creates a document linker
func NewLinker(logger *slog.Logger) (*Linker, error) {
	if logger == nil {
		return nil, helper.NewError("logger validation", fmt.Errorf("logger is nil"))
	}
	return &Linker{log: logger}, nil
}

// Link matches every report against the terms of every group and
// returns the de-duplicated (report, group) associations. As a side
// effect it sets DocumentCount on groups and replaces LinkedGroups on
// reports; both are reset at the start of the pass, so re-linking
// replaces prior results instead of appending to them.
//
// Matching semantics: a term matches as a plain substring of the
// report's lower-cased search text, except that short terms (4 runes
// or fewer) and terms starting or ending in a digit must match as
// whole words. The word-boundary rule keeps "TA5051" from matching a
// group named TA505.
func (l *Linker) Link(groups map[string]*model.ThreatGroup, reports []*model.Report) []model.Link {
	for _, group := range groups {
		group.DocumentCount = 0
	}

	terms, termGroups := collectTerms(groups)

	var links []model.Link
	if len(terms) == 0 {
		for _, report := range reports {
			report.LinkedGroups = nil
		}
		return links
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: false, // terms and search text are lower-cased already
		MatchOnlyWholeWords:  false, // boundary rule is per-term, checked below
		MatchKind:            ahocorasick.StandardMatch,
		DFA:                  false,
	})
	ac := builder.Build(terms)

	seen := make(map[model.Link]bool)

	for _, report := range reports {
		report.LinkedGroups = nil
		text := report.SearchText()

		matched := make(map[int]bool, 4)
		iter := ac.IterOverlapping(text)
		for {
			m := iter.Next()
			if m == nil {
				break
			}
			patternIdx := m.Pattern()
			if matched[patternIdx] {
				continue
			}
			if needsWordBoundary(terms[patternIdx]) && !wholeWordMatch(text, m.Start(), m.End()) {
				continue
			}
			matched[patternIdx] = true

			for _, group := range termGroups[patternIdx] {
				link := model.Link{ReportID: report.ID, GroupID: group.Identifier}
				if seen[link] {
					continue
				}
				seen[link] = true

				links = append(links, link)
				group.DocumentCount++
				report.LinkedGroups = append(report.LinkedGroups, model.LinkedGroup{
					Identifier:    group.Identifier,
					CanonicalName: group.CanonicalName,
					Country:       group.Country,
				})
			}
		}
	}

	l.log.Info("Linked reports to groups",
		slog.Int("reports", len(reports)),
		slog.Int("terms", len(terms)),
		slog.Int("links", len(links)),
	)

	return links
}

// collectTerms gathers every name and alias longer than 2 runes,
// lower-cased, and maps each distinct term to the groups sharing it.
// Terms are ordered by descending length, ties broken lexically, so
// the automaton's pattern indices are deterministic.
func collectTerms(groups map[string]*model.ThreatGroup) ([]string, [][]*model.ThreatGroup) {
	byTerm := make(map[string][]*model.ThreatGroup)

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := groups[name]
		addTerm(byTerm, group.CanonicalName, group)
		for _, alias := range group.Aliases {
			addTerm(byTerm, alias, group)
		}
	}

	terms := make([]string, 0, len(byTerm))
	for term := range byTerm {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	termGroups := make([][]*model.ThreatGroup, len(terms))
	for i, term := range terms {
		termGroups[i] = byTerm[term]
	}

	return terms, termGroups
}

func addTerm(byTerm map[string][]*model.ThreatGroup, raw string, group *model.ThreatGroup) {
	if utf8.RuneCountInString(raw) <= 2 {
		return
	}
	term := strings.ToLower(raw)

	for _, existing := range byTerm[term] {
		if existing.Identifier == group.Identifier {
			return
		}
	}
	byTerm[term] = append(byTerm[term], group)
}

// needsWordBoundary reports whether a term must match as a whole word.
// Short terms would otherwise false-positive on acronym fragments, and
// terms ending in digits would otherwise match longer designators that
// merely share a prefix.
func needsWordBoundary(term string) bool {
	if utf8.RuneCountInString(term) <= 4 {
		return true
	}
	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)
	return unicode.IsDigit(first) || unicode.IsDigit(last)
}

// wholeWordMatch reports whether the match at [start, end) is bounded
// by non-word characters (or the ends of the text)
func wholeWordMatch(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

