package resolve

import (
	"regexp"
	"strings"
)

// labelPatterns is the ordered list of label-plus-number spellings that
// get rewritten to the tight form (prefix immediately followed by the
// digits). Order matters: "Group" must be tried before "G".
var labelPatterns = []struct {
	re     *regexp.Regexp
	prefix string
}{
	{regexp.MustCompile(`(?i)^apt[ \-_]?(\d+)`), "APT"},
	{regexp.MustCompile(`(?i)^fin[ \-_]?(\d+)`), "FIN"},
	{regexp.MustCompile(`(?i)^unc[ \-_]?(\d+)`), "UNC"},
	{regexp.MustCompile(`(?i)^ta[ \-_]?(\d+)`), "TA"},
	{regexp.MustCompile(`(?i)^group[ \-_]?(\d+)`), "Group"},
	{regexp.MustCompile(`(?i)^g[ \-_]?(\d+)`), "G"},
}

// Canonicalize normalizes a raw group name to its canonical spelling.
// The first matching label pattern is rewritten to the tight form with
// the pattern's canonical prefix spelling ("apt 29" -> "APT29"); the
// remainder of the string is preserved ("APT-29 (Dukes)" ->
// "APT29 (Dukes)"). If no pattern matches, the trimmed input is
// returned unchanged. Canonicalize is idempotent and is the fixed
// normal form every other component assumes.
func Canonicalize(raw string) string {
	name := strings.TrimSpace(raw)
	for _, p := range labelPatterns {
		loc := p.re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		return p.prefix + name[loc[2]:loc[3]] + name[loc[1]:]
	}
	return name
}
