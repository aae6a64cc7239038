package model

import "regexp"

var digitRun = regexp.MustCompile(`\d+`)

// ParseYear reduces a raw date value to a year. It returns the first
// standalone four-digit run between 1900 and 2099, so open-ended values
// like "2008 – present" reduce to 2008. The second return value is
// false when no plausible year is present.
func ParseYear(raw string) (int, bool) {
	for _, run := range digitRun.FindAllString(raw, -1) {
		if len(run) != 4 {
			continue
		}
		year := int(run[0]-'0')*1000 + int(run[1]-'0')*100 + int(run[2]-'0')*10 + int(run[3]-'0')
		if year >= 1900 && year <= 2099 {
			return year, true
		}
	}
	return 0, false
}
