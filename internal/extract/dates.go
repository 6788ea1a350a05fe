package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/aerodry/claimflow/pkg/types"
)

// datePattern finds ISO dates and "Month D, YYYY" forms in free text.
var datePattern = regexp.MustCompile(`(?i)(\b\d{4}-\d{2}-\d{2}\b|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2},?\s+\d{4}\b)`)

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// parseDate parses one date string leniently. A string that matches no
// known layout is simply absent, never an error.
func parseDate(s string) (types.Date, bool) {
	for _, candidate := range []string{s, titleCase(s)} {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return types.Date{Time: t}, true
			}
		}
	}
	return types.Date{}, false
}

// titleCase folds "JUNE 3, 2025" and "june 3, 2025" into the form the
// month-name layouts expect.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := []byte(strings.ToLower(s))
	if lower[0] >= 'a' && lower[0] <= 'z' {
		lower[0] -= 'a' - 'A'
	}
	return string(lower)
}

// findDate scans text for the first parseable date.
func findDate(text string) (types.Date, bool) {
	for _, match := range datePattern.FindAllString(text, -1) {
		if d, ok := parseDate(match); ok {
			return d, true
		}
	}
	return types.Date{}, false
}
