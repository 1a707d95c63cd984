package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearRegex    = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	seasonRegex  = regexp.MustCompile(`(?i)^s\d{1,2}$|^season$`)
	qualityRegex = regexp.MustCompile(`(?i)^[a-z-]*\d{3,4}p$`)
)

// ExtractYear extracts a 4-digit year from a title
// Returns 0 if no year is found
// Matches years like: (2009), 2009, [2009], etc.
func ExtractYear(title string) int {
	matches := yearRegex.FindStringSubmatch(title)
	if len(matches) > 1 {
		year, err := strconv.Atoi(matches[1])
		if err == nil {
			return year
		}
	}
	return 0
}

// HasSeasonToken reports whether the title carries a season marker
// ("S01", "Season 2"). Used as the series heuristic when matching
// metadata lookups.
func HasSeasonToken(title string) bool {
	for _, token := range strings.Fields(title) {
		if seasonRegex.MatchString(strings.Trim(token, "()[]")) {
			return true
		}
	}
	return false
}

// IsQualityToken reports whether a token is a quality label such as
// "720p" or "BluRay1080p"
func IsQualityToken(token string) bool {
	return qualityRegex.MatchString(token)
}

var numberRegex = regexp.MustCompile(`^\d{1,2}$`)

// CleanTitle strips season, quality and year tokens from a title before
// it is sent to the metadata provider
func CleanTitle(title string) string {
	tokens := strings.Fields(title)

	var kept []string
	for i := 0; i < len(tokens); i++ {
		trimmed := strings.Trim(tokens[i], "()[]")
		if qualityRegex.MatchString(trimmed) || yearRegex.MatchString(trimmed) {
			continue
		}
		if seasonRegex.MatchString(trimmed) {
			// "Season 5" carries its number in the next token.
			if strings.EqualFold(trimmed, "season") && i+1 < len(tokens) && numberRegex.MatchString(tokens[i+1]) {
				i++
			}
			continue
		}
		kept = append(kept, tokens[i])
	}
	return strings.Join(kept, " ")
}
