// Package geo provides the geographic key codec used throughout census-mcp.
//
// Every area in the catalog is identified by a GEOID-style string of the form
//
//	<summary-level:3><population-group:4>US<fips-suffix>
//
// e.g. "0400000US06" (California), "0500000US06037" (Los Angeles County),
// "8600000US90210" (ZCTA 90210). The population-group segment is "0000" for
// the total population; any other value is a race/ethnicity subgroup variant
// of the same area. This format is a de-facto wire format: every tool
// parameter and response row carries it verbatim.
package geo

import (
	"fmt"
	"strings"
)

// Summary-level codes for the geography granularities the catalog carries.
const (
	LevelState      = "040"
	LevelCounty     = "050"
	LevelTract      = "140"
	LevelBlockGroup = "150"
	LevelMetro      = "310"
	LevelZCTA       = "860"
)

// TotalPopulation is the population-group code of canonical (total-population)
// areas. Keys with any other group code are demographic subgroup variants.
const TotalPopulation = "0000"

// marker separates the level/group prefix from the FIPS suffix.
const marker = "US"

// prefixLen is the length of the level+group segment before the "US" marker.
const prefixLen = 7

// levelNames maps user-facing level hint names to summary-level codes.
var levelNames = map[string]string{
	"state":       LevelState,
	"county":      LevelCounty,
	"tract":       LevelTract,
	"block group": LevelBlockGroup,
	"metro":       LevelMetro,
	"zip":         LevelZCTA,
	"zcta":        LevelZCTA,
}

// Key is a parsed geographic key.
type Key struct {
	SummaryLevel    string // 3-character summary-level code
	PopulationGroup string // 4-character demographic group code
	Suffix          string // FIPS identifier chain after the "US" marker
}

// Parse splits a raw key string into its segments. The input must carry the
// literal "US" marker at position 7 and a 7-character level+group prefix.
func Parse(raw string) (Key, error) {
	if len(raw) < prefixLen+len(marker) {
		return Key{}, fmt.Errorf("geographic key %q too short", raw)
	}
	if raw[prefixLen:prefixLen+len(marker)] != marker {
		return Key{}, fmt.Errorf("geographic key %q missing US marker", raw)
	}
	return Key{
		SummaryLevel:    raw[0:3],
		PopulationGroup: raw[3:prefixLen],
		Suffix:          raw[prefixLen+len(marker):],
	}, nil
}

// String re-encodes the key into its wire form.
func (k Key) String() string {
	return k.SummaryLevel + k.PopulationGroup + marker + k.Suffix
}

// IsCanonical reports whether the key identifies a total-population area.
func (k Key) IsCanonical() bool {
	return k.PopulationGroup == TotalPopulation
}

// StateFips returns the leading 2-character state code of the FIPS suffix,
// or "" when the suffix is shorter (e.g. the national key).
func (k Key) StateFips() string {
	if len(k.Suffix) < 2 {
		return ""
	}
	return k.Suffix[0:2]
}

// SummaryLevelOf returns the summary-level code of a raw key: its first three
// characters. Total on all inputs; short strings are returned unchanged.
func SummaryLevelOf(raw string) string {
	if len(raw) < 3 {
		return raw
	}
	return raw[0:3]
}

// ZCTAKey synthesizes the canonical ZIP-equivalent key for a 5-digit ZIP.
func ZCTAKey(zip string) string {
	return LevelZCTA + TotalPopulation + marker + zip
}

// LooksLikeKey reports whether input plausibly is a raw geographic key:
// it starts with a digit and contains the "US" marker.
func LooksLikeKey(input string) bool {
	if input == "" || input[0] < '0' || input[0] > '9' {
		return false
	}
	return strings.Contains(input, marker)
}

// IsZIP reports whether input is exactly five digits.
func IsZIP(input string) bool {
	if len(input) != 5 {
		return false
	}
	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			return false
		}
	}
	return true
}

// LevelCode resolves a level hint (a code like "050" or a name like "county")
// to a summary-level code. Empty input resolves to "".
func LevelCode(hint string) (string, error) {
	if hint == "" {
		return "", nil
	}
	if len(hint) == 3 && isDigits(hint) {
		return hint, nil
	}
	if code, ok := levelNames[strings.ToLower(strings.TrimSpace(hint))]; ok {
		return code, nil
	}
	return "", fmt.Errorf("unknown summary level %q", hint)
}

// LevelName returns the user-facing name for a summary-level code, or the
// code itself when it has no name.
func LevelName(code string) string {
	for name, c := range levelNames {
		if c == code && name != "zcta" {
			return name
		}
	}
	return code
}

// Specificity returns the rank of a summary level for most-specific-wins
// selection in spatial lookups. Higher is more specific.
func Specificity(level string) int {
	switch level {
	case LevelBlockGroup:
		return 6
	case LevelTract:
		return 5
	case LevelZCTA:
		return 4
	case LevelCounty:
		return 3
	case LevelMetro:
		return 2
	case LevelState:
		return 1
	default:
		return 0
	}
}

// SearchPriority returns the disambiguation rank of a summary level for name
// search: states sort before metros, metros before counties, counties before
// everything else. Lower is better.
func SearchPriority(level string) int {
	switch level {
	case LevelState:
		return 0
	case LevelMetro:
		return 1
	case LevelCounty:
		return 2
	default:
		return 3
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
