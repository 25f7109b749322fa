package domain

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TotalKey is the raw key of the national aggregate row.
const TotalKey = "Total"

var (
	// municipalityKeyRe matches "110001 ALTA FLORESTA D'OESTE".
	municipalityKeyRe = regexp.MustCompile(`^(\d{6,7})\s+(.+)$`)

	// stateKeyRe matches "51 Mato Grosso".
	stateKeyRe = regexp.MustCompile(`^(\d{1,2})\s+(.+)$`)

	// leadingCodeRe strips the numeric prefix for name comparisons.
	leadingCodeRe = regexp.MustCompile(`^\d+\s*`)
)

// EntityKey is a row key split into its IBGE code and display name.
type EntityKey struct {
	Raw     string `json:"raw"`
	Code    int    `json:"code,omitempty"`
	HasCode bool   `json:"-"`
	Name    string `json:"name"`
}

// ParseEntityKey splits "<code> <name>". Keys without a recognised numeric
// prefix ("Total", "MUNICIPIO IGNORADO - RO") keep the whole string as name.
func ParseEntityKey(raw string) EntityKey {
	t := strings.TrimSpace(raw)
	for _, re := range []*regexp.Regexp{municipalityKeyRe, stateKeyRe} {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		code, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return EntityKey{Raw: raw, Code: code, HasCode: true, Name: strings.TrimSpace(m[2])}
	}
	return EntityKey{Raw: raw, Name: t}
}

// IsMunicipality reports whether the key carries a municipality code.
func (k EntityKey) IsMunicipality() bool {
	return k.HasCode && k.Code >= 100000
}

// MunicipalityCode normalizes an IBGE municipality code to the six digits used
// by SINAN; seven-digit codes lose their trailing check digit.
func MunicipalityCode(code int) int {
	if code >= 1000000 {
		return code / 10
	}
	return code
}

// ParentStateCode derives the two-digit state code from a municipality code:
// 110001 -> 11.
func ParentStateCode(municipalityCode int) int {
	return MunicipalityCode(municipalityCode) / 10000
}

// NameKey normalizes a key or display name for name-based matching: numeric
// prefix removed, trimmed, case folded, diacritics removed.
func NameKey(s string) string {
	s = leadingCodeRe.ReplaceAllString(strings.TrimSpace(s), "")
	s = strings.TrimSpace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	// Casers and transformers are stateful; build them per call.
	return cases.Fold().String(stripped)
}
