package enrich

import (
	"regexp"
	"strings"

	"github.com/sells-group/enrich-cli/internal/model"
)

// locationRe matches a trailing postal-code-plus-locality, the usual tail of
// a Swiss or German address line ("Bahnhofstrasse 1, 8001 Zürich").
var locationRe = regexp.MustCompile(`(\d{4,5})\s+([\p{L}][\p{L} .'\-]*?)\s*$`)

// BuildQuery concatenates the record's name tokens and location hint, in
// that fixed order, into the search query.
func BuildQuery(rec model.Record) string {
	parts := make([]string, 0, len(rec.NameTokens)+1)
	for _, t := range rec.NameTokens {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	if rec.LocationHint != "" {
		parts = append(parts, rec.LocationHint)
	}
	return strings.Join(parts, " ")
}

// LocationHint extracts "postal-code locality" from the end of an address
// field. Returns "" when the address carries no recognizable tail.
func LocationHint(address string) string {
	m := locationRe.FindStringSubmatch(strings.TrimSpace(address))
	if m == nil {
		return ""
	}
	return m[1] + " " + strings.TrimSpace(m[2])
}
