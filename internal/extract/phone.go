package extract

import (
	"regexp"

	"github.com/sells-group/enrich-cli/internal/model"
)

// phonePatterns is the extraction cascade, in priority order. The first
// pattern with at least one match wins and all of its matches become
// candidates; lower-priority patterns are then ignored for that content.
var phonePatterns = []*regexp.Regexp{
	// Grouped local format: 044 123 45 67, (044) 123-45-67, 044/123 45 67.
	regexp.MustCompile(`\(?0\d{2}\)?[\s/.-]?\d{3}[\s.-]?\d{2}[\s.-]?\d{2}`),
	// Leading international prefix: +41 44 123 45 67, 0041 44 123 45 67.
	regexp.MustCompile(`(?:\+|00)\d{1,3}[\s.\-/]?\d{1,3}(?:[\s.\-/]?\d{2,4}){2,3}`),
	// Generic digit runs: 123-456-7890, 1234 5678 90.
	regexp.MustCompile(`\d{3,4}[\s.\-/]\d{3,4}[\s.\-/]\d{2,4}`),
}

// Phones applies the pattern cascade over flattened text content. Candidates
// are ranked by position of first appearance; duplicate values keep their
// earliest rank.
func Phones(text, sourceID string) []model.RawCandidate {
	for _, re := range phonePatterns {
		matches := re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}

		seen := make(map[string]bool, len(matches))
		var out []model.RawCandidate
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, model.RawCandidate{
				Field:    model.FieldPhone,
				Value:    m,
				SourceID: sourceID,
				Rank:     len(out),
			})
		}
		return out
	}
	return nil
}
