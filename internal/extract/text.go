// Package extract turns fetched content into raw field candidates.
package extract

import (
	"regexp"
	"strings"
)

var (
	dropBlockRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
	spaceRe     = regexp.MustCompile(`[ \t]+`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// Flatten strips an HTML document to plaintext: script/style blocks removed,
// tags replaced by spaces so adjacent digit runs stay separated, entities
// decoded, whitespace collapsed. Non-HTML input passes through unchanged
// apart from whitespace collapsing.
func Flatten(html string) string {
	s := dropBlockRe.ReplaceAllString(html, "")
	s = tagRe.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
