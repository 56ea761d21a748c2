package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/enrich-cli/internal/model"
)

// messengerHosts are messaging-app deep-link hosts extracted as a distinct
// field, used only when a record has no website candidate at all.
var messengerHosts = map[string]bool{
	"wa.me":            true,
	"api.whatsapp.com": true,
}

// umlautFolder maps German umlauts to their domain-name transliterations so
// that a "Zürich" name token can match a "klinik-zuerich.ch" host.
var umlautFolder = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
)

// Websites scans a document's anchors for absolute HTTP(S) URLs whose host
// shares at least one name token with the query (the name-affinity filter).
// Rank follows anchor document order.
func Websites(doc *goquery.Document, nameTokens []string, sourceID string) []model.RawCandidate {
	tokens := foldTokens(nameTokens)

	var out []model.RawCandidate
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		host := absoluteHost(href)
		if host == "" || messengerHosts[host] {
			return
		}
		if !hostMatchesToken(host, tokens) {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true
		out = append(out, model.RawCandidate{
			Field:    model.FieldWebsite,
			Value:    href,
			SourceID: sourceID,
			Rank:     len(out),
		})
	})

	return out
}

// Messengers extracts messaging-app deep links in anchor order.
func Messengers(doc *goquery.Document, sourceID string) []model.RawCandidate {
	var out []model.RawCandidate
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		host := absoluteHost(href)
		if !messengerHosts[host] || seen[href] {
			return
		}
		seen[href] = true
		out = append(out, model.RawCandidate{
			Field:    model.FieldMessenger,
			Value:    href,
			SourceID: sourceID,
			Rank:     len(out),
		})
	})

	return out
}

// ContactLink returns the target of the first anchor whose text or href
// contains "contact" (or the German "kontakt"), case-insensitive.
func ContactLink(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		text := strings.ToLower(sel.Text())
		lowerHref := strings.ToLower(href)
		if strings.Contains(text, "contact") || strings.Contains(lowerHref, "contact") ||
			strings.Contains(text, "kontakt") || strings.Contains(lowerHref, "kontakt") {
			found = href
			return false
		}
		return true
	})
	return found, found != ""
}

// absoluteHost returns the lowercased host of an absolute http(s) URL, or ""
// when the href is relative or uses another scheme.
func absoluteHost(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func foldTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = umlautFolder.Replace(strings.ToLower(strings.TrimSpace(t)))
		// Tokens shorter than 3 runes ("ag", "dr") match almost any host.
		if len([]rune(t)) < 3 {
			continue
		}
		out = append(out, t)
	}
	return out
}

func hostMatchesToken(host string, tokens []string) bool {
	folded := umlautFolder.Replace(host)
	for _, t := range tokens {
		if strings.Contains(folded, t) {
			return true
		}
	}
	return false
}
