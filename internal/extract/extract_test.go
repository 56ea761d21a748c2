package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFlatten(t *testing.T) {
	html := `<html><head><style>p{color:red}</style></head>
<body><script>var x=1;</script><p>Tel:</p><span>044 123 45 67</span>&nbsp;&amp; more</body></html>`

	got := Flatten(html)
	assert.Contains(t, got, "Tel: 044 123 45 67")
	assert.Contains(t, got, "& more")
	assert.NotContains(t, got, "var x")
	assert.NotContains(t, got, "color:red")
}

func TestPhones_PatternPriority(t *testing.T) {
	// Grouped local and generic formats both present: only the
	// higher-priority grouped pattern's matches are emitted.
	text := "Praxis 044 123 45 67 oder Fax 123-4567-89"
	cands := Phones(text, "serp")

	require.Len(t, cands, 1)
	assert.Equal(t, "044 123 45 67", cands[0].Value)
	assert.Equal(t, model.FieldPhone, cands[0].Field)
	assert.Equal(t, "serp", cands[0].SourceID)
	assert.Equal(t, 0, cands[0].Rank)
}

func TestPhones_InternationalFallback(t *testing.T) {
	text := "Erreichbar unter +41 79 555 12 34 und +41 44 111 22 33"
	cands := Phones(text, "serp")

	require.Len(t, cands, 2)
	assert.Equal(t, "+41 79 555 12 34", cands[0].Value)
	assert.Equal(t, 1, cands[1].Rank)
}

func TestPhones_RanksByAppearanceAndDedupes(t *testing.T) {
	text := "044 222 33 44 ... 044 111 22 33 ... 044 222 33 44"
	cands := Phones(text, "api")

	require.Len(t, cands, 2)
	assert.Equal(t, "044 222 33 44", cands[0].Value)
	assert.Equal(t, "044 111 22 33", cands[1].Value)
}

func TestPhones_NoMatch(t *testing.T) {
	assert.Empty(t, Phones("no numbers here", "serp"))
}

func TestWebsites_NameAffinity(t *testing.T) {
	html := `<body>
<a href="https://www.tracker.example.com/ad">ad</a>
<a href="/relative/path">rel</a>
<a href="https://klinik-zuerich.ch/team">Klinik Zürich</a>
<a href="ftp://klinik-zuerich.ch">ftp</a>
<a href="https://klinik-zuerich.ch/team">dup</a>
</body>`
	doc := parseDoc(t, html)

	cands := Websites(doc, []string{"Anna", "Keller", "Clinic", "Zürich"}, "serp")
	require.Len(t, cands, 1)
	assert.Equal(t, "https://klinik-zuerich.ch/team", cands[0].Value)
	assert.Equal(t, 0, cands[0].Rank)
}

func TestWebsites_NoTokenMatch(t *testing.T) {
	html := `<a href="https://unrelated.example.org">x</a>`
	doc := parseDoc(t, html)

	assert.Empty(t, Websites(doc, []string{"Keller", "Zürich"}, "serp"))
}

func TestMessengers(t *testing.T) {
	html := `<body>
<a href="https://wa.me/41791112233">WhatsApp</a>
<a href="https://example.ch">site</a>
</body>`
	doc := parseDoc(t, html)

	cands := Messengers(doc, "serp")
	require.Len(t, cands, 1)
	assert.Equal(t, model.FieldMessenger, cands[0].Field)
	assert.Equal(t, "https://wa.me/41791112233", cands[0].Value)
}

func TestContactLink(t *testing.T) {
	html := `<body>
<a href="/about">About</a>
<a href="/kontakt">Kontakt</a>
<a href="/contact-us">Contact us</a>
</body>`
	doc := parseDoc(t, html)

	href, ok := ContactLink(doc)
	require.True(t, ok)
	assert.Equal(t, "/kontakt", href)

	_, ok = ContactLink(parseDoc(t, `<a href="/home">Home</a>`))
	assert.False(t, ok)
}
