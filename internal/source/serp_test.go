package source

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
)

// fakeRenderer implements Renderer with canned HTML.
type fakeRenderer struct {
	html    string
	err     error
	lastURL string
}

func (f *fakeRenderer) Render(_ context.Context, url, _ string) (string, error) {
	f.lastURL = url
	return f.html, f.err
}

const serpHTML = `<html><body><div id="search">
<a href="https://klinik-zuerich.ch">Klinik Zürich – Home</a>
<a href="https://www.directory-portal.com/listing">Portal</a>
<a href="https://wa.me/41791112233">WhatsApp</a>
<span>Telefon 044 123 45 67</span>
</div></body></html>`

func TestSERPBackend_ExtractsAllChannels(t *testing.T) {
	r := &fakeRenderer{html: serpHTML}
	b := NewSERPBackend("serp", "https://search.example/search", "#search", r)

	cands := b.Search(context.Background(), "Klinik Zürich", "8001 Zürich")
	require.NotEmpty(t, cands)
	assert.Contains(t, r.lastURL, "q=Klinik+Z%C3%BCrich+8001+Z%C3%BCrich")

	byField := map[model.Field][]model.RawCandidate{}
	for _, c := range cands {
		byField[c.Field] = append(byField[c.Field], c)
	}

	require.Len(t, byField[model.FieldWebsite], 1)
	assert.Equal(t, "https://klinik-zuerich.ch", byField[model.FieldWebsite][0].Value)

	require.Len(t, byField[model.FieldPhone], 1)
	assert.Equal(t, "044 123 45 67", byField[model.FieldPhone][0].Value)

	require.Len(t, byField[model.FieldMessenger], 1)
	assert.Equal(t, "https://wa.me/41791112233", byField[model.FieldMessenger][0].Value)
}

func TestSERPBackend_RenderFailureYieldsEmpty(t *testing.T) {
	r := &fakeRenderer{err: eris.New("session lost")}
	b := NewSERPBackend("serp", "https://search.example/search", "#search", r)

	assert.Empty(t, b.Search(context.Background(), "query", ""))
}

func TestSERPBackend_LocationAlreadyInQuery(t *testing.T) {
	r := &fakeRenderer{html: "<html></html>"}
	b := NewSERPBackend("serp", "https://search.example/search", "#search", r)

	b.Search(context.Background(), "Klinik 8001", "8001")
	assert.Equal(t, "https://search.example/search?q=Klinik+8001", r.lastURL)
}
