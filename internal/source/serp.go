package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/extract"
	"github.com/sells-group/enrich-cli/internal/model"
)

// SERPBackend submits the query to a search engine's UI through a rendering
// session and extracts organic result anchors in page order. The result
// container/anchor contract is inherently source-fragile and carries no
// stability guarantee beyond the Backend signature.
type SERPBackend struct {
	name         string
	searchURL    string // template, query appended as ?q=
	waitSelector string
	renderer     Renderer
}

// NewSERPBackend creates a rendered search-engine backend. searchURL is the
// engine's search endpoint (e.g. "https://www.google.com/search");
// waitSelector is the results container the render must wait for.
func NewSERPBackend(name, searchURL, waitSelector string, r Renderer) *SERPBackend {
	return &SERPBackend{
		name:         name,
		searchURL:    searchURL,
		waitSelector: waitSelector,
		renderer:     r,
	}
}

func (b *SERPBackend) Name() string { return b.name }

// Search renders the results page and emits website candidates (organic
// anchors passing the name-affinity filter), phone candidates from the
// flattened page text, and messenger deep links.
func (b *SERPBackend) Search(ctx context.Context, query, location string) []model.RawCandidate {
	log := zap.L().With(zap.String("backend", b.name))

	full := query
	if location != "" && !strings.Contains(query, location) {
		full = query + " " + location
	}

	target := b.searchURL + "?q=" + url.QueryEscape(full)
	html, err := b.renderer.Render(ctx, target, b.waitSelector)
	if err != nil {
		log.Debug("render failed", zap.String("query", full), zap.Error(err))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Debug("parse failed", zap.Error(err))
		return nil
	}

	tokens := strings.Fields(full)
	out := extract.Websites(doc, tokens, b.name)
	out = append(out, extract.Phones(extract.Flatten(html), b.name)...)
	out = append(out, extract.Messengers(doc, b.name)...)
	return out
}
