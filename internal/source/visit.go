package source

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/extract"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resilience"
)

const visitUserAgent = "Mozilla/5.0 (compatible; EnrichBot/1.0)"

// SiteVisitBackend resolves a phone number from an already-accepted website:
// it fetches the site, follows a "contact"-labeled link when present, and
// re-extracts from the landing page. It is a secondary step only and never
// participates in the generic query chain.
type SiteVisitBackend struct {
	name string
	http *http.Client
}

// NewSiteVisitBackend creates a SiteVisitBackend with sane timeouts.
func NewSiteVisitBackend(name string) *SiteVisitBackend {
	return &SiteVisitBackend{
		name: name,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// WithVisitHTTPClient overrides the HTTP client, for tests.
func (b *SiteVisitBackend) WithVisitHTTPClient(hc *http.Client) *SiteVisitBackend {
	b.http = hc
	return b
}

func (b *SiteVisitBackend) Name() string { return b.name }

// Visit fetches the website (canonical, scheme-less form accepted), follows
// the first contact link, and extracts phone candidates. Failures yield an
// empty slice.
func (b *SiteVisitBackend) Visit(ctx context.Context, website string) []model.RawCandidate {
	log := zap.L().With(zap.String("backend", b.name), zap.String("site", website))

	siteURL := website
	if !strings.HasPrefix(siteURL, "http://") && !strings.HasPrefix(siteURL, "https://") {
		siteURL = "https://" + siteURL
	}

	html, ok := b.fetch(ctx, siteURL, log)
	if !ok {
		return nil
	}

	// Prefer the contact page when one is linked.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		if href, found := extract.ContactLink(doc); found {
			if contactURL, ok := resolveRef(siteURL, href); ok {
				if contactHTML, ok := b.fetch(ctx, contactURL, log); ok {
					html = contactHTML
				}
			}
		}
	}

	return extract.Phones(extract.Flatten(html), b.name)
}

func (b *SiteVisitBackend) fetch(ctx context.Context, target string, log *zap.Logger) (string, bool) {
	body, err := resilience.DoVal(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", visitUserAgent)

		resp, err := b.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode >= 400 {
			return nil, &resilience.StatusError{Code: resp.StatusCode}
		}
		return io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	})
	if err != nil {
		log.Debug("fetch failed", zap.String("url", target), zap.Error(err))
		return "", false
	}
	return string(body), true
}

func resolveRef(base, href string) (string, bool) {
	bu, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	hu, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return bu.ResolveReference(hu).String(), true
}
