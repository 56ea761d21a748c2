package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteVisitBackend_FollowsContactLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/kontakt">Kontakt</a>
			<p>Landing page, no number here.</p>
		</body></html>`))
	})
	mux.HandleFunc("/kontakt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>Rufen Sie uns an: 044 123 45 67</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := NewSiteVisitBackend("site_visit")
	cands := b.Visit(context.Background(), srv.URL)

	require.Len(t, cands, 1)
	assert.Equal(t, "044 123 45 67", cands[0].Value)
	assert.Equal(t, "site_visit", cands[0].SourceID)
}

func TestSiteVisitBackend_NoContactLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>Hotline 044 999 88 77</body></html>`))
	}))
	defer srv.Close()

	cands := NewSiteVisitBackend("site_visit").Visit(context.Background(), srv.URL)
	require.Len(t, cands, 1)
	assert.Equal(t, "044 999 88 77", cands[0].Value)
}

func TestSiteVisitBackend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	assert.Empty(t, NewSiteVisitBackend("site_visit").Visit(context.Background(), srv.URL))
}

func TestSiteVisitBackend_SchemelessWebsite(t *testing.T) {
	// Canonical "www." values carry no scheme; the backend must add one.
	b := NewSiteVisitBackend("site_visit")
	assert.Empty(t, b.Visit(context.Background(), "www.invalid.localdomain"))
}
