package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resilience"
)

// APIBackend queries a structured directory API: an HTTP GET against a fixed
// endpoint with the query and location URL-encoded, expecting a JSON body
// with a known top-level result list.
type APIBackend struct {
	name     string
	endpoint string
	apiKey   string
	http     *http.Client
}

// APIOption configures an APIBackend.
type APIOption func(*APIBackend)

// WithAPIKey sets a bearer token sent with every request.
func WithAPIKey(key string) APIOption {
	return func(b *APIBackend) { b.apiKey = key }
}

// WithAPIHTTPClient overrides the default http.Client.
func WithAPIHTTPClient(hc *http.Client) APIOption {
	return func(b *APIBackend) { b.http = hc }
}

// NewAPIBackend creates a structured API backend named name against the
// given endpoint URL.
func NewAPIBackend(name, endpoint string, opts ...APIOption) *APIBackend {
	b := &APIBackend{
		name:     name,
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *APIBackend) Name() string { return b.name }

// apiItem is one result entry. Directory APIs disagree on key names; the
// aliases collapse into the two generic contact fields.
type apiItem struct {
	Website     string `json:"website"`
	URL         string `json:"url"`
	Homepage    string `json:"homepage"`
	Phone       string `json:"phone"`
	Tel         string `json:"tel"`
	PhoneNumber string `json:"phone_number"`
}

func (it apiItem) website() string {
	for _, v := range []string{it.Website, it.URL, it.Homepage} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (it apiItem) phone() string {
	for _, v := range []string{it.Phone, it.Tel, it.PhoneNumber} {
		if v != "" {
			return v
		}
	}
	return ""
}

// apiPayload tolerates the two top-level list keys seen in the wild.
type apiPayload struct {
	Results []apiItem `json:"results"`
	Doctors []apiItem `json:"doctors"`
}

func (p apiPayload) items() []apiItem {
	if len(p.Results) > 0 {
		return p.Results
	}
	return p.Doctors
}

// Search issues the GET and maps the first result item into candidates, one
// per present contact field, both at rank 0.
func (b *APIBackend) Search(ctx context.Context, query, location string) []model.RawCandidate {
	log := zap.L().With(zap.String("backend", b.name))

	u, err := url.Parse(b.endpoint)
	if err != nil {
		log.Debug("bad endpoint", zap.Error(err))
		return nil
	}
	q := u.Query()
	q.Set("query", query)
	if location != "" {
		q.Set("location", location)
	}
	q.Set("page", strconv.Itoa(1))
	u.RawQuery = q.Encode()

	body, err := resilience.DoVal(ctx, resilience.DefaultRetryConfig(), func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if b.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+b.apiKey)
		}

		resp, err := b.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			return nil, &resilience.StatusError{Code: resp.StatusCode}
		}
		return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	})
	if err != nil {
		log.Debug("request failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	var payload apiPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Debug("malformed payload", zap.Error(err))
		return nil
	}

	items := payload.items()
	if len(items) == 0 {
		return nil
	}

	// Only the first item is authoritative.
	first := items[0]
	var out []model.RawCandidate
	if w := first.website(); w != "" {
		out = append(out, model.RawCandidate{
			Field: model.FieldWebsite, Value: w, SourceID: b.name, Rank: 0,
		})
	}
	if p := first.phone(); p != "" {
		out = append(out, model.RawCandidate{
			Field: model.FieldPhone, Value: p, SourceID: b.name, Rank: 0,
		})
	}
	return out
}
