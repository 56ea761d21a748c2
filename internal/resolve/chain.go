package resolve

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/enrich-cli/internal/source"
)

// ChainEntry describes one backend in the fallback chain, in priority order.
type ChainEntry struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // "api", "serp" or "site_visit"
	Endpoint     string `yaml:"endpoint,omitempty"`
	APIKey       string `yaml:"api_key,omitempty"`
	SearchURL    string `yaml:"search_url,omitempty"`
	WaitSelector string `yaml:"wait_selector,omitempty"`
}

// ChainConfig is the chain definition file.
type ChainConfig struct {
	Chain []ChainEntry `yaml:"chain"`
}

// LoadChainConfig reads a chain definition from a YAML file.
func LoadChainConfig(path string) (*ChainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "resolve: read chain config %s", path)
	}
	var cfg ChainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrap(err, "resolve: parse chain config")
	}
	if len(cfg.Chain) == 0 {
		return nil, eris.New("resolve: chain config lists no sources")
	}
	return &cfg, nil
}

// BuildChain materializes the configured backends. The renderer may be nil
// when no entry needs one; a serp entry without a renderer is an error.
// At most one site_visit entry is honored; it is returned separately since
// it never joins the generic query chain.
func BuildChain(cfg *ChainConfig, renderer source.Renderer) ([]source.Backend, *source.SiteVisitBackend, error) {
	var (
		backends []source.Backend
		visit    *source.SiteVisitBackend
	)

	for _, e := range cfg.Chain {
		switch e.Type {
		case "api":
			if e.Endpoint == "" {
				return nil, nil, eris.Errorf("resolve: api source %q needs an endpoint", e.Name)
			}
			var opts []source.APIOption
			if e.APIKey != "" {
				opts = append(opts, source.WithAPIKey(e.APIKey))
			}
			backends = append(backends, source.NewAPIBackend(e.Name, e.Endpoint, opts...))

		case "serp":
			if renderer == nil {
				return nil, nil, eris.Errorf("resolve: serp source %q needs a rendering session", e.Name)
			}
			if e.SearchURL == "" {
				return nil, nil, eris.Errorf("resolve: serp source %q needs a search_url", e.Name)
			}
			backends = append(backends, source.NewSERPBackend(e.Name, e.SearchURL, e.WaitSelector, renderer))

		case "site_visit":
			if visit != nil {
				return nil, nil, eris.New("resolve: multiple site_visit entries")
			}
			visit = source.NewSiteVisitBackend(e.Name)

		default:
			return nil, nil, eris.Errorf("resolve: unknown source type %q", e.Type)
		}
	}

	return backends, visit, nil
}
