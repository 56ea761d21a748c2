// Package source implements the lookup backends of the enrichment chain.
//
// Every backend satisfies the same contract: transport failures, timeouts
// and malformed payloads are logged and swallowed, yielding an empty
// candidate slice. The chain treats "nothing found" and "source unreachable"
// identically and simply moves on.
package source

import (
	"context"

	"github.com/sells-group/enrich-cli/internal/model"
)

// Backend is one external lookup source.
type Backend interface {
	// Name returns the backend identifier used as candidate SourceID.
	Name() string
	// Search runs a query (with optional location) and returns raw
	// candidates, possibly none. It never returns an error: failures
	// degrade to an empty result.
	Search(ctx context.Context, query, location string) []model.RawCandidate
}

// Renderer produces the final HTML of a page that requires a browser-style
// rendering session. Implementations acquire the session as a scoped
// resource per call and release it on every exit path.
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string) (string, error)
}
