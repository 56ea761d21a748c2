// Package resolve applies the fallback chain across lookup backends and the
// voting policy that turns noisy multi-source candidates into at most one
// accepted value per field.
package resolve

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/normalize"
	"github.com/sells-group/enrich-cli/internal/source"
)

// Pacer throttles backend calls. Pacing is an anti-detection policy, never a
// correctness or ordering mechanism.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Result is the outcome of resolving one record.
type Result struct {
	Accepted     model.Accepted
	BackendCalls int
	Rejections   int // candidates dropped by normalization, for diagnostics
}

// Resolver walks a priority-ordered backend chain and reconciles candidates.
type Resolver struct {
	backends []source.Backend
	visit    *source.SiteVisitBackend
	country  normalize.CountryProfile
	pacer    Pacer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSiteVisit enables the secondary site-visit step for phone resolution.
func WithSiteVisit(v *source.SiteVisitBackend) Option {
	return func(r *Resolver) { r.visit = v }
}

// WithPacer installs an inter-request delay between backend calls.
func WithPacer(p Pacer) Option {
	return func(r *Resolver) { r.pacer = p }
}

// New creates a Resolver over backends in priority order.
func New(backends []source.Backend, country normalize.CountryProfile, opts ...Option) *Resolver {
	r := &Resolver{
		backends: backends,
		country:  country,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// chainState carries per-record acceptance state across the chain.
type chainState struct {
	website   *model.AcceptedValue
	phone     *model.AcceptedValue
	phonePool []model.NormalizedCandidate
	messenger []model.NormalizedCandidate
	seq       int
}

// Resolve runs the chain for one record. Fields already present in
// rec.Known are final: they are never re-resolved, and a fully known record
// causes zero backend calls. The only error returned is caller cancellation.
func (r *Resolver) Resolve(ctx context.Context, rec model.Record, query, location string) (*Result, error) {
	res := &Result{Accepted: model.Accepted{}}

	knownWebsite, haveWebsite := rec.KnownValue(model.FieldWebsite)
	_, havePhone := rec.KnownValue(model.FieldPhone)

	wantWebsite := !haveWebsite
	wantPhone := !havePhone
	if !wantWebsite && !wantPhone {
		return res, nil
	}

	log := zap.L().With(zap.String("record", rec.ID))
	st := &chainState{}
	visitDone := false

	satisfied := func() bool {
		return (!wantWebsite || st.website != nil) && (!wantPhone || st.phone != nil)
	}

	for _, b := range r.backends {
		if satisfied() {
			break
		}
		if err := r.wait(ctx); err != nil {
			return res, err
		}

		raws := b.Search(ctx, query, location)
		res.BackendCalls++
		r.ingest(st, res, raws, wantWebsite, wantPhone)

		if wantPhone && st.phone == nil {
			acceptMajority(st)
		}

		// Secondary step: the moment a website is at hand while the phone is
		// still missing, visit the site before exhausting generic backends.
		if err := r.tryVisit(ctx, st, res, knownWebsite, wantPhone, &visitDone); err != nil {
			return res, err
		}
	}

	// A record that enters the chain with a known website (or never got one
	// from any backend) still deserves the site-visit step.
	if err := r.tryVisit(ctx, st, res, knownWebsite, wantPhone, &visitDone); err != nil {
		return res, err
	}

	// Low-confidence fallback: no value repeated across the pool.
	if wantPhone && st.phone == nil && len(st.phonePool) > 0 {
		acceptFirstMatch(st)
	}

	// Messenger deep links stand in for a website only when no website
	// candidate ever appeared.
	if wantWebsite && st.website == nil && len(st.messenger) > 0 {
		m := st.messenger[0]
		st.website = &model.AcceptedValue{
			Value:    m.Value,
			SourceID: m.SourceID,
			Method:   model.MethodFirstMatch,
		}
	}

	if wantWebsite && st.website != nil {
		res.Accepted[model.FieldWebsite] = *st.website
	}
	if wantPhone && st.phone != nil {
		res.Accepted[model.FieldPhone] = *st.phone
	}

	if res.Rejections > 0 {
		log.Debug("candidates rejected by normalization", zap.Int("count", res.Rejections))
	}
	return res, nil
}

// tryVisit runs the site-visit backend once per record, against the known
// website when the input already had one, otherwise against the accepted
// value.
func (r *Resolver) tryVisit(ctx context.Context, st *chainState, res *Result, knownWebsite string, wantPhone bool, visitDone *bool) error {
	if r.visit == nil || *visitDone || !wantPhone || st.phone != nil {
		return nil
	}
	site := knownWebsite
	if site == "" && st.website != nil {
		site = st.website.Value
	}
	if site == "" {
		return nil
	}

	*visitDone = true
	if err := r.wait(ctx); err != nil {
		return err
	}
	visits := r.visit.Visit(ctx, site)
	res.BackendCalls++
	r.ingest(st, res, visits, false, true)
	acceptMajority(st)
	return nil
}

// ingest normalizes raw candidates into the chain state. Website acceptance
// is first-normalizable-wins; the extractor's name-affinity filter is the
// hard precondition upstream. Phone candidates pool across backends.
func (r *Resolver) ingest(st *chainState, res *Result, raws []model.RawCandidate, wantWebsite, wantPhone bool) {
	for _, raw := range raws {
		switch raw.Field {
		case model.FieldWebsite:
			if !wantWebsite || st.website != nil {
				continue
			}
			norm, ok := normalize.Website(raw.Value)
			if !ok {
				res.Rejections++
				continue
			}
			st.website = &model.AcceptedValue{
				Value:    norm,
				SourceID: raw.SourceID,
				Method:   model.MethodNameAffinity,
			}

		case model.FieldPhone:
			if !wantPhone || st.phone != nil {
				continue
			}
			norm, ok := normalize.Phone(raw.Value, r.country)
			if !ok {
				res.Rejections++
				continue
			}
			st.phonePool = append(st.phonePool, model.NormalizedCandidate{
				Field:    model.FieldPhone,
				Value:    norm,
				SourceID: raw.SourceID,
				Rank:     raw.Rank,
				Seq:      st.seq,
			})
			st.seq++

		case model.FieldMessenger:
			norm, ok := normalize.MessengerLink(raw.Value)
			if !ok {
				res.Rejections++
				continue
			}
			st.messenger = append(st.messenger, model.NormalizedCandidate{
				Field:    model.FieldMessenger,
				Value:    norm,
				SourceID: raw.SourceID,
				Rank:     raw.Rank,
				Seq:      st.seq,
			})
			st.seq++
		}
	}
}

// acceptMajority accepts the most frequent normalized phone value once two
// or more candidates agree. Ties break toward the earliest-seen candidate.
func acceptMajority(st *chainState) {
	if st.phone != nil {
		return
	}

	counts := make(map[string]int, len(st.phonePool))
	firstSeen := make(map[string]model.NormalizedCandidate, len(st.phonePool))
	for _, c := range st.phonePool {
		counts[c.Value]++
		if _, ok := firstSeen[c.Value]; !ok {
			firstSeen[c.Value] = c
		}
	}

	best := ""
	bestCount := 0
	for _, c := range st.phonePool { // pool order = earliest-seen order
		n := counts[c.Value]
		if n > bestCount {
			best, bestCount = c.Value, n
		}
	}

	if bestCount < 2 {
		return
	}
	winner := firstSeen[best]
	st.phone = &model.AcceptedValue{
		Value:    winner.Value,
		SourceID: winner.SourceID,
		Method:   model.MethodMajorityVote,
	}
}

// acceptFirstMatch accepts the earliest candidate from the highest-priority
// backend and joins any other distinct values, comma-separated, so that no
// signal is silently discarded. Deliberately low-confidence.
func acceptFirstMatch(st *chainState) {
	primary := st.phonePool[0]

	values := []string{primary.Value}
	seen := map[string]bool{primary.Value: true}
	for _, c := range st.phonePool[1:] {
		if seen[c.Value] {
			continue
		}
		seen[c.Value] = true
		values = append(values, c.Value)
	}

	st.phone = &model.AcceptedValue{
		Value:    strings.Join(values, ", "),
		SourceID: primary.SourceID,
		Method:   model.MethodFirstMatch,
	}
}

func (r *Resolver) wait(ctx context.Context) error {
	if r.pacer == nil {
		return nil
	}
	return r.pacer.Wait(ctx)
}
