// Package enrich drives the record-by-record enrichment pass.
package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resolve"
)

// Sink is the durable write-back collaborator. Flush persists a record's
// accepted fields; a returned error is retriable via the fallback sink.
type Sink interface {
	Flush(rec model.Record, accepted model.Accepted) error
}

// Resolver resolves one record through the backend chain.
type Resolver interface {
	Resolve(ctx context.Context, rec model.Record, query, location string) (*resolve.Result, error)
}

// Journal observes pass progress. Use NopJournal instead of nil checks at
// call sites.
type Journal interface {
	BeginPass(ctx context.Context, total int) (string, error)
	RecordOutcome(ctx context.Context, passID string, rec model.Record, status model.RecordStatus, accepted model.Accepted, rejections int) error
	EndPass(ctx context.Context, passID string, s Summary) error
}

// NopJournal discards all observations.
type NopJournal struct{}

func (NopJournal) BeginPass(context.Context, int) (string, error) { return "", nil }
func (NopJournal) RecordOutcome(context.Context, string, model.Record, model.RecordStatus, model.Accepted, int) error {
	return nil
}
func (NopJournal) EndPass(context.Context, string, Summary) error { return nil }

// Summary aggregates one pass.
type Summary struct {
	Total         int `json:"total"`
	Resolved      int `json:"resolved"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
	WebsitesFound int `json:"websites_found"`
	PhonesFound   int `json:"phones_found"`
	Rejections    int `json:"rejections"`
	BackendCalls  int `json:"backend_calls"`
}

// Orchestrator iterates records strictly in input order, one record fully
// resolved before the next begins. Sequential on purpose: external sources
// rate-limit, and concurrent sessions trip anti-automation defenses.
type Orchestrator struct {
	resolver Resolver
	sink     Sink
	fallback Sink // optional secondary write path
	journal  Journal
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithFallbackSink sets the secondary write path tried after a Flush failure.
func WithFallbackSink(s Sink) OrchestratorOption {
	return func(o *Orchestrator) { o.fallback = s }
}

// WithJournal installs a pass journal.
func WithJournal(j Journal) OrchestratorOption {
	return func(o *Orchestrator) { o.journal = j }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(r Resolver, sink Sink, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		resolver: r,
		sink:     sink,
		journal:  NopJournal{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes all records. Per-record failures are logged and skipped; the
// pass aborts only on caller cancellation.
func (o *Orchestrator) Run(ctx context.Context, records []model.Record) (Summary, error) {
	sum := Summary{Total: len(records)}
	log := zap.L()

	passID, err := o.journal.BeginPass(ctx, len(records))
	if err != nil {
		log.Warn("journal unavailable, continuing without it", zap.Error(err))
	}

	for i := range records {
		rec := &records[i]

		if rec.Complete() {
			sum.Skipped++
			log.Info("record already complete, skipping",
				zap.String("record", rec.ID),
				zap.Int("index", i+1),
				zap.Int("total", len(records)),
			)
			o.observe(ctx, passID, *rec, model.RecordStatusSkipped, nil, 0)
			continue
		}

		res, err := o.processRecord(ctx, rec)
		if err != nil {
			if ctx.Err() != nil {
				return sum, eris.Wrap(err, "enrich: pass cancelled")
			}
			sum.Failed++
			log.Error("record processing failed",
				zap.String("record", rec.ID),
				zap.Error(err),
			)
			o.observe(ctx, passID, *rec, model.RecordStatusPending, nil, 0)
			continue
		}

		sum.Rejections += res.Rejections
		sum.BackendCalls += res.BackendCalls
		if _, ok := res.Accepted[model.FieldWebsite]; ok {
			sum.WebsitesFound++
		}
		if _, ok := res.Accepted[model.FieldPhone]; ok {
			sum.PhonesFound++
		}
		sum.Resolved++

		// Mutate the record only with accepted output, then flush so the
		// progress survives interruption.
		for f, av := range res.Accepted {
			if rec.Known == nil {
				rec.Known = make(map[model.Field]string, 2)
			}
			rec.Known[f] = av.Value
		}
		if len(res.Accepted) > 0 {
			o.flush(*rec, res.Accepted, &sum)
		}

		log.Info("record resolved",
			zap.String("record", rec.ID),
			zap.Int("index", i+1),
			zap.Int("total", len(records)),
			zap.Int("fields_found", len(res.Accepted)),
		)
		o.observe(ctx, passID, *rec, model.RecordStatusResolved, res.Accepted, res.Rejections)
	}

	if err := o.journal.EndPass(ctx, passID, sum); err != nil {
		log.Warn("journal end-pass failed", zap.Error(err))
	}
	return sum, nil
}

// processRecord resolves a single record, converting panics into errors so
// one bad record never aborts the pass.
func (o *Orchestrator) processRecord(ctx context.Context, rec *model.Record) (res *resolve.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("enrich: panic resolving record %s: %v", rec.ID, r)
		}
	}()

	if rec.LocationHint == "" && rec.Address != "" {
		rec.LocationHint = LocationHint(rec.Address)
	}

	query := BuildQuery(*rec)
	if query == "" {
		return nil, eris.Errorf("enrich: record %s has no queryable tokens", rec.ID)
	}
	return o.resolver.Resolve(ctx, *rec, query, rec.LocationHint)
}

// flush writes through the primary sink, falling back once; a second
// failure is surfaced as a non-fatal per-record error.
func (o *Orchestrator) flush(rec model.Record, accepted model.Accepted, sum *Summary) {
	err := o.sink.Flush(rec, accepted)
	if err == nil {
		return
	}
	zap.L().Warn("flush failed, trying fallback",
		zap.String("record", rec.ID),
		zap.Error(err),
	)

	if o.fallback != nil {
		ferr := o.fallback.Flush(rec, accepted)
		if ferr == nil {
			return
		}
		zap.L().Error("fallback flush failed",
			zap.String("record", rec.ID),
			zap.Error(ferr),
		)
	}
	sum.Failed++
}

func (o *Orchestrator) observe(ctx context.Context, passID string, rec model.Record, status model.RecordStatus, accepted model.Accepted, rejections int) {
	if err := o.journal.RecordOutcome(ctx, passID, rec, status, accepted, rejections); err != nil {
		zap.L().Debug("journal record failed", zap.String("record", rec.ID), zap.Error(err))
	}
}
