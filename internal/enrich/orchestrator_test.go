package enrich

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resolve"
)

// mockResolver returns canned results keyed by record ID.
type mockResolver struct {
	results map[string]*resolve.Result
	calls   []string
	panicOn string
}

func (m *mockResolver) Resolve(_ context.Context, rec model.Record, _, _ string) (*resolve.Result, error) {
	m.calls = append(m.calls, rec.ID)
	if rec.ID == m.panicOn {
		panic("selector vanished")
	}
	if r, ok := m.results[rec.ID]; ok {
		return r, nil
	}
	return &resolve.Result{Accepted: model.Accepted{}}, nil
}

// mockSink records flushes and optionally fails.
type mockSink struct {
	flushed []string
	err     error
}

func (m *mockSink) Flush(rec model.Record, _ model.Accepted) error {
	if m.err != nil {
		return m.err
	}
	m.flushed = append(m.flushed, rec.ID)
	return nil
}

func accepted(field model.Field, value string) *resolve.Result {
	return &resolve.Result{
		Accepted: model.Accepted{
			field: {Value: value, SourceID: "api", Method: model.MethodFirstMatch},
		},
		BackendCalls: 1,
	}
}

func TestRun_ProcessesInInputOrder(t *testing.T) {
	r := &mockResolver{results: map[string]*resolve.Result{
		"a": accepted(model.FieldWebsite, "www.a.ch"),
		"b": accepted(model.FieldPhone, "+41 44 123 45 67"),
	}}
	sink := &mockSink{}
	o := NewOrchestrator(r, sink)

	records := []model.Record{
		{ID: "a", NameTokens: []string{"A"}},
		{ID: "b", NameTokens: []string{"B"}},
	}
	sum, err := o.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, r.calls)
	assert.Equal(t, []string{"a", "b"}, sink.flushed)
	assert.Equal(t, 2, sum.Resolved)
	assert.Equal(t, 1, sum.WebsitesFound)
	assert.Equal(t, 1, sum.PhonesFound)

	// Accepted output mutated the records.
	assert.Equal(t, "www.a.ch", records[0].Known[model.FieldWebsite])
}

func TestRun_SkipsCompleteRecords(t *testing.T) {
	r := &mockResolver{}
	sink := &mockSink{}
	o := NewOrchestrator(r, sink)

	records := []model.Record{{
		ID:         "done",
		NameTokens: []string{"X"},
		Known: map[model.Field]string{
			model.FieldWebsite: "www.x.ch",
			model.FieldPhone:   "+41 44 123 45 67",
		},
	}}
	sum, err := o.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Empty(t, r.calls, "complete record must cause zero backend calls")
	assert.Empty(t, sink.flushed)
	assert.Equal(t, 1, sum.Skipped)
	assert.Zero(t, sum.Resolved)
}

func TestRun_RecordPanicDoesNotAbortPass(t *testing.T) {
	r := &mockResolver{
		panicOn: "bad",
		results: map[string]*resolve.Result{"good": accepted(model.FieldWebsite, "www.g.ch")},
	}
	sink := &mockSink{}
	o := NewOrchestrator(r, sink)

	records := []model.Record{
		{ID: "bad", NameTokens: []string{"B"}},
		{ID: "good", NameTokens: []string{"G"}},
	}
	sum, err := o.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Resolved)
	assert.Equal(t, []string{"good"}, sink.flushed)
}

func TestRun_NoQueryableTokens(t *testing.T) {
	r := &mockResolver{}
	o := NewOrchestrator(r, &mockSink{})

	sum, err := o.Run(context.Background(), []model.Record{{ID: "empty"}})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
}

func TestRun_FallbackSinkUsedOnFlushFailure(t *testing.T) {
	r := &mockResolver{results: map[string]*resolve.Result{
		"a": accepted(model.FieldWebsite, "www.a.ch"),
	}}
	primary := &mockSink{err: eris.New("disk full")}
	fallback := &mockSink{}
	o := NewOrchestrator(r, primary, WithFallbackSink(fallback))

	sum, err := o.Run(context.Background(), []model.Record{{ID: "a", NameTokens: []string{"A"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, fallback.flushed)
	assert.Zero(t, sum.Failed, "fallback success is not a failure")
}

func TestRun_BothSinksFailingIsNonFatal(t *testing.T) {
	r := &mockResolver{results: map[string]*resolve.Result{
		"a": accepted(model.FieldWebsite, "www.a.ch"),
		"b": accepted(model.FieldWebsite, "www.b.ch"),
	}}
	primary := &mockSink{err: eris.New("disk full")}
	fallback := &mockSink{err: eris.New("also full")}
	o := NewOrchestrator(r, primary, WithFallbackSink(fallback))

	records := []model.Record{
		{ID: "a", NameTokens: []string{"A"}},
		{ID: "b", NameTokens: []string{"B"}},
	}
	sum, err := o.Run(context.Background(), records)
	require.NoError(t, err, "persistence failure never aborts the pass")
	assert.Equal(t, 2, sum.Resolved)
	assert.Equal(t, 2, sum.Failed)
}

func TestRun_NothingFoundNoFlush(t *testing.T) {
	r := &mockResolver{} // empty results for every record
	sink := &mockSink{}
	o := NewOrchestrator(r, sink)

	sum, err := o.Run(context.Background(), []model.Record{{ID: "a", NameTokens: []string{"A"}}})
	require.NoError(t, err)
	assert.Empty(t, sink.flushed)
	assert.Equal(t, 1, sum.Resolved)
	assert.Zero(t, sum.WebsitesFound)
}
