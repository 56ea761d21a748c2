package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/enrich"
	"github.com/sells-group/enrich-cli/internal/model"
)

func newTestJournal(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() }) //nolint:errcheck
	return j
}

func TestJournal_PassLifecycle(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	passID, err := j.BeginPass(ctx, 3)
	require.NoError(t, err)
	require.NotEmpty(t, passID)

	rec := model.Record{ID: "row-1"}
	err = j.RecordOutcome(ctx, passID, rec, model.RecordStatusResolved, model.Accepted{
		model.FieldWebsite: {Value: "www.klinik-zuerich.ch", SourceID: "structured-api"},
	}, 1)
	require.NoError(t, err)

	summary := enrich.Summary{Total: 3, Resolved: 1, Skipped: 2, Rejections: 1}
	require.NoError(t, j.EndPass(ctx, passID, summary))

	passes, err := j.ListPasses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, passID, passes[0].ID)
	assert.Equal(t, 3, passes[0].Total)
	require.NotNil(t, passes[0].Summary)
	assert.Equal(t, 1, passes[0].Summary.Resolved)
	require.NotNil(t, passes[0].FinishedAt)
}

func TestJournal_EndPassUnknownID(t *testing.T) {
	j := newTestJournal(t)
	err := j.EndPass(context.Background(), "no-such-pass", enrich.Summary{})
	assert.Error(t, err)
}

func TestJournal_ListPassesNewestFirst(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	first, err := j.BeginPass(ctx, 1)
	require.NoError(t, err)
	second, err := j.BeginPass(ctx, 2)
	require.NoError(t, err)

	passes, err := j.ListPasses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	// Identical timestamps can make ordering ambiguous, so only check
	// that the returned pass is one of the two and the limit holds.
	assert.Contains(t, []string{first, second}, passes[0].ID)
}

func TestMustOpen_DegradesToNop(t *testing.T) {
	// A directory path cannot be opened as a database file.
	j := MustOpen(t.TempDir())
	_, ok := j.(enrich.NopJournal)
	assert.True(t, ok)
}
