// Package journal records enrichment passes in SQLite so interrupted or
// repeated runs can be audited after the fact. The journal is advisory: a
// database that cannot be opened degrades the run to no journaling rather
// than failing it.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/enrich-cli/internal/enrich"
	"github.com/sells-group/enrich-cli/internal/model"
)

// SQLite implements enrich.Journal using modernc.org/sqlite.
type SQLite struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at path and configures WAL
// mode. Returns nil and an error when the database is unusable; callers
// typically log the error and fall back to enrich.NopJournal.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "journal: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "journal: exec %s", pragma)
		}
	}

	j := &SQLite{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// MustOpen opens the journal or degrades to a no-op one, logging the reason.
func MustOpen(path string) enrich.Journal {
	j, err := Open(path)
	if err != nil {
		zap.L().Warn("journal disabled", zap.String("path", path), zap.Error(err))
		return enrich.NopJournal{}
	}
	return j
}

const migration = `
CREATE TABLE IF NOT EXISTS passes (
	id          TEXT PRIMARY KEY,
	total       INTEGER NOT NULL,
	summary     TEXT,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS record_results (
	id         TEXT PRIMARY KEY,
	pass_id    TEXT NOT NULL REFERENCES passes(id),
	record_id  TEXT NOT NULL,
	status     TEXT NOT NULL,
	accepted   TEXT,
	rejections INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_record_results_pass_id ON record_results(pass_id);
CREATE INDEX IF NOT EXISTS idx_record_results_record_id ON record_results(record_id);
`

func (j *SQLite) migrate() error {
	_, err := j.db.Exec(migration)
	return eris.Wrap(err, "journal: migrate")
}

// Close closes the underlying database.
func (j *SQLite) Close() error {
	return j.db.Close()
}

// BeginPass inserts a pass row and returns its id.
func (j *SQLite) BeginPass(ctx context.Context, total int) (string, error) {
	id := uuid.New().String()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO passes (id, total, started_at) VALUES (?, ?, ?)`,
		id, total, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "journal: insert pass")
	}
	return id, nil
}

// RecordOutcome journals one record's terminal state within a pass.
func (j *SQLite) RecordOutcome(ctx context.Context, passID string, rec model.Record, status model.RecordStatus, accepted model.Accepted, rejections int) error {
	acceptedJSON, err := json.Marshal(accepted)
	if err != nil {
		return eris.Wrap(err, "journal: marshal accepted")
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO record_results (id, pass_id, record_id, status, accepted, rejections, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), passID, rec.ID, string(status), string(acceptedJSON), rejections, time.Now().UTC(),
	)
	return eris.Wrapf(err, "journal: insert outcome for %s", rec.ID)
}

// EndPass stores the aggregated summary and stamps the finish time.
func (j *SQLite) EndPass(ctx context.Context, passID string, s enrich.Summary) error {
	summaryJSON, err := json.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "journal: marshal summary")
	}

	res, err := j.db.ExecContext(ctx,
		`UPDATE passes SET summary = ?, finished_at = ? WHERE id = ?`,
		string(summaryJSON), time.Now().UTC(), passID,
	)
	if err != nil {
		return eris.Wrapf(err, "journal: end pass %s", passID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "journal: rows affected")
	}
	if n == 0 {
		return eris.Errorf("journal: pass not found: %s", passID)
	}
	return nil
}

// PassSummary is a journaled pass as read back for inspection.
type PassSummary struct {
	ID         string
	Total      int
	Summary    *enrich.Summary
	StartedAt  time.Time
	FinishedAt *time.Time
}

// ListPasses returns the most recent passes, newest first.
func (j *SQLite) ListPasses(ctx context.Context, limit int) ([]PassSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, total, summary, started_at, finished_at FROM passes
		 ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "journal: list passes")
	}
	defer rows.Close()

	var out []PassSummary
	for rows.Next() {
		var p PassSummary
		var summaryJSON sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&p.ID, &p.Total, &summaryJSON, &p.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "journal: scan pass")
		}
		if summaryJSON.Valid {
			p.Summary = &enrich.Summary{}
			if err := json.Unmarshal([]byte(summaryJSON.String), p.Summary); err != nil {
				return nil, eris.Wrap(err, "journal: unmarshal summary")
			}
		}
		if finished.Valid {
			t := finished.Time
			p.FinishedAt = &t
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "journal: list passes iterate")
}
