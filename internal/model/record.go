// Package model holds the shared types of the enrichment pipeline.
package model

// Field identifies one enrichable contact attribute.
type Field string

const (
	FieldWebsite   Field = "website"
	FieldPhone     Field = "phone"
	FieldMessenger Field = "messenger"
)

// RecordStatus represents the per-record state machine.
type RecordStatus string

const (
	RecordStatusPending  RecordStatus = "pending"
	RecordStatusQuerying RecordStatus = "querying"
	RecordStatusResolved RecordStatus = "resolved"
	RecordStatusSkipped  RecordStatus = "skipped"
)

// Record is one enrichable entity (person or organization). It is owned by
// the orchestrator for the duration of a single pass and mutated only with
// accepted resolver output.
type Record struct {
	ID           string           `json:"id"`
	NameTokens   []string         `json:"name_tokens"`
	Address      string           `json:"address,omitempty"`
	LocationHint string           `json:"location_hint,omitempty"`
	Known        map[Field]string `json:"known"`
	Row          int              `json:"row"` // source row index, anchors write-back
}

// KnownValue returns the pre-filled value for a field, if any. Pre-filled
// input values are authoritative and are never overwritten.
func (r Record) KnownValue(f Field) (string, bool) {
	v, ok := r.Known[f]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Complete reports whether both target fields are already filled. A complete
// record must cause zero backend calls.
func (r Record) Complete() bool {
	_, w := r.KnownValue(FieldWebsite)
	_, p := r.KnownValue(FieldPhone)
	return w && p
}
