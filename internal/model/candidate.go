package model

// Method describes how an accepted value won over its competitors.
type Method string

const (
	MethodMajorityVote Method = "majority-vote"
	MethodFirstMatch   Method = "first-match"
	MethodNameAffinity Method = "name-affinity"
)

// RawCandidate is an unvalidated value emitted by an extractor. Rank is the
// candidate's position among matches from the same fetch, 0 = first/best.
type RawCandidate struct {
	Field    Field  `json:"field"`
	Value    string `json:"value"`
	SourceID string `json:"source_id"`
	Rank     int    `json:"rank"`
}

// NormalizedCandidate is a RawCandidate whose value satisfies the field's
// canonical grammar. Candidates that fail normalization are dropped, never
// propagated.
type NormalizedCandidate struct {
	Field    Field  `json:"field"`
	Value    string `json:"value"`
	SourceID string `json:"source_id"`
	Rank     int    `json:"rank"`
	Seq      int    `json:"seq"` // arrival order across the whole chain
}

// AcceptedValue is the single value chosen for a field in one pass.
type AcceptedValue struct {
	Value    string `json:"value"`
	SourceID string `json:"source_id"`
	Method   Method `json:"method"`
}

// Accepted maps a field to its accepted value for one record.
type Accepted map[Field]AcceptedValue
