package models

// IngestLine is one parsed line of bulk input. It is never persisted;
// it exists only within a single ingest pass.
type IngestLine struct {
	Title   string
	Quality string
	Link    string
}

// Summary is the tally returned by one bulk ingest pass
type Summary struct {
	Total     int `json:"total"`
	Success   int `json:"success"`
	Duplicate int `json:"duplicate"`
	Invalid   int `json:"invalid"`
	Failed    int `json:"failed"`
}

// Outcome classifies the result of a single catalog operation
type Outcome string

const (
	OutcomeAdded     Outcome = "added"
	OutcomeUpdated   Outcome = "updated"
	OutcomeDuplicate Outcome = "duplicate" // quality already present, not overwritten
	OutcomeConflict  Outcome = "conflict"  // rename target already occupied
	OutcomeRemoved   Outcome = "removed"
	OutcomeNotFound  Outcome = "not_found" // distinguishable from an error
)
