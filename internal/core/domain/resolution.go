package domain

import "time"

// FailureKind classifies an unsuccessful resolution.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureParse          FailureKind = "parse_failed"
	FailureQueryExhausted FailureKind = "query_exhausted"
	FailureNoViableMatch  FailureKind = "no_viable_match"
	FailureCatalogFatal   FailureKind = "catalog_fatal"
	FailureCanceled       FailureKind = "canceled"
)

// Resolution is the result object handed back to callers. It is populated
// on failure as well as on success.
type Resolution struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details ResolutionDetails `json:"details"`
}

// ResolutionDetails carries the diagnostic fields of a Resolution.
type ResolutionDetails struct {
	Title           string           `json:"title"`
	Artist          string           `json:"artist,omitempty"`
	Preferences     Preferences      `json:"preferences"`
	QueryUsed       string           `json:"query_used,omitempty"`
	QueriesTried    []string         `json:"queries_tried,omitempty"`
	Position        int              `json:"position,omitempty"`
	TotalCandidates int              `json:"total_candidates,omitempty"`
	Track           *SearchCandidate `json:"track,omitempty"`
	ParseMethod     ParseMethod      `json:"parse_method,omitempty"`
	Disambiguated   bool             `json:"disambiguated,omitempty"`
	Failure         FailureKind      `json:"failure,omitempty"`
}

// JournalEntry is one persisted resolution, kept for diagnostics.
type JournalEntry struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Request    MusicRequest      `json:"request"`
	Resolution Resolution        `json:"resolution"`
	Scored     []ScoredCandidate `json:"scored,omitempty"`
}
