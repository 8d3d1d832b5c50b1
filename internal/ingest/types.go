package ingest

import "fmt"

// stages at which a single query can fail
const (
	StageEmbed = "embed"
	StageStore = "store"
)

// reports completed and total distinct queries as work finishes
type ProgressFunc func(done, total int)

// a query that did not make it into the store
type Failure struct {
	Query string
	Stage string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s failed for %q: %v", f.Stage, f.Query, f.Err)
}

// per-run accounting; a run never succeeds or fails as a whole
type Report struct {
	Received       int // raw strings read from the source
	Blank          int // empty or whitespace-only entries dropped
	Distinct       int // unique non-blank strings after local dedup
	Inserted       int
	AlreadyPresent int
	EmbedFailed    int
	StoreFailed    int
	Failures       []Failure
}

// queries that now have a durable record, new or pre-existing
func (r *Report) Succeeded() int {
	return r.Inserted + r.AlreadyPresent
}

func (r *Report) Failed() int {
	return r.EmbedFailed + r.StoreFailed
}
