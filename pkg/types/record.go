package types

import "time"

// InputRecord is a single row of the input file: one purchase order line
// whose delivery date must be changed.
type InputRecord struct {
	Order   string // purchase order number (Pedido)
	Line    int    // item line number (Linha), positive
	NewDate string // raw date cell value (NovaData), not yet normalized
}

// OutcomeStatus is the terminal classification of one record's processing.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "SUCCESS"
	StatusSkipped OutcomeStatus = "SKIPPED"
	StatusError   OutcomeStatus = "ERROR"
)

// OutcomeRecord represents the result of processing a single input record.
// Created exactly once per InputRecord and never mutated afterwards.
type OutcomeRecord struct {
	Order      string
	Line       int
	NewDate    string // normalized dd.mm.yyyy value
	Status     OutcomeStatus
	Message    string
	ExecutedAt time.Time
}

// RunStatus classifies the overall result of a batch run.
type RunStatus string

const (
	RunSuccess RunStatus = "success" // zero errors
	RunPartial RunStatus = "partial" // at least one success and one error
	RunFailure RunStatus = "failure" // errors and no successes
)

// RunResult represents the overall result of one batch run.
type RunResult struct {
	RunID        string
	TotalRecords int
	SuccessCount int
	SkippedCount int
	ErrorCount   int
	Cancelled    bool
	Outcomes     []OutcomeRecord
	ReportPath   string
	Duration     time.Duration
}

// Status derives the overall run status from the outcome counts.
func (r *RunResult) Status() RunStatus {
	switch {
	case r.ErrorCount == 0:
		return RunSuccess
	case r.SuccessCount > 0:
		return RunPartial
	default:
		return RunFailure
	}
}

// Tally recomputes the summary counts from the outcome sequence.
func (r *RunResult) Tally() {
	r.SuccessCount, r.SkippedCount, r.ErrorCount = 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSuccess:
			r.SuccessCount++
		case StatusSkipped:
			r.SkippedCount++
		case StatusError:
			r.ErrorCount++
		}
	}
}
