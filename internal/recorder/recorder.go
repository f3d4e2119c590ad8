// Package recorder persists run history. The engine itself is pure; only the
// command-line and server layers record what they ran.
package recorder

import "time"

// EvaluationRecord captures one single-scenario evaluation.
type EvaluationRecord struct {
	RanAt             time.Time
	PurchasePrice     float64
	MonthlyRent       float64
	TermYears         int
	Decision          string
	ResultValue       float64
	TotalPurchaseCost float64
	TotalRentalCost   float64
}

// BreakevenRecord captures one max-bid search.
type BreakevenRecord struct {
	RanAt       time.Time
	Price       float64
	ResultValue float64
	Status      string
	Iterations  int
}

// SweepRecord captures the summary of one sweep run.
type SweepRecord struct {
	RanAt     time.Time
	Mode      string
	Cells     int
	Undefined int
	Min       float64
	Max       float64
	Mean      float64
	Cancelled bool
}

// Recorder stores run history.
type Recorder interface {
	RecordEvaluation(rec *EvaluationRecord) error
	RecordBreakeven(rec *BreakevenRecord) error
	RecordSweep(rec *SweepRecord) error
	Close() error
}
