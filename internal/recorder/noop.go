package recorder

// Noop discards all records. Used when persistence is disabled.
type Noop struct{}

func (Noop) RecordEvaluation(*EvaluationRecord) error { return nil }
func (Noop) RecordBreakeven(*BreakevenRecord) error   { return nil }
func (Noop) RecordSweep(*SweepRecord) error           { return nil }
func (Noop) Close() error                             { return nil }
