package model

// ProgressEvent is emitted by a cleaning run. It is either a StepProgress or,
// exactly once at the end, a Finished event carrying the result.
type ProgressEvent interface {
	// Fraction is the share of work completed, in [0, 1].
	Fraction() float64

	progressEvent()
}

// StepProgress reports that a step has completed.
type StepProgress struct {
	// Completed is the number of steps done so far.
	Completed int

	// Total is the number of steps planned when the run started.
	Total int

	// Label names the step that just completed.
	Label string
}

// Fraction returns Completed/Total, capped at 1.
func (p StepProgress) Fraction() float64 {
	if p.Total <= 0 || p.Completed >= p.Total {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

func (StepProgress) progressEvent() {}

// Finished is the terminal event. Its fraction is always 1.
type Finished struct {
	Bundle *Bundle
}

// Fraction returns 1.
func (Finished) Fraction() float64 {
	return 1
}

func (Finished) progressEvent() {}
