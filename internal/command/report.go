package command

// Status is the result of executing one command.
type Status string

// Outcome statuses.
const (
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
)

// Outcome records what happened to one command.
type Outcome struct {
	Index  int    `json:"index"`
	Kind   Kind   `json:"kind"`
	Target string `json:"target,omitempty"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	// NewID is set when the command created an entity (duplicate section, article).
	NewID string `json:"newId,omitempty"`
}

// Applied builds an applied outcome for cmd.
func Applied(i int, cmd Command) Outcome {
	return Outcome{Index: i, Kind: cmd.Kind(), Target: cmd.Target(), Status: StatusApplied}
}

// Skipped builds a skipped outcome for cmd.
func Skipped(i int, cmd Command, reason string) Outcome {
	return Outcome{Index: i, Kind: cmd.Kind(), Target: cmd.Target(), Status: StatusSkipped, Reason: reason}
}

// Report aggregates outcomes of a batch.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Add appends outcomes.
func (r *Report) Add(o ...Outcome) {
	r.Outcomes = append(r.Outcomes, o...)
}

// Applied counts applied outcomes.
func (r *Report) Applied() int { return r.count(StatusApplied) }

// Skipped counts skipped outcomes.
func (r *Report) Skipped() int { return r.count(StatusSkipped) }

func (r *Report) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}
