package harness

// TraceEvent is one engine event as recorded by the harness. Operation ids
// are left out: they are ULIDs and differ on every run.
type TraceEvent struct {
	Step  int      `json:"step"`
	Seq   int64    `json:"seq"`
	Op    string   `json:"op"`
	Kind  string   `json:"kind"`
	IDs   []string `json:"ids"`
	Error string   `json:"error,omitempty"`
}

// StepRecord is the engine state right after a step.
type StepRecord struct {
	Step         int    `json:"step"`
	Op           string `json:"op"`
	Returns      string `json:"returns"`
	SyncStatus   string `json:"sync_status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Stacks       int    `json:"stacks"`
	Cards        int    `json:"cards"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every engine event in seq order.
	Trace []TraceEvent `json:"trace"`

	// Steps records the state after each step.
	Steps []StepRecord `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Steps:  []StepRecord{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
