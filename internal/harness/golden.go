package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stackdock/internal/model"
)

// TraceSnapshot captures the trace and per-step states of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Steps        []StepRecord `json:"steps"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		ids := make([]any, len(ev.IDs))
		for j, id := range ev.IDs {
			ids[j] = id
		}
		m := map[string]any{
			"step": ev.Step,
			"seq":  ev.Seq,
			"op":   ev.Op,
			"kind": ev.Kind,
			"ids":  ids,
		}
		if ev.Error != "" {
			m["error"] = ev.Error
		}
		trace[i] = m
	}

	steps := make([]any, len(s.Steps))
	for i, rec := range s.Steps {
		m := map[string]any{
			"step":        rec.Step,
			"op":          rec.Op,
			"returns":     rec.Returns,
			"sync_status": rec.SyncStatus,
			"stacks":      rec.Stacks,
			"cards":       rec.Cards,
		}
		if rec.ErrorMessage != "" {
			m["error_message"] = rec.ErrorMessage
		}
		steps[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"steps":         steps,
	}
}

// MarshalTrace renders the snapshot as key-sorted, two-space indented JSON
// with a trailing newline.
func (s *TraceSnapshot) MarshalTrace() ([]byte, error) {
	canonical, err := model.MarshalCanonical(s.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Steps:        result.Steps,
	}
	data, err := snapshot.MarshalTrace()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
