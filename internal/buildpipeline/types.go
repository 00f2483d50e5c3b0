package buildpipeline

import (
	"fmt"
	"strings"
	"time"
)

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageDecode reads and decodes the serialized AST.
	StageDecode Stage = "decode"
	// StageLower runs a backend over the AST.
	StageLower Stage = "lower"
	// StageEmit renders backend output as text.
	StageEmit Stage = "emit"
	// StageWrite stores artifacts on disk.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations used with BuildAll
// must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// Backend selects the code generator.
type Backend string

const (
	// BackendWasm emits WebAssembly text.
	BackendWasm Backend = "wasm"
	// BackendQBE emits QBE intermediate language.
	BackendQBE Backend = "qbe"
	// BackendAll runs both backends over the same AST.
	BackendAll Backend = "all"
)

func (b Backend) String() string { return string(b) }

// ParseBackend maps a flag or manifest value to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendWasm, BackendQBE, BackendAll:
		return b, nil
	case "":
		return BackendWasm, nil
	}
	return "", fmt.Errorf("unsupported backend: %s (supported: wasm, qbe, all)", s)
}

// Targets expands b into the concrete backends to run, in output order.
func (b Backend) Targets() ([]Backend, error) {
	switch b {
	case BackendWasm, "":
		return []Backend{BackendWasm}, nil
	case BackendQBE:
		return []Backend{BackendQBE}, nil
	case BackendAll:
		return []Backend{BackendWasm, BackendQBE}, nil
	}
	return nil, fmt.Errorf("unsupported backend: %s (supported: wasm, qbe, all)", b)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Add accumulates dur into stage; both backends report into the same stages.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] += dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
