// Package observ measures how long the build phases take for --timings.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// phaseStats aggregates every run of one named phase. A batch build runs
// each phase once per input.
type phaseStats struct {
	name  string
	count int
	total time.Duration
	worst time.Duration
	note  string
}

// Timer aggregates phase durations by name, in order of first use. It is
// safe for concurrent use and a nil *Timer records nothing.
type Timer struct {
	mu     sync.Mutex
	order  []*phaseStats
	byName map[string]*phaseStats
}

func NewTimer() *Timer {
	return &Timer{byName: make(map[string]*phaseStats, 8)}
}

// Track starts timing one run of name and returns the function that ends
// it. The note of the latest run is kept for the summary.
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	start := time.Now()
	return func(note string) { t.record(name, time.Since(start), note) }
}

func (t *Timer) record(name string, d time.Duration, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ps, ok := t.byName[name]
	if !ok {
		ps = &phaseStats{name: name}
		t.byName[name] = ps
		t.order = append(t.order, ps)
	}
	ps.count++
	ps.total += d
	ps.worst = max(ps.worst, d)
	if note != "" {
		ps.note = note
	}
}

// PhaseReport is the JSON-friendly view of one phase.
type PhaseReport struct {
	Name    string  `json:"name"`
	Runs    int     `json:"runs"`
	TotalMS float64 `json:"total_ms"`
	MaxMS   float64 `json:"max_ms"`
	Note    string  `json:"note,omitempty"`
}

// Report lists phases and the sum of their time. Parallel builds overlap,
// so TotalMS is work done, not wall time.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	var total time.Duration
	for _, ps := range t.order {
		total += ps.total
		r.Phases = append(r.Phases, PhaseReport{
			Name:    ps.name,
			Runs:    ps.count,
			TotalMS: millis(ps.total),
			MaxMS:   millis(ps.worst),
			Note:    ps.note,
		})
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders Report as an aligned table; empty when nothing ran.
func (t *Timer) Summary() string {
	r := t.Report()
	if len(r.Phases) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-16s %8.2f ms", p.Name, p.TotalMS)
		if p.Runs > 1 {
			fmt.Fprintf(&sb, "  x%d, max %.2f ms", p.Runs, p.MaxMS)
		}
		if p.Note != "" {
			sb.WriteString("  (" + p.Note + ")")
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-16s %8.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
