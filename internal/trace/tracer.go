package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives trace events. Implementations are goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff.
	Enabled() bool
}

// StorageMode determines where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory, dumped on failure
	ModeBoth
)

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string {
	if m > 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

func ParseMode(s string) (StorageMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return ModeStream, nil
	}
	for m, n := range modeNames {
		if n != "" && n == name {
			return StorageMode(m), nil
		}
	}
	return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config holds tracer configuration.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks by OutputPath extension
	Output     io.Writer // stream destination; OutputPath is used when nil
	OutputPath string    // file path, "-" or "" for stderr
	RingSize   int
}

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := formatFor(cfg.Format, cfg.OutputPath)
	stream := func() (Tracer, error) {
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewStreamTracer(w, cfg.Level, format), nil
	}
	switch cfg.Mode {
	case ModeStream, 0:
		return stream()
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeBoth:
		s, err := stream()
		if err != nil {
			return nil, err
		}
		return &fanout{level: cfg.Level, targets: []Tracer{s, NewRingTracer(cfg.RingSize, cfg.Level)}}, nil
	}
	return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
}

// RingOf returns the ring buffer behind t, if t keeps one.
func RingOf(t Tracer) *RingTracer {
	switch v := t.(type) {
	case *RingTracer:
		return v
	case *fanout:
		for _, target := range v.targets {
			if r := RingOf(target); r != nil {
				return r
			}
		}
	}
	return nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return struct{ io.Writer }{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// fanout sends each event to several tracers. Each target gets its own
// copy so one tracer stamping Seq does not affect the others.
type fanout struct {
	targets []Tracer
	level   Level
}

func (f *fanout) Emit(ev *Event) {
	for _, t := range f.targets {
		cp := *ev
		t.Emit(&cp)
	}
}

func (f *fanout) Flush() error {
	var errs []error
	for _, t := range f.targets {
		errs = append(errs, t.Flush())
	}
	return errors.Join(errs...)
}

func (f *fanout) Close() error {
	var errs []error
	for _, t := range f.targets {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

func (f *fanout) Level() Level  { return f.level }
func (f *fanout) Enabled() bool { return f.level > LevelOff }

// NewMultiTracer fans events out to tracers.
func NewMultiTracer(level Level, tracers ...Tracer) Tracer {
	return &fanout{targets: tracers, level: level}
}
