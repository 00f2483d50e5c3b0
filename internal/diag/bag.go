package diag

import (
	"cmp"
	"errors"
	"slices"
)

// Bag collects diagnostics up to a limit. Entries past the limit are
// counted, not stored.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

func NewBag(limit int) *Bag {
	limit = max(limit, 1)
	return &Bag{
		items: make([]Diagnostic, 0, min(limit, 16)),
		limit: limit,
	}
}

// Add stores d and reports whether it fit under the limit.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddError records err for file. A *Error keeps its position; other
// errors keep only their code, which may be UnknownCode.
func (b *Bag) AddError(file string, err error) bool {
	if err == nil {
		return false
	}
	var de *Error
	if errors.As(err, &de) {
		return b.Add(de.Diagnostic().WithFile(file))
	}
	return b.Add(New(SevError, CodeOf(err), 0, "", err.Error()).WithFile(file))
}

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

func (b *Bag) Len() int { return len(b.items) }

// Dropped is the number of diagnostics rejected by the limit.
func (b *Bag) Dropped() int { return b.dropped }

// Items returns the stored diagnostics; callers must not modify them.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends everything from other. The limit grows to fit, so merging
// per-file bags never loses entries.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.limit = max(b.limit, len(b.items)+len(other.items))
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort orders by file, line, severity (worst first), then code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		if c := cmp.Compare(x.File, y.File); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Line, y.Line); c != 0 {
			return c
		}
		if c := cmp.Compare(y.Severity, x.Severity); c != 0 {
			return c
		}
		return cmp.Compare(x.Code, y.Code)
	})
}

// Dedup keeps the first diagnostic per code, file and line.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		file string
		line int
	}
	seen := make(map[key]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := key{d.Code, d.File, d.Line}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
