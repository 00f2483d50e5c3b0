package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer encodes events into a buffered writer. The buffer is
// flushed whenever a driver span ends, so each finished input shows up
// promptly, and on Flush and Close.
type StreamTracer struct {
	mu     sync.Mutex
	dst    io.Writer
	bw     *bufio.Writer
	level  Level
	format Format
	buf    []byte
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{dst: w, bw: bufio.NewWriter(w), level: level, format: formatFor(format, "")}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	t.buf = appendEvent(t.buf[:0], ev, t.format)
	// trace output is best effort; a failing writer never fails a build
	_, _ = t.bw.Write(t.buf)
	if ev.Kind == KindSpanEnd && ev.Scope == ScopeDriver {
		_ = t.bw.Flush()
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bw.Flush()
}

// Close flushes and closes the destination if it is an io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.dst.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
