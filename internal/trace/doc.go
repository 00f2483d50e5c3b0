// Package trace records what the jasmine compiler is doing.
//
// Tracing is off by default. Enable it from the command line:
//
//	jasmine build --trace=- --trace-level=detail prog.json
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: writes every event immediately (file or stderr)
//   - RingTracer: keeps the last N events for a dump after a failed build
//   - NewMultiTracer: fans out to several tracers (ModeBoth)
//
// # Levels and scopes
//
// LevelPhase emits driver and pass spans (one per input file and backend).
// LevelDetail and LevelDebug add ScopeFunc events, one per lowered function.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "wasm", parentID)
//	defer span.End("")
package trace
