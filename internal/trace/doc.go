// Package trace records what flagger does while it runs.
//
// Tracing is off by default. The CLI turns it on with
//
//	flagger gen --trace=- --trace-level=detail ./perms
//
// Events go to a StreamTracer (written immediately), a RingTracer (last N
// events kept in memory and dumped when the tool panics) or both through a
// MultiTracer.
//
// Levels, from quiet to loud: off, error, phase, detail, debug. The phase level
// shows driver and pass boundaries (lex, parse, collect, resolve, emit), detail
// adds one span per flag set and per resolver pass, debug adds everything else.
//
// A tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "resolve", 0)
//	defer span.End("")
package trace
