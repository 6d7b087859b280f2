// Package engine implements the core of an in-process debugger for an
// embedded, dynamically typed scripting host: a breakpoint registry, a
// command-trace matcher, a condition/hit-count/log/oneshot evaluation
// pipeline, and a cooperative pause/resume rendezvous with the host's
// event loop.
//
// The host interpreter itself is never touched directly; everything the
// engine needs from it is expressed through the Host interface in
// host.go. Callers embed the engine by implementing Host and wiring its
// command-trace callback into their interpreter's trace mechanism.
package engine
