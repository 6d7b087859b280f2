package engine

import "context"

// TraceToken is an opaque handle returned by the host when an
// object-trace callback is installed. It is meaningful only to the host;
// the engine treats it as inert data to be handed back on removal.
type TraceToken any

// CommandToken is an opaque per-invocation handle the host passes to the
// object-trace callback, used to resolve the fully qualified name of the
// command being dispatched (see Host.ResolveProcName).
type CommandToken any

// ObjectTraceFunc is the callback installed via Host.InstallObjectTrace.
// objv[0] is the invoked command name and objv[1:] are its arguments.
type ObjectTraceFunc func(tok CommandToken, objv []string) error

// FrameInfo mirrors the dict the host's frame_info(-1) primitive
// returns: the call-stack frame at some absolute level. Level is -1 when
// the host has no level to report (e.g. global scope), in which case
// callers fall back to Host.CallDepth.
type FrameInfo struct {
	Type  string
	File  string
	Line  int
	Proc  string
	Cmd   []string
	Level int
}

// Host is everything the engine requires from the embedding scripting
// interpreter. Implementations are expected to be single-threaded and
// cooperative: every method here is invoked from the interpreter's own
// thread of execution except Wait, which is the sole suspension point.
type Host interface {
	// InstallObjectTrace installs a per-command object-trace callback.
	// allowInline mirrors TCL_ALLOW_INLINE_COMPILATION-style hints: when
	// false, the host should avoid compiling the traced commands inline
	// so the trace reliably fires.
	InstallObjectTrace(cb ObjectTraceFunc, allowInline bool) (TraceToken, error)
	// RemoveObjectTrace uninstalls a previously installed trace.
	RemoveObjectTrace(tok TraceToken) error
	// EnsureExecTraces arms (or disarms) the host's own exec-step/enter
	// traces used for file:line and proc-entry breakpoints. The engine
	// never installs these itself; it only signals whether they are
	// needed.
	EnsureExecTraces(fileLine, procEntry bool) error

	// FrameInfo returns the call frame at the given absolute level.
	// level == -1 means "the caller's frame", mirroring frame_info(-1).
	FrameInfo(level int) (FrameInfo, error)
	// CallDepth returns the current absolute call depth, used as a
	// fallback when FrameInfo does not carry a usable level.
	CallDepth() (int, error)
	// ResolveProcName resolves the fully qualified procedure name
	// associated with a command token.
	ResolveProcName(tok CommandToken) string

	// EvalCondition evaluates a boolean host-language expression at the
	// given level.
	EvalCondition(level int, expr string) (bool, error)
	// SubstituteTemplate performs template substitution (command
	// substitution disabled) at the given level.
	SubstituteTemplate(level int, tmpl string) (string, error)
	// InjectCommand makes the full invoked command available as $cmd in
	// the frame at the given level.
	InjectCommand(level int, cmd []string) error

	// InfoLocals returns the local variables visible at the given level.
	InfoLocals(level int) (map[string]string, error)
	// InfoArgs returns the named procedure's declared arguments and
	// their current values at the given level.
	InfoArgs(level int, proc string) (map[string]string, error)

	// NormalizePath returns the host's canonical absolute form of path.
	NormalizePath(path string) (string, error)
	// PathEqual reports whether two paths denote the same file per the
	// host's own equality predicate.
	PathEqual(a, b string) bool

	// PublishGlobal sets a well-known global variable directly.
	PublishGlobal(name string, event StopEvent) error
	// PublishGlobalScript performs an equivalent script-level assignment
	// of the same variable, so that any variable-write traces installed
	// by client scripts also fire.
	PublishGlobalScript(name string, event StopEvent) error
	// UnsetVar removes a global variable; used to clear the resume
	// signal after wake and during teardown.
	UnsetVar(name string) error
	// Wait blocks until name is written, cooperatively yielding to the
	// host's event loop so other event sources keep running.
	Wait(ctx context.Context, name string) error

	// WriteStdout emits text for a log-only breakpoint.
	WriteStdout(s string)
	// BackgroundError reports an error that must not propagate to the
	// caller.
	BackgroundError(err error)
}
