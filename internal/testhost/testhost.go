// Package testhost is an in-memory fake implementation of engine.Host,
// used to exercise the engine without a real scripting interpreter. The
// resume-variable wait is a channel created fresh per pause and closed
// by SetResume to wake the waiter.
package testhost

import (
	"context"
	"strings"
	"sync"

	"github.com/saxyguy81/tdb/engine"
)

// Host is a single-goroutine fake scripting interpreter. All exported
// fields and methods are safe to use from test code driving the engine
// on the same goroutine; Wait is the only method meant to be called
// concurrently with a writer of the resume signal.
type Host struct {
	mu sync.Mutex

	// Frames is the simulated call stack, innermost frame last. FrameInfo
	// with level == -1 returns Frames[len(Frames)-1]; level >= 0 returns
	// Frames[level] when in range.
	Frames []engine.FrameInfo

	// Locals maps a frame level to its local variables.
	Locals map[int]map[string]string
	// Args maps a frame level to declared argument values; InfoArgs
	// looks up by level only and ignores the proc name.
	Args map[int]map[string]string

	// ConditionResults maps a condition expression to its evaluated
	// result; missing entries evaluate true. ConditionErr, if set, is
	// returned instead for any expression.
	ConditionResults map[string]bool
	ConditionErr     error

	// TemplateResults maps a template string to its substituted form;
	// missing entries pass the template through unchanged.
	TemplateResults map[string]string
	TemplateErr     error

	// ProcNames maps an opaque CommandToken to its resolved fully
	// qualified procedure name.
	ProcNames map[engine.CommandToken]string

	// NormalizedPaths maps a raw path to its canonical form; missing
	// entries pass through unchanged.
	NormalizedPaths map[string]string

	traceCb        engine.ObjectTraceFunc
	traceInstalled bool
	allowInline    bool

	fileLineArmed  bool
	procEntryArmed bool

	Stopped  *engine.StopEvent
	LastStop *engine.StopEvent

	resumeSet bool
	resumeCh  chan struct{}

	Stdout           strings.Builder
	BackgroundErrors []error

	InjectedCmd map[int][]string
}

// New returns an idle fake host with empty maps ready to populate.
func New() *Host {
	return &Host{
		Locals:           map[int]map[string]string{},
		Args:             map[int]map[string]string{},
		ConditionResults: map[string]bool{},
		TemplateResults:  map[string]string{},
		ProcNames:        map[engine.CommandToken]string{},
		NormalizedPaths:  map[string]string{},
		InjectedCmd:      map[int][]string{},
		resumeCh:         make(chan struct{}),
	}
}

// PushFrame appends a frame to the simulated call stack and returns its
// index, for use as a CommandToken-independent level.
func (h *Host) PushFrame(f engine.FrameInfo) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Frames = append(h.Frames, f)
	return len(h.Frames) - 1
}

// Fire invokes the installed object-trace callback as the host would for
// an executed command and returns its error. With no trace installed it
// does nothing and returns nil.
func (h *Host) Fire(tok engine.CommandToken, objv []string) error {
	h.mu.Lock()
	cb := h.traceCb
	installed := h.traceInstalled
	h.mu.Unlock()
	if !installed || cb == nil {
		return nil
	}
	return cb(tok, objv)
}

// TraceInstalled reports whether InstallObjectTrace is currently active.
func (h *Host) TraceInstalled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.traceInstalled
}

// ExecTracesArmed reports the arm state last requested via
// EnsureExecTraces.
func (h *Host) ExecTracesArmed() (fileLine, procEntry bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fileLineArmed, h.procEntryArmed
}

// SetResume simulates an external client writing the resume variable,
// waking any goroutine blocked in Wait.
func (h *Host) SetResume() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resumeSet {
		return
	}
	h.resumeSet = true
	close(h.resumeCh)
}

func (h *Host) InstallObjectTrace(cb engine.ObjectTraceFunc, allowInline bool) (engine.TraceToken, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.traceCb = cb
	h.traceInstalled = true
	h.allowInline = allowInline
	return "trace-token", nil
}

func (h *Host) RemoveObjectTrace(tok engine.TraceToken) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.traceCb = nil
	h.traceInstalled = false
	return nil
}

func (h *Host) EnsureExecTraces(fileLine, procEntry bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fileLineArmed = fileLine
	h.procEntryArmed = procEntry
	return nil
}

func (h *Host) FrameInfo(level int) (engine.FrameInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Frames) == 0 {
		return engine.FrameInfo{Level: level}, nil
	}
	if level < 0 || level >= len(h.Frames) {
		f := h.Frames[len(h.Frames)-1]
		f.Level = len(h.Frames) - 1
		return f, nil
	}
	f := h.Frames[level]
	f.Level = level
	return f, nil
}

func (h *Host) CallDepth() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Frames), nil
}

func (h *Host) ResolveProcName(tok engine.CommandToken) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ProcNames[tok]
}

func (h *Host) EvalCondition(level int, expr string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ConditionErr != nil {
		return false, h.ConditionErr
	}
	if v, ok := h.ConditionResults[expr]; ok {
		return v, nil
	}
	return true, nil
}

func (h *Host) SubstituteTemplate(level int, tmpl string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.TemplateErr != nil {
		return "", h.TemplateErr
	}
	if v, ok := h.TemplateResults[tmpl]; ok {
		return v, nil
	}
	return tmpl, nil
}

func (h *Host) InjectCommand(level int, cmd []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.InjectedCmd[level] = cmd
	return nil
}

func (h *Host) InfoLocals(level int) (map[string]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[string]string{}
	for k, v := range h.Locals[level] {
		out[k] = v
	}
	return out, nil
}

func (h *Host) InfoArgs(level int, proc string) (map[string]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[string]string{}
	for k, v := range h.Args[level] {
		out[k] = v
	}
	return out, nil
}

func (h *Host) NormalizePath(path string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.NormalizedPaths[path]; ok {
		return v, nil
	}
	return path, nil
}

func (h *Host) PathEqual(a, b string) bool {
	return a == b
}

func (h *Host) PublishGlobal(name string, event engine.StopEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	ev := event
	switch name {
	case "stopped":
		h.Stopped = &ev
	case "last_stop":
		h.LastStop = &ev
	}
	return nil
}

func (h *Host) PublishGlobalScript(name string, event engine.StopEvent) error {
	return h.PublishGlobal(name, event)
}

func (h *Host) UnsetVar(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if name == "resume" {
		h.resumeSet = false
		h.resumeCh = make(chan struct{})
	}
	return nil
}

func (h *Host) Wait(ctx context.Context, name string) error {
	h.mu.Lock()
	ch := h.resumeCh
	h.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Host) WriteStdout(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Stdout.WriteString(s)
}

func (h *Host) BackgroundError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.BackgroundErrors = append(h.BackgroundErrors, err)
}
