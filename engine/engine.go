package engine

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Config holds the engine's tunable options, set via Configure and read
// back via ConfigSnapshot. New initializes PerfAllowInline and
// PathNormalize to true and SafeEval to false.
type Config struct {
	PerfAllowInline bool
	PathNormalize   bool
	SafeEval        bool
}

// Stats holds the engine's observability counters, reset on every start
// and stop.
type Stats struct {
	TraceHits       int
	ProcFastRejects int
	FileFastRejects int
	FrameLookups    int
}

// Engine is the debugger core: one instance is attached per host
// interpreter, created on first use and torn down at interpreter
// teardown.
type Engine struct {
	host Host

	mu       sync.Mutex
	started  bool
	isPaused bool
	config   Config
	stats    Stats
	lastStop *StopEvent

	traceTok TraceToken
	traceSet bool

	registry *Registry
}

// New attaches a new, idle engine to host. The engine does nothing until
// Start is called.
func New(host Host) *Engine {
	e := &Engine{
		host:   host,
		config: Config{PerfAllowInline: true, PathNormalize: true},
	}
	e.registry = NewRegistry(host, e.config.PathNormalize)
	return e
}

// Start transitions Idle -> Started: resets observability counters and
// recomputes tracing.
func (e *Engine) Start() error {
	e.mu.Lock()
	e.started = true
	e.stats = Stats{}
	e.mu.Unlock()
	return e.recomputeTracing()
}

// Stop transitions Started -> Idle: clears the registry, drops the last
// stop event, unsets the resume variable, resets counters, and
// recomputes tracing (which uninstalls the trace callback).
func (e *Engine) Stop() error {
	e.mu.Lock()
	e.started = false
	e.isPaused = false
	e.lastStop = nil
	e.stats = Stats{}
	e.mu.Unlock()

	e.registry.Clear()

	if err := e.host.UnsetVar(varResume); err != nil {
		logrus.WithError(err).Debug("engine: failed to unset resume variable on stop")
	}

	return e.recomputeTracing()
}

// Started reports whether the engine is in the Started state.
func (e *Engine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// Configure merges non-nil fields of patch into the current config and
// recomputes tracing. A PerfAllowInline change applies the next time the
// trace callback is installed; an already installed trace is kept as is.
func (e *Engine) Configure(patch ConfigPatch) error {
	e.mu.Lock()
	if patch.PerfAllowInline != nil {
		e.config.PerfAllowInline = *patch.PerfAllowInline
	}
	if patch.PathNormalize != nil {
		e.config.PathNormalize = *patch.PathNormalize
		e.registry.SetPathNormalize(e.config.PathNormalize)
	}
	if patch.SafeEval != nil {
		e.config.SafeEval = *patch.SafeEval
	}
	e.mu.Unlock()
	return e.recomputeTracing()
}

// ConfigPatch is the partial-update form Configure accepts; nil fields
// are left unchanged.
type ConfigPatch struct {
	PerfAllowInline *bool
	PathNormalize   *bool
	SafeEval        *bool
}

// ConfigSnapshot returns the current configuration by value.
func (e *Engine) ConfigSnapshot() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// StatsSnapshot returns the current observability counters by value; a
// pure read with no side effects.
func (e *Engine) StatsSnapshot() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// recomputeTracing installs or removes the object-trace callback based
// on whether any Proc or Method breakpoint is registered, and signals
// the host to arm or disarm its own exec-step traces for File/Proc
// breakpoints.
func (e *Engine) recomputeTracing() error {
	e.mu.Lock()
	started := e.started
	allowInline := e.config.PerfAllowInline
	haveTok := e.traceSet
	e.mu.Unlock()

	haveProc := e.registry.HaveProc()
	haveMethod := e.registry.MethodCount() > 0
	haveFileLine := e.registry.HaveFileLine()

	wantInstalled := started && (haveProc || haveMethod)

	if wantInstalled && !haveTok {
		tok, err := e.host.InstallObjectTrace(e.onObjectTrace, allowInline)
		if err != nil {
			return newError(SubsystemStart, DetailUnknown, "failed to install object trace: %v", err)
		}
		e.mu.Lock()
		e.traceTok = tok
		e.traceSet = true
		e.mu.Unlock()
	} else if !wantInstalled && haveTok {
		e.mu.Lock()
		tok := e.traceTok
		e.traceTok = nil
		e.traceSet = false
		e.mu.Unlock()
		if err := e.host.RemoveObjectTrace(tok); err != nil {
			logrus.WithError(err).Debug("engine: failed to remove object trace")
		}
	}

	if err := e.host.EnsureExecTraces(started && haveFileLine, started && haveProc); err != nil {
		logrus.WithError(err).Debug("engine: failed to update exec-step traces")
	}
	return nil
}

// PauseNow is the manual, non-blocking pause hook: it captures and
// publishes a stop event but never itself waits. Pausing is driven
// separately via EnterPauseLoop, so PauseNow can serve as a test hook.
func (e *Engine) PauseNow(reason string) error {
	if reason == "" {
		reason = "manual"
	}

	frame, err := e.host.FrameInfo(-1)
	if err != nil {
		return newError(SubsystemPause, DetailUnknown, "failed to capture frame info: %v", err)
	}
	level := frame.Level
	if level < 0 {
		if d, err := e.host.CallDepth(); err == nil {
			level = d
		}
	}

	locals, err := e.host.InfoLocals(level)
	if err != nil {
		locals = map[string]string{}
	}
	if frame.Proc != "" {
		if args, err := e.host.InfoArgs(level, frame.Proc); err == nil {
			for name, val := range args {
				if _, exists := locals[name]; !exists {
					locals[name] = val
				}
			}
		}
	}

	event := StopEvent{
		Event:  "stopped",
		Reason: reason,
		File:   frame.File,
		Line:   frame.Line,
		Type:   frame.Type,
		Proc:   frame.Proc,
		Cmd:    frame.Cmd,
		Level:  level,
		Locals: locals,
	}
	e.setStopEvent(event)
	return nil
}

// BreakAdd validates and inserts a new breakpoint, recomputing tracing
// afterward.
func (e *Engine) BreakAdd(spec Spec) (*Breakpoint, error) {
	bp, err := e.registry.Add(spec)
	if err != nil {
		return nil, err
	}
	if err := e.recomputeTracing(); err != nil {
		return nil, err
	}
	return bp, nil
}

// BreakRemove deletes a breakpoint by id, recomputing tracing afterward.
func (e *Engine) BreakRemove(id int) error {
	if _, err := e.registry.Remove(id); err != nil {
		return err
	}
	return e.recomputeTracing()
}

// BreakClear removes all breakpoints, recomputing tracing afterward.
func (e *Engine) BreakClear() error {
	e.registry.Clear()
	return e.recomputeTracing()
}

// BreakList returns all breakpoints sorted by id.
func (e *Engine) BreakList() []*Breakpoint {
	return e.registry.List()
}
