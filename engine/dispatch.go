package engine

import (
	"context"

	"github.com/sirupsen/logrus"
)

// onObjectTrace is the object-trace callback installed with the host when
// Proc or Method breakpoints are registered. Proc breakpoints only do
// fast-reject counting here; their pause is delegated to the exec-step
// trace (via MatchProc) so conditions evaluate in the callee's own frame.
func (e *Engine) onObjectTrace(tok CommandToken, objv []string) error {
	e.mu.Lock()
	e.stats.TraceHits++
	paused := e.isPaused
	e.mu.Unlock()

	if paused {
		return nil
	}
	if len(objv) == 0 {
		return nil
	}

	if e.registry.HaveProc() {
		resolved := e.host.ResolveProcName(tok)
		matched := false
		for _, bp := range e.registry.List() {
			if bp.Kind != KindProc {
				continue
			}
			if bp.matchesProcName(resolved) {
				matched = true
				break
			}
		}
		if !matched {
			e.mu.Lock()
			e.stats.ProcFastRejects++
			e.mu.Unlock()
		}
	}

	stoppedScanning := false
	if e.registry.MethodCount() > 0 && len(objv) >= 2 {
		obj, sel := objv[0], objv[1]
		for _, bp := range e.registry.List() {
			if bp.Kind != KindMethod {
				continue
			}
			if !bp.matchesObject(obj) || bp.MethodName != sel {
				continue
			}
			paused, err := e.evaluateAt(-1, objv, bp)
			if err != nil {
				logrus.WithError(err).Debug("engine: method breakpoint evaluation failed")
			}
			if paused {
				stoppedScanning = true
				break
			}
		}
	}

	if !stoppedScanning && e.registry.HaveFileLine() {
		e.mu.Lock()
		e.stats.FileFastRejects++
		e.mu.Unlock()
	}

	return nil
}

// MatchProc reports the first Proc breakpoint matching resolved, for use
// by the external exec-step trace.
func (e *Engine) MatchProc(resolved string) (*Breakpoint, bool) {
	for _, bp := range e.registry.List() {
		if bp.Kind == KindProc && bp.matchesProcName(resolved) {
			return bp, true
		}
	}
	return nil, false
}

// MatchFileLine reports whether some File breakpoint has an identical
// normalized path and line. The pause itself is driven by the exec-step
// trace, which publishes a pre-built event via PublishStopEvent.
func (e *Engine) MatchFileLine(file string, line int) (*Breakpoint, bool) {
	cfg := e.ConfigSnapshot()
	if cfg.PathNormalize {
		if norm, err := e.host.NormalizePath(file); err == nil {
			file = norm
		}
	}
	for _, bp := range e.registry.List() {
		if bp.Kind != KindFile || bp.Line != line {
			continue
		}
		if cfg.PathNormalize {
			if e.host.PathEqual(bp.FilePath, file) {
				return bp, true
			}
		} else if bp.FilePath == file {
			return bp, true
		}
	}
	return nil, false
}

// Evaluate runs the shared condition/hit-count/log/oneshot/pause pipeline
// against bp in the frame at level, for the in-callback Method path and
// the two exec-step-delegated Proc/File paths. cmd is the full invoked
// command (objv) to inject as $cmd. When the breakpoint's predicates pass
// and it is not log-only, Evaluate parks the caller until resumed.
func (e *Engine) Evaluate(level int, cmd []string, bp *Breakpoint) error {
	_, err := e.evaluateAt(level, cmd, bp)
	return err
}

// evaluateAt is Evaluate's implementation; the returned bool reports
// whether this call resulted in a pause, so the Method-path scanning loop
// in onObjectTrace knows to stop scanning. First match wins for pause;
// log-only breakpoints emit their message and let the scan continue.
func (e *Engine) evaluateAt(level int, cmd []string, bp *Breakpoint) (bool, error) {
	e.mu.Lock()
	bp.Hits++
	hits := bp.Hits
	e.stats.FrameLookups++
	e.mu.Unlock()

	frame, err := e.host.FrameInfo(level)
	if err != nil {
		logrus.WithError(err).Debug("engine: frame_info failed during evaluation")
		return false, nil
	}
	l := frame.Level

	if err := e.host.InjectCommand(l, cmd); err != nil {
		logrus.WithError(err).Debug("engine: failed to inject $cmd")
	}

	if bp.Condition != "" {
		ok, err := e.host.EvalCondition(l, bp.Condition)
		if err != nil {
			logrus.WithError(err).Debug("engine: condition evaluation failed, treating as false")
			return false, nil
		}
		if !ok {
			return false, nil
		}
	}

	if bp.HitSpec != "" && !HitSpecOK(bp.HitSpec, hits) {
		return false, nil
	}

	if bp.LogMessage != "" {
		text, err := e.host.SubstituteTemplate(l, bp.LogMessage)
		if err != nil {
			logrus.WithError(err).Debug("engine: log template substitution failed")
		} else {
			e.host.WriteStdout(text)
		}
		if bp.Oneshot {
			e.registry.RemoveOneshot(bp)
			if err := e.recomputeTracing(); err != nil {
				logrus.WithError(err).Debug("engine: failed to recompute tracing after oneshot removal")
			}
		}
		return false, nil
	}

	event := StopEvent{
		Event:  "stopped",
		Reason: "breakpoint",
		File:   frame.File,
		Line:   frame.Line,
		Type:   frame.Type,
		Proc:   frame.Proc,
		Cmd:    cmd,
		Level:  l,
	}
	if bp.Kind == KindProc && event.Proc == "" {
		event.Proc = bp.ProcName
	}
	e.setStopEvent(event)
	if bp.Oneshot {
		e.registry.RemoveOneshot(bp)
		if err := e.recomputeTracing(); err != nil {
			logrus.WithError(err).Debug("engine: failed to recompute tracing after oneshot removal")
		}
	}
	e.EnterPauseLoop(context.Background())
	return true, nil
}
