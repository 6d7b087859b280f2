package engine

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Well-known global variable names published to the host.
const (
	varStopped  = "stopped"
	varLastStop = "last_stop"
	varResume   = "resume"
)

// StopEvent is the record published to the `stopped` and `last_stop`
// globals whenever execution suspends. Locals is only populated by
// PauseNow.
type StopEvent struct {
	Event  string
	Reason string
	File   string
	Line   int
	Type   string
	Proc   string
	Cmd    []string
	Level  int
	Locals map[string]string
}

// setStopEvent replaces lastStop and publishes event to the host's
// `stopped` and `last_stop` globals. Both a direct variable-set and a
// script-level assignment are performed so that any variable-write traces
// installed by client scripts fire.
func (e *Engine) setStopEvent(event StopEvent) {
	e.mu.Lock()
	e.lastStop = &event
	e.mu.Unlock()

	if err := e.host.PublishGlobal(varStopped, event); err != nil {
		e.host.BackgroundError(err)
	}
	if err := e.host.PublishGlobalScript(varStopped, event); err != nil {
		e.host.BackgroundError(err)
	}
	if err := e.host.PublishGlobal(varLastStop, event); err != nil {
		e.host.BackgroundError(err)
	}
	if err := e.host.PublishGlobalScript(varLastStop, event); err != nil {
		e.host.BackgroundError(err)
	}
}

// EnterPauseLoop parks on the resume variable, cooperatively yielding to
// the host's event loop, and returns once an external client writes it.
// The resume variable is unset on wake. A wait failure is reported
// as a background error, never returned to the caller, so a misbehaving
// wait primitive cannot hijack the debuggee.
func (e *Engine) EnterPauseLoop(ctx context.Context) {
	e.mu.Lock()
	if e.isPaused {
		e.mu.Unlock()
		return
	}
	e.isPaused = true
	e.mu.Unlock()

	if err := e.host.Wait(ctx, varResume); err != nil {
		logrus.WithError(err).Warn("engine: wait on resume variable failed")
		e.host.BackgroundError(err)
	}

	if err := e.host.UnsetVar(varResume); err != nil {
		logrus.WithError(err).Debug("engine: failed to unset resume variable")
	}

	e.mu.Lock()
	e.isPaused = false
	e.mu.Unlock()
}

// IsPaused reports whether the engine is currently parked in
// EnterPauseLoop.
func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isPaused
}

// LastStopEvent returns the most recently published stop event, or nil if
// none has been published since start (or since the last clear/stop).
func (e *Engine) LastStopEvent() *StopEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStop
}

// PublishStopEvent publishes a pre-built stop event on behalf of an
// external collaborator: the exec-step trace binding that detects a
// file:line match, and the `stopEvent` command in the public command
// surface. It bypasses the condition/hit-count pipeline, which only
// applies to breakpoints the registry itself owns.
func (e *Engine) PublishStopEvent(event StopEvent) {
	e.setStopEvent(event)
}
