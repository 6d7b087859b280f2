package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

// Subsystem identifies which part of the public command surface raised
// an Error.
type Subsystem string

const (
	SubsystemConfig Subsystem = "CONFIG"
	SubsystemStart  Subsystem = "START"
	SubsystemStop   Subsystem = "STOP"
	SubsystemBreak  Subsystem = "BREAK"
	SubsystemPause  Subsystem = "PAUSE"
)

// Detail classifies what went wrong within a subsystem.
type Detail string

const (
	DetailUsage      Detail = "USAGE"
	DetailOption     Detail = "OPTION"
	DetailValue      Detail = "VALUE"
	DetailTarget     Detail = "TARGET"
	DetailUnknown    Detail = "UNKNOWN"
	DetailSubcommand Detail = "SUBCOMMAND"
)

// Error is a structured user-input error carrying an ("ENGINE",
// SUBSYSTEM, DETAIL) error code. Runtime trace-path failures are
// swallowed or reported through Host.BackgroundError instead, never
// surfaced as an Error.
type Error struct {
	Subsystem Subsystem
	Detail    Detail
	msg       string
}

func newError(sub Subsystem, det Detail, format string, args ...any) *Error {
	return &Error{Subsystem: sub, Detail: det, msg: errors.Errorf(format, args...).Error()}
}

// NewError builds a structured Error for callers outside the engine
// package, such as the command surface's option-parsing layer, that need
// to raise the same ("ENGINE", SUBSYSTEM, DETAIL) codes.
func NewError(sub Subsystem, det Detail, format string, args ...any) *Error {
	return newError(sub, det, format, args...)
}

func (e *Error) Error() string {
	return fmt.Sprintf("ENGINE/%s/%s: %s", e.Subsystem, e.Detail, e.msg)
}

// Code returns the three-part error code.
func (e *Error) Code() (string, string, string) {
	return "ENGINE", string(e.Subsystem), string(e.Detail)
}
