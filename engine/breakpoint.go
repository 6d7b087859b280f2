package engine

import "github.com/gobwas/glob"

// Kind tags the target variant of a Breakpoint.
type Kind int

const (
	KindFile Kind = iota + 1
	KindProc
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindProc:
		return "proc"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Breakpoint carries exactly one target kind plus the predicate fields
// common to all kinds. Records are owned by the Registry; the dispatcher
// borrows them and mutates only Hits.
type Breakpoint struct {
	ID   int
	Kind Kind

	// File target.
	FilePath string
	Line     int

	// Proc target.
	ProcName string

	// Method target.
	ObjectPattern string
	MethodName    string
	objectGlob    glob.Glob

	// Common predicate fields.
	Condition  string
	HitSpec    string
	Oneshot    bool
	LogMessage string
	Hits       int
}

// Spec is the set of options accepted by Registry.Add, mirroring the
// `break add` option surface.
type Spec struct {
	FilePath string
	Line     *int

	ProcName string

	ObjectPattern string
	MethodName    string

	Condition  string
	HitSpec    string
	Oneshot    bool
	LogMessage string
}

// buildBreakpoint validates spec and materializes a Breakpoint with the
// given id. Exactly one target kind must be present, and each kind's
// required fields must all be given.
func buildBreakpoint(id int, spec Spec) (*Breakpoint, error) {
	hasFile := spec.FilePath != "" || spec.Line != nil
	hasProc := spec.ProcName != ""
	hasMethod := spec.ObjectPattern != "" || spec.MethodName != ""

	targets := 0
	if hasFile {
		targets++
	}
	if hasProc {
		targets++
	}
	if hasMethod {
		targets++
	}
	switch {
	case targets == 0:
		return nil, newError(SubsystemBreak, DetailTarget, "no breakpoint target specified")
	case targets > 1:
		return nil, newError(SubsystemBreak, DetailTarget, "conflicting breakpoint target options")
	}

	if err := validateHitSpec(spec.HitSpec); err != nil {
		return nil, err
	}

	bp := &Breakpoint{
		ID:         id,
		Condition:  spec.Condition,
		HitSpec:    spec.HitSpec,
		Oneshot:    spec.Oneshot,
		LogMessage: spec.LogMessage,
	}

	switch {
	case hasFile:
		if spec.FilePath == "" || spec.Line == nil {
			return nil, newError(SubsystemBreak, DetailUsage, "file breakpoints require both -file and -line")
		}
		if *spec.Line <= 0 {
			return nil, newError(SubsystemBreak, DetailValue, "line must be > 0, got %d", *spec.Line)
		}
		bp.Kind = KindFile
		bp.FilePath = spec.FilePath
		bp.Line = *spec.Line
	case hasProc:
		bp.Kind = KindProc
		bp.ProcName = spec.ProcName
	case hasMethod:
		if spec.ObjectPattern == "" || spec.MethodName == "" {
			return nil, newError(SubsystemBreak, DetailUsage, "method breakpoints require both -object and -method")
		}
		g, err := glob.Compile(spec.ObjectPattern)
		if err != nil {
			return nil, newError(SubsystemBreak, DetailValue, "invalid object pattern %q: %v", spec.ObjectPattern, err)
		}
		bp.Kind = KindMethod
		bp.ObjectPattern = spec.ObjectPattern
		bp.MethodName = spec.MethodName
		bp.objectGlob = g
	}
	return bp, nil
}

// matchesObject reports whether obj matches this Method breakpoint's
// object pattern.
func (bp *Breakpoint) matchesObject(obj string) bool {
	return bp.objectGlob != nil && bp.objectGlob.Match(obj)
}

// matchesProcName matches a resolved command name against the stored
// proc name: exact byte equality, or a stored "::X" form matching an
// unqualified resolved name by suffix.
func (bp *Breakpoint) matchesProcName(resolved string) bool {
	if bp.Kind != KindProc {
		return false
	}
	if bp.ProcName == resolved {
		return true
	}
	storedQualified := len(bp.ProcName) >= 2 && bp.ProcName[:2] == "::"
	resolvedQualified := len(resolved) >= 2 && resolved[:2] == "::"
	if storedQualified && !resolvedQualified {
		return bp.ProcName[2:] == resolved
	}
	return false
}
