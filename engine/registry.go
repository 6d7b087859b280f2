package engine

import (
	"sort"
	"sync"
)

// Registry is the id-keyed breakpoint store: insert, remove, clear, and
// a deterministic sorted listing, plus the derived fast-reject counts the
// dispatcher reads on every command.
type Registry struct {
	mu   sync.Mutex
	host Host

	pathNormalize bool

	byID   map[int]*Breakpoint
	nextID int

	fileCount   int
	procCount   int
	methodCount int
}

// NewRegistry returns an empty registry. host is used to normalize file
// paths on insertion; it may be nil in tests that never register File
// breakpoints.
func NewRegistry(host Host, pathNormalize bool) *Registry {
	return &Registry{
		host:          host,
		pathNormalize: pathNormalize,
		byID:          make(map[int]*Breakpoint),
		nextID:        1,
	}
}

// SetPathNormalize updates the path-normalization flag; it takes effect
// for breakpoints added afterward (existing records are not renormalized
// in place).
func (r *Registry) SetPathNormalize(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pathNormalize = v
}

// Add validates spec, assigns the next id, inserts the record, and
// returns it.
func (r *Registry) Add(spec Spec) (*Breakpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bp, err := buildBreakpoint(r.nextID, spec)
	if err != nil {
		return nil, err
	}

	if bp.Kind == KindFile && r.pathNormalize && r.host != nil {
		norm, err := r.host.NormalizePath(bp.FilePath)
		if err == nil {
			bp.FilePath = norm
		}
	}

	r.byID[bp.ID] = bp
	r.nextID++
	r.adjustCount(bp.Kind, 1)
	return bp, nil
}

// Remove deletes the breakpoint with the given id.
func (r *Registry) Remove(id int) (*Breakpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bp, ok := r.byID[id]
	if !ok {
		return nil, newError(SubsystemBreak, DetailUnknown, "no breakpoint with id %d", id)
	}
	delete(r.byID, id)
	r.adjustCount(bp.Kind, -1)
	return bp, nil
}

// removeUnlocked is Remove's body without acquiring the mutex, for
// callers that already hold it (RemoveOneshot).
func (r *Registry) removeUnlocked(id int) {
	if bp, ok := r.byID[id]; ok {
		delete(r.byID, id)
		r.adjustCount(bp.Kind, -1)
	}
}

// RemoveOneshot removes a breakpoint after it has fired, if it is marked
// oneshot. No-op otherwise.
func (r *Registry) RemoveOneshot(bp *Breakpoint) {
	if bp == nil || !bp.Oneshot {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeUnlocked(bp.ID)
}

// Clear removes all breakpoints and resets the id counter to 1.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[int]*Breakpoint)
	r.nextID = 1
	r.fileCount, r.procCount, r.methodCount = 0, 0, 0
}

// List returns all records sorted by id ascending.
func (r *Registry) List() []*Breakpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Breakpoint, 0, len(r.byID))
	for _, bp := range r.byID {
		out = append(out, bp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the total number of registered breakpoints.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// HaveProc reports whether any Proc breakpoint is registered.
func (r *Registry) HaveProc() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.procCount > 0
}

// HaveFileLine reports whether any File breakpoint is registered.
func (r *Registry) HaveFileLine() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fileCount > 0
}

// MethodCount returns the number of registered Method breakpoints.
func (r *Registry) MethodCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.methodCount
}

func (r *Registry) adjustCount(kind Kind, delta int) {
	switch kind {
	case KindFile:
		r.fileCount += delta
	case KindProc:
		r.procCount += delta
	case KindMethod:
		r.methodCount += delta
	}
}
