package engine

import "testing"

func TestRegistryAddAssignsIncreasingIDs(t *testing.T) {
	r := NewRegistry(nil, false)
	bp1, err := r.Add(Spec{ProcName: "::a"})
	if err != nil {
		t.Fatal(err)
	}
	bp2, err := r.Add(Spec{ProcName: "::b"})
	if err != nil {
		t.Fatal(err)
	}
	if bp1.ID != 1 || bp2.ID != 2 {
		t.Fatalf("expected ids 1, 2, got %d, %d", bp1.ID, bp2.ID)
	}
	if r.Len() != 2 {
		t.Fatalf("expected len 2, got %d", r.Len())
	}
}

func TestRegistryRemoveRoundTrip(t *testing.T) {
	r := NewRegistry(nil, false)
	before := snapshot(r)

	bp, err := r.Add(Spec{ProcName: "::a"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Remove(bp.ID); err != nil {
		t.Fatal(err)
	}

	after := snapshot(r)
	// Ids are never reused, so the id counter stays advanced past the
	// removed record; everything else returns to its pre-add state.
	before.nextID = bp.ID + 1
	if before != after {
		t.Fatalf("registry state not restored: before=%+v after=%+v", before, after)
	}
}

func TestRegistryRemoveUnknown(t *testing.T) {
	r := NewRegistry(nil, false)
	if _, err := r.Remove(99); err == nil {
		t.Fatal("expected error removing unknown id")
	} else if e := err.(*Error); e.Detail != DetailUnknown {
		t.Fatalf("expected UNKNOWN, got %v", e.Detail)
	}
}

func TestRegistryClearResetsIDCounter(t *testing.T) {
	r := NewRegistry(nil, false)
	if _, err := r.Add(Spec{ProcName: "::a"}); err != nil {
		t.Fatal(err)
	}
	r.Clear()
	bp, err := r.Add(Spec{ProcName: "::b"})
	if err != nil {
		t.Fatal(err)
	}
	if bp.ID != 1 {
		t.Fatalf("expected id to reset to 1 after clear, got %d", bp.ID)
	}
}

func TestRegistryCountsSumToLen(t *testing.T) {
	r := NewRegistry(nil, false)
	line := 3
	mustAdd(t, r, Spec{ProcName: "::a"})
	mustAdd(t, r, Spec{FilePath: "/x.tcl", Line: &line})
	mustAdd(t, r, Spec{ObjectPattern: "o*", MethodName: "m"})

	s := snapshot(r)
	sum := s.fileCount + s.procCount + s.methodCount
	if sum != s.len {
		t.Fatalf("derived counts don't sum to registry length: sum=%d len=%d", sum, s.len)
	}
}

func TestRegistryListSortedByID(t *testing.T) {
	r := NewRegistry(nil, false)
	mustAdd(t, r, Spec{ProcName: "::c"})
	mustAdd(t, r, Spec{ProcName: "::a"})
	mustAdd(t, r, Spec{ProcName: "::b"})

	list := r.List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatalf("list not sorted by id: %+v", list)
		}
	}
}

func mustAdd(t *testing.T, r *Registry, spec Spec) *Breakpoint {
	t.Helper()
	bp, err := r.Add(spec)
	if err != nil {
		t.Fatal(err)
	}
	return bp
}

type registrySnapshot struct {
	len         int
	nextID      int
	fileCount   int
	procCount   int
	methodCount int
}

func snapshot(r *Registry) registrySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return registrySnapshot{
		len:         len(r.byID),
		nextID:      r.nextID,
		fileCount:   r.fileCount,
		procCount:   r.procCount,
		methodCount: r.methodCount,
	}
}
