package engine_test

import (
	"testing"
	"time"

	"github.com/saxyguy81/tdb/engine"
	"github.com/saxyguy81/tdb/internal/testhost"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestProcBreakpointTrip(t *testing.T) {
	host := testhost.New()
	eng := engine.New(host)

	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	bp, err := eng.BreakAdd(engine.Spec{ProcName: "::foo"})
	if err != nil {
		t.Fatal(err)
	}
	if bp.ID != 1 {
		t.Fatalf("expected id 1, got %d", bp.ID)
	}
	if !host.TraceInstalled() {
		t.Fatal("expected object trace to be installed once a proc breakpoint exists")
	}

	host.PushFrame(engine.FrameInfo{Type: "proc", Proc: "::foo", Level: 0})
	matched, ok := eng.MatchProc("::foo")
	if !ok {
		t.Fatal("expected ::foo to match")
	}

	done := make(chan struct{})
	go func() {
		_ = eng.Evaluate(0, []string{"foo"}, matched)
		close(done)
	}()

	waitFor(t, time.Second, func() bool { return host.Stopped != nil })
	ev := host.Stopped
	if ev.Reason != "breakpoint" || ev.Proc != "::foo" || ev.Event != "stopped" {
		t.Fatalf("unexpected stop event: %+v", ev)
	}

	host.SetResume()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("evaluate did not unblock after resume was set")
	}
	if eng.IsPaused() {
		t.Fatal("expected engine to no longer be paused after resume")
	}
}

func TestConditionalHit(t *testing.T) {
	host := testhost.New()
	host.ConditionResults = map[string]bool{"$x > 10": false}
	eng := engine.New(host)
	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	bp, err := eng.BreakAdd(engine.Spec{ProcName: "::bar", Condition: "$x > 10"})
	if err != nil {
		t.Fatal(err)
	}

	host.PushFrame(engine.FrameInfo{Proc: "::bar", Level: 0})
	if err := eng.Evaluate(0, []string{"bar", "3"}, bp); err != nil {
		t.Fatal(err)
	}
	if bp.Hits != 1 {
		t.Fatalf("expected hits == 1, got %d", bp.Hits)
	}
	if host.Stopped != nil {
		t.Fatal("expected no pause on failing condition")
	}

	host.ConditionResults["$x > 10"] = true
	done := make(chan struct{})
	go func() {
		_ = eng.Evaluate(0, []string{"bar", "20"}, bp)
		close(done)
	}()
	waitFor(t, time.Second, func() bool { return host.Stopped != nil })
	if bp.Hits != 2 {
		t.Fatalf("expected hits == 2, got %d", bp.Hits)
	}
	host.SetResume()
	<-done
}

func TestHitCountEqualsThree(t *testing.T) {
	host := testhost.New()
	eng := engine.New(host)
	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	bp, err := eng.BreakAdd(engine.Spec{ProcName: "::p", HitSpec: "==3"})
	if err != nil {
		t.Fatal(err)
	}
	host.PushFrame(engine.FrameInfo{Proc: "::p", Level: 0})

	if err := eng.Evaluate(0, []string{"p"}, bp); err != nil {
		t.Fatal(err)
	}
	if host.Stopped != nil {
		t.Fatal("expected no pause on first call")
	}
	if err := eng.Evaluate(0, []string{"p"}, bp); err != nil {
		t.Fatal(err)
	}
	if host.Stopped != nil {
		t.Fatal("expected no pause on second call")
	}

	done := make(chan struct{})
	go func() {
		_ = eng.Evaluate(0, []string{"p"}, bp)
		close(done)
	}()
	waitFor(t, time.Second, func() bool { return host.Stopped != nil })
	if bp.Hits != 3 {
		t.Fatalf("expected hits == 3, got %d", bp.Hits)
	}
	host.SetResume()
	<-done
}

func TestOneshotRemovedAfterFire(t *testing.T) {
	host := testhost.New()
	eng := engine.New(host)
	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	bp, err := eng.BreakAdd(engine.Spec{ProcName: "::q", Oneshot: true})
	if err != nil {
		t.Fatal(err)
	}
	host.PushFrame(engine.FrameInfo{Proc: "::q", Level: 0})

	done := make(chan struct{})
	go func() {
		_ = eng.Evaluate(0, []string{"q"}, bp)
		close(done)
	}()
	waitFor(t, time.Second, func() bool { return host.Stopped != nil })
	host.SetResume()
	<-done

	if len(eng.BreakList()) != 0 {
		t.Fatalf("expected break ls to be empty after oneshot fires, got %+v", eng.BreakList())
	}
	if host.TraceInstalled() {
		t.Fatal("expected object trace to be uninstalled once no breakpoints remain")
	}
}

func TestLogOnlyBreakpointDoesNotPause(t *testing.T) {
	host := testhost.New()
	host.TemplateResults = map[string]string{"x=${x}": "x=5"}
	eng := engine.New(host)
	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.BreakAdd(engine.Spec{ObjectPattern: "obj1", MethodName: "foo", LogMessage: "x=${x}"}); err != nil {
		t.Fatal(err)
	}

	host.PushFrame(engine.FrameInfo{Level: 0})
	if err := host.Fire("tok", []string{"obj1", "foo"}); err != nil {
		t.Fatal(err)
	}

	if host.Stopped != nil {
		t.Fatal("log-only breakpoints must not set stopped")
	}
	if host.Stdout.String() != "x=5" {
		t.Fatalf("expected stdout to receive x=5, got %q", host.Stdout.String())
	}
	if eng.IsPaused() {
		t.Fatal("log-only breakpoints must not pause")
	}
}

func TestMatchFileLineHelper(t *testing.T) {
	host := testhost.New()
	eng := engine.New(host)
	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	line := 7
	if _, err := eng.BreakAdd(engine.Spec{FilePath: "/abs/a.tcl", Line: &line}); err != nil {
		t.Fatal(err)
	}

	if _, ok := eng.MatchFileLine("/abs/a.tcl", 7); !ok {
		t.Fatal("expected match for /abs/a.tcl:7")
	}
	if _, ok := eng.MatchFileLine("/abs/a.tcl", 8); ok {
		t.Fatal("expected no match for /abs/a.tcl:8")
	}
	if _, ok := eng.MatchFileLine("/other", 7); ok {
		t.Fatal("expected no match for /other:7")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	host := testhost.New()
	eng := engine.New(host)

	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(); err != nil {
		t.Fatal(err)
	}
	if !eng.Started() {
		t.Fatal("expected engine to be started")
	}

	if _, err := eng.BreakAdd(engine.Spec{ProcName: "::a"}); err != nil {
		t.Fatal(err)
	}

	if err := eng.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := eng.Stop(); err != nil {
		t.Fatal(err)
	}
	if eng.Started() {
		t.Fatal("expected engine to be stopped")
	}
	if len(eng.BreakList()) != 0 {
		t.Fatal("expected registry to be empty after stop")
	}
	if eng.LastStopEvent() != nil {
		t.Fatal("expected last stop event to be cleared after stop")
	}
	if host.TraceInstalled() {
		t.Fatal("expected trace token to be released after stop")
	}
}

func TestPauseNowDoesNotBlock(t *testing.T) {
	host := testhost.New()
	eng := engine.New(host)
	host.PushFrame(engine.FrameInfo{Proc: "::top", File: "/a.tcl", Line: 3, Level: 0})
	host.Locals[0] = map[string]string{"y": "1"}
	host.Args[0] = map[string]string{"x": "5"}

	done := make(chan error, 1)
	go func() { done <- eng.PauseNow("") }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("pauseNow must not block")
	}

	ev := eng.LastStopEvent()
	if ev == nil {
		t.Fatal("expected a stop event to be published")
	}
	if ev.Reason != "manual" || ev.Locals["x"] != "5" || ev.Locals["y"] != "1" {
		t.Fatalf("unexpected stop event: %+v", ev)
	}
}

func TestConfigureUpdatesOnlyChangedFields(t *testing.T) {
	host := testhost.New()
	eng := engine.New(host)
	before := eng.ConfigSnapshot()

	if before.SafeEval {
		t.Fatal("expected SafeEval to default to false")
	}
	trueVal := true
	if err := eng.Configure(engine.ConfigPatch{SafeEval: &trueVal}); err != nil {
		t.Fatal(err)
	}
	after := eng.ConfigSnapshot()
	if !after.SafeEval {
		t.Fatalf("expected SafeEval to be updated, got %+v", after)
	}
	if after.PerfAllowInline != before.PerfAllowInline || after.PathNormalize != before.PathNormalize {
		t.Fatalf("unrelated config fields changed: before=%+v after=%+v", before, after)
	}
}
