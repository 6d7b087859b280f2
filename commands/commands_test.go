package commands_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saxyguy81/tdb/commands"
	"github.com/saxyguy81/tdb/engine"
	"github.com/saxyguy81/tdb/internal/testhost"
)

func newDispatch() (*commands.Dispatch, *testhost.Host, *engine.Engine) {
	host := testhost.New()
	eng := engine.New(host)
	return commands.New(eng), host, eng
}

func TestStartStopCommands(t *testing.T) {
	d, _, eng := newDispatch()

	out, err := d.Execute("start")
	require.NoError(t, err)
	require.Equal(t, "started", out)
	require.True(t, eng.Started())

	out, err = d.Execute("stop")
	require.NoError(t, err)
	require.Equal(t, "stopped", out)
	require.False(t, eng.Started())
}

func TestBreakAddListRemove(t *testing.T) {
	d, _, _ := newDispatch()
	_, err := d.Execute("start")
	require.NoError(t, err)

	out, err := d.Execute(`break add --proc ::foo`)
	require.NoError(t, err)
	require.Equal(t, "1", out)

	out, err = d.Execute("break ls")
	require.NoError(t, err)
	require.Contains(t, out, "::foo")

	_, err = d.Execute("break rm 1")
	require.NoError(t, err)

	out, err = d.Execute("break ls")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestBreakAddConflictingTargetsReturnsEngineError(t *testing.T) {
	d, _, _ := newDispatch()
	_, err := d.Execute("start")
	require.NoError(t, err)

	_, err = d.Execute(`break add --proc ::foo --file /a.tcl --line 3`)
	require.Error(t, err)
	ee, ok := err.(*engine.Error)
	require.Truef(t, ok, "expected *engine.Error, got %T", err)
	require.Equal(t, engine.DetailTarget, ee.Detail)
}

func TestUnknownFlagReturnsOptionError(t *testing.T) {
	d, _, _ := newDispatch()
	_, err := d.Execute(`break add --bogus 1`)
	require.Error(t, err)
	ee, ok := err.(*engine.Error)
	require.Truef(t, ok, "expected *engine.Error, got %T", err)
	require.Equal(t, engine.DetailOption, ee.Detail)
}

func TestBadLineValueReturnsValueError(t *testing.T) {
	d, _, _ := newDispatch()
	_, err := d.Execute(`break add --file /a.tcl --line notanumber`)
	require.Error(t, err)
	ee, ok := err.(*engine.Error)
	require.Truef(t, ok, "expected *engine.Error, got %T", err)
	require.Equal(t, engine.DetailValue, ee.Detail)
}

func TestConfigRoundTrip(t *testing.T) {
	d, _, _ := newDispatch()
	out, err := d.Execute("config --path-normalize=false")
	require.NoError(t, err)
	require.Contains(t, out, "path_normalize=false")
}

func TestStatsCommand(t *testing.T) {
	d, _, _ := newDispatch()
	out, err := d.Execute("stats")
	require.NoError(t, err)
	require.Contains(t, out, "trace_hits=0")
}

func TestMatchFileline(t *testing.T) {
	d, _, _ := newDispatch()
	_, err := d.Execute("start")
	require.NoError(t, err)
	_, err = d.Execute(`break add --file /abs/a.tcl --line 7`)
	require.NoError(t, err)

	out, err := d.Execute("matchFileline /abs/a.tcl 7")
	require.NoError(t, err)
	require.Equal(t, "1", out)

	out, err = d.Execute("matchFileline /abs/a.tcl 8")
	require.NoError(t, err)
	require.Equal(t, "0", out)
}
