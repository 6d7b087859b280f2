// Package commands is the thin host-script command binding over the
// debugger engine core: a single text line, such as a client script might
// issue, is split with shell-style quoting rules and dispatched through a
// cobra command tree onto the engine's public surface.
package commands

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/saxyguy81/tdb/engine"
)

// Dispatch binds a single engine instance to the command surface.
type Dispatch struct {
	eng *engine.Engine
}

// New returns a Dispatch bound to eng.
func New(eng *engine.Engine) *Dispatch {
	return &Dispatch{eng: eng}
}

// Execute tokenizes line with shell-style quoting rules and runs it
// against the command tree, returning the command's result text.
func (d *Dispatch) Execute(line string) (string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return "", engineErrorf(engine.SubsystemConfig, engine.DetailUsage, "cannot parse command line: %v", err)
	}
	if len(args) == 0 {
		return "", nil
	}

	var result string
	var retErr error
	root := d.rootCmd(&result, &retErr)
	root.SetArgs(args)
	root.SetOut(new(strings.Builder))
	root.SetErr(new(strings.Builder))
	if err := root.Execute(); err != nil {
		return "", classifyCobraError(args[0], err)
	}
	return result, retErr
}

func (d *Dispatch) rootCmd(result *string, retErr *error) *cobra.Command {
	root := &cobra.Command{
		Use:           "tdb",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(
		d.startCmd(result, retErr),
		d.stopCmd(result, retErr),
		d.configCmd(result, retErr),
		d.breakCmd(result, retErr),
		d.pauseNowCmd(result, retErr),
		d.statsCmd(result, retErr),
		d.matchFilelineCmd(result, retErr),
		d.stopEventCmd(result, retErr),
		d.enterPauseCmd(result, retErr),
	)
	return root
}

func (d *Dispatch) startCmd(result *string, retErr *error) *cobra.Command {
	return &cobra.Command{
		Use:  "start",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.eng.Start(); err != nil {
				*retErr = err
				return nil
			}
			*result = "started"
			return nil
		},
	}
}

func (d *Dispatch) stopCmd(result *string, retErr *error) *cobra.Command {
	return &cobra.Command{
		Use:  "stop",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.eng.Stop(); err != nil {
				*retErr = err
				return nil
			}
			*result = "stopped"
			return nil
		},
	}
}

func (d *Dispatch) pauseNowCmd(result *string, retErr *error) *cobra.Command {
	var reason string
	c := &cobra.Command{
		Use:  "pauseNow",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.eng.PauseNow(reason); err != nil {
				*retErr = err
				return nil
			}
			*result = "paused"
			return nil
		},
	}
	c.Flags().StringVar(&reason, "reason", "", "reason recorded on the stop event")
	return c
}

func (d *Dispatch) statsCmd(result *string, retErr *error) *cobra.Command {
	return &cobra.Command{
		Use:  "stats",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := d.eng.StatsSnapshot()
			*result = fmt.Sprintf(
				"trace_hits=%d proc_fast_rejects=%d file_fast_rejects=%d frame_lookups=%d",
				s.TraceHits, s.ProcFastRejects, s.FileFastRejects, s.FrameLookups,
			)
			return nil
		},
	}
}

func (d *Dispatch) matchFilelineCmd(result *string, retErr *error) *cobra.Command {
	return &cobra.Command{
		Use:  "matchFileline <file> <line>",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, ok := parsePositiveInt(args[1])
			if !ok {
				*retErr = engineErrorf(engine.SubsystemBreak, engine.DetailValue, "line must be an integer, got %q", args[1])
				return nil
			}
			if _, ok := d.eng.MatchFileLine(args[0], line); ok {
				*result = "1"
			} else {
				*result = "0"
			}
			return nil
		},
	}
}

// stopEventCmd lets an external collaborator (the exec-step trace
// binding, for a file:line match) publish a pre-built event directly,
// bypassing the condition/hit-count/log pipeline. Any trailing
// positional arguments are taken as the invoked command words (the
// event's Cmd field).
func (d *Dispatch) stopEventCmd(result *string, retErr *error) *cobra.Command {
	var reason, file, typ, proc string
	var line, level int
	c := &cobra.Command{
		Use:  "stopEvent [cmd...]",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d.eng.PublishStopEvent(engine.StopEvent{
				Event:  "stopped",
				Reason: reason,
				File:   file,
				Line:   line,
				Type:   typ,
				Proc:   proc,
				Cmd:    args,
				Level:  level,
			})
			*result = "stopped"
			return nil
		},
	}
	c.Flags().StringVar(&reason, "reason", "", "stop reason")
	c.Flags().StringVar(&file, "file", "", "source file of the stop location")
	c.Flags().IntVar(&line, "line", -1, "source line of the stop location")
	c.Flags().StringVar(&typ, "type", "", "frame type reported by the host")
	c.Flags().StringVar(&proc, "proc", "", "fully qualified procedure name")
	c.Flags().IntVar(&level, "level", -1, "call-stack level of the stop")
	return c
}

func (d *Dispatch) enterPauseCmd(result *string, retErr *error) *cobra.Command {
	return &cobra.Command{
		Use:  "enterPause",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d.eng.EnterPauseLoop(cmd.Context())
			*result = "resumed"
			return nil
		},
	}
}

// classifyCobraError maps cobra/pflag parse failures onto the structured
// error taxonomy. The flag libraries report failures only as message
// text, so the classification sniffs their known prefixes.
func classifyCobraError(topCmd string, err error) error {
	sub := subsystemFor(topCmd)
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "unknown flag:"), strings.HasPrefix(msg, "unknown shorthand flag:"):
		return engineErrorf(sub, engine.DetailOption, "%s", msg)
	case strings.HasPrefix(msg, "unknown command"):
		return engineErrorf(sub, engine.DetailSubcommand, "%s", msg)
	case strings.Contains(msg, "invalid argument"):
		return engineErrorf(sub, engine.DetailValue, "%s", msg)
	default:
		return engineErrorf(sub, engine.DetailUsage, "%s", msg)
	}
}

func subsystemFor(topCmd string) engine.Subsystem {
	switch topCmd {
	case "break":
		return engine.SubsystemBreak
	case "pauseNow", "enterPause", "stopEvent":
		return engine.SubsystemPause
	case "start":
		return engine.SubsystemStart
	case "stop":
		return engine.SubsystemStop
	default:
		return engine.SubsystemConfig
	}
}

func engineErrorf(sub engine.Subsystem, det engine.Detail, format string, args ...any) *engine.Error {
	return engine.NewError(sub, det, format, args...)
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
