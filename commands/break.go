package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saxyguy81/tdb/engine"
)

// breakCmd is the `break {add,rm,clear,ls}` subtree.
func (d *Dispatch) breakCmd(result *string, retErr *error) *cobra.Command {
	c := &cobra.Command{
		Use:           "break",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c.AddCommand(
		d.breakAddCmd(result, retErr),
		d.breakRmCmd(result, retErr),
		d.breakClearCmd(result, retErr),
		d.breakLsCmd(result, retErr),
	)
	return c
}

func (d *Dispatch) breakAddCmd(result *string, retErr *error) *cobra.Command {
	var (
		file      string
		line      int
		proc      string
		object    string
		method    string
		condition string
		hitSpec   string
		oneshot   bool
		logMsg    string
	)
	c := &cobra.Command{
		Use:  "add",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := engine.Spec{
				FilePath:      file,
				ProcName:      proc,
				ObjectPattern: object,
				MethodName:    method,
				Condition:     condition,
				HitSpec:       hitSpec,
				Oneshot:       oneshot,
				LogMessage:    logMsg,
			}
			if cmd.Flags().Changed("line") {
				l := line
				spec.Line = &l
			}
			bp, err := d.eng.BreakAdd(spec)
			if err != nil {
				*retErr = err
				return nil
			}
			*result = fmt.Sprintf("%d", bp.ID)
			return nil
		},
	}
	c.Flags().StringVar(&file, "file", "", "source file path for a file:line breakpoint")
	c.Flags().IntVar(&line, "line", 0, "line number for a file:line breakpoint")
	c.Flags().StringVar(&proc, "proc", "", "procedure name for a proc-entry breakpoint")
	c.Flags().StringVar(&object, "object", "", "object name glob for a method breakpoint")
	c.Flags().StringVar(&method, "method", "", "method/selector name for a method breakpoint")
	c.Flags().StringVar(&condition, "condition", "", "boolean expression gating the pause")
	c.Flags().StringVar(&hitSpec, "hitcount", "", "hit-count predicate (==N, >=N, multiple-of(N))")
	c.Flags().BoolVar(&oneshot, "oneshot", false, "remove the breakpoint after it fires")
	c.Flags().StringVar(&logMsg, "log", "", "template logged instead of pausing")
	return c
}

func (d *Dispatch) breakRmCmd(result *string, retErr *error) *cobra.Command {
	return &cobra.Command{
		Use:  "rm <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := parsePositiveInt(args[0])
			if !ok {
				*retErr = engineErrorf(engine.SubsystemBreak, engine.DetailValue, "id must be an integer, got %q", args[0])
				return nil
			}
			if err := d.eng.BreakRemove(id); err != nil {
				*retErr = err
				return nil
			}
			*result = fmt.Sprintf("%d", id)
			return nil
		},
	}
}

func (d *Dispatch) breakClearCmd(result *string, retErr *error) *cobra.Command {
	return &cobra.Command{
		Use:  "clear",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.eng.BreakClear(); err != nil {
				*retErr = err
				return nil
			}
			*result = ""
			return nil
		},
	}
}

func (d *Dispatch) breakLsCmd(result *string, retErr *error) *cobra.Command {
	return &cobra.Command{
		Use:  "ls",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bps := d.eng.BreakList()
			lines := make([]string, 0, len(bps))
			for _, bp := range bps {
				lines = append(lines, formatBreakpoint(bp))
			}
			*result = strings.Join(lines, "\n")
			return nil
		},
	}
}

func formatBreakpoint(bp *engine.Breakpoint) string {
	switch bp.Kind {
	case engine.KindFile:
		return fmt.Sprintf("%d file %s:%d hits=%d", bp.ID, bp.FilePath, bp.Line, bp.Hits)
	case engine.KindProc:
		return fmt.Sprintf("%d proc %s hits=%d", bp.ID, bp.ProcName, bp.Hits)
	case engine.KindMethod:
		return fmt.Sprintf("%d method %s %s hits=%d", bp.ID, bp.ObjectPattern, bp.MethodName, bp.Hits)
	default:
		return fmt.Sprintf("%d unknown", bp.ID)
	}
}
