package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saxyguy81/tdb/engine"
)

// configCmd is the `config` subcommand: with no flags given, it reports
// the current configuration; any flag present updates that field and
// recomputes tracing.
func (d *Dispatch) configCmd(result *string, retErr *error) *cobra.Command {
	var (
		perfAllowInline bool
		pathNormalize   bool
		safeEval        bool
	)
	c := &cobra.Command{
		Use:  "config",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := engine.ConfigPatch{}
			if cmd.Flags().Changed("perf-allow-inline") {
				v := perfAllowInline
				patch.PerfAllowInline = &v
			}
			if cmd.Flags().Changed("path-normalize") {
				v := pathNormalize
				patch.PathNormalize = &v
			}
			if cmd.Flags().Changed("safe-eval") {
				v := safeEval
				patch.SafeEval = &v
			}
			if err := d.eng.Configure(patch); err != nil {
				*retErr = err
				return nil
			}
			cfg := d.eng.ConfigSnapshot()
			*result = fmt.Sprintf("perf_allow_inline=%t path_normalize=%t safe_eval=%t",
				cfg.PerfAllowInline, cfg.PathNormalize, cfg.SafeEval)
			return nil
		},
	}
	c.Flags().BoolVar(&perfAllowInline, "perf-allow-inline", false, "allow inline compilation of traced commands")
	c.Flags().BoolVar(&pathNormalize, "path-normalize", false, "normalize file paths on breakpoint insertion")
	c.Flags().BoolVar(&safeEval, "safe-eval", false, "stored safe-eval flag; condition/log evaluation does not read it")
	return c
}
