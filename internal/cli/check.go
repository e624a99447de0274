package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/woxQAQ/onu-runtime/internal/host"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.wasm>",
		Short: "Verify a module links against the runtime",
		Long: `Compile a module and verify that every function it imports from the
runtime module is a known symbol with the right signature. Nothing runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			h, err := host.New(ctx, GetConfig(ctx), GetLogger(ctx), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			compiled, err := h.Check(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s: ok\n", args[0])
			if len(compiled.Imports) == 0 {
				_, _ = fmt.Fprintln(out, "imports no runtime symbols")
				return nil
			}
			_, _ = fmt.Fprintf(out, "imports %d runtime symbols: %s\n",
				len(compiled.Imports), strings.Join(compiled.Imports, ", "))
			return nil
		},
	}
}
