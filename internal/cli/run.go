package cli

import (
	"github.com/spf13/cobra"
	"github.com/woxQAQ/onu-runtime/internal/host"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var entry string

	cmd := &cobra.Command{
		Use:   "run <file.wasm|program-dir>",
		Short: "Run an Onu program",
		Long: `Run a compiled Onu program.

The target is either a bare .wasm module or a program directory holding a
manifest.yaml. The program starts at _start (or main) unless --entry names
another export. Its broadcasts go to standard output; a non-zero exit
status becomes onurt's exit status.`,
		Example: `  # Run a module
  onurt run hello.wasm

  # Run a program bundle
  onurt run ./programs/hello

  # Start at a different export
  onurt run hello.wasm --entry demo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			h, err := host.New(ctx, GetConfig(ctx), GetLogger(ctx), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			return h.Run(ctx, args[0], entry)
		},
	}

	cmd.Flags().StringVar(&entry, "entry", "", "export to start at (default _start, then main)")

	return cmd
}
