package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/woxQAQ/onu-runtime/internal/host"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List program bundles",
		Long: `Discover the program bundles under the configured program_paths and
list the ones that load, with the runtime symbols each imports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)

			h, err := host.New(ctx, cfg, GetLogger(ctx), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			programs, err := h.Discover(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(programs) == 0 {
				_, _ = fmt.Fprintf(out, "No programs found in %s\n", strings.Join(cfg.ProgramPaths, ", "))
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Version", "Entry", "Imports", "Path"})
			for _, p := range programs {
				t.AppendRow(table.Row{
					p.Name(),
					p.Version(),
					p.Entry(),
					strings.Join(p.Imports(), ", "),
					p.Manifest.Dir(),
				})
			}
			return renderTable(t, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatTable, "output format (table|markdown|csv)")

	return cmd
}
