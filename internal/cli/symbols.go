package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/woxQAQ/onu-runtime/internal/abi"
	"github.com/woxQAQ/onu-runtime/internal/wasm"
)

// Table output formats.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// NewSymbolsCommand creates the symbols command.
func NewSymbolsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "List the runtime symbols",
		Long: `List every symbol the runtime provides with its Onu signature and the
wasm types a guest must import it with.`,
		Example: `  onurt symbols
  onurt symbols --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return renderSymbols(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatTable, "output format (table|markdown|csv)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatTable, FormatMarkdown, FormatCSV}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func renderSymbols(w io.Writer, format string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Symbol", "Signature", "Wasm", "Allocates", "Description"})

	for _, sym := range abi.Symbols() {
		params, results := wasm.WasmSignature(sym)
		allocates := ""
		if sym.Produces {
			allocates = "yes"
		}
		t.AppendRow(table.Row{sym.Name, sym.Signature(), wasm.FormatSignature(params, results), allocates, sym.Doc})
	}

	return renderTable(t, format)
}

// renderTable writes t in the requested format.
func renderTable(t table.Writer, format string) error {
	switch format {
	case FormatTable, "":
		t.Render()
	case FormatMarkdown, "md":
		t.RenderMarkdown()
	case FormatCSV:
		t.RenderCSV()
	default:
		return fmt.Errorf("unknown format %q (want table, markdown or csv)", format)
	}
	return nil
}
