package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/woxQAQ/onu-runtime/internal/abi"
	"github.com/woxQAQ/onu-runtime/pkg/text"
)

// NewCallCommand creates the call command.
func NewCallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call <symbol> [args...]",
		Short: "Call one runtime symbol",
		Long: `Call a runtime symbol directly, without a program. Integer arguments are
parsed as base-10; Text arguments are taken as given. Integer and Text
results are printed on their own line.`,
		Example: `  onurt call joined-with "foo" "bar"
  onurt call char-at hello 1
  onurt call broadcasts "hi"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			sym, ok := abi.Lookup(args[0])
			if !ok {
				return &abi.UnknownSymbolError{Name: args[0]}
			}

			values, err := parseArgs(sym, args[1:])
			if err != nil {
				return err
			}

			result, err := abi.NewNatives(out, GetLogger(ctx)).Call(sym.Name, values...)
			if err != nil {
				return err
			}
			defer result.Release()

			switch result.Kind() {
			case abi.KindInteger:
				_, _ = fmt.Fprintln(out, result.Int())
			case abi.KindText:
				_, _ = fmt.Fprintln(out, result.Text().String())
			}
			return nil
		},
	}
}

func parseArgs(sym abi.Symbol, args []string) ([]abi.Value, error) {
	if len(args) != len(sym.Params) {
		return nil, &abi.ArityError{Name: sym.Name, Want: len(sym.Params), Got: len(args)}
	}

	values := make([]abi.Value, len(args))
	for i, kind := range sym.Params {
		switch kind {
		case abi.KindInteger:
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("'%s' argument %d: %w", sym.Name, i, err)
			}
			values[i] = abi.Int(n)
		default:
			values[i] = abi.Str(text.FromString(args[i]))
		}
	}
	return values, nil
}
