package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/dbc/internal/gen"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	ClientSuffix    string
	ImplementSuffix string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <dir>",
		Short: "List capabilities, operations and hooks of a package",
		Long: `Inspect parses the Go package in <dir> and lists every interface,
the contract holders found for it and which operations each holder hooks.

Example:
  contractgen inspect ./internal/kvstore`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ClientSuffix, "client-suffix", gen.DefaultClientSuffix, "client holder name suffix")
	cmd.Flags().StringVar(&opts.ImplementSuffix, "implement-suffix", gen.DefaultImplementSuffix, "implementation holder name suffix")

	return cmd
}

func runInspect(opts *InspectOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(dir); err != nil {
		return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("package directory not found: %s", dir), ExitCommandError)
	}

	pkg, err := gen.Parse(dir, gen.Options{ClientSuffix: opts.ClientSuffix, ImplementSuffix: opts.ImplementSuffix})
	if err != nil {
		if ferr := formatter.Error(ErrCodeParseFailed, err.Error(), nil); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "inspect failed", err)
	}

	report := gen.Inspect(pkg)
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "package %s\n", report.Package)
	for _, c := range report.Capabilities {
		client, implement := c.Hooks()
		fmt.Fprintf(w, "\n%s\tclient: %s (%d)\timplement: %s (%d)\n",
			c.Name, orNone(c.ClientHolder), client, orNone(c.ImplementHolder), implement)
		for _, op := range c.Operations {
			fmt.Fprintf(w, "  %s\t%s\t\n", op.Signature, hookMarks(op))
		}
	}
	return w.Flush()
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func hookMarks(op gen.OperationReport) string {
	var marks []string
	if op.ClientHook {
		marks = append(marks, "pre")
	}
	if op.ImplementHook {
		marks = append(marks, "post")
	}
	if len(marks) == 0 {
		return "-"
	}
	return strings.Join(marks, ",")
}
