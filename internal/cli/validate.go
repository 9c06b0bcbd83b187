package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dbc/internal/config"
	"github.com/roach88/dbc/internal/gen"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Config   string            `json:"config"`
	Packages int               `json:"packages"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
}

// ValidationIssue is one problem found in the config or its packages.
type ValidationIssue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "Validate contractgen.yaml",
		Long: `Validate a contractgen config without writing any files.

Checks the file against the config schema, then parses every listed
package and resolves the selected capabilities.

Exit codes:
  0 - Config is valid
  1 - Config or a listed package is invalid
  2 - Command error (config not found, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, configArg(args), cmd)
		},
	}

	return cmd
}

func configArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.DefaultFile
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("config not found: %s", path), ExitCommandError)
		}
		return outputValidationIssues(formatter, path, configIssues(err))
	}

	formatter.VerboseLog("Loaded %s with %d package(s)", path, len(cfg.Packages))

	var issues []ValidationIssue
	for i, p := range cfg.Packages {
		formatter.VerboseLog("Parsing %s", cfg.PackageDir(p))
		genOpts := generatorOptions(p)
		pkg, err := gen.Parse(cfg.PackageDir(p), genOpts)
		if err == nil {
			_, err = pkg.Select(genOpts.Capabilities)
		}
		if err != nil {
			issues = append(issues, ValidationIssue{Path: fmt.Sprintf("packages.%d", i), Message: err.Error()})
		}
	}
	if len(issues) > 0 {
		return outputValidationIssues(formatter, path, issues)
	}

	result := ValidationResult{Valid: true, Config: path, Packages: len(cfg.Packages)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s is valid (%d package(s))\n", path, result.Packages)
	return nil
}

// configIssues flattens a config load error into issues.
func configIssues(err error) []ValidationIssue {
	var verrs config.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationIssue{{Message: err.Error()}}
	}
	issues := make([]ValidationIssue, len(verrs))
	for i, v := range verrs {
		issues[i] = ValidationIssue{Path: v.Path, Message: v.Message, Line: v.Line}
	}
	return issues
}

func outputValidationIssues(formatter *OutputFormatter, path string, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		if err := formatter.Error(ErrCodeConfigInvalid, fmt.Sprintf("%d validation error(s)", len(issues)), ValidationResult{
			Config: path,
			Errors: issues,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %s is invalid\n", path)
		for _, issue := range issues {
			fmt.Fprintf(formatter.Writer, "  %s\n", formatIssue(issue))
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(issues)))
}

func formatIssue(issue ValidationIssue) string {
	switch {
	case issue.Line > 0:
		return fmt.Sprintf("line %d: %s: %s", issue.Line, issue.Path, issue.Message)
	case issue.Path != "":
		return fmt.Sprintf("%s: %s", issue.Path, issue.Message)
	}
	return issue.Message
}

func outputValidateError(formatter *OutputFormatter, code, message string, exit int) error {
	if err := formatter.Error(code, message, nil); err != nil {
		return err
	}
	return NewExitError(exit, message)
}
