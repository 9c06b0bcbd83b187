package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dbc/internal/config"
	"github.com/roach88/dbc/internal/gen"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	DryRun bool // print instead of writing
}

// GeneratedFile reports one generated forwarder file.
type GeneratedFile struct {
	Package      string   `json:"package"`
	Path         string   `json:"path"`
	Capabilities []string `json:"capabilities"`
	Changed      bool     `json:"changed"`
	Source       string   `json:"source,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [config]",
		Short: "Write forwarder files for the configured packages",
		Long: `Generate contract forwarders for every package listed in the config
(default contractgen.yaml). Files are only rewritten when their content
changes.

Examples:
  contractgen generate
  contractgen generate ./contractgen.yaml --dry-run
  contractgen generate --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, configArg(args), cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print generated code instead of writing files")

	return cmd
}

func generatorOptions(p config.Package) gen.Options {
	return gen.Options{
		Capabilities:    p.Capabilities,
		ClientSuffix:    p.ClientSuffix,
		ImplementSuffix: p.ImplementSuffix,
		Output:          p.Output,
	}
}

func runGenerate(opts *GenerateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("config not found: %s", path), ExitCommandError)
		}
		return outputValidationIssues(formatter, path, configIssues(err))
	}

	files := make([]GeneratedFile, 0, len(cfg.Packages))
	for _, p := range cfg.Packages {
		file, err := generatePackage(cfg, p, opts.DryRun)
		if err != nil {
			code := ErrCodeGenerateFailed
			var genErr *gen.GenError
			if errors.As(err, &genErr) {
				code = ErrCodeParseFailed
			}
			if ferr := formatter.Error(code, err.Error(), map[string]string{"dir": p.Dir}); ferr != nil {
				return ferr
			}
			return WrapExitError(ExitFailure, fmt.Sprintf("generate %s", p.Dir), err)
		}
		logger.Info("generated forwarders",
			"package", file.Package,
			"path", file.Path,
			"capabilities", file.Capabilities,
			"changed", file.Changed,
			"dry_run", opts.DryRun)
		files = append(files, file)
	}

	if formatter.Format == "json" {
		return formatter.Success(files)
	}

	w := formatter.Writer
	for _, f := range files {
		switch {
		case opts.DryRun:
			printf(w, "// %s\n%s", f.Path, f.Source)
		case f.Changed:
			printf(w, "wrote %s %v\n", f.Path, f.Capabilities)
		default:
			printf(w, "unchanged %s\n", f.Path)
		}
	}
	return nil
}

func generatePackage(cfg *config.Config, p config.Package, dryRun bool) (GeneratedFile, error) {
	genOpts := generatorOptions(p)

	pkg, err := gen.Parse(cfg.PackageDir(p), genOpts)
	if err != nil {
		return GeneratedFile{}, err
	}
	caps, err := pkg.Select(genOpts.Capabilities)
	if err != nil {
		return GeneratedFile{}, err
	}
	src, err := gen.Generate(pkg, genOpts)
	if err != nil {
		return GeneratedFile{}, err
	}

	file := GeneratedFile{Package: pkg.Name, Path: cfg.OutputPath(p)}
	for _, c := range caps {
		file.Capabilities = append(file.Capabilities, c.Name)
	}

	existing, err := os.ReadFile(file.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return GeneratedFile{}, fmt.Errorf("read %s: %w", file.Path, err)
	}
	file.Changed = !bytes.Equal(existing, src)

	if dryRun {
		file.Source = string(src)
		return file, nil
	}
	if file.Changed {
		if err := os.WriteFile(file.Path, src, 0o644); err != nil {
			return GeneratedFile{}, fmt.Errorf("write %s: %w", file.Path, err)
		}
	}
	return file, nil
}
