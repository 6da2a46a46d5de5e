// Package cli provides the fieldcheck command tree.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AndreyAkinshin/fieldcheck/internal/config"
	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/logging"
	"github.com/AndreyAkinshin/fieldcheck/internal/output"
	"github.com/AndreyAkinshin/fieldcheck/internal/project"
	"github.com/AndreyAkinshin/fieldcheck/internal/report"
)

// Version is set at build time.
var Version = "dev"

// GlobalOptions holds the persistent flags and what is built from them.
type GlobalOptions struct {
	Verbose bool
	Quiet   bool
	Format  string
	NoColor bool
	Root    string // suite root; empty walks up from the working directory

	out    *output.Writer
	logger *zap.Logger
}

// silentError carries an exit code for a failure that was already reported
// to the user.
type silentError struct{ err error }

func (e *silentError) Error() string { return e.err.Error() }
func (e *silentError) Unwrap() error { return e.err }

// NewRootCommand creates the fieldcheck command tree.
func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   "fieldcheck",
		Short: "Cross-validate finite-element post-processing results",
		Long: `fieldcheck decides, within declared tolerances, whether the statistics and
rendered images of a visualization pipeline agree with the scalar measures
of the reference solver.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	cmd.SetVersionTemplate("fieldcheck {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return ferrors.Config(err.Error())
	})

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "only print failures and the summary")
	flags.StringVar(&opts.Format, "format", string(config.ReportText), "output format (text|json|yaml)")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	flags.StringVar(&opts.Root, "root", "", "suite root (default: nearest directory with .fieldcheck/config.json)")

	cmd.AddCommand(
		newCheckCommand(opts),
		newCasesCommand(opts),
		newValidateCommand(opts),
		newTolerancesCommand(opts),
		newImageCommand(opts),
		newStatsCommand(opts),
		newSelectCommand(opts),
		newExtractCommand(opts),
		newMeshPathCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// setup validates the global flags and builds the writer and logger.
func (o *GlobalOptions) setup(cmd *cobra.Command) error {
	if _, err := report.ParseFormat(o.Format); err != nil {
		return err
	}

	color := !o.NoColor && cmd.OutOrStdout() == os.Stdout && output.ColorEnabled()
	o.out = output.NewWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), color)
	o.out.SetQuiet(o.Quiet)

	// Check outcomes are shown by the report; the log only carries
	// problems unless --verbose asks for the full trace.
	logger, err := logging.New(logging.Options{Verbose: o.Verbose, Quiet: !o.Verbose, Development: true})
	if err != nil {
		return ferrors.Environment(err.Error())
	}
	o.logger = logger
	return nil
}

// format returns the output format, letting a configured default apply
// when --format was not given.
func (o *GlobalOptions) format(cmd *cobra.Command, configured string) config.ReportFormat {
	if !cmd.Flags().Changed("format") && configured != "" {
		if f, err := report.ParseFormat(configured); err == nil {
			return f
		}
	}
	f, _ := report.ParseFormat(o.Format)
	return f
}

// structured reports whether the output format is JSON or YAML.
func (o *GlobalOptions) structured() bool {
	return o.Format == string(config.ReportJSON) || o.Format == string(config.ReportYAML)
}

// encode writes v in the structured output format.
func (o *GlobalOptions) encode(v any) error {
	return report.Encode(o.out.Out(), v, config.ReportFormat(o.Format))
}

// loadProject loads the suite at --root, or the nearest one above the
// working directory.
func (o *GlobalOptions) loadProject() (*project.Project, error) {
	var (
		proj *project.Project
		err  error
	)
	if o.Root != "" {
		proj, err = project.LoadProjectFrom(o.Root)
	} else {
		proj, err = project.LoadProject()
	}
	if errors.Is(err, project.ErrNoProjectRoot) {
		return nil, &ferrors.Error{Kind: ferrors.KindConfig, Message: err.Error(), Cause: err}
	}
	if err != nil {
		return nil, err
	}
	for _, w := range proj.Warnings {
		o.out.Warning("%s", w)
	}
	return proj, nil
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return execute(ctx, NewRootCommand(), args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ferrors.ExitSuccess
	}
	var silent *silentError
	if !errors.As(err, &silent) {
		color := stderr == os.Stderr && output.ColorEnabled()
		output.NewWithWriters(stdout, stderr, color).ErrorPrefix("%v", err)
	}
	return ferrors.GetExitCode(err)
}
