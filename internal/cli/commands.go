package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/fieldcheck/internal/config"
	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/geometry"
	"github.com/AndreyAkinshin/fieldcheck/internal/report"
	"github.com/AndreyAkinshin/fieldcheck/internal/suite"
	"github.com/AndreyAkinshin/fieldcheck/internal/tolerance"
)

func newCheckCommand(opts *GlobalOptions) *cobra.Command {
	var (
		workers      int
		skipFixtures bool
		reportFile   string
	)

	cmd := &cobra.Command{
		Use:   "check [case...]",
		Short: "Run the suite's checks",
		Long: `Run every configured case, or only the named ones. When the suite lists no
cases, export directories under the suite root are discovered and their
rendered views compared with the reference pictures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := opts.loadProject()
			if err != nil {
				return err
			}
			if proj.Discovered {
				opts.out.Info("no cases configured; discovered %d under %s", len(proj.Config.Cases), proj.Root)
			}
			if len(proj.Config.Cases) == 0 {
				return ferrors.Configf("suite %q has no cases and none were discovered", proj.Config.Suite.Name)
			}

			run, err := suite.New(proj, opts.logger).Run(cmd.Context(), suite.Options{
				Cases:        args,
				Workers:      workers,
				SkipFixtures: skipFixtures,
			})
			if err != nil {
				return err
			}

			format := opts.format(cmd, proj.Config.Report.Format)
			if err := report.Render(opts.out, run, format); err != nil {
				return err
			}
			if reportFile == "" {
				reportFile = proj.Config.Report.Output
			}
			if reportFile != "" {
				if err := report.WriteFile(proj.Path(reportFile), run, format); err != nil {
					return err
				}
			}

			if run.Passed() {
				return nil
			}
			t := run.Totals()
			failed := ferrors.Assertionf("%d of %d checks did not pass", t.Failed+t.Errored, t.Passed+t.Failed+t.Errored)
			if format == config.ReportText {
				return &silentError{err: failed}
			}
			return failed
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "cases checked concurrently (default: CPU count)")
	cmd.Flags().BoolVar(&skipFixtures, "skip-fixtures", false, "do not extract the test-data archive")
	cmd.Flags().StringVarP(&reportFile, "output", "o", "", "also write the report to this file")
	return cmd
}

func newCasesCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "List the suite's cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := opts.loadProject()
			if err != nil {
				return err
			}
			if opts.structured() {
				return opts.encode(proj.Config.Cases)
			}

			rows := make([][]string, 0, len(proj.Config.Cases))
			for _, c := range proj.Config.Cases {
				skip := ""
				if c.Skip {
					skip = "yes"
				}
				rows = append(rows, []string{
					c.Name, c.Geometry, c.Basedir,
					strconv.Itoa(len(c.Fields)), strconv.Itoa(len(c.Stats)), skip,
				})
			}
			opts.out.Table([]string{"NAME", "GEOMETRY", "BASEDIR", "FIELDS", "STATS", "SKIP"}, rows)
			return nil
		},
	}
}

func newValidateCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the suite configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := opts.loadProject()
			if err != nil {
				return err
			}
			source := "configured"
			if proj.Discovered {
				source = "discovered"
			}
			opts.out.Success("suite %q is valid: %d %s case(s), %d warning(s)",
				proj.Config.Suite.Name, len(proj.Config.Cases), source, len(proj.Warnings))
			if !opts.out.Quiet() && len(proj.Config.Cases) > 0 {
				names := make([]string, len(proj.Config.Cases))
				for i, c := range proj.Config.Cases {
					names[i] = fmt.Sprintf("%s (%s) %s", c.Name, c.Geometry, c.Basedir)
				}
				opts.out.Section("Cases")
				opts.out.List(names)
			}
			return nil
		},
	}
}

func newTolerancesCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tolerances [kind [geometry]]",
		Short: "Show the relative tolerance table",
		Long: `Show the relative tolerance for every quantity kind and geometry family.
With a kind and a geometry, print only that tolerance.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				tol, err := tolerance.GetString(args[0], args[1])
				if err != nil {
					return err
				}
				opts.out.Println("%v", tol)
				return nil
			}

			entries := tolerance.Entries()
			if len(args) == 1 {
				kind, err := tolerance.ParseKind(args[0])
				if err != nil {
					return err
				}
				entries = entries[:0:0]
				for _, g := range geometry.All() {
					e, err := tolerance.Lookup(kind, g)
					if err != nil {
						return err
					}
					entries = append(entries, e)
				}
			}
			if opts.structured() {
				return opts.encode(entries)
			}

			title := cases.Title(language.English)
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{
					title.String(string(e.Kind)),
					e.Geometry.String(),
					strconv.FormatFloat(e.Relative, 'g', -1, 64),
					e.Description,
				}
			}
			opts.out.Table([]string{"KIND", "GEOMETRY", "TOLERANCE", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fieldcheck version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fieldcheck %s\n", strings.TrimSpace(Version))
		},
	}
}
