package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/fieldcheck/internal/config"
	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/fileset"
	"github.com/AndreyAkinshin/fieldcheck/internal/fixtures"
	"github.com/AndreyAkinshin/fieldcheck/internal/geometry"
	"github.com/AndreyAkinshin/fieldcheck/internal/imagecmp"
	"github.com/AndreyAkinshin/fieldcheck/internal/mesh"
	"github.com/AndreyAkinshin/fieldcheck/internal/stats"
	"github.com/AndreyAkinshin/fieldcheck/internal/table"
	"github.com/AndreyAkinshin/fieldcheck/internal/units"
)

// requireFile turns a missing input into an environment error.
func requireFile(what, path string) error {
	if _, err := os.Stat(path); err != nil {
		return ferrors.Environmentf("%s not found: %s", what, path)
	}
	return nil
}

// skippedCheck is the structured output of a check that did not run.
type skippedCheck struct {
	Check  string `json:"check" yaml:"check"`
	Reason string `json:"skipped" yaml:"skipped"`
}

func newImageCommand(opts *GlobalOptions) *cobra.Command {
	var geom string

	cmd := &cobra.Command{
		Use:   "image <reference> <candidate>",
		Short: "Compare a rendered view with its reference picture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := geometry.Parse(geom)
			if err != nil {
				return err
			}
			for i, what := range []string{"reference picture", "candidate picture"} {
				if err := requireFile(what, args[i]); err != nil {
					return err
				}
			}

			res, err := imagecmp.CompareFiles(args[0], args[1], family)
			if err != nil {
				return err
			}
			if opts.structured() {
				if err := opts.encode(res); err != nil {
					return err
				}
				return res.Err()
			}

			detail := "metric " + strconv.FormatFloat(res.Metric, 'g', -1, 64) +
				", tolerance " + strconv.FormatFloat(res.Tolerance, 'g', -1, 64)
			if res.Resized {
				detail += ", resized"
			}
			if res.Passed {
				opts.out.CheckPassed("image "+res.Mode.String(), detail)
				return nil
			}
			opts.out.CheckFailed("image "+res.Mode.String(), res.Err())
			return &silentError{err: res.Err()}
		},
	}
	cmd.Flags().StringVarP(&geom, "geometry", "g", "", "geometry family (2D|3D|Axi)")
	_ = cmd.MarkFlagRequired("geometry")
	return cmd
}

func newStatsCommand(opts *GlobalOptions) *cobra.Command {
	var (
		measures  string
		derived   string
		unitsFile string
		geom      string
		quantity  string
		fieldName string
		region    string
		variable  string
		noMean    bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compare derived statistics with the solver measures",
		Long: `Compare the max, mean and min a visualization pipeline derived for a
quantity with the values the solver measured. Measures are converted to the
canonical unit of the quantity using the field-unit descriptor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := geometry.Parse(geom)
			if err != nil {
				return err
			}
			q, err := stats.ParseQuantity(quantity)
			if err != nil {
				return err
			}
			for _, in := range []struct{ what, path string }{
				{"derived statistics", derived},
				{"unit descriptor", unitsFile},
			} {
				if err := requireFile(in.what, in.path); err != nil {
					return err
				}
			}

			reference, ok := table.ReadOptional(measures)
			if !ok {
				skip := skippedCheck{Check: "stats " + q.String(), Reason: "no measure table at " + measures}
				if opts.structured() {
					return opts.encode(skip)
				}
				opts.out.CheckSkipped(skip.Check, skip.Reason)
				return nil
			}
			derivedTable, err := table.Read(derived)
			if err != nil {
				return err
			}
			if variable != "" {
				derivedTable = derivedTable.Where("Variable", variable)
			}
			desc, err := units.LoadDescriptor(unitsFile)
			if err != nil {
				return ferrors.Configf("%v", err)
			}

			res, err := stats.Compare(reference, derivedTable, desc, stats.Options{
				Geometry:     family,
				Quantity:     q,
				FieldName:    fieldName,
				Region:       region,
				ValidateMean: !noMean,
			})
			if err != nil {
				return err
			}
			if opts.structured() {
				if err := opts.encode(res); err != nil {
					return err
				}
				return res.Err()
			}

			rows := make([][]string, len(res.Checks))
			for i, c := range res.Checks {
				status := "ok"
				if !c.Passed {
					status = "FAIL"
				}
				rows[i] = []string{
					c.Name(q), c.Column,
					formatFloat(c.Reference), formatFloat(c.Derived),
					strconv.FormatFloat(c.RelativeError, 'e', 3, 64), formatFloat(c.Tolerance), status,
				}
			}
			opts.out.Table([]string{"CHECK", "COLUMN", "REFERENCE", "DERIVED", "REL. ERROR", "TOLERANCE", "RESULT"}, rows)
			return res.Err()
		},
	}

	f := cmd.Flags()
	f.StringVar(&measures, "measures", "", "solver measure table (values.csv)")
	f.StringVar(&derived, "derived", "", "derived statistics table (CSV)")
	f.StringVar(&unitsFile, "units", config.DefaultUnitsFile, "field-unit descriptor")
	f.StringVarP(&geom, "geometry", "g", "", "geometry family (2D|3D|Axi)")
	f.StringVar(&quantity, "quantity", "temperature", "quantity (temperature|vonmises)")
	f.StringVar(&fieldName, "field-name", "", "unit descriptor key (default: quantity default)")
	f.StringVar(&region, "region", "", "region marker for region-keyed measure columns")
	f.StringVar(&variable, "variable", "", "keep only derived rows whose Variable column matches")
	f.BoolVar(&noMean, "no-mean", false, "skip the mean comparison")
	for _, name := range []string{"measures", "derived", "geometry"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func newSelectCommand(opts *GlobalOptions) *cobra.Command {
	var (
		ext     string
		exclude []string
		include string
		unique  string
	)

	cmd := &cobra.Command{
		Use:   "select <dir> <field>",
		Short: "Pick the exported file for a field",
		Long: `List the files in <dir> whose name starts with <field>, then narrow them:
--exclude drops names containing any term, --include or --unique keep names
containing the term. Without either, "norm" variants are preferred when
several candidates remain. Exactly one selected file is expected.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := fileset.Glob(args[0], args[1], ext)
			selected := fileset.Select(files, fileset.Options{
				ExcludeTerms: exclude,
				IncludeTerm:  include,
				UniqueTerm:   unique,
			})
			if opts.structured() {
				if err := opts.encode(selected); err != nil {
					return err
				}
			} else {
				for _, f := range selected {
					opts.out.Println("%s", f)
				}
			}
			if len(selected) != 1 {
				return ferrors.Assertionf("expected one %s file for %s, selected %d of %d",
					strings.TrimPrefix(ext, "."), args[1], len(selected), len(files))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&ext, "ext", "png", "file extension")
	f.StringSliceVar(&exclude, "exclude", nil, "drop files containing any of these terms")
	f.StringVar(&include, "include", "", "keep only files containing this term")
	f.StringVar(&unique, "unique", "", "keep only files containing this term")
	cmd.MarkFlagsMutuallyExclusive("include", "unique")
	return cmd
}

func newExtractCommand(opts *GlobalOptions) *cobra.Command {
	var archive, dir string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the test-data archive once",
		Long: `Extract the test-data archive into a directory unless a previous
extraction left its marker there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extracted, err := fixtures.Extract(cmd.Context(), archive, dir)
			if err != nil {
				return err
			}
			if extracted {
				opts.out.Success("extracted %s into %s", archive, dir)
			} else {
				opts.out.Info("%s already holds extracted data (%s present)", dir, fixtures.Marker)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&archive, "archive", fixtures.DefaultArchive, "tar.gz archive")
	cmd.Flags().StringVar(&dir, "dir", ".", "extraction directory")
	return cmd
}

func newMeshPathCommand(opts *GlobalOptions) *cobra.Command {
	var anchor, base string

	cmd := &cobra.Command{
		Use:   "mesh-path <mesh-path-file|Export.case>",
		Short: "Resolve the mesh a solver run recorded",
		Long: `Read the mesh path a solver run recorded and rebase it under --base.
Given an export case (".../cfpdes.exports/Export.case"), the sibling
cfpdes.mesh.path file is read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathFile := args[0]
			if strings.HasSuffix(pathFile, ".case") {
				pathFile = mesh.MeshPathFile(pathFile)
			}
			if err := requireFile("mesh path file", pathFile); err != nil {
				return err
			}
			resolved, err := mesh.ResolvePath(pathFile, anchor, base)
			if err != nil {
				return err
			}
			opts.out.Println("%s", resolved)
			return nil
		},
	}
	cmd.Flags().StringVar(&anchor, "anchor", mesh.DefaultAnchor, "directory recorded paths are relative to")
	cmd.Flags().StringVar(&base, "base", ".", "directory the mesh path is rebased under")
	return cmd
}
