// Package suite runs the configured cases of a fieldcheck suite: image,
// statistic, topology and field-key checks, each evaluated against the
// references the case names.
package suite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AndreyAkinshin/fieldcheck/internal/config"
	"github.com/AndreyAkinshin/fieldcheck/internal/dataset"
	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/fieldjson"
	"github.com/AndreyAkinshin/fieldcheck/internal/fileset"
	"github.com/AndreyAkinshin/fieldcheck/internal/fixtures"
	"github.com/AndreyAkinshin/fieldcheck/internal/geometry"
	"github.com/AndreyAkinshin/fieldcheck/internal/imagecmp"
	"github.com/AndreyAkinshin/fieldcheck/internal/logging"
	"github.com/AndreyAkinshin/fieldcheck/internal/mesh"
	"github.com/AndreyAkinshin/fieldcheck/internal/project"
	"github.com/AndreyAkinshin/fieldcheck/internal/stats"
	"github.com/AndreyAkinshin/fieldcheck/internal/table"
	"github.com/AndreyAkinshin/fieldcheck/internal/units"
)

// maxWorkers caps Options.Workers. Checks are file-bound; more workers than
// this only add contention.
const maxWorkers = 64

// Options configures a run.
type Options struct {
	// Cases restricts the run to the named cases, in configuration order.
	// Empty runs every case.
	Cases []string
	// Workers is the number of cases evaluated concurrently. Zero uses the
	// CPU count. Results keep configuration order regardless.
	Workers int
	// SkipFixtures disables test-data extraction before the run.
	SkipFixtures bool
}

// Runner evaluates the cases of a loaded project.
type Runner struct {
	project *project.Project
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a Runner. A nil logger discards logs.
func New(p *project.Project, logger *zap.Logger) *Runner {
	return &Runner{project: p, logger: logging.Or(logger), now: time.Now}
}

// Run extracts test data when configured, then evaluates the selected
// cases. Check failures are reported in the returned Run, not as an error;
// the error is reserved for problems that prevent the run (unknown case
// names, fixture extraction, cancellation).
func (r *Runner) Run(ctx context.Context, opts Options) (*Run, error) {
	cases, err := r.selectCases(opts.Cases)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.NewString(),
		Suite:     r.project.Config.Suite.Name,
		StartedAt: r.now(),
		Cases:     make([]CaseResult, len(cases)),
	}
	log := r.logger.With(zap.String("run_id", run.ID))
	log.Info("suite run started", zap.String("suite", run.Suite), zap.Int("cases", len(cases)))

	if !opts.SkipFixtures {
		if err := r.extractFixtures(ctx, log); err != nil {
			return nil, err
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, maxWorkers))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, c := range cases {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			run.Cases[i] = r.runCase(ctx, c, log)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run.Duration = r.now().Sub(run.StartedAt)
	t := run.Totals()
	log.Info("suite run finished",
		zap.Int("passed", t.Passed),
		zap.Int("failed", t.Failed),
		zap.Int("errored", t.Errored),
		zap.Int("skipped", t.Skipped),
		zap.Duration("duration", run.Duration))
	return run, nil
}

func (r *Runner) selectCases(names []string) ([]config.CaseConfig, error) {
	all := r.project.Config.Cases
	if len(names) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.project.Config.Case(n); !ok {
			return nil, ferrors.NotFound("case", n)
		}
		want[n] = true
	}
	var selected []config.CaseConfig
	for _, c := range all {
		if want[c.Name] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

func (r *Runner) extractFixtures(ctx context.Context, log *zap.Logger) error {
	fx := r.project.Config.Fixtures
	if fx == nil {
		return nil
	}
	archive := r.project.Path(fx.Archive)
	dir := r.project.Path(fx.Directory)
	extracted, err := fixtures.Extract(ctx, archive, dir)
	if err != nil {
		return err
	}
	if extracted {
		log.Info("test data extracted", zap.String("archive", archive), zap.String("dir", dir))
	} else {
		log.Debug("test data already extracted", zap.String("dir", dir))
	}
	return nil
}

// caseRun holds the inputs shared by the checks of one case.
type caseRun struct {
	r    *Runner
	c    config.CaseConfig
	geom geometry.Family
	log  *zap.Logger
	res  *CaseResult

	desc     units.Descriptor
	descErr  error
	descOnce sync.Once

	snapshot *dataset.Snapshot
}

func (r *Runner) runCase(ctx context.Context, c config.CaseConfig, log *zap.Logger) CaseResult {
	start := r.now()
	res := CaseResult{Name: c.Name, Geometry: c.Geometry}
	log = log.With(zap.String("case", c.Name))

	if c.Skip {
		res.Skipped = true
		log.Info("case skipped")
		return res
	}

	cr := &caseRun{r: r, c: c, log: log, res: &res}
	cr.execute(ctx)
	res.Duration = r.now().Sub(start)

	log.Info("case finished", zap.Bool("passed", res.Passed()), zap.Int("checks", len(res.Checks)))
	return res
}

func (cr *caseRun) execute(ctx context.Context) {
	c := cr.c
	geom, err := geometry.Parse(c.Geometry)
	if err != nil {
		cr.record(CheckResult{Name: "geometry", Kind: KindSetup}, err)
		return
	}
	cr.geom = geom

	if err := cr.r.project.ValidateCaseDirectory(c); err != nil {
		cr.record(CheckResult{Name: "basedir", Kind: KindSetup}, err)
		return
	}

	if snap, err := dataset.LoadSnapshot(cr.path(c.Dataset)); err == nil {
		cr.snapshot = snap
	} else if !errors.Is(err, os.ErrNotExist) {
		cr.log.Warn("dataset snapshot unreadable", zap.Error(err))
	}

	for _, f := range c.Fields {
		if ctx.Err() != nil {
			return
		}
		cr.imageCheck(f)
	}
	for _, s := range c.Stats {
		if ctx.Err() != nil {
			return
		}
		cr.statsCheck(s)
	}
	if c.Mesh != nil {
		cr.countsCheck()
		cr.meshPathCheck()
	}
	if c.Model != "" {
		cr.fieldKeysCheck()
	}
}

// record stores a check outcome. A nil err passes; an assertion error
// fails; any other error marks the check as errored.
func (cr *caseRun) record(ch CheckResult, err error) {
	switch {
	case ch.Status == StatusSkipped:
	case err == nil:
		ch.Status = StatusPassed
	case ferrors.Is(err, ferrors.KindAssertion):
		ch.Status = StatusFailed
	default:
		ch.Status = StatusError
	}
	if err != nil {
		ch.err = err
		ch.Error = err.Error()
	}

	fields := []zap.Field{zap.String("check", ch.Name), zap.String("status", string(ch.Status))}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	switch ch.Status {
	case StatusError:
		cr.log.Warn("check", fields...)
	case StatusFailed:
		cr.log.Info("check", fields...)
	default:
		cr.log.Debug("check", fields...)
	}
	cr.res.Checks = append(cr.res.Checks, ch)
}

func (cr *caseRun) skip(ch CheckResult, reason string) {
	ch.Status = StatusSkipped
	ch.Reason = reason
	cr.record(ch, nil)
}

func (cr *caseRun) path(rel string) string {
	return cr.r.project.Path(rel)
}

func (cr *caseRun) descriptor() (units.Descriptor, error) {
	cr.descOnce.Do(func() {
		cr.desc, cr.descErr = units.LoadDescriptor(cr.path(cr.c.Units))
		if cr.descErr != nil {
			cr.descErr = ferrors.Environmentf("unit descriptor: %v", cr.descErr)
		}
	})
	return cr.desc, cr.descErr
}

// imageCheck picks the one rendered view matching the field and compares it
// with the reference picture.
func (cr *caseRun) imageCheck(f config.FieldConfig) {
	ch := CheckResult{Name: f.Field, Kind: KindImage}

	views := fileset.Glob(cr.path(cr.c.Views), f.Field, "png")
	candidates := fileset.Select(views, fileset.Options{
		ExcludeTerms: f.Exclude,
		IncludeTerm:  f.Include,
		UniqueTerm:   f.Unique,
	})
	if len(candidates) != 1 {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = filepath.Base(c)
		}
		cr.record(ch, ferrors.Assertionf("expected one rendered view for %s, found %d %v", f.Field, len(candidates), names))
		return
	}

	if cr.snapshot != nil {
		if assoc, ok := dataset.ColorBy(cr.snapshot, f.Field); ok {
			ch.Detail = "colored by " + string(assoc)
		}
	}

	reference := filepath.Join(cr.path(cr.c.Pictures), f.Field+".png")
	if _, err := os.Stat(reference); err != nil {
		cr.record(ch, ferrors.Environmentf("reference picture not found: %s", reference))
		return
	}

	res, err := imagecmp.CompareFiles(reference, candidates[0], cr.geom)
	if err != nil {
		cr.record(ch, err)
		return
	}
	ch.Image = res
	if ch.Detail == "" {
		ch.Detail = fmt.Sprintf("metric %v < %v", res.Metric, res.Tolerance)
	}
	cr.record(ch, res.Err())
}

// statsCheck compares the derived statistics of a quantity with the solver
// measures. A case without a measure table skips the check.
func (cr *caseRun) statsCheck(s config.StatsConfig) {
	ch := CheckResult{Name: s.Quantity + " stats", Kind: KindStats}
	if s.FieldName != "" {
		ch.Name = fmt.Sprintf("%s stats (%s)", s.Quantity, s.FieldName)
	}

	q, err := stats.ParseQuantity(s.Quantity)
	if err != nil {
		cr.record(ch, err)
		return
	}

	measuresPath := s.Measures
	if measuresPath == "" {
		measuresPath = table.MeasuresPath(cr.c.Basedir, q.MeasuresKind())
	}
	reference, ok := table.ReadOptional(cr.path(measuresPath))
	if !ok {
		cr.skip(ch, "no measure table at "+measuresPath)
		return
	}

	derived, err := table.Read(cr.path(path.Join(cr.c.Basedir, s.Derived)))
	if err != nil {
		cr.record(ch, ferrors.Environmentf("derived statistics: %v", err))
		return
	}
	if s.Variable != "" {
		derived = derived.Where("Variable", s.Variable)
	}

	desc, err := cr.descriptor()
	if err != nil {
		cr.record(ch, err)
		return
	}

	validateMean := true
	if s.ValidateMean != nil {
		validateMean = *s.ValidateMean
	}
	res, err := stats.Compare(reference, derived, desc, stats.Options{
		Geometry:     cr.geom,
		Quantity:     q,
		FieldName:    s.FieldName,
		Region:       s.Region,
		ValidateMean: validateMean,
	})
	if err != nil {
		cr.record(ch, err)
		return
	}
	ch.Stats = res
	ch.Detail = fmt.Sprintf("%d statistics", len(res.Checks))
	cr.record(ch, res.Err())
}

// countsCheck compares the reader's topology with the mesh sidecar.
func (cr *caseRun) countsCheck() {
	ch := CheckResult{Name: "counts", Kind: KindCounts}
	if cr.snapshot == nil {
		cr.skip(ch, "no dataset snapshot at "+cr.c.Dataset)
		return
	}
	want, err := mesh.LoadCounts(cr.path(cr.c.Mesh.Counts))
	if err != nil {
		cr.record(ch, err)
		return
	}
	if want.Dimension != 0 && want.Dimension != cr.geom.Dim() {
		cr.log.Debug("mesh dimension differs from geometry",
			zap.Int("mesh", want.Dimension), zap.Int("geometry", cr.geom.Dim()))
	}
	ch.Detail = fmt.Sprintf("points=%d cells=%d", want.Points, want.Cells)
	cr.record(ch, dataset.CheckCounts(cr.snapshot, want))
}

// meshPathCheck resolves the mesh the solver recorded for the case and
// checks that it exists under the suite root.
func (cr *caseRun) meshPathCheck() {
	ch := CheckResult{Name: "mesh-path", Kind: KindMeshPath}
	pathFile := cr.path(cr.c.Mesh.PathFile)
	if _, err := os.Stat(pathFile); err != nil {
		cr.skip(ch, "no mesh path file at "+cr.c.Mesh.PathFile)
		return
	}
	resolved, err := mesh.ResolvePath(pathFile, cr.r.project.Config.Mesh.Anchor, cr.r.project.Root)
	if err != nil {
		cr.record(ch, err)
		return
	}
	ch.Detail = resolved
	if _, err := os.Stat(resolved); err != nil {
		cr.record(ch, ferrors.Environmentf("mesh not found: %s", resolved))
		return
	}
	cr.record(ch, nil)
}

// fieldKeysCheck compares the fields the model exports with the persisted
// field types, and the typed unit descriptor with its raw keys. Ignored
// keys are left out of both sides.
func (cr *caseRun) fieldKeysCheck() {
	ch := CheckResult{Name: "field-keys", Kind: KindFieldKeys}

	model, err := fieldjson.LoadFile(cr.path(cr.c.Model))
	if err != nil {
		cr.record(ch, ferrors.Environmentf("model: %v", err))
		return
	}
	ignored, err := units.LoadIgnoredKeys(cr.path(cr.c.IgnoredKeys))
	if err != nil {
		cr.record(ch, ferrors.Environmentf("ignored keys: %v", err))
		return
	}
	fieldTypeJSON, err := dataset.LoadKeys(cr.path(cr.c.FieldTypes))
	if err != nil {
		cr.record(ch, ferrors.Environmentf("field types: %v", err))
		return
	}
	fieldUnitsJSON, err := dataset.LoadKeys(cr.path(cr.c.Units))
	if err != nil {
		cr.record(ch, ferrors.Environmentf("field units: %v", err))
		return
	}
	desc, err := cr.descriptor()
	if err != nil {
		cr.record(ch, err)
		return
	}

	fieldType := withoutIgnored(fieldjson.ExportFields(model), ignored)
	fieldUnits := withoutIgnored(desc.Keys(), ignored)
	ch.Detail = fmt.Sprintf("%d typed, %d with units", len(fieldType), len(fieldUnits))
	cr.record(ch, dataset.CheckFieldKeys(
		fieldType,
		withoutIgnored(fieldTypeJSON, ignored),
		fieldUnits,
		withoutIgnored(fieldUnitsJSON, ignored),
	))
}

func withoutIgnored(keys []string, ignored units.IgnoredKeys) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !ignored[k] {
			out = append(out, k)
		}
	}
	return out
}
