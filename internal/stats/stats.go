// Package stats cross-checks the min/mean/max statistics a visualization
// pipeline derives for a field against the values the solver measured.
//
// Reference values come from the solver's measure table, in the solver's
// unit, and are converted to the canonical unit before comparison. Derived
// values come from the pipeline's descriptive statistics (columns Maximum,
// Mean, Minimum). Agreement is abs(1 - reference/derived) < tolerance.
package stats

import (
	"fmt"
	"math"
	"strings"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/geometry"
	"github.com/AndreyAkinshin/fieldcheck/internal/table"
	"github.com/AndreyAkinshin/fieldcheck/internal/tolerance"
	"github.com/AndreyAkinshin/fieldcheck/internal/units"
)

// Stat names one of the compared statistics.
type Stat string

const (
	Max  Stat = "max"
	Mean Stat = "mean"
	Min  Stat = "min"
)

// derivedColumns are the descriptive-statistics columns for each Stat.
var derivedColumns = map[Stat]string{
	Max:  "Maximum",
	Mean: "Mean",
	Min:  "Minimum",
}

// Quantity is a physical quantity with a measure-table export.
type Quantity int

const (
	Temperature Quantity = iota + 1
	VonMises
)

type quantityInfo struct {
	name      string
	tag       string
	kind      tolerance.Kind
	unitKey   string
	measures  string
	columns   map[geometry.Family]columnScheme
	defRegion string
}

// columnScheme builds the measure-table column for a statistic in a region.
type columnScheme func(region string, s Stat) string

func statScheme(prefix string) columnScheme {
	return func(_ string, s Stat) string {
		return fmt.Sprintf("Statistics_Stat_%s_%s", prefix, s)
	}
}

func regionScheme(prefix string) columnScheme {
	return func(region string, s Stat) string {
		return fmt.Sprintf("Statistics_%s_%s_%s", prefix, region, s)
	}
}

var quantities = map[Quantity]quantityInfo{
	Temperature: {
		name:     "temperature",
		tag:      "T",
		kind:     tolerance.Temperature,
		unitKey:  "temperature",
		measures: "heat",
		columns: map[geometry.Family]columnScheme{
			geometry.TwoD:   statScheme("T"),
			geometry.ThreeD: statScheme("T"),
			geometry.Axi:    statScheme("T"),
		},
	},
	VonMises: {
		name:     "vonmises",
		tag:      "VonMises",
		kind:     tolerance.VonMises,
		unitKey:  "VonMises",
		measures: "elastic",
		columns: map[geometry.Family]columnScheme{
			geometry.TwoD:   statScheme("VonMises"),
			geometry.ThreeD: statScheme("VonMises"),
			geometry.Axi:    regionScheme("VonMises"),
		},
		defRegion: "Tore",
	},
}

// ParseQuantity resolves "temperature" or "vonmises".
func ParseQuantity(s string) (Quantity, error) {
	for q, info := range quantities {
		if strings.EqualFold(info.name, s) {
			return q, nil
		}
	}
	return 0, ferrors.NotConfigured("quantity", s)
}

func (q Quantity) String() string {
	if info, ok := quantities[q]; ok {
		return info.name
	}
	return fmt.Sprintf("Quantity(%d)", int(q))
}

// MarshalText implements encoding.TextMarshaler.
func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quantity) UnmarshalText(text []byte) error {
	parsed, err := ParseQuantity(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Tag is the short label used in check names and failure messages.
func (q Quantity) Tag() string {
	return quantities[q].tag
}

// MeasuresKind is the solver toolbox whose values.csv holds the quantity.
func (q Quantity) MeasuresKind() string {
	return quantities[q].measures
}

// ReferenceColumn returns the measure-table column holding statistic s of q
// for the geometry family. Region only matters for schemes keyed by region
// (von Mises in Axi); empty means the default region.
func ReferenceColumn(q Quantity, geom geometry.Family, region string, s Stat) (string, error) {
	info, ok := quantities[q]
	if !ok {
		return "", ferrors.NotConfigured("quantity", q.String())
	}
	scheme, ok := info.columns[geom]
	if !ok {
		return "", ferrors.NotConfigured("column scheme", fmt.Sprintf("%s/%s", q, geom))
	}
	if region == "" {
		region = info.defRegion
	}
	return scheme(region, s), nil
}

// Options selects what Compare checks.
type Options struct {
	Geometry geometry.Family
	Quantity Quantity
	// FieldName is the unit descriptor key; empty uses the quantity default.
	// Some models spell the stress quantity "Vonmises".
	FieldName string
	// Region is the marker used by region-keyed column schemes.
	Region string
	// ValidateMean enables the mean check. Some geometry and quantity pairs
	// are known to diverge on the mean beyond the strict tolerance.
	ValidateMean bool
}

// Check is the outcome of one statistic comparison.
type Check struct {
	Stat          Stat    `json:"stat" yaml:"stat"`
	Column        string  `json:"column" yaml:"column"`
	Reference     float64 `json:"reference" yaml:"reference"`
	Derived       float64 `json:"derived" yaml:"derived"`
	RelativeError float64 `json:"relative_error" yaml:"relative_error"`
	Tolerance     float64 `json:"tolerance" yaml:"tolerance"`
	Passed        bool    `json:"passed" yaml:"passed"`
}

// Name is the check label, e.g. "Tmax".
func (c Check) Name(q Quantity) string {
	return q.Tag() + string(c.Stat)
}

// Message describes the comparison with both operands.
func (c Check) Message(q Quantity) string {
	op := "<"
	if !c.Passed {
		op = ">="
	}
	return fmt.Sprintf("%s: abs(1-Reference:%v/Derived:%v) = %v %s %v",
		c.Name(q), c.Reference, c.Derived, c.RelativeError, op, c.Tolerance)
}

// Result gathers every enabled check of one Compare call.
type Result struct {
	Quantity Quantity        `json:"quantity" yaml:"quantity"`
	Geometry geometry.Family `json:"geometry" yaml:"geometry"`
	Checks   []Check         `json:"checks" yaml:"checks"`
}

// Passed reports whether every check passed.
func (r *Result) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed returns the checks that exceeded the tolerance.
func (r *Result) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// Err returns an assertion error listing every failed check, or nil.
func (r *Result) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	msgs := make([]string, len(failed))
	for i, c := range failed {
		msgs[i] = c.Message(r.Quantity)
	}
	return ferrors.Assertion(strings.Join(msgs, "; "))
}

// RelativeError returns abs(1 - a/b).
func RelativeError(a, b float64) float64 {
	return math.Abs(1 - a/b)
}

// Within reports whether a and b agree to the relative tolerance.
// NaN never agrees.
func Within(a, b, tol float64) bool {
	return RelativeError(a, b) < tol
}

// Compare checks the max, optionally the mean, and the min of q between
// the reference measure table and the derived statistics table (row 0 of
// each). Every enabled check is evaluated; a tolerance violation is
// reported through Result, while missing tolerances, columns or units are
// returned as errors.
func Compare(reference, derived *table.Table, desc units.Descriptor, opts Options) (*Result, error) {
	info, ok := quantities[opts.Quantity]
	if !ok {
		return nil, ferrors.NotConfigured("quantity", opts.Quantity.String())
	}
	tol, err := tolerance.Get(info.kind, opts.Geometry)
	if err != nil {
		return nil, err
	}

	field := opts.FieldName
	if field == "" {
		field = info.unitKey
	}
	if _, ok := desc[field]; !ok {
		return nil, ferrors.NotFound("unit descriptor for quantity", field)
	}

	statsToCheck := []Stat{Max}
	if opts.ValidateMean {
		statsToCheck = append(statsToCheck, Mean)
	}
	statsToCheck = append(statsToCheck, Min)

	res := &Result{Quantity: opts.Quantity, Geometry: opts.Geometry}
	for _, s := range statsToCheck {
		column, err := ReferenceColumn(opts.Quantity, opts.Geometry, opts.Region, s)
		if err != nil {
			return nil, err
		}
		raw, err := reference.Float(column, 0)
		if err != nil {
			return nil, fmt.Errorf("reference %s: %w", column, err)
		}
		ref, err := units.ConvertData(desc, raw, field)
		if err != nil {
			return nil, err
		}
		got, err := derived.Float(derivedColumns[s], 0)
		if err != nil {
			return nil, fmt.Errorf("derived %s: %w", derivedColumns[s], err)
		}

		rel := RelativeError(ref, got)
		res.Checks = append(res.Checks, Check{
			Stat:          s,
			Column:        column,
			Reference:     ref,
			Derived:       got,
			RelativeError: rel,
			Tolerance:     tol,
			Passed:        rel < tol,
		})
	}
	return res, nil
}
