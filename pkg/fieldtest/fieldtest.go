// Package fieldtest exposes fieldcheck's comparisons as assertions for Go
// test suites that produce their own exports.
//
// Example:
//
//	func TestThermalViews(t *testing.T) {
//	    fieldtest.AssertImagesEqual(t, "Pictures/3D/temperature.png", view, "3D")
//
//	    measures := fieldtest.LoadMeasures(basedir, "heat")
//	    if measures == nil {
//	        t.Skip("no heat measures")
//	    }
//	    derived, err := fieldtest.LoadTable(filepath.Join(basedir, "temperature.csv"))
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    desc, err := fieldtest.LoadDescriptor(filepath.Join(basedir, "fieldunits.json"))
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    fieldtest.ValidateTemperatureStats(t, measures, derived, desc, "3D", true)
//	}
package fieldtest

import (
	"github.com/AndreyAkinshin/fieldcheck/internal/geometry"
	"github.com/AndreyAkinshin/fieldcheck/internal/imagecmp"
	"github.com/AndreyAkinshin/fieldcheck/internal/stats"
	"github.com/AndreyAkinshin/fieldcheck/internal/table"
	"github.com/AndreyAkinshin/fieldcheck/internal/units"
)

// TB is the subset of testing.TB the assertions use.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Skipf(format string, args ...any)
}

// Table is a loaded measure or statistics table.
type Table = *table.Table

// Descriptor is a loaded field-unit descriptor.
type Descriptor = units.Descriptor

// AssertImagesEqual compares candidate with reference using the image
// tolerance of the geometry family ("2D", "3D" or "Axi"). A tolerance
// violation is reported with Errorf; an unknown geometry or an unreadable
// image stops the test.
func AssertImagesEqual(t TB, reference, candidate, geom string) bool {
	t.Helper()
	family, err := geometry.Parse(geom)
	if err != nil {
		t.Fatalf("%v", err)
		return false
	}
	res, err := imagecmp.CompareFiles(reference, candidate, family)
	if err != nil {
		t.Fatalf("compare %s with %s: %v", candidate, reference, err)
		return false
	}
	if err := res.Err(); err != nil {
		t.Errorf("%v", err)
		return false
	}
	return true
}

// ValidateTemperatureStats checks the derived temperature max, mean (when
// validateMean is set) and min against the measures. A nil measures table
// skips the test.
func ValidateTemperatureStats(t TB, measures, derived Table, desc Descriptor, geom string, validateMean bool) bool {
	t.Helper()
	return validate(t, measures, derived, desc, geom, stats.Options{
		Quantity:     stats.Temperature,
		ValidateMean: validateMean,
	})
}

// ValidateVonMisesStats checks the derived von Mises max, mean (when
// validateMean is set) and min against the measures. fieldName is the unit
// descriptor key; empty means "VonMises". A nil measures table skips the
// test.
func ValidateVonMisesStats(t TB, measures, derived Table, desc Descriptor, geom, fieldName string, validateMean bool) bool {
	t.Helper()
	return validate(t, measures, derived, desc, geom, stats.Options{
		Quantity:     stats.VonMises,
		FieldName:    fieldName,
		ValidateMean: validateMean,
	})
}

func validate(t TB, measures, derived Table, desc Descriptor, geom string, opts stats.Options) bool {
	t.Helper()
	if measures == nil {
		t.Skipf("no %s measures", opts.Quantity)
		return false
	}
	family, err := geometry.Parse(geom)
	if err != nil {
		t.Fatalf("%v", err)
		return false
	}
	opts.Geometry = family

	res, err := stats.Compare(measures, derived, desc, opts)
	if err != nil {
		t.Fatalf("%v", err)
		return false
	}
	for _, c := range res.Failed() {
		t.Errorf("%s", c.Message(opts.Quantity))
	}
	return res.Passed()
}

// LoadMeasures returns the solver measure table of kind (e.g. "heat",
// "elastic") for an export directory, or nil when there is none.
func LoadMeasures(basedir, kind string) Table {
	t, ok := table.ReadOptional(table.MeasuresPath(basedir, kind))
	if !ok {
		return nil
	}
	return t
}

// LoadTable reads a statistics table.
func LoadTable(path string) (Table, error) {
	return table.Read(path)
}

// LoadDescriptor reads a field-unit descriptor.
func LoadDescriptor(path string) (Descriptor, error) {
	return units.LoadDescriptor(path)
}
