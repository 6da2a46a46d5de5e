package stats

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/geometry"
	"github.com/AndreyAkinshin/fieldcheck/internal/table"
	"github.com/AndreyAkinshin/fieldcheck/internal/units"
)

func mustTable(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func descriptor(t *testing.T) units.Descriptor {
	t.Helper()
	var d units.Descriptor
	require.NoError(t, json.Unmarshal([]byte(`{
		"temperature": {"Units": ["K", "degC"]},
		"VonMises": {"Units": ["Pa", "MPa"]},
		"Vonmises": {"Units": ["Pa", "MPa"]}
	}`), &d))
	return d
}

// Reference in kelvin; derived in degrees Celsius.
const heatMeasures = `Statistics_Stat_T_max,Statistics_Stat_T_mean,Statistics_Stat_T_min
353.15,313.15,293.15
`

const heatStats = `Variable,Minimum,Mean,Maximum
T [°C],20,40,80
`

func TestReferenceColumn(t *testing.T) {
	tests := []struct {
		q      Quantity
		geom   geometry.Family
		region string
		stat   Stat
		want   string
	}{
		{Temperature, geometry.TwoD, "", Max, "Statistics_Stat_T_max"},
		{Temperature, geometry.Axi, "", Mean, "Statistics_Stat_T_mean"},
		{Temperature, geometry.ThreeD, "Tore", Min, "Statistics_Stat_T_min"},
		{VonMises, geometry.TwoD, "", Max, "Statistics_Stat_VonMises_max"},
		{VonMises, geometry.ThreeD, "", Min, "Statistics_Stat_VonMises_min"},
		{VonMises, geometry.Axi, "", Max, "Statistics_VonMises_Tore_max"},
		{VonMises, geometry.Axi, "Helix", Mean, "Statistics_VonMises_Helix_mean"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := ReferenceColumn(tt.q, tt.geom, tt.region, tt.stat)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ReferenceColumn(Temperature, geometry.Family(9), "", Max)
	assert.True(t, ferrors.Is(err, ferrors.KindNotConfigured))
}

func TestCompare_ExactMatch(t *testing.T) {
	for _, geom := range geometry.All() {
		t.Run(geom.String(), func(t *testing.T) {
			res, err := Compare(mustTable(t, heatMeasures), mustTable(t, heatStats), descriptor(t), Options{
				Geometry:     geom,
				Quantity:     Temperature,
				ValidateMean: true,
			})
			require.NoError(t, err)
			require.Len(t, res.Checks, 3)
			for _, c := range res.Checks {
				assert.InDelta(t, 0, c.RelativeError, 1e-12, c.Stat)
				assert.True(t, c.Passed)
			}
			assert.True(t, res.Passed())
			assert.NoError(t, res.Err())
		})
	}
}

func TestCompare_MeanDisabled(t *testing.T) {
	// Mean is far off but not checked.
	derived := mustTable(t, "Variable,Minimum,Mean,Maximum\nT,20,1000,80\n")
	res, err := Compare(mustTable(t, heatMeasures), derived, descriptor(t), Options{
		Geometry: geometry.ThreeD,
		Quantity: Temperature,
	})
	require.NoError(t, err)

	var stats []Stat
	for _, c := range res.Checks {
		stats = append(stats, c.Stat)
	}
	assert.Equal(t, []Stat{Max, Min}, stats)
	assert.True(t, res.Passed())
}

func TestCompare_ReportsEveryFailure(t *testing.T) {
	// Reference max is twice the derived max; min is off too; mean agrees.
	derived := mustTable(t, "Variable,Minimum,Mean,Maximum\nT,10,40,40\n")
	res, err := Compare(mustTable(t, heatMeasures), derived, descriptor(t), Options{
		Geometry:     geometry.TwoD,
		Quantity:     Temperature,
		ValidateMean: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Checks, 3)
	assert.False(t, res.Passed())
	require.Len(t, res.Failed(), 2)

	err = res.Err()
	require.Error(t, err)
	assert.True(t, ferrors.Is(err, ferrors.KindAssertion))
	msg := err.Error()
	assert.Contains(t, msg, "Tmax")
	assert.Contains(t, msg, "Reference:80")
	assert.Contains(t, msg, "Derived:40")
	assert.Contains(t, msg, "Tmin")
	assert.NotContains(t, msg, "Tmean")
}

func TestCompare_TwiceFailsAtStrictTolerance(t *testing.T) {
	measures := mustTable(t, "Statistics_Stat_T_max,Statistics_Stat_T_mean,Statistics_Stat_T_min\n473.15,313.15,293.15\n")
	derived := mustTable(t, "Variable,Minimum,Mean,Maximum\nT,20,40,100\n")
	res, err := Compare(measures, derived, descriptor(t), Options{Geometry: geometry.Axi, Quantity: Temperature})
	require.NoError(t, err)

	failed := res.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, Max, failed[0].Stat)
	assert.InDelta(t, 1.0, failed[0].RelativeError, 1e-12)
	assert.InDelta(t, 0.001, failed[0].Tolerance, 1e-15)
	assert.Contains(t, res.Err().Error(), "Reference:200")
}

func TestCompare_VonMisesAxi(t *testing.T) {
	measures := mustTable(t, "Statistics_VonMises_Tore_max,Statistics_VonMises_Tore_mean,Statistics_VonMises_Tore_min\n1.5e8,6.0e7,1.0e6\n")
	derived := mustTable(t, "Variable,Minimum,Mean,Maximum\nVonmises,1.0,60.3,150.9\n")

	res, err := Compare(measures, derived, descriptor(t), Options{
		Geometry:     geometry.Axi,
		Quantity:     VonMises,
		FieldName:    "Vonmises",
		ValidateMean: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Checks, 3)
	assert.True(t, res.Passed(), res.Err())
	assert.Equal(t, "Statistics_VonMises_Tore_max", res.Checks[0].Column)
}

func TestCompare_ConfigurationErrors(t *testing.T) {
	measures := mustTable(t, heatMeasures)
	derived := mustTable(t, heatStats)

	_, err := Compare(measures, derived, descriptor(t), Options{Geometry: geometry.Family(7), Quantity: Temperature})
	assert.True(t, ferrors.Is(err, ferrors.KindNotConfigured))

	_, err = Compare(measures, derived, descriptor(t), Options{Geometry: geometry.TwoD, Quantity: Quantity(0)})
	assert.True(t, ferrors.Is(err, ferrors.KindNotConfigured))

	_, err = Compare(measures, derived, units.Descriptor{}, Options{Geometry: geometry.TwoD, Quantity: Temperature})
	assert.True(t, ferrors.Is(err, ferrors.KindNotFound))

	_, err = Compare(measures, derived, descriptor(t), Options{Geometry: geometry.TwoD, Quantity: VonMises})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Statistics_Stat_VonMises_max")
}

func TestRelativeError(t *testing.T) {
	assert.Equal(t, 0.0, RelativeError(5, 5))
	assert.InDelta(t, 1.0, RelativeError(2, 1), 1e-15)
	assert.InDelta(t, 0.5, RelativeError(1, 2), 1e-15)
	assert.True(t, Within(1.0005, 1, 0.001))
	assert.False(t, Within(1.002, 1, 0.001))
	assert.InDelta(t, 0.001, RelativeError(1.001, 1), 1e-12)
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity("VonMises")
	require.NoError(t, err)
	assert.Equal(t, VonMises, q)
	assert.Equal(t, "elastic", q.MeasuresKind())

	q, err = ParseQuantity("temperature")
	require.NoError(t, err)
	assert.Equal(t, "heat", q.MeasuresKind())

	_, err = ParseQuantity("pressure")
	assert.Error(t, err)
}

func TestResult_JSON(t *testing.T) {
	res := &Result{Quantity: Temperature, Geometry: geometry.Axi, Checks: []Check{{Stat: Max, Passed: true}}}
	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"quantity":"temperature"`)
	assert.Contains(t, string(out), `"geometry":"Axi"`)
}
