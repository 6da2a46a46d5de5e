package table

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
)

const statsCSV = `"Variable","Minimum","Mean","Maximum"
"T [°C]",20.5,35.25,60
"VonMises [MPa]",0.1,12,150
`

func TestParse(t *testing.T) {
	tbl, err := Parse(strings.NewReader(statsCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Variable", "Minimum", "Mean", "Maximum"}, tbl.Header)
	assert.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.HasColumn("Mean"))
	assert.False(t, tbl.HasColumn("Median"))

	v, err := tbl.Float("Maximum", 1)
	require.NoError(t, err)
	assert.Equal(t, 150.0, v)
}

func TestParse_Latin1(t *testing.T) {
	// "T [°C]" with the degree sign as a single ISO-8859-1 byte.
	data := "Variable,Maximum\nT [\xb0C],42\n"
	tbl, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	rows := tbl.Where("Variable", "T [°C]")
	require.Equal(t, 1, rows.Len())
	v, err := rows.Float("Maximum", 0)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestParse_BOMAndWhitespace(t *testing.T) {
	data := "\xef\xbb\xbfStatistics_Stat_T_max , Statistics_Stat_T_min\n 330.5 , 293.15\n"
	tbl, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	v, err := tbl.Float("Statistics_Stat_T_max", 0)
	require.NoError(t, err)
	assert.Equal(t, 330.5, v)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("a,\"b\n1,2\n"))
	assert.Error(t, err)
}

func TestFloat_Errors(t *testing.T) {
	tbl, err := Parse(strings.NewReader("a,b\n1,x\n2\n"))
	require.NoError(t, err)

	_, err = tbl.Float("c", 0)
	assert.True(t, ferrors.Is(err, ferrors.KindNotFound))

	_, err = tbl.Float("a", 5)
	assert.True(t, ferrors.Is(err, ferrors.KindNotFound))

	_, err = tbl.Float("b", 0)
	assert.Error(t, err)

	_, err = tbl.Float("b", 1)
	assert.Error(t, err)
}

func TestWhere_UnknownColumn(t *testing.T) {
	tbl, err := Parse(strings.NewReader(statsCSV))
	require.NoError(t, err)

	empty := tbl.Where("Block", "Tore")
	assert.Equal(t, 0, empty.Len())
	assert.True(t, empty.HasColumn("Maximum"))
}

func TestReadOptional(t *testing.T) {
	dir := t.TempDir()

	_, ok := ReadOptional(filepath.Join(dir, "values.csv"))
	assert.False(t, ok)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("a,\"b\n"), 0o644))
	_, ok = ReadOptional(bad)
	assert.False(t, ok)

	good := filepath.Join(dir, "good.csv")
	require.NoError(t, os.WriteFile(good, []byte(statsCSV), 0o644))
	tbl, ok := ReadOptional(good)
	require.True(t, ok)
	assert.Equal(t, 2, tbl.Len())
}

func TestMeasuresPath(t *testing.T) {
	basedir := "cases/Tore/np_1/cfpdes.exports/paraview.exports"
	assert.Equal(t, "cases/Tore/np_1/heat.measures/values.csv", MeasuresPath(basedir, "heat"))
	assert.Equal(t, "cases/Tore/np_1/elastic.measures/values.csv", MeasuresPath(basedir, "elastic"))
	assert.Equal(t, "elsewhere", MeasuresPath("elsewhere", "heat"))
}
