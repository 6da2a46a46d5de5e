package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/fieldcheck/internal/config"
	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/geometry"
	"github.com/AndreyAkinshin/fieldcheck/internal/output"
	"github.com/AndreyAkinshin/fieldcheck/internal/stats"
	"github.com/AndreyAkinshin/fieldcheck/internal/suite"
)

func sampleRun() *suite.Run {
	return &suite.Run{
		ID:        "5f0c6a4e-3b7e-4d0a-9a51-0c1f7d2e8b11",
		Suite:     "magnet suite",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Cases: []suite.CaseResult{
			{
				Name:     "thermal",
				Geometry: "3D",
				Duration: 12 * time.Millisecond,
				Checks: []suite.CheckResult{
					{Name: "temperature", Kind: suite.KindImage, Status: suite.StatusPassed, Detail: "colored by POINTS"},
					{
						Name:   "temperature stats",
						Kind:   suite.KindStats,
						Status: suite.StatusFailed,
						Error:  "Tmax: abs(1-Reference:80/Derived:90) = 0.11 >= 0.01",
						Stats: &stats.Result{
							Quantity: stats.Temperature,
							Geometry: geometry.ThreeD,
							Checks:   []stats.Check{{Stat: stats.Max, Reference: 80, Derived: 90}},
						},
					},
					{Name: "mesh-path", Kind: suite.KindMeshPath, Status: suite.StatusSkipped, Reason: "no mesh path file"},
				},
			},
			{Name: "disabled", Geometry: "2D", Skipped: true},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]config.ReportFormat{
		"":     config.ReportText,
		"text": config.ReportText,
		"json": config.ReportJSON,
		"yaml": config.ReportYAML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.True(t, ferrors.Is(err, ferrors.KindConfig))
}

func TestText(t *testing.T) {
	var stdout, stderr bytes.Buffer
	w := output.NewWithWriters(&stdout, &stderr, false)

	Text(w, sampleRun())

	out := stdout.String()
	assert.Contains(t, out, "─── [thermal] 3D ───")
	assert.Contains(t, out, "  + image temperature colored by POINTS")
	assert.Contains(t, out, "  - mesh-path mesh-path (skipped: no mesh path file)")
	assert.Contains(t, out, "  - disabled (skipped: case disabled)")
	assert.Contains(t, out, "=== Magnet Suite Summary ===")
	assert.Contains(t, out, "  Passed: 1")
	assert.Contains(t, out, "  Failed: 1")
	assert.Contains(t, out, "  Skipped: 1")
	assert.Contains(t, out, "  Duration: 1.5s")
	assert.Contains(t, out, "1 of 2 checks did not pass.")
	assert.NotContains(t, out, "    x disabled")

	assert.Equal(t, "  x stats temperature stats: Tmax: abs(1-Reference:80/Derived:90) = 0.11 >= 0.01\n", stderr.String())
}

func TestText_Golden(t *testing.T) {
	var stdout bytes.Buffer
	Text(output.NewWithWriters(&stdout, &bytes.Buffer{}, false), sampleRun())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "text_report", stdout.Bytes())
}

func TestText_AllPassed(t *testing.T) {
	run := sampleRun()
	run.Cases = run.Cases[:1]
	run.Cases[0].Checks = run.Cases[0].Checks[:1]

	var stdout, stderr bytes.Buffer
	Text(output.NewWithWriters(&stdout, &stderr, false), run)

	assert.Contains(t, stdout.String(), "All checks passed.")
	assert.Empty(t, stderr.String())
}

func TestRender_JSON(t *testing.T) {
	var stdout bytes.Buffer
	w := output.NewWithWriters(&stdout, &bytes.Buffer{}, false)
	require.NoError(t, Render(w, sampleRun(), config.ReportJSON))

	var decoded suite.Run
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, "magnet suite", decoded.Suite)
	require.Len(t, decoded.Cases, 2)
	assert.Equal(t, suite.StatusFailed, decoded.Cases[0].Checks[1].Status)
	assert.EqualError(t, decoded.Cases[0].Checks[1].Err(), "Tmax: abs(1-Reference:80/Derived:90) = 0.11 >= 0.01")

	assert.Contains(t, stdout.String(), `"quantity": "temperature"`)
	assert.Contains(t, stdout.String(), `"geometry": "3D"`)
}

func TestRender_YAML(t *testing.T) {
	var stdout bytes.Buffer
	w := output.NewWithWriters(&stdout, &bytes.Buffer{}, false)
	require.NoError(t, Render(w, sampleRun(), config.ReportYAML))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, "magnet suite", decoded["suite"])
	assert.Contains(t, stdout.String(), "duration: 1.5s")
	assert.Contains(t, stdout.String(), "status: skipped")
}

func TestRender_UnknownFormat(t *testing.T) {
	w := output.NewWithWriters(&bytes.Buffer{}, &bytes.Buffer{}, false)
	err := Render(w, sampleRun(), config.ReportFormat("xml"))
	assert.True(t, ferrors.Is(err, ferrors.KindConfig))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "reports", "run.json")
	require.NoError(t, WriteFile(jsonPath, sampleRun(), config.ReportJSON))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	textPath := filepath.Join(dir, "run.txt")
	require.NoError(t, WriteFile(textPath, sampleRun(), config.ReportText))
	data, err = os.ReadFile(textPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "x stats temperature stats")
	assert.False(t, strings.Contains(text, "\033["), "file reports are uncolored")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "12ms", formatDuration(12345*time.Microsecond))
	assert.Equal(t, "1.23s", formatDuration(1234*time.Millisecond))
	assert.Equal(t, "0s", formatDuration(0))
}
