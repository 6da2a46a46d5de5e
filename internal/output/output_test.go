package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// newTestWriter creates a Writer with captured output for testing.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return NewWithWriters(stdout, stderr, false), stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	if w == nil {
		t.Fatal("New() returned nil")
	}
	if w.out == nil || w.err == nil {
		t.Error("writers are nil")
	}
}

func TestWriter_SetQuiet(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.SetQuiet(true)
	if !w.Quiet() {
		t.Error("SetQuiet(true) did not set quiet")
	}
	w.Info("hidden")
	w.CaseStart("c", "2D")
	w.CheckPassed("image", "ok")
	w.CheckSkipped("stats", "no measures")
	w.Section("S")
	if stdout.Len() != 0 {
		t.Errorf("quiet mode wrote %q", stdout.String())
	}

	w.SetQuiet(false)
	w.Info("shown")
	if got := stdout.String(); got != "shown\n" {
		t.Errorf("Info() = %q, want %q", got, "shown\n")
	}
}

func TestWriter_StdoutAndStderr(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.printf("hello %s", "world")
	w.Println("!")
	w.errorln("bad %d", 1)

	if got := stdout.String(); got != "hello world!\n" {
		t.Errorf("printf() = %q, want %q", got, "hello world!\n")
	}
	if got := stderr.String(); got != "bad 1\n" {
		t.Errorf("errorln() = %q, want %q", got, "bad 1\n")
	}
	if w.Out() != stdout {
		t.Error("Out() does not return stdout writer")
	}
}

func TestWriter_Warning(t *testing.T) {
	w, _, stderr := newTestWriter()
	w.Warning("unknown field %q", "x")
	if got := stderr.String(); got != "warning: unknown field \"x\"\n" {
		t.Errorf("Warning() = %q", got)
	}
}

func TestWriter_CaseLines(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.CaseStart("Tore-3D", "3D")
	w.CheckPassed("image cfpdes.heat.temperature", "metric 0")
	w.CheckSkipped("stats temperature", "measures not found")
	w.CheckFailed("stats vonmises", errors.New("VonMisesmax: too far"))

	out := stdout.String()
	for _, want := range []string{"─── [Tore-3D] 3D ───", "+ image cfpdes.heat.temperature metric 0", "- stats temperature (skipped: measures not found)"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if got := stderr.String(); got != "  x stats vonmises: VonMisesmax: too far\n" {
		t.Errorf("CheckFailed() = %q", got)
	}
}

func TestWriter_Table(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.Table([]string{"Kind", "Geometry", "Tolerance"}, [][]string{
		{"temperature", "3D", "0.01"},
		{"image", "Axi", "0.001"},
	})

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Table() printed %d lines, want 4:\n%s", len(lines), stdout.String())
	}
	if lines[0] != "Kind         Geometry  Tolerance" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "-----------  --------  ---------" {
		t.Errorf("separator = %q", lines[1])
	}
	if lines[2] != "temperature  3D        0.01" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestWriter_TableMultibyte(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.Table([]string{"Unit", "X"}, [][]string{{"°C", "1"}, {"K", "2"}})

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if lines[2] != "°C    1" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestWriter_Summary(t *testing.T) {
	w, stdout, _ := newTestWriter()

	w.SummaryHeader("Summary")
	w.SummaryItem("Run", "abc")
	w.SummaryPassed("Passed", "3")
	w.SummaryFailed("Failed", "1")
	w.SummaryAction("Tore-2D", true, "1.2s", "")
	w.SummaryAction("Tore-3D", false, "0.4s", "image mismatch")
	w.FinalFailure("%d case(s) failed", 1)

	out := stdout.String()
	for _, want := range []string{"=== Summary ===", "  Run: abc", "  Passed: 3", "  Failed: 1", "+ Tore-2D", "x Tore-3D", "(image mismatch)", "1 case(s) failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriter_Color(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	w := NewWithWriters(stdout, stderr, true)

	w.Success("ok")
	w.ErrorPrefix("boom")

	if !strings.Contains(stdout.String(), green) {
		t.Errorf("Success() missing color: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "fieldcheck:") || !strings.Contains(stderr.String(), red) {
		t.Errorf("ErrorPrefix() = %q", stderr.String())
	}
}

func TestWriter_ErrorPrefixPlain(t *testing.T) {
	w, _, stderr := newTestWriter()
	w.ErrorPrefix("config not found")
	if got := stderr.String(); got != "fieldcheck: config not found\n" {
		t.Errorf("ErrorPrefix() = %q", got)
	}
}
