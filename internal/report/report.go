// Package report renders suite runs as terminal text, JSON or YAML.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/fieldcheck/internal/config"
	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/output"
	"github.com/AndreyAkinshin/fieldcheck/internal/suite"
)

// ParseFormat resolves a report format name. Empty means text.
func ParseFormat(s string) (config.ReportFormat, error) {
	switch f := config.ReportFormat(s); f {
	case "":
		return config.ReportText, nil
	case config.ReportText, config.ReportJSON, config.ReportYAML:
		return f, nil
	default:
		return "", ferrors.Configf("unknown report format %q (expected text, json or yaml)", s)
	}
}

// Render writes run to w in the given format. Text goes through the
// terminal writer; structured formats go to its stdout.
func Render(w *output.Writer, run *suite.Run, format config.ReportFormat) error {
	switch format {
	case config.ReportJSON, config.ReportYAML:
		return Encode(w.Out(), run, format)
	case config.ReportText, "":
		Text(w, run)
		return nil
	default:
		return ferrors.Configf("unknown report format %q", format)
	}
}

// Encode writes run as JSON or YAML.
func Encode(dst io.Writer, v any, format config.ReportFormat) error {
	switch format {
	case config.ReportJSON:
		enc := json.NewEncoder(dst)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.ReportYAML:
		enc := yaml.NewEncoder(dst)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return ferrors.Configf("report format %q is not structured", format)
	}
}

// WriteFile writes a structured report to path, creating parent
// directories. Text reports are written without colors.
func WriteFile(path string, run *suite.Run, format config.ReportFormat) error {
	var buf bytes.Buffer
	if format == config.ReportText || format == "" {
		Text(output.NewWithWriters(&buf, &buf, false), run)
	} else if err := Encode(&buf, run, format); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.Environmentf("create report directory: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return ferrors.Environmentf("write report: %v", err)
	}
	return nil
}

// Text prints every case with its checks, then a summary.
func Text(w *output.Writer, run *suite.Run) {
	for _, c := range run.Cases {
		w.CaseStart(c.Name, c.Geometry)
		if c.Skipped {
			w.CheckSkipped(c.Name, "case disabled")
			continue
		}
		for _, ch := range c.Checks {
			label := string(ch.Kind) + " " + ch.Name
			switch ch.Status {
			case suite.StatusPassed:
				w.CheckPassed(label, ch.Detail)
			case suite.StatusSkipped:
				w.CheckSkipped(label, ch.Reason)
			default:
				w.CheckFailed(label, ch.Err())
			}
		}
	}
	Summary(w, run)
}

// Summary prints the totals and the per-case outcome.
func Summary(w *output.Writer, run *suite.Run) {
	title := cases.Title(language.English)
	t := run.Totals()
	w.SummaryHeader(title.String(run.Suite + " summary"))
	w.SummaryItem("Run", run.ID)
	w.SummaryPassed(title.String(string(suite.StatusPassed)), fmt.Sprint(t.Passed))
	if t.Failed > 0 {
		w.SummaryFailed(title.String(string(suite.StatusFailed)), fmt.Sprint(t.Failed))
	}
	if t.Errored > 0 {
		w.SummaryFailed("Errors", fmt.Sprint(t.Errored))
	}
	if t.Skipped > 0 {
		w.SummaryItem(title.String(string(suite.StatusSkipped)), fmt.Sprint(t.Skipped))
	}
	w.SummaryItem("Duration", formatDuration(run.Duration))

	w.Println("")
	for _, c := range run.Cases {
		if c.Skipped {
			continue
		}
		errMsg := ""
		if n := failures(c); n > 0 {
			errMsg = fmt.Sprintf("%d failing", n)
		}
		w.SummaryAction(c.Name, c.Passed(), formatDuration(c.Duration), errMsg)
	}

	if run.Passed() {
		w.FinalSuccess("All checks passed.")
	} else {
		w.FinalFailure("%d of %d checks did not pass.", t.Failed+t.Errored, t.Passed+t.Failed+t.Errored)
		w.Hint("Rerun with --verbose for per-check logs.")
	}
}

func failures(c suite.CaseResult) int {
	n := 0
	for _, ch := range c.Checks {
		if ch.Status == suite.StatusFailed || ch.Status == suite.StatusError {
			n++
		}
	}
	return n
}

// formatDuration rounds for display, e.g. "1.23s" or "12ms".
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
