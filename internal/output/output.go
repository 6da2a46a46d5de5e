// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: ColorEnabled(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// Quiet reports whether quiet mode is on.
func (w *Writer) Quiet() bool {
	return w.quiet
}

// Out returns the stdout writer, for structured reports.
func (w *Writer) Out() io.Writer {
	return w.out
}

// printf writes to stdout without a trailing newline.
func (w *Writer) printf(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// errorln writes a line to stderr.
func (w *Writer) errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	if w.color {
		w.Println(green+format+reset, args...)
	} else {
		w.Println(format, args...)
	}
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...interface{}) {
	if w.color {
		w.errorln(yellow+"warning: "+format+reset, args...)
	} else {
		w.errorln("warning: "+format, args...)
	}
}

// CaseStart prints the header of a suite case.
func (w *Writer) CaseStart(name, geometry string) {
	if w.quiet {
		return
	}
	w.Println("")
	label := fmt.Sprintf("─── [%s] %s ───", name, geometry)
	if w.color {
		w.Println("%s%s%s", bold+cyan, label, reset)
	} else {
		w.Println("%s", label)
	}
}

// CheckPassed prints a passed check.
func (w *Writer) CheckPassed(check, detail string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("  %s✓%s %s %s%s%s", green, reset, check, dim, detail, reset)
	} else {
		w.Println("  + %s %s", check, detail)
	}
}

// CheckFailed prints a failed check.
func (w *Writer) CheckFailed(check string, err error) {
	if w.color {
		w.errorln("  %s✗ %s:%s %v", red, check, reset, err)
	} else {
		w.errorln("  x %s: %v", check, err)
	}
}

// CheckSkipped prints a skipped check with its reason.
func (w *Writer) CheckSkipped(check, reason string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("  %s- %s (skipped: %s)%s", dim, check, reason, reset)
	} else {
		w.Println("  - %s (skipped: %s)", check, reason)
	}
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	if w.color {
		w.Println("%s=== %s ===%s", bold, title, reset)
	} else {
		w.Println("=== %s ===", title)
	}
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Table prints a simple table.
func (w *Writer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = displayWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && displayWidth(cell) > widths[i] {
				widths[i] = displayWidth(cell)
			}
		}
	}

	w.Println("%s", joinPadded(headers, widths))

	sep := make([]string, len(widths))
	for i, width := range widths {
		sep[i] = strings.Repeat("-", width)
	}
	w.Println("%s", strings.Join(sep, "  "))

	for _, row := range rows {
		if len(row) > len(widths) {
			row = row[:len(widths)]
		}
		w.Println("%s", joinPadded(row, widths))
	}
}

func joinPadded(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = cell + strings.Repeat(" ", widths[i]-displayWidth(cell))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

// displayWidth counts runes so unit labels such as "°C" align.
func displayWidth(s string) int {
	return len([]rune(s))
}

// ColorEnabled reports whether stdout is a terminal and NO_COLOR is unset.
func ColorEnabled() bool {
	return os.Getenv("NO_COLOR") == "" && isTerminal()
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// ErrorPrefix prints an error message with fieldcheck prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.errorln("%sfieldcheck:%s %s", red, reset, msg)
	} else {
		w.errorln("fieldcheck: %s", msg)
	}
}

// SummaryHeader prints a summary section header.
func (w *Writer) SummaryHeader(title string) {
	w.Println("")
	if w.color {
		w.Println("%s=== %s ===%s", bold+cyan, title, reset)
	} else {
		w.Println("=== %s ===", title)
	}
	w.Println("")
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(label, value string) {
	if w.color {
		w.Println("  %s%s:%s %s", dim, label, reset, value)
	} else {
		w.Println("  %s: %s", label, value)
	}
}

// SummaryPassed prints a passed items summary.
func (w *Writer) SummaryPassed(label, value string) {
	if w.color {
		w.Println("  %s%s:%s %s%s%s", dim, label, reset, green, value, reset)
	} else {
		w.Println("  %s: %s", label, value)
	}
}

// SummaryFailed prints a failed items summary.
func (w *Writer) SummaryFailed(label, value string) {
	if w.color {
		w.Println("  %s%s:%s %s%s%s", dim, label, reset, red, value, reset)
	} else {
		w.Println("  %s: %s", label, value)
	}
}

// SummaryAction prints a case line with status indicator, name, duration,
// and optional error.
func (w *Writer) SummaryAction(name string, success bool, duration string, errMsg string) {
	if w.color {
		if success {
			w.printf("    %s✓%s %-40s %s%s%s", green, reset, name, dim, duration, reset)
		} else {
			w.printf("    %s✗%s %-40s %s%s%s", red, reset, name, dim, duration, reset)
			if errMsg != "" {
				w.printf("  %s(%s)%s", dim, errMsg, reset)
			}
		}
	} else {
		if success {
			w.printf("    + %-40s %s", name, duration)
		} else {
			w.printf("    x %-40s %s", name, duration)
			if errMsg != "" {
				w.printf("  (%s)", errMsg)
			}
		}
	}
	w.printf("\n")
}

// FinalSuccess prints a final success message.
func (w *Writer) FinalSuccess(format string, args ...interface{}) {
	w.Println("")
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s%s%s", green, msg, reset)
	} else {
		w.Println("%s", msg)
	}
}

// FinalFailure prints a final failure message.
func (w *Writer) FinalFailure(format string, args ...interface{}) {
	w.Println("")
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s%s%s", red, msg, reset)
	} else {
		w.Println("%s", msg)
	}
}

// Hint prints a hint message for the user.
func (w *Writer) Hint(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Println("%s%s%s", dim, msg, reset)
	} else {
		w.Println("%s", msg)
	}
}
