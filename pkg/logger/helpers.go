package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Icons used by the console helpers
const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️"
	IconRocket  = "🚀"
	IconTank    = "🛡️"
	IconBoom    = "💥"
	IconTrophy  = "🏆"
	IconFile    = "📄"
	IconRefresh = "🔄"
	IconDot     = "•"
)

var (
	sectionColor = color.New(color.FgCyan, color.Bold)
	subColor     = color.New(color.FgHiBlack)
	keyColor     = color.New(color.FgCyan)
	headerColor  = color.New(color.Bold)
)

// Output is where the console helpers write
var Output io.Writer = os.Stdout

func paint(c *color.Color, s string) string {
	if NoColor() {
		return s
	}
	return c.Sprint(s)
}

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	current().Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message with a refresh icon
func Progress(args ...interface{}) {
	current().Info(IconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

// LogSection creates a visual section separator
func LogSection(title string) {
	line := strings.Repeat("=", 50)
	_, _ = fmt.Fprintln(Output, paint(sectionColor, line))
	_, _ = fmt.Fprintln(Output, paint(sectionColor, title))
	_, _ = fmt.Fprintln(Output, paint(sectionColor, line))
}

// LogSubSection creates a visual subsection separator
func LogSubSection(title string) {
	line := strings.Repeat("-", 40)
	_, _ = fmt.Fprintln(Output, paint(subColor, line))
	_, _ = fmt.Fprintln(Output, paint(subColor, title))
	_, _ = fmt.Fprintln(Output, paint(subColor, line))
}

// LogKeyValue logs a key-value pair
func LogKeyValue(key string, value interface{}) {
	_, _ = fmt.Fprintf(Output, "%s %v\n", paint(keyColor, key+":"), value)
}

// Table is a plain column-aligned table for console output
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Print writes the table to Output
func (t *Table) Print() {
	t.Fprint(Output)
}

// Fprint writes the table to w
func (t *Table) Fprint(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range t.headers {
		fmt.Fprintf(&b, "%-*s  ", widths[i], h)
	}
	_, _ = fmt.Fprintln(w, paint(headerColor, strings.TrimRight(b.String(), " ")))

	b.Reset()
	for i := range t.headers {
		b.WriteString(strings.Repeat("-", widths[i]) + "  ")
	}
	_, _ = fmt.Fprintln(w, strings.TrimRight(b.String(), " "))

	for _, row := range t.rows {
		b.Reset()
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
			}
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}
