package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/picogrid/tank-arena/pkg/logger"
)

// TankAnalysis summarizes one tank's debug log
type TankAnalysis struct {
	Name            string
	Total           int
	Counts          map[string]int
	Span            time.Duration
	EventsPerSecond float64
}

// Percent is the share of events of the given type, 0 to 100
func (a TankAnalysis) Percent(event string) float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Counts[event]) / float64(a.Total) * 100
}

// EventTypes returns the event types seen, sorted
func (a TankAnalysis) EventTypes() []string {
	types := make([]string, 0, len(a.Counts))
	for t := range a.Counts {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Analyze counts event types and rates per tank, sorted by tank name
func Analyze(data Data) []TankAnalysis {
	out := make([]TankAnalysis, 0, len(data))
	for _, name := range sortedNames(data) {
		events := data[name]
		a := TankAnalysis{
			Name:   name,
			Total:  len(events),
			Counts: make(map[string]int),
		}
		for _, ev := range events {
			a.Counts[ev.Event]++
		}
		if len(events) > 1 {
			a.Span = events[len(events)-1].Time.Sub(events[0].Time)
		}
		if a.Span > 0 {
			a.EventsPerSecond = float64(a.Total) / a.Span.Seconds()
		}
		out = append(out, a)
	}
	return out
}

// Print renders an analysis report
func Print(w io.Writer, analyses []TankAnalysis) {
	fmt.Fprintln(w, "=== DEBUG DATA ANALYSIS ===")
	for _, a := range analyses {
		fmt.Fprintf(w, "\n%s %s:\n", logger.IconTank, a.Name)
		if a.Total == 0 {
			fmt.Fprintln(w, "  No events recorded")
			continue
		}

		table := logger.NewTable("EVENT", "COUNT", "SHARE")
		for _, t := range a.EventTypes() {
			table.AddRow(t, fmt.Sprintf("%d", a.Counts[t]), fmt.Sprintf("%.1f%%", a.Percent(t)))
		}
		table.Fprint(w)

		fmt.Fprintf(w, "  Total events: %d\n", a.Total)
		fmt.Fprintf(w, "  Time span: %.1f seconds\n", a.Span.Seconds())
		fmt.Fprintf(w, "  Events per second: %.1f\n", a.EventsPerSecond)
	}
}
