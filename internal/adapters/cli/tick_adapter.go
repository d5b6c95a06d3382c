// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/bastion/internal/core/events"
	"github.com/example/bastion/internal/ports/primary"
)

// TickAdapter runs the daily sequences and prints their reports.
type TickAdapter struct {
	orchestrator primary.DailyOrchestrator
	out          io.Writer
}

// NewTickAdapter creates a new TickAdapter with the given orchestrator.
func NewTickAdapter(orchestrator primary.DailyOrchestrator, out io.Writer) *TickAdapter {
	return &TickAdapter{
		orchestrator: orchestrator,
		out:          out,
	}
}

// Midnight runs the midnight sequence at now.
func (a *TickAdapter) Midnight(ctx context.Context, now time.Time) (*primary.BatchReport, error) {
	report, err := a.orchestrator.RunMidnightPhases(ctx, now)
	if report != nil {
		PrintReport(a.out, report)
	}
	return report, err
}

// Morning runs the morning sequence at now.
func (a *TickAdapter) Morning(ctx context.Context, now time.Time) (*primary.BatchReport, error) {
	report, err := a.orchestrator.RunMorningPhases(ctx, now)
	if report != nil {
		PrintReport(a.out, report)
	}
	return report, err
}

// PrintReport writes a batch report: one line per phase, then its events.
func PrintReport(out io.Writer, r *primary.BatchReport) {
	if r.Skipped {
		fmt.Fprintf(out, "%s %s sequence already running, skipped (run %s)\n",
			color.New(color.FgYellow).Sprint("!"), r.Kind, r.RunID)
		return
	}

	fmt.Fprintf(out, "\n%s sequence for %s (run %s)\n", r.Kind, r.Day, r.RunID)
	fmt.Fprintf(out, "%-18s %9s %9s %6s %7s\n", "PHASE", "PROCESSED", "SUCCEEDED", "FAILED", "SKIPPED")
	fmt.Fprintln(out, "────────────────────────────────────────────────────────────────")
	for _, p := range r.Phases {
		failed := fmt.Sprintf("%6d", p.Failed)
		if p.Failed > 0 {
			failed = color.New(color.FgRed).Sprint(failed)
		}
		fmt.Fprintf(out, "%-18s %9d %9d %s %7d\n", p.Phase, p.Processed, p.Succeeded, failed, p.Skipped)
		for _, f := range p.Failures {
			fmt.Fprintf(out, "  %s %s: %s\n", color.New(color.FgRed).Sprint("✗"), f.EntityKey, f.Error)
		}
	}

	if len(r.Events) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Events:")
		for _, ev := range r.Events {
			fmt.Fprintf(out, "  %s %s\n", eventMarker(ev.Kind), ev.Summary())
		}
	}
	fmt.Fprintln(out)
}

func eventMarker(k events.Kind) string {
	switch k {
	case events.KindCharacterDied, events.KindCatastrophicReturn, events.KindEmergencyReturnBlocked:
		return color.New(color.FgRed).Sprint("✗")
	case events.KindAgonyEntered, events.KindCannotDepart, events.KindEmergencyReturn, events.KindPMContagion:
		return color.New(color.FgYellow).Sprint("!")
	case events.KindAgonyLeft:
		return color.New(color.FgGreen).Sprint("✓")
	default:
		return color.New(color.FgCyan).Sprint("•")
	}
}
