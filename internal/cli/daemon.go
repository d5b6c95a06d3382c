package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/bastion/internal/config"
	"github.com/example/bastion/internal/core/gameday"
	"github.com/example/bastion/internal/ports/primary"
	"github.com/example/bastion/internal/wire"
)

// DaemonCmd returns the daemon command
func DaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the daily sequences on schedule",
		Long: `Stay in the foreground and run the midnight and morning sequences at
$BASTION_MIDNIGHT_AT and $BASTION_MORNING_AT in $BASTION_TIMEZONE.

Stops cleanly on SIGINT or SIGTERM; a sequence in progress is interrupted
between phases.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDaemon(ctx, wire.Config())
		},
	}
}

type scheduledRun struct {
	kind primary.BatchKind
	at   time.Time
}

// nextRun returns whichever sequence comes first strictly after now.
func nextRun(now time.Time, cfg *config.Config) (scheduledRun, error) {
	mh, mm, err := config.ParseClock(cfg.MidnightAt)
	if err != nil {
		return scheduledRun{}, err
	}
	oh, om, err := config.ParseClock(cfg.MorningAt)
	if err != nil {
		return scheduledRun{}, err
	}

	midnight := gameday.NextAt(now, mh, mm, cfg.Location)
	morning := gameday.NextAt(now, oh, om, cfg.Location)
	if morning.Before(midnight) {
		return scheduledRun{kind: primary.BatchMorning, at: morning}, nil
	}
	return scheduledRun{kind: primary.BatchMidnight, at: midnight}, nil
}

func runDaemon(ctx context.Context, cfg *config.Config) error {
	tick := wire.TickAdapter()
	for {
		next, err := nextRun(time.Now(), cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Next %s sequence at %s\n", next.kind, next.at.Format("2006-01-02 15:04 MST"))

		timer := time.NewTimer(time.Until(next.at))
		select {
		case <-ctx.Done():
			timer.Stop()
			fmt.Println("✓ Daemon stopped")
			return nil
		case <-timer.C:
		}

		now := time.Now().In(cfg.Location)
		var runErr error
		if next.kind == primary.BatchMidnight {
			_, runErr = tick.Midnight(ctx, now)
		} else {
			_, runErr = tick.Morning(ctx, now)
		}
		if runErr != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "%s sequence failed: %v\n", next.kind, runErr)
		}
	}
}
