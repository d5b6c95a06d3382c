package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/bastion/internal/ctxutil"
	"github.com/example/bastion/internal/wire"
)

// timeLayouts are accepted by --at, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseAt parses a --at value in loc. Empty means now.
func parseAt(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().In(loc), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want RFC3339, \"YYYY-MM-DD HH:MM\" or YYYY-MM-DD)", s)
}

// commandTime reads the --at flag of cmd in the configured timezone.
func commandTime(cmd *cobra.Command) (time.Time, error) {
	at, _ := cmd.Flags().GetString("at")
	return parseAt(at, wire.Config().Location)
}

func addAtFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().String("at", "", "Act as if the current time were this (default: now)")
	}
}

// AddActorFlag registers the persistent --as flag on root. The value is
// carried in the command context for commands acting on a user's behalf.
func AddActorFlag(root *cobra.Command) {
	root.PersistentFlags().String("as", "", "User ID to act as (default: $BASTION_USER)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		actor, _ := cmd.Flags().GetString("as")
		if actor == "" {
			actor = wire.Config().User
		}
		cmd.SetContext(ctxutil.WithActorID(cmd.Context(), actor))
		return nil
	}
}
