package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/example/bastion/internal/core/expedition"
	"github.com/example/bastion/internal/ports/primary"
)

// ExpeditionAdapter translates CLI operations to ExpeditionService calls.
// It depends only on the ExpeditionService interface, enabling easy testing with mocks.
type ExpeditionAdapter struct {
	service primary.ExpeditionService
	out     io.Writer
}

// NewExpeditionAdapter creates a new ExpeditionAdapter with the given service.
func NewExpeditionAdapter(service primary.ExpeditionService, out io.Writer) *ExpeditionAdapter {
	return &ExpeditionAdapter{
		service: service,
		out:     out,
	}
}

// ParseProvisions parses "Vivres=6" style arguments.
func ParseProvisions(args []string) ([]primary.Provision, error) {
	out := make([]primary.Provision, 0, len(args))
	for _, arg := range args {
		name, qty, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid provision %q (want NAME=QUANTITY)", arg)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", arg, err)
		}
		out = append(out, primary.Provision{Resource: strings.TrimSpace(name), Quantity: n})
	}
	return out, nil
}

// Create creates a new expedition.
func (a *ExpeditionAdapter) Create(ctx context.Context, req primary.CreateExpeditionRequest) error {
	resp, err := a.service.CreateExpedition(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created expedition %s: %s (%d day(s))\n", resp.ExpeditionID, resp.Expedition.Name, resp.Expedition.DurationDays)
	if len(resp.Expedition.Stock) > 0 {
		printStock(a.out, resp.Expedition.Stock)
	}
	return nil
}

// List lists expeditions.
func (a *ExpeditionAdapter) List(ctx context.Context, townID, status string) error {
	list, err := a.service.ListExpeditions(ctx, primary.ExpeditionFilters{TownID: townID, Status: status})
	if err != nil {
		return fmt.Errorf("failed to list expeditions: %w", err)
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No expeditions found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-10s %-10s %4s %7s  %s\n", "ID", "TOWN", "STATUS", "DAYS", "MEMBERS", "NAME")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, x := range list {
		fmt.Fprintf(a.out, "%-10s %-10s %-10s %4d %7d  %s%s\n",
			x.ID, x.TownID, x.Status, x.DurationDays, len(x.Members), x.Name, emergencyMarker(x))
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays one expedition with its roster and stock.
func (a *ExpeditionAdapter) Show(ctx context.Context, expeditionID string) (*primary.Expedition, error) {
	x, err := a.service.GetExpedition(ctx, expeditionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expedition: %w", err)
	}

	fmt.Fprintf(a.out, "\nExpedition: %s%s\n", x.ID, emergencyMarker(x))
	fmt.Fprintf(a.out, "Name:    %s\n", x.Name)
	fmt.Fprintf(a.out, "Town:    %s\n", x.TownID)
	fmt.Fprintf(a.out, "Status:  %s\n", x.Status)
	fmt.Fprintf(a.out, "Length:  %d day(s)\n", x.DurationDays)
	fmt.Fprintf(a.out, "Path:    %s\n", formatPath(x.Path))
	if x.CurrentDayDirection != "" {
		fmt.Fprintf(a.out, "Heading: %s (set by %s)\n", x.CurrentDayDirection, x.DirectionSetBy)
	}
	if x.ReturnAt != nil {
		label := "Returns:"
		if x.Status == string(expedition.StatusReturned) {
			label = "Returned:"
		}
		fmt.Fprintf(a.out, "%s %s\n", label, x.ReturnAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(a.out, "Members: %s\n", strings.Join(x.Members, ", "))
	if x.Votes > 0 {
		fmt.Fprintf(a.out, "Emergency votes: %d\n", x.Votes)
	}
	if len(x.Stock) > 0 {
		printStock(a.out, x.Stock)
	} else {
		fmt.Fprintln(a.out)
	}

	return x, nil
}

// Join adds a character to an expedition.
func (a *ExpeditionAdapter) Join(ctx context.Context, expeditionID, characterID string, now time.Time) error {
	if err := a.service.JoinExpedition(ctx, expeditionID, characterID, now); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ %s joined %s\n", characterID, expeditionID)
	return nil
}

// Leave removes a character from an expedition.
func (a *ExpeditionAdapter) Leave(ctx context.Context, expeditionID, characterID string, now time.Time) error {
	res, err := a.service.LeaveExpedition(ctx, expeditionID, characterID, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ %s left %s\n", characterID, expeditionID)
	if res.Terminated {
		fmt.Fprintf(a.out, "  %s %s had no crew left and was abandoned\n", color.New(color.FgYellow).Sprint("!"), expeditionID)
	}
	return nil
}

// Direction sets today's heading.
func (a *ExpeditionAdapter) Direction(ctx context.Context, expeditionID, characterID, direction string, now time.Time) error {
	if err := a.service.SetDirection(ctx, expeditionID, characterID, direction, now); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ %s heads %s today\n", expeditionID, strings.ToUpper(direction))
	return nil
}

// Lock locks a PLANNING expedition.
func (a *ExpeditionAdapter) Lock(ctx context.Context, expeditionID string, now time.Time) error {
	if _, err := a.service.Lock(ctx, expeditionID, now); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Expedition %s locked\n", expeditionID)
	return nil
}

// Depart departs a LOCKED expedition.
func (a *ExpeditionAdapter) Depart(ctx context.Context, expeditionID string, now time.Time) error {
	x, err := a.service.Depart(ctx, expeditionID, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Expedition %s departed", expeditionID)
	if x.ReturnAt != nil {
		fmt.Fprintf(a.out, ", back %s", x.ReturnAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Return brings an expedition home now.
func (a *ExpeditionAdapter) Return(ctx context.Context, expeditionID string, now time.Time) error {
	res, err := a.service.ReturnNormal(ctx, expeditionID, now)
	if err != nil {
		return err
	}
	a.printReturn(res)
	return nil
}

// Cancel cancels a LOCKED expedition.
func (a *ExpeditionAdapter) Cancel(ctx context.Context, expeditionID string, now time.Time) error {
	res, err := a.service.Cancel(ctx, expeditionID, now)
	if err != nil {
		return err
	}
	a.printReturn(res)
	return nil
}

func (a *ExpeditionAdapter) printReturn(res *primary.ReturnResult) {
	fmt.Fprintf(a.out, "✓ Expedition %s returned to %s\n", res.Expedition.ID, res.Expedition.TownID)
	if len(res.Returned) > 0 {
		printStock(a.out, res.Returned)
	}
}

// Vote toggles the user's emergency-return vote.
func (a *ExpeditionAdapter) Vote(ctx context.Context, expeditionID, userID string, now time.Time) error {
	if userID == "" {
		return fmt.Errorf("no user given; pass --as USER")
	}
	v, err := a.service.ToggleEmergencyVote(ctx, expeditionID, userID, now)
	if err != nil {
		return err
	}

	verb := "withdrew"
	if v.Voted {
		verb = "cast"
	}
	fmt.Fprintf(a.out, "✓ %s %s an emergency vote on %s (%d/%d needed)\n", userID, verb, expeditionID, v.Votes, v.Threshold)
	if v.PendingEmergencyReturn {
		fmt.Fprintf(a.out, "  %s %s will return at the next morning run\n", color.New(color.FgYellow).Sprint("!"), expeditionID)
	}
	return nil
}

func emergencyMarker(x *primary.Expedition) string {
	if !x.PendingEmergencyReturn {
		return ""
	}
	return color.New(color.FgRed).Sprint(" [emergency]")
}

func formatPath(path []string) string {
	dirs := make([]expedition.Direction, len(path))
	for i, p := range path {
		dirs[i] = expedition.Direction(p)
	}
	return expedition.FormatPath(dirs)
}
