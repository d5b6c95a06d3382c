package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/bastion/internal/core/ledger"
	"github.com/example/bastion/internal/ports/primary"
)

// LedgerAdapter translates CLI operations to LedgerService calls.
type LedgerAdapter struct {
	service primary.LedgerService
	out     io.Writer
}

// NewLedgerAdapter creates a new LedgerAdapter with the given service.
func NewLedgerAdapter(service primary.LedgerService, out io.Writer) *LedgerAdapter {
	return &LedgerAdapter{
		service: service,
		out:     out,
	}
}

// ParseLocation accepts "city:ID", "expedition:ID", or a bare TOWN-/EXP- id.
func ParseLocation(s string) (ledger.Location, error) {
	s = strings.TrimSpace(s)
	if kind, id, ok := strings.Cut(s, ":"); ok {
		switch strings.ToLower(kind) {
		case "city", "town":
			return ledger.City(id), nil
		case "expedition", "exp":
			return ledger.Expedition(id), nil
		}
		return ledger.Location{}, fmt.Errorf("unknown location kind %q (want city or expedition)", kind)
	}

	switch {
	case strings.HasPrefix(s, "TOWN-"):
		return ledger.City(s), nil
	case strings.HasPrefix(s, "EXP-"):
		return ledger.Expedition(s), nil
	}
	return ledger.Location{}, fmt.Errorf("cannot tell what %q is; use city:ID or expedition:ID", s)
}

// Deposit adds resources at a location.
func (a *LedgerAdapter) Deposit(ctx context.Context, location, resource string, amount int) error {
	loc, err := ParseLocation(location)
	if err != nil {
		return err
	}
	line, err := a.service.Deposit(ctx, primary.StockRequest{Location: loc, Resource: resource, Amount: amount})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Deposited %d %s at %s (now %d)\n", amount, line.ResourceName, loc, line.Quantity)
	return nil
}

// Withdraw removes resources from a location.
func (a *LedgerAdapter) Withdraw(ctx context.Context, location, resource string, amount int) error {
	loc, err := ParseLocation(location)
	if err != nil {
		return err
	}
	line, err := a.service.Withdraw(ctx, primary.StockRequest{Location: loc, Resource: resource, Amount: amount})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Withdrew %d %s from %s (now %d)\n", amount, line.ResourceName, loc, line.Quantity)
	return nil
}

// Transfer moves resources between two locations.
func (a *LedgerAdapter) Transfer(ctx context.Context, from, to, resource string, amount int) error {
	src, err := ParseLocation(from)
	if err != nil {
		return err
	}
	dst, err := ParseLocation(to)
	if err != nil {
		return err
	}
	if err := a.service.Transfer(ctx, primary.TransferRequest{From: src, To: dst, Resource: resource, Amount: amount}); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Moved %d %s from %s to %s\n", amount, resource, src, dst)
	return nil
}

// Stock lists what a location holds.
func (a *LedgerAdapter) Stock(ctx context.Context, location string) error {
	loc, err := ParseLocation(location)
	if err != nil {
		return err
	}
	lines, err := a.service.ListStock(ctx, loc)
	if err != nil {
		return fmt.Errorf("failed to list stock: %w", err)
	}

	if len(lines) == 0 {
		fmt.Fprintf(a.out, "%s holds nothing\n", loc)
		return nil
	}

	printStock(a.out, lines)
	return nil
}

// Resources lists known resource types.
func (a *LedgerAdapter) Resources(ctx context.Context) error {
	types, err := a.service.ListResourceTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list resource types: %w", err)
	}

	if len(types) == 0 {
		fmt.Fprintln(a.out, "No resource types found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %s\n", "ID", "NAME")
	fmt.Fprintln(a.out, "────────────────────────────────")
	for _, rt := range types {
		fmt.Fprintf(a.out, "%-10s %s\n", rt.ID, rt.Name)
	}
	fmt.Fprintln(a.out)
	return nil
}

// AddResource registers a new resource type.
func (a *LedgerAdapter) AddResource(ctx context.Context, name string) error {
	rt, err := a.service.CreateResourceType(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created resource type %s: %s\n", rt.ID, rt.Name)
	return nil
}

func printStock(out io.Writer, lines []*primary.StockLine) {
	fmt.Fprintf(out, "\n%-16s %8s\n", "RESOURCE", "QUANTITY")
	fmt.Fprintln(out, "─────────────────────────")
	for _, l := range lines {
		name := l.ResourceName
		if name == "" {
			name = l.ResourceTypeID
		}
		fmt.Fprintf(out, "%-16s %8d\n", name, l.Quantity)
	}
	fmt.Fprintln(out)
}
