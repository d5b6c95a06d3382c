package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/bastion/internal/ports/primary"
)

// CharacterAdapter translates CLI operations to VitalsService calls.
type CharacterAdapter struct {
	service primary.VitalsService
	out     io.Writer
}

// NewCharacterAdapter creates a new CharacterAdapter with the given service.
func NewCharacterAdapter(service primary.VitalsService, out io.Writer) *CharacterAdapter {
	return &CharacterAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new character.
func (a *CharacterAdapter) Create(ctx context.Context, userID, townID, name string, now time.Time) error {
	resp, err := a.service.CreateCharacter(ctx, primary.CreateCharacterRequest{
		UserID: userID,
		TownID: townID,
		Name:   name,
		Now:    now,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created character %s: %s in %s\n", resp.CharacterID, resp.Character.Name, resp.Character.TownID)
	return nil
}

// List lists characters.
func (a *CharacterAdapter) List(ctx context.Context, filters primary.CharacterFilters) error {
	chars, err := a.service.ListCharacters(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list characters: %w", err)
	}

	if len(chars) == 0 {
		fmt.Fprintln(a.out, "No characters found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-10s %-10s %-16s %3s %3s %6s %3s  %s\n", "ID", "TOWN", "NAME", "HP", "PM", "HUNGER", "PA", "STATE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, c := range chars {
		fmt.Fprintf(a.out, "%-10s %-10s %-16s %3d %3d %6d %3d  %s\n",
			c.ID, c.TownID, c.Name, c.HP, c.PM, c.Hunger, c.PA, characterState(c))
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays one character.
func (a *CharacterAdapter) Show(ctx context.Context, characterID string) (*primary.Character, error) {
	c, err := a.service.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}

	fmt.Fprintf(a.out, "\nCharacter: %s\n", c.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", c.Name)
	fmt.Fprintf(a.out, "User:    %s\n", c.UserID)
	fmt.Fprintf(a.out, "Town:    %s\n", c.TownID)
	fmt.Fprintf(a.out, "State:   %s\n", characterState(c))
	fmt.Fprintf(a.out, "HP %d  PM %d  Hunger %d  PA %d\n", c.HP, c.PM, c.Hunger, c.PA)
	if c.AgonySince != nil {
		fmt.Fprintf(a.out, "Agony since: %s\n", c.AgonySince.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(a.out, "PA refreshed: %s\n", c.LastPAUpdate.Format("2006-01-02 15:04"))
	fmt.Fprintln(a.out)

	return c, nil
}

// SetVitals proposes new hp and/or hunger values.
func (a *CharacterAdapter) SetVitals(ctx context.Context, characterID string, hp, hunger *int, now time.Time) error {
	if hp == nil && hunger == nil {
		return fmt.Errorf("must specify at least --hp or --hunger")
	}

	change, err := a.service.ApplyVitals(ctx, primary.ApplyVitalsRequest{
		CharacterID: characterID,
		HP:          hp,
		Hunger:      hunger,
		Now:         now,
	})
	if err != nil {
		return err
	}

	c := change.Character
	fmt.Fprintf(a.out, "✓ %s now HP %d, hunger %d\n", c.ID, c.HP, c.Hunger)
	for _, ev := range change.Events {
		fmt.Fprintf(a.out, "  %s %s\n", eventMarker(ev.Kind), ev.Summary())
	}
	return nil
}

// Daily runs the single-character daily update.
func (a *CharacterAdapter) Daily(ctx context.Context, characterID string, now time.Time) error {
	change, err := a.service.RegenerateDaily(ctx, characterID, now)
	if err != nil {
		return err
	}

	c := change.Character
	fmt.Fprintf(a.out, "✓ %s: +%d PA, -%d hunger (HP %d, hunger %d, PA %d)\n",
		c.ID, change.PAGained, change.HungerLost, c.HP, c.Hunger, c.PA)
	for _, ev := range change.Events {
		fmt.Fprintf(a.out, "  %s %s\n", eventMarker(ev.Kind), ev.Summary())
	}
	return nil
}

func characterState(c *primary.Character) string {
	switch {
	case c.IsDead:
		return color.New(color.FgRed).Sprint("DEAD")
	case c.AgonySince != nil:
		return color.New(color.FgYellow).Sprint("AGONY")
	case c.PM == 0:
		return color.New(color.FgHiMagenta).Sprint("DEPRESSED")
	default:
		return color.New(color.FgGreen).Sprint("OK")
	}
}
