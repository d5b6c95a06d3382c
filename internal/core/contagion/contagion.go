// Package contagion contains the pure business logic for depression spread.
// This is part of the Functional Core - no I/O, only pure functions.
package contagion

import "sort"

// Random is the subset of a random source victim selection needs.
type Random interface {
	IntN(n int) int
}

// Subject is one living character in the pass snapshot.
type Subject struct {
	CharacterID string
	PM          int
	IsDead      bool
	// LocationKey identifies where the character is: its town, or the
	// DEPARTED expedition it belongs to. Characters only affect others
	// sharing the same key.
	LocationKey string
}

// Depressed reports whether the subject spreads depression.
func (s Subject) Depressed() bool {
	return !s.IsDead && s.PM == 0
}

// Transfer is one planned -1 PM from a depressed character to a victim.
type Transfer struct {
	SourceID    string
	VictimID    string
	LocationKey string
}

// TownKey returns the location key of a character staying in town.
func TownKey(townID string) string {
	return "town:" + townID
}

// ExpeditionKey returns the location key of a member of a DEPARTED expedition.
func ExpeditionKey(expeditionID string) string {
	return "expedition:" + expeditionID
}

// Plan selects one victim per depressed subject.
//
// Eligibility is evaluated against the snapshot as given, so a victim
// pushed to 0 PM by this pass only starts spreading on the next one.
// A victim may be chosen by several depressed peers. Depressed subjects
// with no eligible peer are skipped.
//
// Subjects are processed in CharacterID order so a seeded Random yields
// a reproducible plan.
func Plan(subjects []Subject, rng Random) []Transfer {
	byLocation := make(map[string][]Subject)
	for _, s := range subjects {
		if s.IsDead {
			continue
		}
		byLocation[s.LocationKey] = append(byLocation[s.LocationKey], s)
	}

	ordered := make([]Subject, 0, len(subjects))
	ordered = append(ordered, subjects...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CharacterID < ordered[j].CharacterID
	})

	var transfers []Transfer
	for _, source := range ordered {
		if !source.Depressed() {
			continue
		}
		candidates := EligibleVictims(source, byLocation[source.LocationKey])
		if len(candidates) == 0 {
			continue
		}
		victim := candidates[rng.IntN(len(candidates))]
		transfers = append(transfers, Transfer{
			SourceID:    source.CharacterID,
			VictimID:    victim.CharacterID,
			LocationKey: source.LocationKey,
		})
	}
	return transfers
}

// EligibleVictims returns the peers source can affect, sorted by ID.
// Rule: alive, PM above 0, same location, not source itself.
func EligibleVictims(source Subject, peers []Subject) []Subject {
	var out []Subject
	for _, p := range peers {
		if p.CharacterID == source.CharacterID || p.IsDead || p.PM <= 0 {
			continue
		}
		if p.LocationKey != source.LocationKey {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CharacterID < out[j].CharacterID
	})
	return out
}
