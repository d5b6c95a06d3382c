// Package events defines the structured records the engine emits.
// Events are pure data - they describe what happened, not who gets told.
// Delivery belongs to whatever consumes the batch report or the outbox.
package events

import (
	"fmt"
	"time"
)

// Kind identifies an event type.
type Kind string

const (
	KindCharacterDied          Kind = "character_died"
	KindAgonyEntered           Kind = "agony_entered"
	KindAgonyLeft              Kind = "agony_left"
	KindExpeditionLocked       Kind = "expedition_locked"
	KindExpeditionDeparted     Kind = "expedition_departed"
	KindExpeditionReturned     Kind = "expedition_returned"
	KindCatastrophicReturn     Kind = "catastrophic_return"
	KindCannotDepart           Kind = "cannot_depart"
	KindEmergencyReturn        Kind = "emergency_return"
	KindEmergencyReturnBlocked Kind = "emergency_return_blocked"
	KindPMContagion            Kind = "pm_contagion"
)

// ResourceLoss is one resource line of an emergency return.
type ResourceLoss struct {
	ResourceTypeID string `json:"resource_type_id"`
	ResourceName   string `json:"resource_name,omitempty"`
	Lost           int    `json:"lost"`
	Remaining      int    `json:"remaining"`
}

// Event is one structured engine event.
type Event struct {
	Kind              Kind           `json:"kind"`
	OccurredAt        time.Time      `json:"occurred_at"`
	Phase             string         `json:"phase,omitempty"`
	CharacterID       string         `json:"character_id,omitempty"`
	SourceCharacterID string         `json:"source_character_id,omitempty"`
	ExpeditionID      string         `json:"expedition_id,omitempty"`
	TownID            string         `json:"town_id,omitempty"`
	Losses            []ResourceLoss `json:"losses,omitempty"`
	Crew              []string       `json:"crew,omitempty"`
	Detail            string         `json:"detail,omitempty"`
}

// Summary renders a one-line human description.
func (e Event) Summary() string {
	switch e.Kind {
	case KindCharacterDied:
		return fmt.Sprintf("%s died (%s)", e.CharacterID, e.Detail)
	case KindAgonyEntered:
		return fmt.Sprintf("%s entered agony", e.CharacterID)
	case KindAgonyLeft:
		return fmt.Sprintf("%s recovered from agony", e.CharacterID)
	case KindExpeditionLocked:
		return fmt.Sprintf("%s locked", e.ExpeditionID)
	case KindExpeditionDeparted:
		return fmt.Sprintf("%s departed, back %s", e.ExpeditionID, e.Detail)
	case KindExpeditionReturned:
		return fmt.Sprintf("%s returned to %s (%s)", e.ExpeditionID, e.TownID, e.Detail)
	case KindCatastrophicReturn:
		return fmt.Sprintf("%s could not afford upkeep and left %s (%s)", e.CharacterID, e.ExpeditionID, e.Detail)
	case KindCannotDepart:
		return fmt.Sprintf("%s cannot afford to depart with %s", e.CharacterID, e.ExpeditionID)
	case KindEmergencyReturn:
		lost := 0
		for _, l := range e.Losses {
			lost += l.Lost
		}
		return fmt.Sprintf("%s emergency return to %s, %d unit(s) lost", e.ExpeditionID, e.TownID, lost)
	case KindEmergencyReturnBlocked:
		return fmt.Sprintf("%s emergency return blocked: %s", e.ExpeditionID, e.Detail)
	case KindPMContagion:
		return fmt.Sprintf("%s dragged %s's morale down", e.SourceCharacterID, e.CharacterID)
	default:
		return string(e.Kind)
	}
}

// CharacterDied records a death; cause is "hp" or "agony".
func CharacterDied(characterID, cause string, at time.Time) Event {
	return Event{Kind: KindCharacterDied, OccurredAt: at, CharacterID: characterID, Detail: cause}
}

// AgonyEntered records a character entering agony.
func AgonyEntered(characterID string, at time.Time) Event {
	return Event{Kind: KindAgonyEntered, OccurredAt: at, CharacterID: characterID}
}

// AgonyLeft records a character healed out of agony.
func AgonyLeft(characterID string, at time.Time) Event {
	return Event{Kind: KindAgonyLeft, OccurredAt: at, CharacterID: characterID}
}

// ExpeditionLocked records a PLANNING->LOCKED transition.
func ExpeditionLocked(expeditionID, townID string, at time.Time) Event {
	return Event{Kind: KindExpeditionLocked, OccurredAt: at, ExpeditionID: expeditionID, TownID: townID}
}

// ExpeditionDeparted records a LOCKED->DEPARTED transition.
func ExpeditionDeparted(expeditionID, townID string, returnAt, at time.Time) Event {
	return Event{
		Kind:         KindExpeditionDeparted,
		OccurredAt:   at,
		ExpeditionID: expeditionID,
		TownID:       townID,
		Detail:       returnAt.Format(time.RFC3339),
	}
}

// ExpeditionReturned records a normal return; reason is e.g. "scheduled",
// "cancelled" or "abandoned". crew is the roster as it stood on return.
func ExpeditionReturned(expeditionID, townID, reason string, at time.Time, crew ...string) Event {
	return Event{Kind: KindExpeditionReturned, OccurredAt: at, ExpeditionID: expeditionID, TownID: townID, Detail: reason, Crew: crew}
}

// CatastrophicReturn records a member forced home for lack of PA.
func CatastrophicReturn(expeditionID, characterID string, paid int, at time.Time) Event {
	return Event{
		Kind:         KindCatastrophicReturn,
		OccurredAt:   at,
		ExpeditionID: expeditionID,
		CharacterID:  characterID,
		Detail:       fmt.Sprintf("paid %d PA", paid),
	}
}

// CannotDepart records a LOCKED member dropped for lack of PA.
func CannotDepart(expeditionID, characterID string, at time.Time) Event {
	return Event{Kind: KindCannotDepart, OccurredAt: at, ExpeditionID: expeditionID, CharacterID: characterID}
}

// EmergencyReturn records a crew-voted early return and what it cost.
func EmergencyReturn(expeditionID, townID string, losses []ResourceLoss, at time.Time, crew ...string) Event {
	return Event{Kind: KindEmergencyReturn, OccurredAt: at, ExpeditionID: expeditionID, TownID: townID, Losses: losses, Crew: crew}
}

// EmergencyReturnBlocked records a flagged expedition that could not come back.
func EmergencyReturnBlocked(expeditionID, reason string, at time.Time) Event {
	return Event{Kind: KindEmergencyReturnBlocked, OccurredAt: at, ExpeditionID: expeditionID, Detail: reason}
}

// PMContagion records one -1 PM transfer.
func PMContagion(sourceID, victimID string, at time.Time) Event {
	return Event{Kind: KindPMContagion, OccurredAt: at, SourceCharacterID: sourceID, CharacterID: victimID}
}
