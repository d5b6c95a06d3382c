package expedition

// UpkeepOutcome describes what the daily PA charge does to one member.
type UpkeepOutcome string

const (
	// UpkeepPaid: the member paid the full cost and stays.
	UpkeepPaid UpkeepOutcome = "paid"
	// UpkeepCatastrophicReturn: a DEPARTED member could not pay, loses all
	// PA and is sent home alone.
	UpkeepCatastrophicReturn UpkeepOutcome = "catastrophic_return"
	// UpkeepCannotDepart: a LOCKED member could not pay and is dropped
	// before departure without penalty.
	UpkeepCannotDepart UpkeepOutcome = "cannot_depart"
	// UpkeepSkipped: nothing to charge (dead member, non-chargeable status,
	// or expedition awaiting an emergency return).
	UpkeepSkipped UpkeepOutcome = "skipped"
)

// UpkeepInput is everything the upkeep rule looks at for one member.
type UpkeepInput struct {
	Status                 Status
	PendingEmergencyReturn bool
	MemberDead             bool
	PA                     int
	Cost                   int
}

// UpkeepDecision is the result of DecideUpkeep.
type UpkeepDecision struct {
	Outcome UpkeepOutcome
	NewPA   int
	Paid    int
	Remove  bool
}

// DecideUpkeep applies the daily expedition cost rule to one member.
// Callers must have run the member's daily regeneration first.
func DecideUpkeep(in UpkeepInput) UpkeepDecision {
	skip := UpkeepDecision{Outcome: UpkeepSkipped, NewPA: in.PA}
	if in.PendingEmergencyReturn || in.MemberDead {
		return skip
	}
	if in.Status != StatusLocked && in.Status != StatusDeparted {
		return skip
	}

	if in.PA >= in.Cost {
		return UpkeepDecision{Outcome: UpkeepPaid, NewPA: in.PA - in.Cost, Paid: in.Cost}
	}

	if in.Status == StatusLocked {
		return UpkeepDecision{Outcome: UpkeepCannotDepart, NewPA: in.PA, Remove: true}
	}
	return UpkeepDecision{Outcome: UpkeepCatastrophicReturn, NewPA: 0, Paid: in.PA, Remove: true}
}

// EmergencyThreshold returns the number of votes that flags an emergency
// return: ceil(memberCount * ratio), at least 1.
func EmergencyThreshold(memberCount int, ratio float64) int {
	if ratio <= 0 {
		ratio = 0.5
	}
	// integer ceil on a percentage avoids float rounding at exact halves
	pct := int(ratio*100 + 0.5)
	threshold := (memberCount*pct + 99) / 100
	if threshold < 1 {
		threshold = 1
	}
	return threshold
}

// VotesReachThreshold reports whether votes flag an emergency return.
func VotesReachThreshold(votes, memberCount int, ratio float64) bool {
	if memberCount == 0 {
		return false
	}
	return votes >= EmergencyThreshold(memberCount, ratio)
}
