package game

// IncomeLine records the income contribution of one item holding during the
// income resolution phase.
type IncomeLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Amount   int64  `json:"amount"`
}

// AttackLine records one applied attack against a defender.
type AttackLine struct {
	AttackerID string `json:"attacker_id"`
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	Damage     int64  `json:"damage"`
}

// ParticipantResult aggregates everything that happened to one entity in a
// settled round: balance movement, income breakdown and combat breakdown.
type ParticipantResult struct {
	EntityID        string `json:"entity_id"`
	StartingBalance int64  `json:"starting_balance"`
	EndingBalance   int64  `json:"ending_balance"`

	Income      int64        `json:"income"`
	IncomeLines []IncomeLine `json:"income_lines,omitempty"`

	// Combat, as a defender.
	AttackerCount     int          `json:"attacker_count"`
	TotalAttackDamage int64        `json:"total_attack_damage"`
	TotalDefense      int64        `json:"total_defense"`
	NetDamage         int64        `json:"net_damage"`
	AttackLines       []AttackLine `json:"attack_lines,omitempty"`

	// Combat, as an attacker.
	DamageDealt int64 `json:"damage_dealt"`
}

// RoundResult is the aggregate returned by round settlement. Participants is
// ordered deterministically (by entity ID) so formatting and tests are
// stable.
type RoundResult struct {
	RoundNumber    int                  `json:"round_number"`
	EventOutcome   EventOutcome         `json:"event_outcome"`
	SkippedIntents int                  `json:"skipped_intents"`
	Participants   []*ParticipantResult `json:"participants"`
}

// Participant returns the result entry for the given entity, creating and
// registering an empty one the first time it is requested.
func (r *RoundResult) Participant(entityID string) *ParticipantResult {
	for _, p := range r.Participants {
		if p.EntityID == entityID {
			return p
		}
	}
	p := &ParticipantResult{EntityID: entityID}
	r.Participants = append(r.Participants, p)
	return p
}

// BalanceSwing is the absolute balance movement for a participant; the
// default formatter comparator ranks segments by it.
func (p *ParticipantResult) BalanceSwing() int64 {
	d := p.EndingBalance - p.StartingBalance
	if d < 0 {
		d = -d
	}
	return d
}

// CombatVolume is the total combat activity touching the participant, used
// as a tie-breaker when ranking formatter segments.
func (p *ParticipantResult) CombatVolume() int64 {
	return p.TotalAttackDamage + p.DamageDealt
}
