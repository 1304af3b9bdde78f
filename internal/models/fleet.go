package models

// FleetStatus tracks a fleet through its lifecycle.
type FleetStatus string

const (
	FleetStatusDraft     FleetStatus = "draft"
	FleetStatusActive    FleetStatus = "active"
	FleetStatusCompleted FleetStatus = "completed"
	FleetStatusPaid      FleetStatus = "paid"
)

// Role is a participant's role in a fleet. Scouts receive a bonus
// weighted share during payout calculation.
type Role string

const (
	RoleRegular Role = "regular"
	RoleScout   Role = "scout"
)

// Fleet represents one group activity (an op) whose loot is distributed.
type Fleet struct {
	// ID is the unique identifier for the fleet (UUID format).
	ID string

	// Name is the display name of the fleet (e.g., "Sunday C5 dive").
	Name string

	// FCCharacterID is the fleet commander's character ID. The FC sends
	// the payouts, so payment verification reads this wallet's journal.
	FCCharacterID int64

	Status FleetStatus

	// CreatedAt is the Unix timestamp when the fleet was created.
	CreatedAt int64
}

// FleetParticipant is one character's participation record in one fleet.
//
// A human may bring several characters (alts); deduplication collapses
// them into one payable group keyed by the main character. Once a fleet
// is completed only the scout/exclusion flags and LeftAt may change.
type FleetParticipant struct {
	// ID is the unique identifier for the participant record (UUID format).
	ID string

	// FleetID is the fleet this record belongs to.
	FleetID string

	// CharacterID and CharacterName identify the character that flew.
	CharacterID   int64
	CharacterName string

	// MainCharacterID and MainCharacterName are the resolved payable
	// identity. Zero means resolution has not run; payout calculation
	// then falls back to the character itself.
	MainCharacterID   int64
	MainCharacterName string

	Role Role

	// Excluded removes this character from payout. If any of a human's
	// alts is excluded the whole human is excluded.
	Excluded bool

	// JoinedAt and LeftAt bound the participation window (Unix seconds).
	// LeftAt == 0 means the character is still in fleet.
	JoinedAt int64
	LeftAt   int64
}

// IsScout reports whether this entry carries the scout role.
func (p *FleetParticipant) IsScout() bool {
	return p.Role == RoleScout
}

// Active reports whether the participant has not left the fleet.
func (p *FleetParticipant) Active() bool {
	return p.LeftAt == 0
}
