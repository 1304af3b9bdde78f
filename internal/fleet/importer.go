// Package fleet imports fleet rosters from an external composition
// source. The core only consumes the resulting participant records; the
// import transport lives behind CompositionSource.
package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fleetpay/fleetpay/internal/identity"
	"github.com/fleetpay/fleetpay/internal/models"
	"github.com/fleetpay/fleetpay/internal/storage"
)

// Member is one character in an external fleet composition.
type Member struct {
	CharacterID   int64
	CharacterName string
	JoinTime      time.Time
}

// CompositionSource supplies the live membership of an external fleet.
type CompositionSource interface {
	FleetMembers(ctx context.Context, externalFleetID int64) ([]Member, error)
}

// ImportResult summarizes one roster import.
type ImportResult struct {
	Added         int
	Skipped       int
	UniquePlayers int
}

// Importer pulls fleet compositions into the roster, resolving each
// character's main at import time.
type Importer struct {
	store    storage.Store
	resolver identity.Resolver
	clock    clockwork.Clock
}

// NewImporter creates an importer. clock may be nil for the real clock.
func NewImporter(store storage.Store, resolver identity.Resolver, clock clockwork.Clock) *Importer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Importer{store: store, resolver: resolver, clock: clock}
}

// Import fetches the external fleet's members and adds them to the
// roster. Characters already on the roster are skipped, keeping their
// original join time and flags.
func (i *Importer) Import(ctx context.Context, fleetID string, externalFleetID int64, src CompositionSource) (*ImportResult, error) {
	members, err := src.FleetMembers(ctx, externalFleetID)
	if err != nil {
		return nil, fmt.Errorf("fleet composition fetch failed: %w", err)
	}

	entries := make([]models.FleetParticipant, 0, len(members))
	for _, m := range members {
		if m.CharacterID == 0 {
			slog.Warn("skipping member with no character", "fleet_id", fleetID)
			continue
		}
		mainID, mainName := m.CharacterID, m.CharacterName
		if i.resolver != nil {
			mainID, mainName = i.resolver.ResolveMain(ctx, m.CharacterID, m.CharacterName)
		}
		joined := m.JoinTime
		if joined.IsZero() {
			joined = i.clock.Now()
		}
		entries = append(entries, models.FleetParticipant{
			CharacterID:       m.CharacterID,
			CharacterName:     m.CharacterName,
			MainCharacterID:   mainID,
			MainCharacterName: mainName,
			Role:              models.RoleRegular,
			JoinedAt:          joined.Unix(),
		})
	}

	added, skipped, err := i.store.AddParticipants(ctx, fleetID, entries)
	if err != nil {
		return nil, fmt.Errorf("roster insert failed: %w", err)
	}

	// Unique players are counted over this import's members, skipped
	// or not.
	mains := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		mains[e.MainCharacterID] = struct{}{}
	}

	res := &ImportResult{Added: added, Skipped: skipped, UniquePlayers: len(mains)}
	slog.Info("imported fleet composition",
		"fleet_id", fleetID,
		"external_fleet_id", externalFleetID,
		"added", res.Added,
		"skipped", res.Skipped,
		"unique_players", res.UniquePlayers,
	)
	return res, nil
}
