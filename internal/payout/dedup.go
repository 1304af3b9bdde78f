package payout

import (
	"context"
	"log/slog"
	"sort"

	"github.com/fleetpay/fleetpay/internal/identity"
	"github.com/fleetpay/fleetpay/internal/models"
)

// Group is a payable group: one human across all the characters they
// flew. Groups are derived, never stored — they are recomputed from the
// roster on every calculation so that roster edits take effect
// immediately.
type Group struct {
	// MainCharacterID and MainCharacterName are the payable identity.
	MainCharacterID   int64
	MainCharacterName string

	// Entries are the roster entries collapsed into this group.
	Entries []models.FleetParticipant

	// IsScout is true if any member entry carries the scout role.
	IsScout bool

	// Excluded is true if any member entry is excluded from payout.
	Excluded bool
}

// Deduplicate collapses roster entries into one group per main
// character. Every input entry lands in exactly one group. Entries
// whose main cannot be resolved group under their own character.
//
// Calling Deduplicate with groups from a previous call merges into
// them rather than overwriting, so rosters can be folded in batches.
func Deduplicate(ctx context.Context, entries []models.FleetParticipant, resolver identity.Resolver, groups map[int64]*Group) map[int64]*Group {
	if groups == nil {
		groups = make(map[int64]*Group)
	}

	for _, entry := range entries {
		mainID, mainName := entry.MainCharacterID, entry.MainCharacterName
		if mainID == 0 {
			if resolver != nil {
				mainID, mainName = resolver.ResolveMain(ctx, entry.CharacterID, entry.CharacterName)
			} else {
				mainID, mainName = entry.CharacterID, entry.CharacterName
			}
		}

		g, ok := groups[mainID]
		if !ok {
			g = &Group{MainCharacterID: mainID, MainCharacterName: mainName}
			groups[mainID] = g
		}
		g.Entries = append(g.Entries, entry)
		if entry.IsScout() {
			g.IsScout = true
		}
		if entry.Excluded {
			g.Excluded = true
		}
	}

	slog.Info("deduplicated fleet roster",
		"entries", len(entries),
		"unique_players", len(groups),
	)
	return groups
}

// AltCharacterIDs returns the character IDs collapsed into g, sorted.
func (g *Group) AltCharacterIDs() []int64 {
	ids := make([]int64, 0, len(g.Entries))
	for _, e := range g.Entries {
		ids = append(ids, e.CharacterID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// sortedGroupIDs returns map keys in ascending order so calculation
// output is deterministic.
func sortedGroupIDs(groups map[int64]*Group) []int64 {
	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
