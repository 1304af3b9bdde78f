package payout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetpay/fleetpay/internal/identity"
	"github.com/fleetpay/fleetpay/internal/models"
)

func entry(charID int64, name string, mainID int64, mainName string, role models.Role, excluded bool) models.FleetParticipant {
	return models.FleetParticipant{
		ID:                name,
		CharacterID:       charID,
		CharacterName:     name,
		MainCharacterID:   mainID,
		MainCharacterName: mainName,
		Role:              role,
		Excluded:          excluded,
	}
}

func TestDeduplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("alts collapse into one group per main", func(t *testing.T) {
		entries := []models.FleetParticipant{
			entry(101, "Alpha", 1, "Main One", models.RoleRegular, false),
			entry(102, "Alpha Alt", 1, "Main One", models.RoleRegular, false),
			entry(201, "Bravo", 2, "Main Two", models.RoleRegular, false),
		}
		groups := Deduplicate(ctx, entries, nil, nil)
		require.Len(t, groups, 2)
		assert.Len(t, groups[1].Entries, 2)
		assert.Len(t, groups[2].Entries, 1)
		assert.Equal(t, []int64{101, 102}, groups[1].AltCharacterIDs())
	})

	t.Run("scout and exclusion flags OR across alts", func(t *testing.T) {
		entries := []models.FleetParticipant{
			entry(101, "Alpha", 1, "Main One", models.RoleRegular, false),
			entry(102, "Alpha Alt", 1, "Main One", models.RoleScout, false),
			entry(201, "Bravo", 2, "Main Two", models.RoleRegular, true),
			entry(202, "Bravo Alt", 2, "Main Two", models.RoleRegular, false),
		}
		groups := Deduplicate(ctx, entries, nil, nil)
		require.Len(t, groups, 2)
		assert.True(t, groups[1].IsScout, "any scout alt makes the player a scout")
		assert.False(t, groups[1].Excluded)
		assert.True(t, groups[2].Excluded, "any excluded alt excludes the player")
		assert.False(t, groups[2].IsScout)
	})

	t.Run("unresolved main falls back to the character itself", func(t *testing.T) {
		entries := []models.FleetParticipant{
			entry(101, "Alpha", 0, "", models.RoleRegular, false),
		}
		groups := Deduplicate(ctx, entries, identity.NewMainResolver(nil), nil)
		require.Len(t, groups, 1)
		g := groups[101]
		require.NotNil(t, g)
		assert.Equal(t, "Alpha", g.MainCharacterName)
	})

	t.Run("resolver maps characters to mains", func(t *testing.T) {
		src := identity.NewStaticSource()
		src.SetMain(101, identity.Character{ID: 1, Name: "Main One"})
		src.SetMain(102, identity.Character{ID: 1, Name: "Main One"})

		entries := []models.FleetParticipant{
			entry(101, "Alpha", 0, "", models.RoleRegular, false),
			entry(102, "Alpha Alt", 0, "", models.RoleScout, false),
			entry(301, "Unknown", 0, "", models.RoleRegular, false),
		}
		groups := Deduplicate(ctx, entries, identity.NewMainResolver(src), nil)
		require.Len(t, groups, 2)
		assert.True(t, groups[1].IsScout)
		assert.Equal(t, "Unknown", groups[301].MainCharacterName)
	})

	t.Run("repeated calls merge instead of overwriting", func(t *testing.T) {
		first := Deduplicate(ctx, []models.FleetParticipant{
			entry(101, "Alpha", 1, "Main One", models.RoleRegular, false),
		}, nil, nil)
		merged := Deduplicate(ctx, []models.FleetParticipant{
			entry(102, "Alpha Alt", 1, "Main One", models.RoleScout, false),
		}, nil, first)

		require.Len(t, merged, 1)
		assert.Len(t, merged[1].Entries, 2)
		assert.True(t, merged[1].IsScout)
	})

	t.Run("no entry is dropped", func(t *testing.T) {
		entries := []models.FleetParticipant{
			entry(101, "Alpha", 1, "Main One", models.RoleRegular, false),
			entry(102, "Alpha Alt", 1, "Main One", models.RoleRegular, true),
			entry(201, "Bravo", 0, "", models.RoleScout, false),
		}
		groups := Deduplicate(ctx, entries, nil, nil)
		total := 0
		for _, g := range groups {
			total += len(g.Entries)
		}
		assert.Equal(t, len(entries), total)
	})
}
