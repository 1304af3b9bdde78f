package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fleetpay/fleetpay/internal/models"
	"github.com/fleetpay/fleetpay/internal/storage"
)

// CreateFleet persists a new fleet.
func (s *SQLiteStore) CreateFleet(ctx context.Context, fleet *models.Fleet) error {
	if fleet.ID == "" {
		fleet.ID = uuid.New().String()
	}
	if fleet.CreatedAt == 0 {
		fleet.CreatedAt = time.Now().Unix()
	}
	if fleet.Status == "" {
		fleet.Status = models.FleetStatusDraft
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO fleets (id, name, fc_character_id, status, created_at) VALUES (?, ?, ?, ?, ?)",
		fleet.ID, fleet.Name, fleet.FCCharacterID, fleet.Status, fleet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fleet: %w", err)
	}
	return nil
}

// GetFleet retrieves a fleet by ID.
func (s *SQLiteStore) GetFleet(ctx context.Context, fleetID string) (*models.Fleet, error) {
	fleet := &models.Fleet{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, fc_character_id, status, created_at FROM fleets WHERE id = ?",
		fleetID,
	).Scan(&fleet.ID, &fleet.Name, &fleet.FCCharacterID, &fleet.Status, &fleet.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("fleet %s: %w", fleetID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fleet: %w", err)
	}
	return fleet, nil
}

// UpdateFleetStatus moves a fleet to the given status.
func (s *SQLiteStore) UpdateFleetStatus(ctx context.Context, fleetID string, status models.FleetStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE fleets SET status = ? WHERE id = ?",
		status, fleetID,
	)
	if err != nil {
		return fmt.Errorf("failed to update fleet status: %w", err)
	}
	return requireRow(res, "fleet", fleetID)
}

// AddParticipants inserts roster entries in bulk, skipping entries whose
// (fleet, character) pair already exists.
func (s *SQLiteStore) AddParticipants(ctx context.Context, fleetID string, entries []models.FleetParticipant) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	added, skipped := 0, 0
	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.Role == "" {
			e.Role = models.RoleRegular
		}
		if e.JoinedAt == 0 {
			e.JoinedAt = time.Now().Unix()
		}
		e.FleetID = fleetID

		res, err := tx.ExecContext(ctx,
			`INSERT INTO participants
			 (id, fleet_id, character_id, character_name, main_character_id, main_character_name, role, excluded, joined_at, left_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (fleet_id, character_id) DO NOTHING`,
			e.ID, e.FleetID, e.CharacterID, e.CharacterName,
			e.MainCharacterID, e.MainCharacterName,
			e.Role, e.Excluded, e.JoinedAt, e.LeftAt,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert participant: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			skipped++
		} else {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return added, skipped, nil
}

// ListParticipants returns a fleet's roster.
func (s *SQLiteStore) ListParticipants(ctx context.Context, fleetID string, activeOnly bool) ([]models.FleetParticipant, error) {
	query := `SELECT id, fleet_id, character_id, character_name, main_character_id, main_character_name,
	          role, excluded, joined_at, left_at
	          FROM participants WHERE fleet_id = ?`
	if activeOnly {
		query += " AND left_at = 0"
	}
	query += " ORDER BY joined_at, character_id"

	rows, err := s.db.QueryContext(ctx, query, fleetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var entries []models.FleetParticipant
	for rows.Next() {
		var e models.FleetParticipant
		if err := rows.Scan(&e.ID, &e.FleetID, &e.CharacterID, &e.CharacterName,
			&e.MainCharacterID, &e.MainCharacterName,
			&e.Role, &e.Excluded, &e.JoinedAt, &e.LeftAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return entries, nil
}

// SetParticipantFlags updates the role and exclusion flag.
func (s *SQLiteStore) SetParticipantFlags(ctx context.Context, participantID string, role models.Role, excluded bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET role = ?, excluded = ? WHERE id = ?",
		role, excluded, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant flags: %w", err)
	}
	return requireRow(res, "participant", participantID)
}

// SetParticipantLeft records when a participant left the fleet.
func (s *SQLiteStore) SetParticipantLeft(ctx context.Context, participantID string, leftAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET left_at = ? WHERE id = ?",
		leftAt, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return requireRow(res, "participant", participantID)
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
