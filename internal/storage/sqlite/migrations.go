package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS fleets (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    fc_character_id INTEGER NOT NULL,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    fleet_id TEXT NOT NULL,
    character_id INTEGER NOT NULL,
    character_name TEXT NOT NULL,
    main_character_id INTEGER NOT NULL DEFAULT 0,
    main_character_name TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL,
    excluded INTEGER NOT NULL DEFAULT 0,
    joined_at INTEGER NOT NULL,
    left_at INTEGER NOT NULL DEFAULT 0,
    UNIQUE (fleet_id, character_id),
    FOREIGN KEY (fleet_id) REFERENCES fleets(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS pools (
    id TEXT PRIMARY KEY,
    fleet_id TEXT NOT NULL,
    status TEXT NOT NULL,
    raw_loot_text TEXT NOT NULL DEFAULT '',
    pricing_method TEXT NOT NULL,
    corp_share_pct TEXT NOT NULL,
    scout_bonus_pct TEXT NOT NULL,
    total_value TEXT NOT NULL DEFAULT '0',
    created_at INTEGER NOT NULL,
    valued_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (fleet_id) REFERENCES fleets(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS loot_items (
    id TEXT PRIMARY KEY,
    pool_id TEXT NOT NULL,
    type_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    unit_price TEXT NOT NULL,
    total_value TEXT NOT NULL,
    source TEXT NOT NULL,
    manual_override INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (pool_id) REFERENCES pools(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payouts (
    id TEXT PRIMARY KEY,
    pool_id TEXT NOT NULL,
    recipient_id INTEGER NOT NULL,
    recipient_name TEXT NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL,
    method TEXT NOT NULL,
    is_scout INTEGER NOT NULL DEFAULT 0,
    verified INTEGER NOT NULL DEFAULT 0,
    verified_at INTEGER NOT NULL DEFAULT 0,
    paid_at INTEGER NOT NULL DEFAULT 0,
    transaction_ref TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    UNIQUE (pool_id, recipient_id),
    FOREIGN KEY (pool_id) REFERENCES pools(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_participants_fleet_id ON participants(fleet_id);
CREATE INDEX IF NOT EXISTS idx_pools_fleet_id ON pools(fleet_id);
CREATE INDEX IF NOT EXISTS idx_loot_items_pool_id ON loot_items(pool_id);
CREATE INDEX IF NOT EXISTS idx_payouts_pool_id ON payouts(pool_id);
CREATE INDEX IF NOT EXISTS idx_payouts_status ON payouts(pool_id, status);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
