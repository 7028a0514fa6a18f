package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateObjectionsToJSON(db); err != nil {
		return fmt.Errorf("converting objections to JSON lists: %w", err)
	}
	return nil
}

// migrateObjectionsToJSON rewrites free-text objections left by older
// databases into JSON arrays. Rows already holding an array are untouched.
func migrateObjectionsToJSON(db *sql.DB) error {
	ctx := context.Background()
	rows, err := db.QueryContext(ctx, `SELECT id, objections FROM interactions WHERE objections NOT LIKE '[%'`)
	if err != nil {
		return fmt.Errorf("scanning legacy objections: %w", err)
	}
	type legacy struct {
		id, text string
	}
	var pending []legacy
	for rows.Next() {
		var l legacy
		var text sql.NullString
		if err := rows.Scan(&l.id, &text); err != nil {
			rows.Close()
			return fmt.Errorf("reading legacy objections: %w", err)
		}
		l.text = text.String
		pending = append(pending, l)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, l := range pending {
		list := legacyObjections(l.text)
		data, err := json.Marshal(list)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE interactions SET objections = ? WHERE id = ?`, string(data), l.id); err != nil {
			return fmt.Errorf("updating objections for %s: %w", l.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing objections migration: %w", err)
	}
	committed = true
	return nil
}

func legacyObjections(text string) []string {
	s := strings.TrimSpace(text)
	switch strings.ToLower(s) {
	case "", "none", "n/a", "no objections", "null":
		return []string{}
	}
	return []string{s}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		company     TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		active      INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name COLLATE NOCASE)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_email ON clients(email)`,

	`CREATE TABLE IF NOT EXISTS interactions (
		id              TEXT PRIMARY KEY,
		client_id       TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		date            TEXT NOT NULL,
		raw_text        TEXT NOT NULL,
		summary         TEXT NOT NULL,
		deal_stage      TEXT NOT NULL
		                CHECK(deal_stage IN ('prospecting','qualification','proposal','negotiation',
		                                     'closed_won','closed_lost','nurture','unknown')),
		objections      TEXT NOT NULL DEFAULT '[]',
		interest_level  TEXT NOT NULL
		                CHECK(interest_level IN ('low','medium','high')),
		next_action     TEXT NOT NULL DEFAULT '',
		followup_date   TEXT,
		created_at      TEXT NOT NULL
	)`,
	// Record versioning for corrective re-runs.
	`ALTER TABLE interactions ADD COLUMN version INTEGER NOT NULL DEFAULT 1`,
	`ALTER TABLE interactions ADD COLUMN supersedes_id TEXT REFERENCES interactions(id) ON DELETE SET NULL`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_client_date ON interactions(client_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_followup_date ON interactions(followup_date)`,
	// At most one version may replace a given record.
	`DROP INDEX IF EXISTS idx_interactions_supersedes`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_interactions_successor
		ON interactions(supersedes_id) WHERE supersedes_id IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS followups (
		id              TEXT PRIMARY KEY,
		interaction_id  TEXT NOT NULL UNIQUE REFERENCES interactions(id) ON DELETE CASCADE,
		email_text      TEXT NOT NULL,
		message_text    TEXT NOT NULL,
		created_at      TEXT NOT NULL
	)`,
}
