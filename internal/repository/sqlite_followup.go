package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/dealnotes/internal/db"
	"github.com/alexanderramin/dealnotes/internal/domain"
)

// SQLiteFollowupRepo implements FollowupRepo using a SQLite database.
type SQLiteFollowupRepo struct {
	db db.DBTX
}

// NewSQLiteFollowupRepo creates a new SQLiteFollowupRepo.
func NewSQLiteFollowupRepo(conn db.DBTX) *SQLiteFollowupRepo {
	return &SQLiteFollowupRepo{db: conn}
}

func (r *SQLiteFollowupRepo) Upsert(ctx context.Context, f *domain.FollowupContent) error {
	query := `INSERT INTO followups (id, interaction_id, email_text, message_text, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(interaction_id) DO UPDATE SET
			id = excluded.id,
			email_text = excluded.email_text,
			message_text = excluded.message_text,
			created_at = excluded.created_at`
	_, err := r.db.ExecContext(ctx, query,
		f.ID,
		f.InteractionID,
		f.EmailText,
		f.MessageText,
		instant(f.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting followup: %w", err)
	}
	return nil
}

func (r *SQLiteFollowupRepo) GetByInteraction(ctx context.Context, interactionID string) (*domain.FollowupContent, error) {
	query := `SELECT id, interaction_id, email_text, message_text, created_at
		FROM followups WHERE interaction_id = ?`
	var f domain.FollowupContent
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, query, interactionID).
		Scan(&f.ID, &f.InteractionID, &f.EmailText, &f.MessageText, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("followup: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning followup: %w", err)
	}
	if f.CreatedAt, err = parseInstant("created_at", createdAtStr); err != nil {
		return nil, err
	}
	return &f, nil
}
