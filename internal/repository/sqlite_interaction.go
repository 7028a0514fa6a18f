package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/dealnotes/internal/db"
	"github.com/alexanderramin/dealnotes/internal/domain"
)

// SQLiteInteractionRepo implements InteractionRepo using a SQLite database.
type SQLiteInteractionRepo struct {
	db db.DBTX
}

// NewSQLiteInteractionRepo creates a new SQLiteInteractionRepo.
func NewSQLiteInteractionRepo(conn db.DBTX) *SQLiteInteractionRepo {
	return &SQLiteInteractionRepo{db: conn}
}

const interactionColumns = `id, client_id, date, raw_text, summary, deal_stage, objections,
	interest_level, next_action, followup_date, version, supersedes_id, created_at`

// notSuperseded restricts a query aliased "i" to the current version of each interaction.
const notSuperseded = `NOT EXISTS (SELECT 1 FROM interactions n WHERE n.supersedes_id = i.id)`

func (r *SQLiteInteractionRepo) Create(ctx context.Context, rec *domain.InteractionRecord) error {
	objections, err := marshalObjections(rec.Objections)
	if err != nil {
		return err
	}
	version := rec.Version
	if version < 1 {
		version = 1
	}
	query := `INSERT INTO interactions (` + interactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.ClientID,
		instant(rec.Date),
		rec.RawText,
		rec.Summary,
		string(rec.DealStage),
		objections,
		string(rec.InterestLevel),
		rec.NextAction,
		optionalDate(rec.FollowupDate),
		version,
		optional(rec.SupersedesID),
		instant(rec.CreatedAt),
	)
	if err != nil {
		if rec.SupersedesID != "" && strings.Contains(err.Error(), "UNIQUE constraint failed: interactions.supersedes_id") {
			return fmt.Errorf("%s: %w", rec.SupersedesID, ErrAlreadySuperseded)
		}
		return fmt.Errorf("inserting interaction: %w", err)
	}
	return nil
}

func (r *SQLiteInteractionRepo) GetByID(ctx context.Context, id string) (*domain.InteractionRecord, error) {
	query := `SELECT ` + interactionColumns + ` FROM interactions WHERE id = ?`
	rec, err := scanInteractionFrom(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("interaction: %w", ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteInteractionRepo) ListByClient(ctx context.Context, clientID string) ([]domain.InteractionRecord, error) {
	query := `SELECT ` + interactionColumns + ` FROM interactions
		WHERE client_id = ? ORDER BY date, version, created_at`
	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing interactions by client: %w", err)
	}
	defer rows.Close()

	out := []domain.InteractionRecord{}
	for rows.Next() {
		rec, err := scanInteractionFrom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteInteractionRepo) Timeline(ctx context.Context, clientID string) ([]domain.TimelineEntry, error) {
	query := `SELECT i.id, i.date, i.deal_stage, i.interest_level, i.summary, i.next_action, i.followup_date,
			EXISTS (SELECT 1 FROM followups f WHERE f.interaction_id = i.id)
		FROM interactions i
		WHERE i.client_id = ? AND ` + notSuperseded + `
		ORDER BY i.date, i.created_at`
	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("loading timeline: %w", err)
	}
	defer rows.Close()

	entries := []domain.TimelineEntry{}
	for rows.Next() {
		var e domain.TimelineEntry
		var dateStr, stage, interest string
		var followupStr sql.NullString
		if err := rows.Scan(&e.InteractionID, &dateStr, &stage, &interest, &e.Summary, &e.NextAction,
			&followupStr, &e.HasFollowup); err != nil {
			return nil, fmt.Errorf("scanning timeline row: %w", err)
		}
		if e.Date, err = parseInstant("date", dateStr); err != nil {
			return nil, err
		}
		e.DealStage = domain.DealStage(stage)
		e.InterestLevel = domain.InterestLevel(interest)
		e.FollowupDate = scanOptionalTime(followupStr, dateLayout)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeline: %w", err)
	}
	return entries, nil
}

// Stats aggregates over current versions only.
func (r *SQLiteInteractionRepo) Stats(ctx context.Context, clientID string) (domain.ClientStats, error) {
	stats := domain.ClientStats{ClientID: clientID, StagesSeen: []domain.DealStage{}}

	var first, last sql.NullString
	query := `SELECT COUNT(*), MIN(i.date), MAX(i.date) FROM interactions i
		WHERE i.client_id = ? AND ` + notSuperseded
	if err := r.db.QueryRowContext(ctx, query, clientID).Scan(&stats.TotalInteractions, &first, &last); err != nil {
		return stats, fmt.Errorf("aggregating interactions: %w", err)
	}
	stats.FirstContact = scanOptionalTime(first, instantLayout)
	stats.LastContact = scanOptionalTime(last, instantLayout)

	stageQuery := `SELECT i.deal_stage FROM interactions i
		WHERE i.client_id = ? AND ` + notSuperseded + `
		GROUP BY i.deal_stage ORDER BY MIN(i.date)`
	rows, err := r.db.QueryContext(ctx, stageQuery, clientID)
	if err != nil {
		return stats, fmt.Errorf("listing stages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var stage string
		if err := rows.Scan(&stage); err != nil {
			return stats, fmt.Errorf("scanning stage: %w", err)
		}
		stats.StagesSeen = append(stats.StagesSeen, domain.DealStage(stage))
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterating stages: %w", err)
	}
	return stats, nil
}

// ListFollowupsDue returns current records of active clients whose followup
// date is on or before through, earliest first.
func (r *SQLiteInteractionRepo) ListFollowupsDue(ctx context.Context, through time.Time) ([]domain.InteractionRecord, error) {
	query := `SELECT i.id, i.client_id, i.date, i.raw_text, i.summary, i.deal_stage, i.objections,
			i.interest_level, i.next_action, i.followup_date, i.version, i.supersedes_id, i.created_at
		FROM interactions i
		JOIN clients c ON c.id = i.client_id AND c.active = 1
		WHERE i.followup_date IS NOT NULL AND i.followup_date <= ? AND ` + notSuperseded + `
		ORDER BY i.followup_date, i.date`
	rows, err := r.db.QueryContext(ctx, query, through.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("listing due followups: %w", err)
	}
	defer rows.Close()

	out := []domain.InteractionRecord{}
	for rows.Next() {
		rec, err := scanInteractionFrom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due followups: %w", err)
	}
	return out, nil
}

func scanInteractionFrom(s rowScanner) (*domain.InteractionRecord, error) {
	var rec domain.InteractionRecord
	var dateStr, stage, objections, interest, createdAtStr string
	var followupStr, supersedes sql.NullString

	err := s.Scan(
		&rec.ID, &rec.ClientID, &dateStr, &rec.RawText, &rec.Summary,
		&stage, &objections, &interest, &rec.NextAction,
		&followupStr, &rec.Version, &supersedes, &createdAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning interaction: %w", err)
	}

	rec.DealStage = domain.DealStage(stage)
	rec.InterestLevel = domain.InterestLevel(interest)
	rec.SupersedesID = supersedes.String
	rec.FollowupDate = scanOptionalTime(followupStr, dateLayout)
	if rec.Objections, err = unmarshalObjections(objections); err != nil {
		return nil, err
	}
	if rec.Date, err = parseInstant("date", dateStr); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseInstant("created_at", createdAtStr); err != nil {
		return nil, err
	}
	return &rec, nil
}
