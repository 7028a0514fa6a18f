package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/dealnotes/internal/db"
	"github.com/alexanderramin/dealnotes/internal/domain"
)

// SQLiteClientRepo implements ClientRepo using a SQLite database.
type SQLiteClientRepo struct {
	db db.DBTX
}

// NewSQLiteClientRepo creates a new SQLiteClientRepo.
func NewSQLiteClientRepo(conn db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: conn}
}

const clientColumns = `id, name, company, email, active, created_at, updated_at`

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (` + clientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Company,
		c.Email,
		c.Active,
		instant(c.CreatedAt),
		instant(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`
	return r.scanClient(r.db.QueryRowContext(ctx, query, id))
}

// FindByEmail matches case-insensitively and ignores inactive clients too.
func (r *SQLiteClientRepo) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE email != '' AND LOWER(email) = LOWER(?)
		ORDER BY created_at LIMIT 1`
	return r.scanClient(r.db.QueryRowContext(ctx, query, email))
}

func (r *SQLiteClientRepo) List(ctx context.Context, includeInactive bool) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name COLLATE NOCASE, created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()
	return r.scanClients(rows)
}

// Search matches query as a substring of name, company or email.
func (r *SQLiteClientRepo) Search(ctx context.Context, query string, includeInactive bool) ([]*domain.Client, error) {
	pattern := likePattern(query)
	stmt := `SELECT ` + clientColumns + ` FROM clients
		WHERE (name LIKE ? ESCAPE '\' OR company LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`
	if !includeInactive {
		stmt += ` AND active = 1`
	}
	stmt += ` ORDER BY name COLLATE NOCASE, created_at`
	rows, err := r.db.QueryContext(ctx, stmt, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching clients: %w", err)
	}
	defer rows.Close()
	return r.scanClients(rows)
}

func (r *SQLiteClientRepo) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET name = ?, company = ?, email = ?, active = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Name,
		c.Company,
		c.Email,
		c.Active,
		instant(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}
	return requireAffected(res, "client")
}

func (r *SQLiteClientRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE clients SET active = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, active, now(), id)
	if err != nil {
		return fmt.Errorf("setting client active=%t: %w", active, err)
	}
	return requireAffected(res, "client")
}

// Delete removes the client; interactions and followups cascade.
func (r *SQLiteClientRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	return requireAffected(res, "client")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteClientRepo) scanClient(row *sql.Row) (*domain.Client, error) {
	c, err := scanClientFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client: %w", ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (r *SQLiteClientRepo) scanClients(rows *sql.Rows) ([]*domain.Client, error) {
	var clients []*domain.Client
	for rows.Next() {
		c, err := scanClientFrom(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}
	return clients, nil
}

func scanClientFrom(s rowScanner) (*domain.Client, error) {
	var c domain.Client
	var createdAt, updatedAt string
	if err := s.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}
	var err error
	if c.CreatedAt, err = parseInstant("created_at", createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseInstant("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
