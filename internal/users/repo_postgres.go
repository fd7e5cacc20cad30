package users

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresStore persists user accounts in the users table.
//
// Assumed schema (abridged): users with BIGSERIAL id, UNIQUE open_id, TEXT
// profile columns, role and status with defaults 'user'/'active'.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

const userColumns = `
id, open_id, name, email, role, status, notification_method,
email_notifications, last_signed_in, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY last_signed_in DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, u User) (User, error) {
	const q = `
INSERT INTO users (
  open_id, name, email, role, status, notification_method,
  email_notifications, last_signed_in, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (open_id) DO UPDATE SET
  name = EXCLUDED.name,
  email = EXCLUDED.email,
  last_signed_in = EXCLUDED.last_signed_in,
  updated_at = EXCLUDED.updated_at
RETURNING ` + userColumns
	out, err := scanUser(s.db.QueryRowContext(ctx, q,
		u.OpenID,
		nullStr(u.Name),
		nullStr(u.Email),
		u.Role,
		u.Status,
		nullStr(u.NotificationMethod),
		u.EmailNotifications,
		u.LastSignedIn,
		u.CreatedAt,
		u.UpdatedAt,
	))
	if err != nil {
		return User{}, err
	}
	return out, nil
}

func (s *PostgresStore) UpdateRole(ctx context.Context, id int64, role string) (User, error) {
	q := `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + userColumns
	u, err := scanUser(s.db.QueryRowContext(ctx, q, role, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id int64, status string) (User, error) {
	q := `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + userColumns
	u, err := scanUser(s.db.QueryRowContext(ctx, q, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) EnquiryCounts(ctx context.Context) (map[int64]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_by, COUNT(*) FROM enquiries GROUP BY created_by`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var userID, n int64
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, err
		}
		out[userID] = n
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var name, email, method sql.NullString
	if err := row.Scan(
		&u.ID,
		&u.OpenID,
		&name,
		&email,
		&u.Role,
		&u.Status,
		&method,
		&u.EmailNotifications,
		&u.LastSignedIn,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return User{}, err
	}
	u.Name = name.String
	u.Email = email.String
	u.NotificationMethod = method.String
	return u, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
