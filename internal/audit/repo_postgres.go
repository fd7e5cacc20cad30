package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo persists audit entries in the audit_logs table.
//
// Assumed schema:
//
//	CREATE TABLE audit_logs (
//	  id          BIGSERIAL PRIMARY KEY,
//	  enquiry_id  BIGINT NOT NULL REFERENCES enquiries(id) ON DELETE CASCADE,
//	  user_id     BIGINT NOT NULL REFERENCES users(id),
//	  action      TEXT NOT NULL,
//	  field_name  TEXT,
//	  old_value   TEXT,
//	  new_value   TEXT,
//	  description TEXT,
//	  created_at  TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const insertEntrySQL = `
INSERT INTO audit_logs (enquiry_id, user_id, action, field_name, old_value, new_value, description, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`

// InsertTx appends an entry inside a caller-owned transaction.
// The enquiry store uses it to make mutation + audit append atomic.
func InsertTx(ctx context.Context, tx *sql.Tx, e Entry) error {
	_, err := tx.ExecContext(ctx, insertEntrySQL,
		e.EnquiryID,
		e.UserID,
		e.Action,
		nullIfEmpty(e.FieldName),
		nullIfEmpty(e.OldValue),
		nullIfEmpty(e.NewValue),
		nullIfEmpty(e.Description),
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, insertEntrySQL,
		e.EnquiryID,
		e.UserID,
		e.Action,
		nullIfEmpty(e.FieldName),
		nullIfEmpty(e.OldValue),
		nullIfEmpty(e.NewValue),
		nullIfEmpty(e.Description),
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) ListByEnquiry(ctx context.Context, enquiryID int64) ([]Record, error) {
	const q = `
SELECT a.id, a.enquiry_id, a.user_id, a.action, a.field_name, a.old_value, a.new_value, a.description, a.created_at,
       u.name, u.email
FROM audit_logs a
LEFT JOIN users u ON u.id = a.user_id
WHERE a.enquiry_id = $1
ORDER BY a.created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, enquiryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var fieldName, oldValue, newValue, description, userName, userEmail sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.EnquiryID,
			&rec.UserID,
			&rec.Action,
			&fieldName,
			&oldValue,
			&newValue,
			&description,
			&rec.CreatedAt,
			&userName,
			&userEmail,
		); err != nil {
			return nil, err
		}
		rec.FieldName = fieldName.String
		rec.OldValue = oldValue.String
		rec.NewValue = newValue.String
		rec.Description = description.String
		rec.UserName = userName.String
		rec.UserEmail = userEmail.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) List(ctx context.Context, limit, offset int) ([]Record, error) {
	const q = `
SELECT a.id, a.enquiry_id, a.user_id, a.action, a.field_name, a.old_value, a.new_value, a.description, a.created_at,
       u.name, u.email, e.enquiry_id, e.client_name
FROM audit_logs a
LEFT JOIN users u ON u.id = a.user_id
LEFT JOIN enquiries e ON e.id = a.enquiry_id
ORDER BY a.created_at DESC
LIMIT $1 OFFSET $2
`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var fieldName, oldValue, newValue, description sql.NullString
		var userName, userEmail, enquiryCode, clientName sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.EnquiryID,
			&rec.UserID,
			&rec.Action,
			&fieldName,
			&oldValue,
			&newValue,
			&description,
			&rec.CreatedAt,
			&userName,
			&userEmail,
			&enquiryCode,
			&clientName,
		); err != nil {
			return nil, err
		}
		rec.FieldName = fieldName.String
		rec.OldValue = oldValue.String
		rec.NewValue = newValue.String
		rec.Description = description.String
		rec.UserName = userName.String
		rec.UserEmail = userEmail.String
		rec.EnquiryCode = enquiryCode.String
		rec.ClientName = clientName.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
