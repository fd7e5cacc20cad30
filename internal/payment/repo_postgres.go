package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// PostgresStore persists payment records in the client_payments table.
//
// Assumed schema (abridged): client_payments with BIGSERIAL id, UNIQUE
// enquiry_id with NO referential action on enquiry deletion, NUMERIC(15,2)
// amounts, DATE milestones.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

const paymentColumns = `
id, enquiry_id, total_amount, amount_paid, amount_outstanding,
retainer_amount, retainer_date, mid_amount, mid_date, final_amount,
final_date, payment_terms, payment_status, notes, created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, p Payment) (Payment, error) {
	const q = `
INSERT INTO client_payments (
  enquiry_id, total_amount, amount_paid, amount_outstanding,
  retainer_amount, retainer_date, mid_amount, mid_date, final_amount,
  final_date, payment_terms, payment_status, notes, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
RETURNING id
`
	err := s.db.QueryRowContext(ctx, q,
		p.EnquiryID,
		p.TotalAmount,
		p.AmountPaid,
		p.AmountOutstanding,
		nullDec(p.RetainerAmount),
		nullTime(p.RetainerDate),
		nullDec(p.MidAmount),
		nullTime(p.MidDate),
		nullDec(p.FinalAmount),
		nullTime(p.FinalDate),
		nullStr(p.PaymentTerms),
		p.PaymentStatus,
		nullStr(p.Notes),
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return Payment{}, mapPgError(err)
	}
	return p, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM client_payments WHERE id = $1`
	p, err := scanPayment(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (s *PostgresStore) GetByEnquiry(ctx context.Context, enquiryID int64) (Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM client_payments WHERE enquiry_id = $1`
	p, err := scanPayment(s.db.QueryRowContext(ctx, q, enquiryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM client_payments ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, id int64, p Patch) (Payment, error) {
	set := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.TotalAmount != nil {
		add("total_amount", *p.TotalAmount)
	}
	if p.AmountPaid != nil {
		add("amount_paid", *p.AmountPaid)
	}
	if p.RetainerAmount != nil {
		add("retainer_amount", *p.RetainerAmount)
	}
	if p.RetainerDate != nil {
		add("retainer_date", *p.RetainerDate)
	}
	if p.MidAmount != nil {
		add("mid_amount", *p.MidAmount)
	}
	if p.MidDate != nil {
		add("mid_date", *p.MidDate)
	}
	if p.FinalAmount != nil {
		add("final_amount", *p.FinalAmount)
	}
	if p.FinalDate != nil {
		add("final_date", *p.FinalDate)
	}
	if p.PaymentTerms != nil {
		add("payment_terms", nullStr(*p.PaymentTerms))
	}
	if p.PaymentStatus != nil {
		add("payment_status", *p.PaymentStatus)
	}
	if p.Notes != nil {
		add("notes", nullStr(*p.Notes))
	}
	add("updated_at", time.Now().UTC())

	// Outstanding is derived inside the statement so it can never drift from
	// the merged total and paid figures.
	set = append(set, "amount_outstanding = total_amount - amount_paid")

	args = append(args, id)
	q := fmt.Sprintf(
		`UPDATE client_payments SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), paymentColumns,
	)
	out, err := scanPayment(s.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (Payment, error) {
	var p Payment
	var (
		retainerAmt, midAmt, finalAmt       decimal.NullDecimal
		retainerDate, midDate, finalDate    sql.NullTime
		terms, notes                        sql.NullString
	)
	if err := row.Scan(
		&p.ID,
		&p.EnquiryID,
		&p.TotalAmount,
		&p.AmountPaid,
		&p.AmountOutstanding,
		&retainerAmt,
		&retainerDate,
		&midAmt,
		&midDate,
		&finalAmt,
		&finalDate,
		&terms,
		&p.PaymentStatus,
		&notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Payment{}, err
	}

	p.RetainerAmount = decPtr(retainerAmt)
	p.RetainerDate = timePtr(retainerDate)
	p.MidAmount = decPtr(midAmt)
	p.MidDate = timePtr(midDate)
	p.FinalAmount = decPtr(finalAmt)
	p.FinalDate = timePtr(finalDate)
	p.PaymentTerms = terms.String
	p.Notes = notes.String
	return p, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullDec(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func decPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}
