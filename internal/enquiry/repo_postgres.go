package enquiry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"enquiry-platform/internal/audit"
	"enquiry-platform/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// PostgresStore persists enquiries in the enquiries table.
//
// Assumed schema (abridged): enquiries with BIGSERIAL id, UNIQUE enquiry_id,
// TEXT/DATE/NUMERIC(15,2) columns matching the model, created_by REFERENCES
// users(id), and audit_logs with ON DELETE CASCADE on enquiry_id.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

const enquiryColumns = `
id, enquiry_id, date_of_enquiry, time, communication_channel, received_by,
client_name, client_type, nationality, email, phone_number,
preferred_contact_method, language_preference, service_requested,
short_description, urgency_level, client_budget, potential_value_range,
expected_timeline, referral_source_name, competitor_involvement,
competitor_name, assigned_department, suggested_lead_lawyer, current_status,
next_action, deadline, first_response_date, first_response_time_hours,
meeting_date, proposal_sent_date, proposal_value, follow_up_count,
last_contact_date, conversion_date, engagement_letter_date, matter_code,
payment_status, invoice_number, lost_reason, internal_notes, created_by,
created_at, updated_at`

func (s *PostgresStore) Insert(ctx context.Context, e Enquiry, log audit.Entry) (Enquiry, error) {
	const q = `
INSERT INTO enquiries (
  enquiry_id, date_of_enquiry, time, communication_channel, received_by,
  client_name, client_type, nationality, email, phone_number,
  preferred_contact_method, language_preference, service_requested,
  short_description, urgency_level, client_budget, potential_value_range,
  expected_timeline, referral_source_name, competitor_involvement,
  competitor_name, assigned_department, suggested_lead_lawyer, current_status,
  next_action, deadline, first_response_date, first_response_time_hours,
  meeting_date, proposal_sent_date, proposal_value, follow_up_count,
  last_contact_date, conversion_date, engagement_letter_date, matter_code,
  payment_status, invoice_number, lost_reason, internal_notes, created_by,
  created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
  $21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,
  $39,$40,$41,$42,$43
)
RETURNING id
`
	var out Enquiry
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		var id int64
		if err := tx.QueryRowContext(ctx, q,
			e.EnquiryCode,
			e.DateOfEnquiry,
			nullStr(e.Time),
			nullStr(e.CommunicationChannel),
			nullStr(e.ReceivedBy),
			e.ClientName,
			nullStr(e.ClientType),
			nullStr(e.Nationality),
			nullStr(e.Email),
			nullStr(e.PhoneNumber),
			nullStr(e.PreferredContactMethod),
			nullStr(e.LanguagePreference),
			nullStr(e.ServiceRequested),
			nullStr(e.ShortDescription),
			nullStr(e.UrgencyLevel),
			nullDec(e.ClientBudget),
			nullStr(e.PotentialValueRange),
			nullStr(e.ExpectedTimeline),
			nullStr(e.ReferralSourceName),
			nullStr(e.CompetitorInvolvement),
			nullStr(e.CompetitorName),
			nullStr(e.AssignedDepartment),
			nullStr(e.SuggestedLeadLawyer),
			string(e.CurrentStatus),
			nullStr(e.NextAction),
			nullTime(e.Deadline),
			nullTime(e.FirstResponseDate),
			nullDec(e.FirstResponseTimeHours),
			nullTime(e.MeetingDate),
			nullTime(e.ProposalSentDate),
			nullDec(e.ProposalValue),
			e.FollowUpCount,
			nullTime(e.LastContactDate),
			nullTime(e.ConversionDate),
			nullTime(e.EngagementLetterDate),
			nullStr(e.MatterCode),
			nullStr(e.PaymentStatus),
			nullStr(e.InvoiceNumber),
			nullStr(e.LostReason),
			nullStr(e.InternalNotes),
			e.CreatedBy,
			e.CreatedAt,
			e.UpdatedAt,
		).Scan(&id); err != nil {
			return mapPgError(err)
		}

		e.ID = id
		log.EnquiryID = id
		if err := audit.InsertTx(ctx, tx, log); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return Enquiry{}, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Enquiry, error) {
	q := `SELECT ` + enquiryColumns + ` FROM enquiries WHERE id = $1`
	row := s.db.QueryRowContext(ctx, q, id)
	e, err := scanEnquiry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enquiry{}, ErrNotFound
		}
		return Enquiry{}, mapPgError(err)
	}
	return e, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Enquiry, error) {
	q := `SELECT ` + enquiryColumns + ` FROM enquiries ORDER BY created_at DESC, id DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := make([]Enquiry, 0)
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, id int64, p Patch, matterCode string, logs []audit.Entry) (Enquiry, error) {
	set, args := buildUpdateSet(p, matterCode)

	var out Enquiry
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		args = append(args, id)
		q := fmt.Sprintf(
			`UPDATE enquiries SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(set, ", "), len(args), enquiryColumns,
		)
		e, err := scanEnquiry(tx.QueryRowContext(ctx, q, args...))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return mapPgError(err)
		}

		for _, log := range logs {
			log.EnquiryID = id
			if err := audit.InsertTx(ctx, tx, log); err != nil {
				return err
			}
		}
		out = e
		return nil
	})
	if err != nil {
		return Enquiry{}, err
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	// Audit rows go by FK cascade. Payment rows are not touched.
	res, err := s.db.ExecContext(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MaxEnquiryNumber(ctx context.Context) (int64, error) {
	var max int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM enquiries`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return max, nil
}

func (s *PostgresStore) CountConversionsInYear(ctx context.Context, year int) (int64, error) {
	const q = `
SELECT COUNT(*) FROM enquiries
WHERE conversion_date >= $1 AND conversion_date <= $2
`
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	var n int64
	if err := s.db.QueryRowContext(ctx, q, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

func buildUpdateSet(p Patch, matterCode string) ([]string, []any) {
	set := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.DateOfEnquiry != nil {
		add("date_of_enquiry", *p.DateOfEnquiry)
	}
	addStr := func(col string, v *string) {
		if v != nil {
			add(col, nullStr(*v))
		}
	}
	addDate := func(col string, v *time.Time) {
		if v != nil {
			add(col, *v)
		}
	}
	addDec := func(col string, v *decimal.Decimal) {
		if v != nil {
			add(col, *v)
		}
	}

	addStr("time", p.Time)
	addStr("communication_channel", p.CommunicationChannel)
	addStr("received_by", p.ReceivedBy)
	addStr("client_name", p.ClientName)
	addStr("client_type", p.ClientType)
	addStr("nationality", p.Nationality)
	addStr("email", p.Email)
	addStr("phone_number", p.PhoneNumber)
	addStr("preferred_contact_method", p.PreferredContactMethod)
	addStr("language_preference", p.LanguagePreference)
	addStr("service_requested", p.ServiceRequested)
	addStr("short_description", p.ShortDescription)
	addStr("urgency_level", p.UrgencyLevel)
	addDec("client_budget", p.ClientBudget)
	addStr("potential_value_range", p.PotentialValueRange)
	addStr("expected_timeline", p.ExpectedTimeline)
	addStr("referral_source_name", p.ReferralSourceName)
	addStr("competitor_involvement", p.CompetitorInvolvement)
	addStr("competitor_name", p.CompetitorName)
	addStr("assigned_department", p.AssignedDepartment)
	addStr("suggested_lead_lawyer", p.SuggestedLeadLawyer)
	if p.CurrentStatus != nil {
		add("current_status", string(*p.CurrentStatus))
	}
	addStr("next_action", p.NextAction)
	addDate("deadline", p.Deadline)
	addDate("first_response_date", p.FirstResponseDate)
	addDec("first_response_time_hours", p.FirstResponseTimeHours)
	addDate("meeting_date", p.MeetingDate)
	addDate("proposal_sent_date", p.ProposalSentDate)
	addDec("proposal_value", p.ProposalValue)
	if p.FollowUpCount != nil {
		add("follow_up_count", *p.FollowUpCount)
	}
	addDate("last_contact_date", p.LastContactDate)
	addDate("conversion_date", p.ConversionDate)
	addDate("engagement_letter_date", p.EngagementLetterDate)
	if matterCode != "" {
		add("matter_code", matterCode)
	}
	addStr("payment_status", p.PaymentStatus)
	addStr("invoice_number", p.InvoiceNumber)
	addStr("lost_reason", p.LostReason)
	addStr("internal_notes", p.InternalNotes)

	add("updated_at", time.Now().UTC())
	return set, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnquiry(row rowScanner) (Enquiry, error) {
	var e Enquiry
	var (
		tm, channel, receivedBy, clientType, nationality, email, phone     sql.NullString
		contactMethod, language, service, shortDesc, urgency, valueRange   sql.NullString
		timeline, referral, competitorInv, competitorName, dept, lawyer    sql.NullString
		nextAction, matterCode, paymentStatus, invoiceNumber, lostReason   sql.NullString
		internalNotes                                                      sql.NullString
		deadline, firstResponse, meeting, proposalSent, lastContact        sql.NullTime
		conversion, engagementLetter                                       sql.NullTime
		clientBudget, firstResponseHours, proposalValue                    decimal.NullDecimal
	)

	if err := row.Scan(
		&e.ID,
		&e.EnquiryCode,
		&e.DateOfEnquiry,
		&tm,
		&channel,
		&receivedBy,
		&e.ClientName,
		&clientType,
		&nationality,
		&email,
		&phone,
		&contactMethod,
		&language,
		&service,
		&shortDesc,
		&urgency,
		&clientBudget,
		&valueRange,
		&timeline,
		&referral,
		&competitorInv,
		&competitorName,
		&dept,
		&lawyer,
		&e.CurrentStatus,
		&nextAction,
		&deadline,
		&firstResponse,
		&firstResponseHours,
		&meeting,
		&proposalSent,
		&proposalValue,
		&e.FollowUpCount,
		&lastContact,
		&conversion,
		&engagementLetter,
		&matterCode,
		&paymentStatus,
		&invoiceNumber,
		&lostReason,
		&internalNotes,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return Enquiry{}, err
	}

	e.Time = tm.String
	e.CommunicationChannel = channel.String
	e.ReceivedBy = receivedBy.String
	e.ClientType = clientType.String
	e.Nationality = nationality.String
	e.Email = email.String
	e.PhoneNumber = phone.String
	e.PreferredContactMethod = contactMethod.String
	e.LanguagePreference = language.String
	e.ServiceRequested = service.String
	e.ShortDescription = shortDesc.String
	e.UrgencyLevel = urgency.String
	e.PotentialValueRange = valueRange.String
	e.ExpectedTimeline = timeline.String
	e.ReferralSourceName = referral.String
	e.CompetitorInvolvement = competitorInv.String
	e.CompetitorName = competitorName.String
	e.AssignedDepartment = dept.String
	e.SuggestedLeadLawyer = lawyer.String
	e.NextAction = nextAction.String
	e.MatterCode = matterCode.String
	e.PaymentStatus = paymentStatus.String
	e.InvoiceNumber = invoiceNumber.String
	e.LostReason = lostReason.String
	e.InternalNotes = internalNotes.String

	e.Deadline = timePtr(deadline)
	e.FirstResponseDate = timePtr(firstResponse)
	e.MeetingDate = timePtr(meeting)
	e.ProposalSentDate = timePtr(proposalSent)
	e.LastContactDate = timePtr(lastContact)
	e.ConversionDate = timePtr(conversion)
	e.EngagementLetterDate = timePtr(engagementLetter)

	e.ClientBudget = decPtr(clientBudget)
	e.FirstResponseTimeHours = decPtr(firstResponseHours)
	e.ProposalValue = decPtr(proposalValue)

	return e, nil
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

// mapPgError translates driver errors into package sentinels.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}
