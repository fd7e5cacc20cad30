package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the fee arrangement for a converted enquiry: the agreed total,
// the three standard milestones, and a running paid/outstanding position.
// At most one payment record exists per enquiry.
//
// The record survives deletion of its enquiry for bookkeeping; EnquiryID then
// points at a gone row and lookups through the enquiry return nothing.
type Payment struct {
	ID        int64 `json:"id" db:"id"`
	EnquiryID int64 `json:"enquiryId" db:"enquiry_id"`

	TotalAmount       decimal.Decimal `json:"totalAmount" db:"total_amount"`
	AmountPaid        decimal.Decimal `json:"amountPaid" db:"amount_paid"`
	AmountOutstanding decimal.Decimal `json:"amountOutstanding" db:"amount_outstanding"`

	// Milestones
	RetainerAmount *decimal.Decimal `json:"retainerAmount,omitempty" db:"retainer_amount"`
	RetainerDate   *time.Time       `json:"retainerDate,omitempty" db:"retainer_date"`
	MidAmount      *decimal.Decimal `json:"midAmount,omitempty" db:"mid_amount"`
	MidDate        *time.Time       `json:"midDate,omitempty" db:"mid_date"`
	FinalAmount    *decimal.Decimal `json:"finalAmount,omitempty" db:"final_amount"`
	FinalDate      *time.Time       `json:"finalDate,omitempty" db:"final_date"`

	PaymentTerms  string `json:"paymentTerms,omitempty" db:"payment_terms"`
	PaymentStatus string `json:"paymentStatus" db:"payment_status"`
	Notes         string `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// DefaultStatus is assigned to new records when the caller sends none.
const DefaultStatus = "Not Started"

// Patch carries a partial update. Nil fields are left untouched. The linkage
// (EnquiryID) is fixed at creation and cannot be patched.
type Patch struct {
	TotalAmount *decimal.Decimal
	AmountPaid  *decimal.Decimal

	RetainerAmount *decimal.Decimal
	RetainerDate   *time.Time
	MidAmount      *decimal.Decimal
	MidDate        *time.Time
	FinalAmount    *decimal.Decimal
	FinalDate      *time.Time

	PaymentTerms  *string
	PaymentStatus *string
	Notes         *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == (Patch{})
}

// Apply merges the patch into a copy of pay and recomputes the outstanding
// amount. AmountOutstanding is always derived, never taken from input.
func (p Patch) Apply(pay Payment) Payment {
	out := pay
	if p.TotalAmount != nil {
		out.TotalAmount = *p.TotalAmount
	}
	if p.AmountPaid != nil {
		out.AmountPaid = *p.AmountPaid
	}
	setDec(&out.RetainerAmount, p.RetainerAmount)
	setDate(&out.RetainerDate, p.RetainerDate)
	setDec(&out.MidAmount, p.MidAmount)
	setDate(&out.MidDate, p.MidDate)
	setDec(&out.FinalAmount, p.FinalAmount)
	setDate(&out.FinalDate, p.FinalDate)
	if p.PaymentTerms != nil {
		out.PaymentTerms = *p.PaymentTerms
	}
	if p.PaymentStatus != nil {
		out.PaymentStatus = *p.PaymentStatus
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	out.AmountOutstanding = out.TotalAmount.Sub(out.AmountPaid)
	return out
}

func setDec(dst **decimal.Decimal, src *decimal.Decimal) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func setDate(dst **time.Time, src *time.Time) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
