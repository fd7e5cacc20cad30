package httpapi

import (
	"fmt"
	"time"

	"enquiry-platform/internal/enquiry"
	"enquiry-platform/internal/payment"

	"github.com/shopspring/decimal"
)

// Dates arrive as plain dates or full RFC 3339 timestamps; money arrives as
// strings so no precision is lost in transit.
const dateLayout = "2006-01-02"

func parseDate(field, s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: expected YYYY-MM-DD or RFC 3339, got %q", field, s)
	}
	return t, nil
}

func optDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(field, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optDec(field string, s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("%s: expected a decimal amount, got %q", field, *s)
	}
	return &d, nil
}

func optStatus(s *string) *enquiry.Status {
	if s == nil {
		return nil
	}
	st := enquiry.Status(*s)
	return &st
}

// enquiryPayload is the wire shape shared by create and update. Every field
// is optional at the transport layer; the service enforces what create
// actually requires.
type enquiryPayload struct {
	DateOfEnquiry        *string `json:"dateOfEnquiry"`
	Time                 *string `json:"time"`
	CommunicationChannel *string `json:"communicationChannel"`
	ReceivedBy           *string `json:"receivedBy"`

	ClientName             *string `json:"clientName"`
	ClientType             *string `json:"clientType"`
	Nationality            *string `json:"nationality"`
	Email                  *string `json:"email"`
	PhoneNumber            *string `json:"phoneNumber"`
	PreferredContactMethod *string `json:"preferredContactMethod"`
	LanguagePreference     *string `json:"languagePreference"`

	ServiceRequested    *string `json:"serviceRequested"`
	ShortDescription    *string `json:"shortDescription"`
	UrgencyLevel        *string `json:"urgencyLevel"`
	ClientBudget        *string `json:"clientBudget"`
	PotentialValueRange *string `json:"potentialValueRange"`
	ExpectedTimeline    *string `json:"expectedTimeline"`

	ReferralSourceName    *string `json:"referralSourceName"`
	CompetitorInvolvement *string `json:"competitorInvolvement"`
	CompetitorName        *string `json:"competitorName"`

	AssignedDepartment  *string `json:"assignedDepartment"`
	SuggestedLeadLawyer *string `json:"suggestedLeadLawyer"`

	CurrentStatus *string `json:"currentStatus"`
	NextAction    *string `json:"nextAction"`
	Deadline      *string `json:"deadline"`

	FirstResponseDate      *string `json:"firstResponseDate"`
	FirstResponseTimeHours *string `json:"firstResponseTimeHours"`
	MeetingDate            *string `json:"meetingDate"`
	ProposalSentDate       *string `json:"proposalSentDate"`
	ProposalValue          *string `json:"proposalValue"`
	FollowUpCount          *int    `json:"followUpCount"`
	LastContactDate        *string `json:"lastContactDate"`

	ConversionDate       *string `json:"conversionDate"`
	EngagementLetterDate *string `json:"engagementLetterDate"`

	PaymentStatus *string `json:"paymentStatus"`
	InvoiceNumber *string `json:"invoiceNumber"`

	LostReason    *string `json:"lostReason"`
	InternalNotes *string `json:"internalNotes"`
}

func (r enquiryPayload) toPatch() (enquiry.Patch, error) {
	var p enquiry.Patch
	var err error

	if p.DateOfEnquiry, err = optDate("dateOfEnquiry", r.DateOfEnquiry); err != nil {
		return enquiry.Patch{}, err
	}
	p.Time = r.Time
	p.CommunicationChannel = r.CommunicationChannel
	p.ReceivedBy = r.ReceivedBy
	p.ClientName = r.ClientName
	p.ClientType = r.ClientType
	p.Nationality = r.Nationality
	p.Email = r.Email
	p.PhoneNumber = r.PhoneNumber
	p.PreferredContactMethod = r.PreferredContactMethod
	p.LanguagePreference = r.LanguagePreference
	p.ServiceRequested = r.ServiceRequested
	p.ShortDescription = r.ShortDescription
	p.UrgencyLevel = r.UrgencyLevel
	if p.ClientBudget, err = optDec("clientBudget", r.ClientBudget); err != nil {
		return enquiry.Patch{}, err
	}
	p.PotentialValueRange = r.PotentialValueRange
	p.ExpectedTimeline = r.ExpectedTimeline
	p.ReferralSourceName = r.ReferralSourceName
	p.CompetitorInvolvement = r.CompetitorInvolvement
	p.CompetitorName = r.CompetitorName
	p.AssignedDepartment = r.AssignedDepartment
	p.SuggestedLeadLawyer = r.SuggestedLeadLawyer
	p.CurrentStatus = optStatus(r.CurrentStatus)
	p.NextAction = r.NextAction
	if p.Deadline, err = optDate("deadline", r.Deadline); err != nil {
		return enquiry.Patch{}, err
	}
	if p.FirstResponseDate, err = optDate("firstResponseDate", r.FirstResponseDate); err != nil {
		return enquiry.Patch{}, err
	}
	if p.FirstResponseTimeHours, err = optDec("firstResponseTimeHours", r.FirstResponseTimeHours); err != nil {
		return enquiry.Patch{}, err
	}
	if p.MeetingDate, err = optDate("meetingDate", r.MeetingDate); err != nil {
		return enquiry.Patch{}, err
	}
	if p.ProposalSentDate, err = optDate("proposalSentDate", r.ProposalSentDate); err != nil {
		return enquiry.Patch{}, err
	}
	if p.ProposalValue, err = optDec("proposalValue", r.ProposalValue); err != nil {
		return enquiry.Patch{}, err
	}
	p.FollowUpCount = r.FollowUpCount
	if p.LastContactDate, err = optDate("lastContactDate", r.LastContactDate); err != nil {
		return enquiry.Patch{}, err
	}
	if p.ConversionDate, err = optDate("conversionDate", r.ConversionDate); err != nil {
		return enquiry.Patch{}, err
	}
	if p.EngagementLetterDate, err = optDate("engagementLetterDate", r.EngagementLetterDate); err != nil {
		return enquiry.Patch{}, err
	}
	p.PaymentStatus = r.PaymentStatus
	p.InvoiceNumber = r.InvoiceNumber
	p.LostReason = r.LostReason
	p.InternalNotes = r.InternalNotes
	return p, nil
}

func (r enquiryPayload) toEnquiry() (enquiry.Enquiry, error) {
	p, err := r.toPatch()
	if err != nil {
		return enquiry.Enquiry{}, err
	}
	return p.Apply(enquiry.Enquiry{}), nil
}

// paymentPayload is the wire shape shared by payment create and update.
type paymentPayload struct {
	EnquiryID *int64 `json:"enquiryId"`

	TotalAmount *string `json:"totalAmount"`
	AmountPaid  *string `json:"amountPaid"`

	RetainerAmount *string `json:"retainerAmount"`
	RetainerDate   *string `json:"retainerDate"`
	MidAmount      *string `json:"midAmount"`
	MidDate        *string `json:"midDate"`
	FinalAmount    *string `json:"finalAmount"`
	FinalDate      *string `json:"finalDate"`

	PaymentTerms  *string `json:"paymentTerms"`
	PaymentStatus *string `json:"paymentStatus"`
	Notes         *string `json:"notes"`
}

func (r paymentPayload) toPatch() (payment.Patch, error) {
	var p payment.Patch
	var err error

	if p.TotalAmount, err = optDec("totalAmount", r.TotalAmount); err != nil {
		return payment.Patch{}, err
	}
	if p.AmountPaid, err = optDec("amountPaid", r.AmountPaid); err != nil {
		return payment.Patch{}, err
	}
	if p.RetainerAmount, err = optDec("retainerAmount", r.RetainerAmount); err != nil {
		return payment.Patch{}, err
	}
	if p.RetainerDate, err = optDate("retainerDate", r.RetainerDate); err != nil {
		return payment.Patch{}, err
	}
	if p.MidAmount, err = optDec("midAmount", r.MidAmount); err != nil {
		return payment.Patch{}, err
	}
	if p.MidDate, err = optDate("midDate", r.MidDate); err != nil {
		return payment.Patch{}, err
	}
	if p.FinalAmount, err = optDec("finalAmount", r.FinalAmount); err != nil {
		return payment.Patch{}, err
	}
	if p.FinalDate, err = optDate("finalDate", r.FinalDate); err != nil {
		return payment.Patch{}, err
	}
	p.PaymentTerms = r.PaymentTerms
	p.PaymentStatus = r.PaymentStatus
	p.Notes = r.Notes
	return p, nil
}

func (r paymentPayload) toPayment() (payment.Payment, error) {
	patch, err := r.toPatch()
	if err != nil {
		return payment.Payment{}, err
	}
	out := patch.Apply(payment.Payment{})
	if r.EnquiryID != nil {
		out.EnquiryID = *r.EnquiryID
	}
	return out, nil
}
