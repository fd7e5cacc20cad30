package enquiry

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enquiry is one client contact event tracked from intake to conversion.
//
// Invariants:
// - EnquiryCode (ENQ-%04d) is assigned at creation and never changes.
// - MatterCode (MAT-%d-%03d) is assigned at most once, as a side effect of
//   ConversionDate becoming set, and is immutable afterwards.
// - CurrentStatus always has a value; new records default to StatusPending.
//
// Monetary fields are exact decimals; they cross the API boundary as text.
type Enquiry struct {
	ID          int64  `json:"id" db:"id"`
	EnquiryCode string `json:"enquiryId" db:"enquiry_id"`

	// Basic enquiry info
	DateOfEnquiry        time.Time `json:"dateOfEnquiry" db:"date_of_enquiry"`
	Time                 string    `json:"time,omitempty" db:"time"`
	CommunicationChannel string    `json:"communicationChannel,omitempty" db:"communication_channel"`
	ReceivedBy           string    `json:"receivedBy,omitempty" db:"received_by"`

	// Client details
	ClientName             string `json:"clientName" db:"client_name"`
	ClientType             string `json:"clientType,omitempty" db:"client_type"`
	Nationality            string `json:"nationality,omitempty" db:"nationality"`
	Email                  string `json:"email,omitempty" db:"email"`
	PhoneNumber            string `json:"phoneNumber,omitempty" db:"phone_number"`
	PreferredContactMethod string `json:"preferredContactMethod,omitempty" db:"preferred_contact_method"`
	LanguagePreference     string `json:"languagePreference,omitempty" db:"language_preference"`

	// Service details
	ServiceRequested    string           `json:"serviceRequested,omitempty" db:"service_requested"`
	ShortDescription    string           `json:"shortDescription,omitempty" db:"short_description"`
	UrgencyLevel        string           `json:"urgencyLevel,omitempty" db:"urgency_level"`
	ClientBudget        *decimal.Decimal `json:"clientBudget,omitempty" db:"client_budget"`
	PotentialValueRange string           `json:"potentialValueRange,omitempty" db:"potential_value_range"`
	ExpectedTimeline    string           `json:"expectedTimeline,omitempty" db:"expected_timeline"`

	// Referral and competition
	ReferralSourceName    string `json:"referralSourceName,omitempty" db:"referral_source_name"`
	CompetitorInvolvement string `json:"competitorInvolvement,omitempty" db:"competitor_involvement"`
	CompetitorName        string `json:"competitorName,omitempty" db:"competitor_name"`

	// Assignment
	AssignedDepartment  string `json:"assignedDepartment,omitempty" db:"assigned_department"`
	SuggestedLeadLawyer string `json:"suggestedLeadLawyer,omitempty" db:"suggested_lead_lawyer"`

	// Status tracking
	CurrentStatus Status     `json:"currentStatus" db:"current_status"`
	NextAction    string     `json:"nextAction,omitempty" db:"next_action"`
	Deadline      *time.Time `json:"deadline,omitempty" db:"deadline"`

	// Response tracking
	FirstResponseDate      *time.Time       `json:"firstResponseDate,omitempty" db:"first_response_date"`
	FirstResponseTimeHours *decimal.Decimal `json:"firstResponseTimeHours,omitempty" db:"first_response_time_hours"`
	MeetingDate            *time.Time       `json:"meetingDate,omitempty" db:"meeting_date"`
	ProposalSentDate       *time.Time       `json:"proposalSentDate,omitempty" db:"proposal_sent_date"`
	ProposalValue          *decimal.Decimal `json:"proposalValue,omitempty" db:"proposal_value"`
	FollowUpCount          int              `json:"followUpCount" db:"follow_up_count"`
	LastContactDate        *time.Time       `json:"lastContactDate,omitempty" db:"last_contact_date"`

	// Conversion
	ConversionDate       *time.Time `json:"conversionDate,omitempty" db:"conversion_date"`
	EngagementLetterDate *time.Time `json:"engagementLetterDate,omitempty" db:"engagement_letter_date"`
	MatterCode           string     `json:"matterCode,omitempty" db:"matter_code"`

	// Payment linkage hints (authoritative records live in internal/payment)
	PaymentStatus string `json:"paymentStatus,omitempty" db:"payment_status"`
	InvoiceNumber string `json:"invoiceNumber,omitempty" db:"invoice_number"`

	// Loss tracking
	LostReason string `json:"lostReason,omitempty" db:"lost_reason"`

	// Notes
	InternalNotes string `json:"internalNotes,omitempty" db:"internal_notes"`

	// Metadata
	CreatedBy int64     `json:"createdBy" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Status is the enquiry lifecycle state. The set is a fixed business
// constant; the transition graph is open (any status may move to any other).
type Status string

const (
	StatusPending          Status = "Pending"
	StatusContacted        Status = "Contacted"
	StatusMeetingScheduled Status = "Meeting Scheduled"
	StatusProposalSent     Status = "Proposal Sent"
	StatusConverted        Status = "Converted"
	StatusDeclined         Status = "Declined"
	StatusConflict         Status = "Conflict"
	StatusNotPursued       Status = "Not Pursued"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusContacted, StatusMeetingScheduled, StatusProposalSent,
		StatusConverted, StatusDeclined, StatusConflict, StatusNotPursued:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is terminal in practice. Transitions
// out remain allowed; callers use this only to flag a warning.
func (s Status) Terminal() bool {
	switch s {
	case StatusConverted, StatusDeclined, StatusNotPursued:
		return true
	default:
		return false
	}
}

// Patch carries a partial update. Nil fields are left untouched.
// MatterCode is deliberately absent: it is minted by the service exactly once
// and can never be supplied or changed by a caller.
type Patch struct {
	DateOfEnquiry        *time.Time
	Time                 *string
	CommunicationChannel *string
	ReceivedBy           *string

	ClientName             *string
	ClientType             *string
	Nationality            *string
	Email                  *string
	PhoneNumber            *string
	PreferredContactMethod *string
	LanguagePreference     *string

	ServiceRequested    *string
	ShortDescription    *string
	UrgencyLevel        *string
	ClientBudget        *decimal.Decimal
	PotentialValueRange *string
	ExpectedTimeline    *string

	ReferralSourceName    *string
	CompetitorInvolvement *string
	CompetitorName        *string

	AssignedDepartment  *string
	SuggestedLeadLawyer *string

	CurrentStatus *Status
	NextAction    *string
	Deadline      *time.Time

	FirstResponseDate      *time.Time
	FirstResponseTimeHours *decimal.Decimal
	MeetingDate            *time.Time
	ProposalSentDate       *time.Time
	ProposalValue          *decimal.Decimal
	FollowUpCount          *int
	LastContactDate        *time.Time

	ConversionDate       *time.Time
	EngagementLetterDate *time.Time

	PaymentStatus *string
	InvoiceNumber *string

	LostReason    *string
	InternalNotes *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == (Patch{})
}

// Apply merges the patch into a copy of e. MatterCode and identity fields are
// untouched by design.
func (p Patch) Apply(e Enquiry) Enquiry {
	out := e
	if p.DateOfEnquiry != nil {
		out.DateOfEnquiry = *p.DateOfEnquiry
	}
	setString(&out.Time, p.Time)
	setString(&out.CommunicationChannel, p.CommunicationChannel)
	setString(&out.ReceivedBy, p.ReceivedBy)
	setString(&out.ClientName, p.ClientName)
	setString(&out.ClientType, p.ClientType)
	setString(&out.Nationality, p.Nationality)
	setString(&out.Email, p.Email)
	setString(&out.PhoneNumber, p.PhoneNumber)
	setString(&out.PreferredContactMethod, p.PreferredContactMethod)
	setString(&out.LanguagePreference, p.LanguagePreference)
	setString(&out.ServiceRequested, p.ServiceRequested)
	setString(&out.ShortDescription, p.ShortDescription)
	setString(&out.UrgencyLevel, p.UrgencyLevel)
	if p.ClientBudget != nil {
		v := *p.ClientBudget
		out.ClientBudget = &v
	}
	setString(&out.PotentialValueRange, p.PotentialValueRange)
	setString(&out.ExpectedTimeline, p.ExpectedTimeline)
	setString(&out.ReferralSourceName, p.ReferralSourceName)
	setString(&out.CompetitorInvolvement, p.CompetitorInvolvement)
	setString(&out.CompetitorName, p.CompetitorName)
	setString(&out.AssignedDepartment, p.AssignedDepartment)
	setString(&out.SuggestedLeadLawyer, p.SuggestedLeadLawyer)
	if p.CurrentStatus != nil {
		out.CurrentStatus = *p.CurrentStatus
	}
	setString(&out.NextAction, p.NextAction)
	setDate(&out.Deadline, p.Deadline)
	setDate(&out.FirstResponseDate, p.FirstResponseDate)
	if p.FirstResponseTimeHours != nil {
		v := *p.FirstResponseTimeHours
		out.FirstResponseTimeHours = &v
	}
	setDate(&out.MeetingDate, p.MeetingDate)
	setDate(&out.ProposalSentDate, p.ProposalSentDate)
	if p.ProposalValue != nil {
		v := *p.ProposalValue
		out.ProposalValue = &v
	}
	if p.FollowUpCount != nil {
		out.FollowUpCount = *p.FollowUpCount
	}
	setDate(&out.LastContactDate, p.LastContactDate)
	setDate(&out.ConversionDate, p.ConversionDate)
	setDate(&out.EngagementLetterDate, p.EngagementLetterDate)
	setString(&out.PaymentStatus, p.PaymentStatus)
	setString(&out.InvoiceNumber, p.InvoiceNumber)
	setString(&out.LostReason, p.LostReason)
	setString(&out.InternalNotes, p.InternalNotes)
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDate(dst **time.Time, src *time.Time) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
