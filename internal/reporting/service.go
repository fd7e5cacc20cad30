package reporting

import (
	"context"
	"time"

	"enquiry-platform/internal/enquiry"

	"github.com/shopspring/decimal"
)

// EnquirySource is the read slice of the enquiry store the reports run over.
// enquiry.Store satisfies it.
type EnquirySource interface {
	List(ctx context.Context) ([]enquiry.Enquiry, error)
}

// Service computes derived pipeline metrics. Every figure is recomputed from
// the live enquiry set on each call; nothing here is cached or stored.
type Service struct {
	src   EnquirySource
	clock func() time.Time
}

func NewService(src EnquirySource) *Service {
	return &Service{src: src, clock: time.Now}
}

// StatusCount is one row of the status summary.
type StatusCount struct {
	Status enquiry.Status `json:"status"`
	Count  int            `json:"count"`
}

// statusOrder fixes the summary row order so the API output is stable.
var statusOrder = []enquiry.Status{
	enquiry.StatusPending,
	enquiry.StatusContacted,
	enquiry.StatusMeetingScheduled,
	enquiry.StatusProposalSent,
	enquiry.StatusConverted,
	enquiry.StatusDeclined,
	enquiry.StatusConflict,
	enquiry.StatusNotPursued,
}

// StatusSummary counts enquiries per lifecycle status. Statuses with no
// enquiries are included with a zero count.
func (s *Service) StatusSummary(ctx context.Context) ([]StatusCount, error) {
	all, err := s.src.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[enquiry.Status]int, len(statusOrder))
	for _, e := range all {
		counts[e.CurrentStatus]++
	}

	out := make([]StatusCount, 0, len(statusOrder))
	for _, st := range statusOrder {
		out = append(out, StatusCount{Status: st, Count: counts[st]})
	}
	return out, nil
}

// KPI is the headline metric set for the dashboard.
type KPI struct {
	TotalEnquiries     int             `json:"totalEnquiries"`
	ConvertedEnquiries int             `json:"convertedEnquiries"`
	ConversionRate     float64         `json:"conversionRate"`
	ThisMonthEnquiries int             `json:"thisMonthEnquiries"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
}

// KPIMetrics computes the dashboard KPIs.
// ConversionRate is converted/total as a percentage, 0 for an empty pipeline.
// TotalRevenue sums proposal values over converted enquiries.
func (s *Service) KPIMetrics(ctx context.Context) (KPI, error) {
	all, err := s.src.List(ctx)
	if err != nil {
		return KPI{}, err
	}

	now := s.clock().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	kpi := KPI{TotalEnquiries: len(all), TotalRevenue: decimal.Zero}
	for _, e := range all {
		if !e.DateOfEnquiry.Before(monthStart) {
			kpi.ThisMonthEnquiries++
		}
		if e.CurrentStatus == enquiry.StatusConverted {
			kpi.ConvertedEnquiries++
			if e.ProposalValue != nil {
				kpi.TotalRevenue = kpi.TotalRevenue.Add(*e.ProposalValue)
			}
		}
	}
	if kpi.TotalEnquiries > 0 {
		kpi.ConversionRate = float64(kpi.ConvertedEnquiries) / float64(kpi.TotalEnquiries) * 100
	}
	return kpi, nil
}

// Conversion probability by status. Statuses not listed weigh zero.
var statusProbability = map[enquiry.Status]decimal.Decimal{
	enquiry.StatusPending:          decimal.RequireFromString("0.1"),
	enquiry.StatusContacted:        decimal.RequireFromString("0.2"),
	enquiry.StatusMeetingScheduled: decimal.RequireFromString("0.4"),
	enquiry.StatusProposalSent:     decimal.RequireFromString("0.6"),
	enquiry.StatusConverted:        decimal.RequireFromString("1.0"),
}

// ForecastRow is one status bucket of the pipeline forecast.
type ForecastRow struct {
	Status        enquiry.Status  `json:"status"`
	Count         int             `json:"count"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	Probability   decimal.Decimal `json:"probability"`
	WeightedValue decimal.Decimal `json:"weightedValue"`
}

// PipelineForecast groups enquiries by status and weights each bucket's
// summed proposal value by the status probability; weightedValue is exactly
// totalValue times probability. Only statuses with at least one enquiry
// produce a row; enquiries without a proposal value still count but add
// nothing to the sums.
func (s *Service) PipelineForecast(ctx context.Context) ([]ForecastRow, error) {
	all, err := s.src.List(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		count int
		total decimal.Decimal
	}
	buckets := make(map[enquiry.Status]*bucket)
	for _, e := range all {
		b := buckets[e.CurrentStatus]
		if b == nil {
			b = &bucket{total: decimal.Zero}
			buckets[e.CurrentStatus] = b
		}
		b.count++
		if e.ProposalValue != nil {
			b.total = b.total.Add(*e.ProposalValue)
		}
	}

	out := make([]ForecastRow, 0, len(buckets))
	for _, st := range statusOrder {
		b, ok := buckets[st]
		if !ok {
			continue
		}
		prob, ok := statusProbability[st]
		if !ok {
			prob = decimal.Zero
		}
		out = append(out, ForecastRow{
			Status:        st,
			Count:         b.count,
			TotalValue:    b.total,
			Probability:   prob,
			WeightedValue: b.total.Mul(prob),
		})
	}
	return out, nil
}
