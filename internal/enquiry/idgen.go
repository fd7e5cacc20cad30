package enquiry

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SequenceSource is the slice of the store the generator reads from.
type SequenceSource interface {
	MaxEnquiryNumber(ctx context.Context) (int64, error)
	CountConversionsInYear(ctx context.Context, year int) (int64, error)
}

// Generator mints human-readable identifiers.
//
// Numbering is read-then-derive over the durable store, so it survives
// process restarts. A process-local mutex covers each read/derive window.
// Cross-process uniqueness of enquiry codes rests on the store's unique
// constraint: callers retry on ErrConflict with a fresh candidate, which is
// guaranteed fresh because the winning insert raised MAX(id). Matter codes
// have no constraint to lean on; the service serializes the whole
// mint-and-write section (see Service.Update).
type Generator struct {
	mu  sync.Mutex
	src SequenceSource
}

func NewGenerator(src SequenceSource) *Generator {
	return &Generator{src: src}
}

// NextEnquiryCode returns the next ENQ-%04d candidate.
func (g *Generator) NextEnquiryCode(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	max, err := g.src.MaxEnquiryNumber(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ENQ-%04d", max+1), nil
}

// NextMatterCode returns MAT-{year}-%03d where the suffix is one more than
// the number of conversions already recorded in conversionDate's year.
func (g *Generator) NextMatterCode(ctx context.Context, conversionDate time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	year := conversionDate.Year()
	n, err := g.src.CountConversionsInYear(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("MAT-%d-%03d", year, n+1), nil
}
