// Package extract defines the extraction-service contract and ships the
// simulator that stands in for a real document-understanding backend. The
// interface is what the pipeline depends on; swapping in a real engine means
// implementing Extractor and nothing else.
package extract

import (
	"context"
	"errors"
	"time"

	"leaseintake/models"
)

// ErrExtractionFailed is the transient failure the simulator injects. The
// message is surfaced verbatim to the user.
var ErrExtractionFailed = errors.New("Extraction failed: Please upload again")

// Result is a successful extraction.
type Result struct {
	Data         *models.ExtractedData
	QualityScore int
	ProcessedAt  time.Time
}

// Extractor converts an uploaded document into structured lease fields.
// Implementations simulate or perform network calls and must honor ctx.
type Extractor interface {
	Extract(ctx context.Context, documentID, filename string) (*Result, error)
}
