package models

import (
	"slices"
	"time"
)

// DocumentStatus is the lifecycle state of an uploaded document.
type DocumentStatus string

const (
	StatusQueued         DocumentStatus = "queued"
	StatusProcessing     DocumentStatus = "processing"
	StatusAwaitingReview DocumentStatus = "awaiting_review"
	StatusReviewed       DocumentStatus = "reviewed"
	StatusFailed         DocumentStatus = "failed"

	// StatusDone appears in snapshots written by earlier releases and is
	// normalized to StatusAwaitingReview on load. Never written anymore.
	StatusDone DocumentStatus = "done"
)

// Document is one uploaded file plus its processing status and extracted data.
// DatasetIDs is the document side of the document<->dataset membership
// relation; the store keeps it in sync with Dataset.DocumentIDs.
type Document struct {
	ID                string         `json:"id"`
	Filename          string         `json:"filename"`
	Status            DocumentStatus `json:"status"`
	UploadedAt        time.Time      `json:"uploadedAt"`
	ProcessedAt       *time.Time     `json:"processedAt,omitempty"`
	Error             string         `json:"error,omitempty"`
	ExtractedData     *ExtractedData `json:"extractedData,omitempty"`
	QualityScore      *int           `json:"qualityScore,omitempty"`
	IsReviewed        bool           `json:"isReviewed,omitempty"`
	HasUnsavedChanges bool           `json:"hasUnsavedChanges,omitempty"`
	DatasetIDs        []string       `json:"datasetIds,omitempty"`
}

// InDataset reports whether the document is a member of the given dataset.
func (d *Document) InDataset(datasetID string) bool {
	return slices.Contains(d.DatasetIDs, datasetID)
}

// Clone returns a deep copy so callers can hand documents out of the store
// without aliasing internal state.
func (d *Document) Clone() *Document {
	cp := *d
	if d.ProcessedAt != nil {
		t := *d.ProcessedAt
		cp.ProcessedAt = &t
	}
	if d.QualityScore != nil {
		q := *d.QualityScore
		cp.QualityScore = &q
	}
	if d.ExtractedData != nil {
		cp.ExtractedData = d.ExtractedData.Clone()
	}
	cp.DatasetIDs = slices.Clone(d.DatasetIDs)
	return &cp
}
