package models

import (
	"slices"
	"time"
)

// Dataset is a user-defined, named group of documents. Names are unique
// case-insensitively. DocumentIDs is the inverse side of
// Document.DatasetIDs and is maintained by the store.
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	DocumentIDs []string  `json:"documentIds,omitempty"`
	// Categories are cosmetic grouping pills for the UI, no invariant attached.
	Categories []string `json:"categories,omitempty"`
}

// HasDocument reports whether the dataset contains the given document.
func (s *Dataset) HasDocument(documentID string) bool {
	return slices.Contains(s.DocumentIDs, documentID)
}

func (s *Dataset) Clone() *Dataset {
	cp := *s
	cp.DocumentIDs = slices.Clone(s.DocumentIDs)
	cp.Categories = slices.Clone(s.Categories)
	return &cp
}
