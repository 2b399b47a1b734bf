// Package pipeline orchestrates the per-file intake sequence: register the
// document, mark it processing, run the upload checks, call the extractor,
// and write the outcome back. Each file runs independently; one failure
// never touches another file's run.
package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"

	"leaseintake/models"
	"leaseintake/pkg/extract"
	"leaseintake/pkg/store"
	"leaseintake/pkg/upload"
)

// Store is the slice of the document store the pipeline mutates.
type Store interface {
	RegisterDocument(filename string, datasetIDs []string) string
	UpdateStatus(id string, status models.DocumentStatus, errMsg string) error
	AttachExtractedData(id string, data *models.ExtractedData, qualityScore int) error
}

// Runner drives intake runs. Validate defaults to upload.Validate and is a
// field so tests can force validator failures.
type Runner struct {
	store     Store
	extractor extract.Extractor
	Validate  func(filename string, size int64, contentType string) error

	wg sync.WaitGroup
}

func New(st Store, ex extract.Extractor) *Runner {
	return &Runner{store: st, extractor: ex, Validate: upload.Validate}
}

// Enqueue registers the document and processes it on its own goroutine,
// returning the new document id immediately. The per-document mutations
// happen in strict order because the goroutine awaits each step; runs for
// different files interleave freely.
func (r *Runner) Enqueue(ctx context.Context, filename string, size int64, contentType string, datasetIDs []string) string {
	id := r.store.RegisterDocument(filename, datasetIDs)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.process(ctx, id, filename, size, contentType)
	}()
	return id
}

// Wait blocks until every enqueued run has finished. Used by shutdown and
// tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) process(ctx context.Context, id, filename string, size int64, contentType string) {
	if err := r.store.UpdateStatus(id, models.StatusProcessing, ""); err != nil {
		// Document deleted before the run started; converged, nothing to do.
		r.report(id, err)
		return
	}

	if err := r.Validate(filename, size, contentType); err != nil {
		r.report(id, r.store.UpdateStatus(id, models.StatusFailed, err.Error()))
		return
	}

	res, err := r.extractor.Extract(ctx, id, filename)
	if err != nil {
		r.report(id, r.store.UpdateStatus(id, models.StatusFailed, err.Error()))
		return
	}

	r.report(id, r.store.AttachExtractedData(id, res.Data, res.QualityScore))
}

// report logs store misses without failing the run; a not-found mid-run
// means the user deleted the document while it was processing.
func (r *Runner) report(id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("pipeline: document %s vanished mid-run", id)
	}
}
