package pipeline

import (
	"context"
	"errors"
	"testing"

	"leaseintake/models"
	"leaseintake/pkg/extract"
	"leaseintake/pkg/store"
)

type fakeExtractor struct {
	fail map[string]bool // by filename
}

func (f *fakeExtractor) Extract(ctx context.Context, documentID, filename string) (*extract.Result, error) {
	if f.fail[filename] {
		return nil, extract.ErrExtractionFailed
	}
	return &extract.Result{
		Data:         &models.ExtractedData{Name: "Max", ColdRent: 800, WarmRent: 1000},
		QualityScore: 90,
	}, nil
}

func newRunner(t *testing.T, fail map[string]bool) (*Runner, *store.Store) {
	t.Helper()
	st, err := store.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return New(st, &fakeExtractor{fail: fail}), st
}

func TestRunSuccess(t *testing.T) {
	r, st := newRunner(t, nil)
	id := r.Enqueue(context.Background(), "lease.pdf", 1024, "application/pdf", nil)
	r.Wait()

	doc, ok := st.Document(id)
	if !ok {
		t.Fatalf("document missing")
	}
	if doc.Status != models.StatusAwaitingReview {
		t.Fatalf("expected awaiting_review, got %s (error=%q)", doc.Status, doc.Error)
	}
	if doc.ExtractedData == nil || doc.QualityScore == nil || *doc.QualityScore != 90 {
		t.Fatalf("extraction result not attached: %+v", doc)
	}
}

func TestRunValidationFailure(t *testing.T) {
	r, st := newRunner(t, nil)
	id := r.Enqueue(context.Background(), "notes.txt", 1024, "text/plain", nil)
	r.Wait()

	doc, _ := st.Document(id)
	if doc.Status != models.StatusFailed {
		t.Fatalf("expected failed, got %s", doc.Status)
	}
	if doc.Error == "" {
		t.Fatalf("validation failure must carry a reason")
	}
	if doc.ExtractedData != nil {
		t.Fatalf("failed document must not carry extracted data")
	}
}

func TestRunExtractionFailure(t *testing.T) {
	r, st := newRunner(t, map[string]bool{"flaky.pdf": true})
	id := r.Enqueue(context.Background(), "flaky.pdf", 1024, "application/pdf", nil)
	r.Wait()

	doc, _ := st.Document(id)
	if doc.Status != models.StatusFailed {
		t.Fatalf("expected failed, got %s", doc.Status)
	}
	if doc.Error != "Extraction failed: Please upload again" {
		t.Fatalf("unexpected error message: %q", doc.Error)
	}
}

// Three files, one of them flaky: each run is independent, so the other two
// still land in awaiting_review.
func TestRunsAreIndependent(t *testing.T) {
	r, st := newRunner(t, map[string]bool{"two.pdf": true})
	ids := map[string]string{
		"one.pdf":   r.Enqueue(context.Background(), "one.pdf", 1024, "application/pdf", nil),
		"two.pdf":   r.Enqueue(context.Background(), "two.pdf", 1024, "application/pdf", nil),
		"three.pdf": r.Enqueue(context.Background(), "three.pdf", 1024, "application/pdf", nil),
	}
	r.Wait()

	for name, id := range ids {
		doc, _ := st.Document(id)
		switch name {
		case "two.pdf":
			if doc.Status != models.StatusFailed || doc.Error == "" || doc.ExtractedData != nil {
				t.Fatalf("%s: failure path broken: %+v", name, doc)
			}
		default:
			if doc.Status != models.StatusAwaitingReview || doc.ExtractedData == nil {
				t.Fatalf("%s: success path broken: %+v", name, doc)
			}
		}
	}
}

func TestRunRegistersIntoDatasets(t *testing.T) {
	r, st := newRunner(t, nil)
	dsID, err := st.CreateDataset("Uploads", "", "")
	if err != nil {
		t.Fatal(err)
	}
	id := r.Enqueue(context.Background(), "lease.pdf", 1024, "application/pdf", []string{dsID})
	r.Wait()

	ds, _ := st.Dataset(dsID)
	if !ds.HasDocument(id) {
		t.Fatalf("pipeline lost the dataset assignment")
	}
}

// Deleting the document mid-run must not fail the runner; the remaining
// mutations become no-ops against a vanished id.
func TestRunSurvivesConcurrentDelete(t *testing.T) {
	st, err := store.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	deleted := make(chan struct{})
	r := New(st, &fakeExtractor{})
	r.Validate = func(filename string, size int64, contentType string) error {
		<-deleted // hold the run until the document is gone
		return nil
	}

	id := r.Enqueue(context.Background(), "lease.pdf", 1024, "application/pdf", nil)
	st.DeleteDocument(id)
	close(deleted)
	r.Wait()

	if _, ok := st.Document(id); ok {
		t.Fatalf("document resurrected by in-flight pipeline run")
	}
}

func TestFakeExtractorContract(t *testing.T) {
	// The test double must agree with the real error contract.
	f := &fakeExtractor{fail: map[string]bool{"x.pdf": true}}
	if _, err := f.Extract(context.Background(), "d", "x.pdf"); !errors.Is(err, extract.ErrExtractionFailed) {
		t.Fatalf("fake drifted from extractor contract: %v", err)
	}
}
