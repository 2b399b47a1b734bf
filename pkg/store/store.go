// Package store is the single authoritative container for documents and
// datasets. Every mutation goes through one of its operations, which keep the
// bidirectional membership relation (Document.DatasetIDs versus
// Dataset.DocumentIDs) symmetric, persist a snapshot, and notify subscribers.
// Callers never touch both sides of the relation themselves.
package store

import (
	"errors"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"leaseintake/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound reports an operation against an unknown document id.
	// Callers typically log and move on: a document deleted while its
	// pipeline run is still in flight is converged state, not a failure.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateName rejects a dataset whose name collides
	// case-insensitively with an existing one.
	ErrDuplicateName = errors.New("dataset name already exists")
)

// Store holds all documents and datasets plus the active dataset filter.
// All operations are safe for concurrent use; each one is atomic, so readers
// never observe a half-applied mutation.
type Store struct {
	mu              sync.RWMutex
	documents       []*models.Document
	datasets        []*models.Dataset
	activeDatasetID string

	snap SnapshotStore
	subs []func()

	// seq orders snapshot writes so a slow save can never clobber the
	// result of a later mutation.
	seq       uint64
	saveMu    sync.Mutex
	lastSaved uint64
}

// New builds a store, rehydrating state from snap when it holds a snapshot.
// snap may be nil for a purely in-memory store (tests, seeding tools).
func New(snap SnapshotStore) (*Store, error) {
	s := &Store{snap: snap}
	if snap == nil {
		return s, nil
	}
	raw, err := snap.Load()
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return s, nil
	}
	st, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	s.documents = st.Documents
	s.datasets = st.Datasets
	s.activeDatasetID = st.ActiveDatasetID
	return s, nil
}

// Subscribe registers a callback fired after every applied mutation. The
// callback runs outside the store lock and must not mutate the store;
// reactive consumers re-read via the accessors.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// RegisterDocument creates a queued document and adds it to every named
// dataset. Unknown dataset ids are dropped from membership rather than
// failing the insert: the uploader picks datasets from a live list, so a
// stale id means the dataset was deleted concurrently.
func (s *Store) RegisterDocument(filename string, datasetIDs []string) string {
	s.mu.Lock()
	doc := &models.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Status:     models.StatusQueued,
		UploadedAt: time.Now(),
	}
	s.documents = append(s.documents, doc)
	for _, dsID := range datasetIDs {
		s.addEdgeLocked(dsID, doc.ID)
	}
	state := s.stateLocked()
	s.mu.Unlock()

	s.committed(state)
	return doc.ID
}

// UpdateStatus overwrites a document's status and error message. An empty
// errMsg clears any previous error. The store does not validate the
// transition; callers only request forward transitions.
func (s *Store) UpdateStatus(id string, status models.DocumentStatus, errMsg string) error {
	s.mu.Lock()
	doc := s.documentLocked(id)
	if doc == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	doc.Status = status
	doc.Error = errMsg
	state := s.stateLocked()
	s.mu.Unlock()

	s.committed(state)
	return nil
}

// AttachExtractedData sets the extraction result, stamps ProcessedAt and
// forces the document into awaiting_review. Any prior extracted data is
// replaced wholesale.
func (s *Store) AttachExtractedData(id string, data *models.ExtractedData, qualityScore int) error {
	s.mu.Lock()
	doc := s.documentLocked(id)
	if doc == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	now := time.Now()
	doc.ExtractedData = data.Clone()
	doc.QualityScore = &qualityScore
	doc.ProcessedAt = &now
	doc.Status = models.StatusAwaitingReview
	doc.Error = ""
	state := s.stateLocked()
	s.mu.Unlock()

	s.committed(state)
	return nil
}

// SaveReview stores the user-corrected data and finalizes the review. This
// is the only path that reaches the reviewed status. A nil qualityScore
// keeps the score attached at extraction time.
func (s *Store) SaveReview(id string, data *models.ExtractedData, qualityScore *int) error {
	s.mu.Lock()
	doc := s.documentLocked(id)
	if doc == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	now := time.Now()
	doc.ExtractedData = data.Clone()
	if qualityScore != nil {
		q := *qualityScore
		doc.QualityScore = &q
	}
	doc.ProcessedAt = &now
	doc.Status = models.StatusReviewed
	doc.IsReviewed = true
	doc.HasUnsavedChanges = false
	doc.Error = ""
	state := s.stateLocked()
	s.mu.Unlock()

	s.committed(state)
	return nil
}

// SetUnsavedChanges tracks the review-dirty flag for a document. The flag is
// UI state persisted into the store for simplicity.
func (s *Store) SetUnsavedChanges(id string, hasChanges bool) error {
	s.mu.Lock()
	doc := s.documentLocked(id)
	if doc == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	doc.HasUnsavedChanges = hasChanges
	state := s.stateLocked()
	s.mu.Unlock()

	s.committed(state)
	return nil
}

// CreateDataset creates an empty dataset. Name collisions are compared
// case-insensitively and rejected, never merged.
func (s *Store) CreateDataset(name, description, color string) (string, error) {
	s.mu.Lock()
	for _, ds := range s.datasets {
		if strings.EqualFold(ds.Name, name) {
			s.mu.Unlock()
			return "", ErrDuplicateName
		}
	}
	ds := &models.Dataset{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   time.Now(),
	}
	s.datasets = append(s.datasets, ds)
	state := s.stateLocked()
	s.mu.Unlock()

	s.committed(state)
	return ds.ID, nil
}

// SelectDataset sets the active dataset filter. Empty means "all documents".
// Purely a view selector; membership is untouched.
func (s *Store) SelectDataset(id string) {
	s.mu.Lock()
	s.activeDatasetID = id
	state := s.stateLocked()
	s.mu.Unlock()

	s.committed(state)
}

// TagDocument adds one membership edge. Both sides of the relation are
// updated together; adding an existing edge is a no-op. Unknown dataset or
// document ids are ignored.
func (s *Store) TagDocument(datasetID, documentID string) {
	s.mu.Lock()
	changed := s.addEdgeLocked(datasetID, documentID)
	var state *State
	if changed {
		state = s.stateLocked()
	}
	s.mu.Unlock()

	if changed {
		s.committed(state)
	}
}

// UntagDocument removes one membership edge; removing an absent edge is a
// no-op.
func (s *Store) UntagDocument(datasetID, documentID string) {
	s.mu.Lock()
	changed := s.removeEdgeLocked(datasetID, documentID)
	var state *State
	if changed {
		state = s.stateLocked()
	}
	s.mu.Unlock()

	if changed {
		s.committed(state)
	}
}

// BulkTag tags every listed document into the dataset. Duplicates in the
// list collapse naturally because membership is set-valued.
func (s *Store) BulkTag(datasetID string, documentIDs []string) {
	s.mu.Lock()
	changed := false
	for _, docID := range documentIDs {
		if s.addEdgeLocked(datasetID, docID) {
			changed = true
		}
	}
	var state *State
	if changed {
		state = s.stateLocked()
	}
	s.mu.Unlock()

	if changed {
		s.committed(state)
	}
}

// DetectDuplicates returns the candidates whose filename already matches,
// case-insensitively, a document currently in the dataset. Filename-only
// matching: two distinct documents with the same name are indistinguishable
// here. Pure read.
func (s *Store) DetectDuplicates(datasetID string, candidateIDs []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds := s.datasetLocked(datasetID)
	if ds == nil {
		return nil
	}
	members := make(map[string]bool, len(ds.DocumentIDs))
	for _, docID := range ds.DocumentIDs {
		if doc := s.documentLocked(docID); doc != nil {
			members[strings.ToLower(doc.Filename)] = true
		}
	}
	var dups []string
	seen := make(map[string]bool, len(candidateIDs))
	for _, candID := range candidateIDs {
		if seen[candID] {
			continue
		}
		seen[candID] = true
		doc := s.documentLocked(candID)
		if doc != nil && members[strings.ToLower(doc.Filename)] {
			dups = append(dups, candID)
		}
	}
	return dups
}

// DeleteDocument removes the document and cascades its membership out of
// every dataset. Unknown ids are a no-op.
func (s *Store) DeleteDocument(id string) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.documents, func(d *models.Document) bool { return d.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.documents = slices.Delete(s.documents, idx, idx+1)
	for _, ds := range s.datasets {
		if i := slices.Index(ds.DocumentIDs, id); i >= 0 {
			ds.DocumentIDs = slices.Delete(ds.DocumentIDs, i, i+1)
		}
	}
	state := s.stateLocked()
	s.mu.Unlock()

	s.committed(state)
}

// View is the derived read every table renders from: all documents when
// datasetID is empty, otherwise the documents belonging to it. Always a live
// filter over the document list, never separate state.
func (s *Store) View(datasetID string) []*models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if datasetID == "" || doc.InDataset(datasetID) {
			out = append(out, doc.Clone())
		}
	}
	return out
}

// Documents returns all documents in insertion order.
func (s *Store) Documents() []*models.Document {
	return s.View("")
}

// Document returns a copy of one document.
func (s *Store) Document(id string) (*models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := s.documentLocked(id)
	if doc == nil {
		return nil, false
	}
	return doc.Clone(), true
}

// Datasets returns all datasets in insertion order.
func (s *Store) Datasets() []*models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		out = append(out, ds.Clone())
	}
	return out
}

// Dataset returns a copy of one dataset.
func (s *Store) Dataset(id string) (*models.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds := s.datasetLocked(id)
	if ds == nil {
		return nil, false
	}
	return ds.Clone(), true
}

// ActiveDatasetID returns the current view filter, empty for "all".
func (s *Store) ActiveDatasetID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeDatasetID
}

// Reload replaces in-memory state with the current snapshot contents. Used
// when another process rewrote the snapshot file; last writer wins.
func (s *Store) Reload() error {
	if s.snap == nil {
		return nil
	}
	raw, err := s.snap.Load()
	if err != nil {
		return err
	}
	st := &State{}
	if raw != nil {
		if st, err = Decode(raw); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.documents = st.Documents
	s.datasets = st.Datasets
	s.activeDatasetID = st.ActiveDatasetID
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return nil
}

// documentLocked and datasetLocked require s.mu held.
func (s *Store) documentLocked(id string) *models.Document {
	for _, doc := range s.documents {
		if doc.ID == id {
			return doc
		}
	}
	return nil
}

func (s *Store) datasetLocked(id string) *models.Dataset {
	for _, ds := range s.datasets {
		if ds.ID == id {
			return ds
		}
	}
	return nil
}

// addEdgeLocked inserts a membership edge on both sides. Returns false when
// either endpoint is missing or the edge already exists.
func (s *Store) addEdgeLocked(datasetID, documentID string) bool {
	ds := s.datasetLocked(datasetID)
	doc := s.documentLocked(documentID)
	if ds == nil || doc == nil {
		return false
	}
	if doc.InDataset(datasetID) {
		return false
	}
	doc.DatasetIDs = append(doc.DatasetIDs, datasetID)
	ds.DocumentIDs = append(ds.DocumentIDs, documentID)
	return true
}

// removeEdgeLocked drops a membership edge from both sides.
func (s *Store) removeEdgeLocked(datasetID, documentID string) bool {
	ds := s.datasetLocked(datasetID)
	doc := s.documentLocked(documentID)
	if ds == nil || doc == nil {
		return false
	}
	i := slices.Index(doc.DatasetIDs, datasetID)
	if i < 0 {
		return false
	}
	doc.DatasetIDs = slices.Delete(doc.DatasetIDs, i, i+1)
	if j := slices.Index(ds.DocumentIDs, documentID); j >= 0 {
		ds.DocumentIDs = slices.Delete(ds.DocumentIDs, j, j+1)
	}
	return true
}

// stateLocked deep-copies current state for persistence. Requires s.mu held.
func (s *Store) stateLocked() *State {
	s.seq++
	st := &State{
		Documents:       make([]*models.Document, 0, len(s.documents)),
		Datasets:        make([]*models.Dataset, 0, len(s.datasets)),
		ActiveDatasetID: s.activeDatasetID,
		seq:             s.seq,
	}
	for _, doc := range s.documents {
		st.Documents = append(st.Documents, doc.Clone())
	}
	for _, ds := range s.datasets {
		st.Datasets = append(st.Datasets, ds.Clone())
	}
	return st
}

// committed persists the post-mutation state and notifies subscribers, both
// outside the lock. Persistence is best effort: a failed write never rolls
// back an applied mutation.
func (s *Store) committed(state *State) {
	if s.snap != nil {
		s.saveMu.Lock()
		if state.seq > s.lastSaved {
			raw, err := Encode(state)
			if err == nil {
				err = s.snap.Save(raw)
			}
			if err != nil {
				log.Printf("snapshot save failed: %v", err)
			} else {
				s.lastSaved = state.seq
			}
		}
		s.saveMu.Unlock()
	}
	s.mu.RLock()
	subs := slices.Clone(s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}
