package store

import (
	"encoding/json"
	"slices"

	"leaseintake/models"
)

// StoreName keys the persisted snapshot, both as the file's logical name and
// as the primary key of the database row.
const StoreName = "document-store"

// snapshotVersion 1 stored a scalar datasetId per document and still used
// the "done" status; version 2 is the set-valued layout. Both decode.
const snapshotVersion = 2

// SnapshotStore persists the serialized store state. Load returns (nil, nil)
// when no snapshot has been written yet.
type SnapshotStore interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// State is the serializable content of the store.
type State struct {
	Documents       []*models.Document
	Datasets        []*models.Dataset
	ActiveDatasetID string

	seq uint64
}

type persistedState struct {
	Version         int                  `json:"version"`
	Documents       []*persistedDocument `json:"documents"`
	Datasets        []*models.Dataset    `json:"datasets"`
	ActiveDatasetID string               `json:"activeDatasetId,omitempty"`
}

// persistedDocument carries the legacy scalar dataset field alongside the
// current shape so old snapshots keep loading.
type persistedDocument struct {
	models.Document
	LegacyDatasetID string `json:"datasetId,omitempty"`
}

// Encode serializes state into the snapshot payload. Timestamps marshal as
// RFC 3339 strings via time.Time.
func Encode(st *State) ([]byte, error) {
	ps := persistedState{
		Version:         snapshotVersion,
		Documents:       make([]*persistedDocument, 0, len(st.Documents)),
		Datasets:        st.Datasets,
		ActiveDatasetID: st.ActiveDatasetID,
	}
	for _, doc := range st.Documents {
		ps.Documents = append(ps.Documents, &persistedDocument{Document: *doc})
	}
	return json.MarshalIndent(ps, "", "  ")
}

// Decode parses a snapshot payload and applies the load-time migrations in
// one place: legacy datasetId merged into datasetIds, legacy "done" status
// normalized to awaiting_review, and the membership relation re-symmetrized
// so a hand-edited or corrupt snapshot can never seed a desynced store.
func Decode(raw []byte) (*State, error) {
	var ps persistedState
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, err
	}
	st := &State{
		Datasets:        ps.Datasets,
		ActiveDatasetID: ps.ActiveDatasetID,
	}
	for _, pd := range ps.Documents {
		doc := pd.Document
		if pd.LegacyDatasetID != "" && !slices.Contains(doc.DatasetIDs, pd.LegacyDatasetID) {
			doc.DatasetIDs = append(doc.DatasetIDs, pd.LegacyDatasetID)
		}
		if doc.Status == models.StatusDone {
			doc.Status = models.StatusAwaitingReview
		}
		st.Documents = append(st.Documents, &doc)
	}
	symmetrize(st)
	return st, nil
}

// symmetrize rebuilds both sides of the membership relation as the union of
// whatever each side recorded, dropping references to ids that no longer
// exist and collapsing repeated ids so both sides come out set-valued.
func symmetrize(st *State) {
	docs := make(map[string]*models.Document, len(st.Documents))
	for _, doc := range st.Documents {
		docs[doc.ID] = doc
	}
	sets := make(map[string]*models.Dataset, len(st.Datasets))
	for _, ds := range st.Datasets {
		sets[ds.ID] = ds
	}

	for _, doc := range st.Documents {
		for _, dsID := range doc.DatasetIDs {
			if ds, ok := sets[dsID]; ok && !ds.HasDocument(doc.ID) {
				ds.DocumentIDs = append(ds.DocumentIDs, doc.ID)
			}
		}
	}
	for _, ds := range st.Datasets {
		kept := ds.DocumentIDs[:0]
		seen := make(map[string]bool, len(ds.DocumentIDs))
		for _, docID := range ds.DocumentIDs {
			doc, ok := docs[docID]
			if !ok || seen[docID] {
				continue
			}
			seen[docID] = true
			kept = append(kept, docID)
			if !doc.InDataset(ds.ID) {
				doc.DatasetIDs = append(doc.DatasetIDs, ds.ID)
			}
		}
		ds.DocumentIDs = kept
	}
	for _, doc := range st.Documents {
		kept := doc.DatasetIDs[:0]
		seen := make(map[string]bool, len(doc.DatasetIDs))
		for _, dsID := range doc.DatasetIDs {
			if _, ok := sets[dsID]; !ok || seen[dsID] {
				continue
			}
			seen[dsID] = true
			kept = append(kept, dsID)
		}
		doc.DatasetIDs = kept
	}
}
