// Seeds a snapshot with fake processed documents for local frontend work.
// Writes through the real store so the seeded state obeys the same
// invariants as live data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"leaseintake/pkg/extract"
	"leaseintake/pkg/store"
)

func main() {
	path := flag.String("snapshot", "data/document-store.json", "snapshot file to write")
	count := flag.Int("n", 10, "number of documents to seed")
	datasetName := flag.String("dataset", "Seeded Leases", "dataset to create and tag everything into")
	flag.Parse()

	st, err := store.New(store.NewFileStore(*path))
	if err != nil {
		log.Fatal("load snapshot: ", err)
	}

	datasetID, err := st.CreateDataset(*datasetName, "seeded for development", "#6b7280")
	if err != nil {
		// Already seeded once; reuse the existing dataset.
		for _, ds := range st.Datasets() {
			if ds.Name == *datasetName {
				datasetID = ds.ID
			}
		}
	}

	sim := extract.NewSimulatorWith(0, 0, 0, time.Now().UnixNano())
	for i := 0; i < *count; i++ {
		filename := fmt.Sprintf("lease-%03d.pdf", i+1)
		id := st.RegisterDocument(filename, []string{datasetID})
		res, err := sim.Extract(context.Background(), id, filename)
		if err != nil {
			log.Fatal(err)
		}
		if err := st.AttachExtractedData(id, res.Data, res.QualityScore); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("seeded %d documents into %q (%s)", *count, *datasetName, *path)
}
