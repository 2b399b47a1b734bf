// Command snapshot_report prints a summary of a store snapshot file:
// document counts per status and membership per dataset.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"leaseintake/models"
	"leaseintake/pkg/store"
)

func main() {
	path := flag.String("snapshot", "data/document-store.json", "snapshot file to read")
	flag.Parse()

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal(err)
	}
	st, err := store.Decode(raw)
	if err != nil {
		log.Fatal("decode snapshot: ", err)
	}

	byStatus := map[models.DocumentStatus]int{}
	reviewed := 0
	for _, doc := range st.Documents {
		byStatus[doc.Status]++
		if doc.IsReviewed {
			reviewed++
		}
	}

	fmt.Printf("documents: %d (%d reviewed)\n", len(st.Documents), reviewed)
	for _, status := range []models.DocumentStatus{
		models.StatusQueued, models.StatusProcessing,
		models.StatusAwaitingReview, models.StatusReviewed, models.StatusFailed,
	} {
		if n := byStatus[status]; n > 0 {
			fmt.Printf("  %-16s %d\n", status, n)
		}
	}

	fmt.Printf("datasets: %d\n", len(st.Datasets))
	for _, ds := range st.Datasets {
		fmt.Printf("  %-24s %d documents\n", ds.Name, len(ds.DocumentIDs))
	}
	if st.ActiveDatasetID != "" {
		fmt.Printf("active dataset: %s\n", st.ActiveDatasetID)
	}
}
