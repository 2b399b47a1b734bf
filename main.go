package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"leaseintake/pkg/extract"
	"leaseintake/pkg/pipeline"
	"leaseintake/pkg/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("bad configuration: ", err)
	}

	// `./leaseintake migrate` prepares the snapshot table and exits.
	// Useful for CI or manual database setup; no-op for the file backend.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if cfg.DatabaseURL == "" && cfg.SnapshotDSN == "" {
			fmt.Println("file backend configured, nothing to migrate")
			return
		}
		if _, err := openSnapshotDB(cfg); err != nil {
			log.Fatal(err)
		}
		fmt.Println("migration completed")
		return
	}

	var snap store.SnapshotStore
	var fileSnap *store.FileStore
	if cfg.DatabaseURL != "" || cfg.SnapshotDSN != "" {
		if snap, err = openSnapshotDB(cfg); err != nil {
			log.Fatal(err)
		}
	} else {
		fileSnap = store.NewFileStore(cfg.SnapshotPath)
		snap = fileSnap
	}

	docStore, err = store.New(snap)
	if err != nil {
		log.Fatal("load snapshot: ", err)
	}
	extractor = extract.NewSimulatorWith(cfg.ExtractFailureRate,
		cfg.extractMinDelay(), cfg.extractMaxDelay(), time.Now().UnixNano())
	runner = pipeline.New(docStore, extractor)

	if fileSnap != nil && cfg.WatchSnapshot {
		w, err := watchSnapshot(fileSnap, docStore)
		if err != nil {
			log.Printf("snapshot watch disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	gin.SetMode(cfg.GinMode)
	r := gin.Default()
	setupRoutes(r)

	r.Run(":" + cfg.Port)
}
