package main

import (
	"log"
	"path/filepath"
	"time"

	"leaseintake/pkg/store"

	"github.com/fsnotify/fsnotify"
)

// watchSnapshot reloads the store when another process rewrites the snapshot
// file (a second instance or a hand edit). Last writer wins; the store's
// own saves are filtered out by content hash. The directory is watched
// rather than the file because atomic saves replace the inode.
func watchSnapshot(fs *store.FileStore, st *store.Store) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(fs.Path())
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	target := filepath.Clean(fs.Path())

	go func() {
		var debounce *time.Timer
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				// Editors and atomic saves fire bursts of events;
				// collapse them before reloading.
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, func() {
					changed, err := fs.ExternallyModified()
					if err != nil {
						log.Printf("snapshot watch: %v", err)
						return
					}
					if !changed {
						return
					}
					log.Printf("snapshot rewritten externally, reloading")
					if err := st.Reload(); err != nil {
						log.Printf("snapshot reload failed: %v", err)
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("snapshot watch error: %v", err)
			}
		}
	}()
	return w, nil
}
