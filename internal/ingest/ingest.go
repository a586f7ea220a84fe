// Package ingest loads raw message batch files into the warehouse landing
// table. Batches are JSON files, each holding a list of scraped message
// documents. Duplicate (message_id, channel_name) pairs across batches are
// kept-first; malformed files or records are skipped and counted, never fatal.
package ingest

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

// Result holds the results of a load run.
type Result struct {
	FilesRead      int
	FilesSkipped   int
	TotalFound     int
	NewMessages    int
	Duplicates     int
	RecordsSkipped int
}

// rawDocument mirrors the scraper's per-message JSON shape.
type rawDocument struct {
	MessageID         *int64   `json:"message_id"`
	ChannelName       string   `json:"channel_name"`
	ChannelUsername   *string  `json:"channel_username"`
	ChannelTitle      *string  `json:"channel_title"`
	MessageDate       *string  `json:"message_date"`
	MessageText       *string  `json:"message_text"`
	HasMedia          bool     `json:"has_media"`
	ImagePath         *string  `json:"image_path"`
	Views             int      `json:"views"`
	Forwards          int      `json:"forwards"`
	ScrapedAt         *string  `json:"scraped_at"`
	PotentialProducts []string `json:"potential_products"`
}

// Loader loads raw message batches into the warehouse.
type Loader struct {
	db *warehouse.DB
}

// NewLoader creates a new batch loader.
func NewLoader(db *warehouse.DB) *Loader {
	return &Loader{db: db}
}

// LoadPaths loads every given path; directories are expanded to the JSON
// files inside them (manifest files are skipped).
func (l *Loader) LoadPaths(paths []string) (*Result, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no batch files found under %s", strings.Join(paths, ", "))
	}

	r := &Result{}
	for _, file := range files {
		l.loadFile(file, r)
	}

	log.Printf("Load complete: %d found, %d new, %d duplicates, %d records skipped",
		r.TotalFound, r.NewMessages, r.Duplicates, r.RecordsSkipped)
	return r, nil
}

// loadFile loads one batch file. Decode failures skip the whole file;
// individual bad records skip only themselves.
func (l *Loader) loadFile(path string, r *Result) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Skipping %s: %v", path, err)
		r.FilesSkipped++
		return
	}

	var docs []rawDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		// Some scraper versions write a single document per file.
		var single rawDocument
		if err := json.Unmarshal(data, &single); err != nil {
			log.Printf("Skipping %s: not a message batch: %v", path, err)
			r.FilesSkipped++
			return
		}
		docs = []rawDocument{single}
	}

	r.FilesRead++
	r.TotalFound += len(docs)

	for _, doc := range docs {
		if doc.MessageID == nil || doc.ChannelName == "" {
			r.RecordsSkipped++
			continue
		}

		id, err := l.db.InsertRawMessage(&warehouse.RawMessage{
			MessageID:         *doc.MessageID,
			ChannelName:       doc.ChannelName,
			ChannelUsername:   doc.ChannelUsername,
			ChannelTitle:      doc.ChannelTitle,
			MessageDate:       doc.MessageDate,
			MessageText:       doc.MessageText,
			HasMedia:          doc.HasMedia,
			ImagePath:         doc.ImagePath,
			Views:             doc.Views,
			Forwards:          doc.Forwards,
			ScrapedAt:         doc.ScrapedAt,
			PotentialProducts: doc.PotentialProducts,
		})
		if err != nil {
			log.Printf("Skipping record %d in %s: %v", *doc.MessageID, path, err)
			r.RecordsSkipped++
			continue
		}
		if id > 0 {
			r.NewMessages++
		} else {
			r.Duplicates++
		}
	}

	log.Printf("Loaded %d messages from %s", len(docs), filepath.Base(path))
}

// expandPaths resolves files and directories into a flat list of batch files.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if strings.HasSuffix(m, "_manifest.json") {
				continue
			}
			files = append(files, m)
		}
	}
	return files, nil
}
