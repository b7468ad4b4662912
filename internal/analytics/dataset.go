package analytics

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"hanami-dashboard/internal/models"
	"hanami-dashboard/internal/normalize"
)

// Dataset is the in-memory canonical record collection every query runs
// against. Writes swap the whole slice; readers snapshot under RLock, so
// an aggregation pass always sees one immutable collection.
type Dataset struct {
	mu       sync.RWMutex
	records  []models.SalesRecord
	source   string
	loadedAt time.Time
	logger   *slog.Logger
}

func NewDataset() *Dataset {
	return &Dataset{
		records: []models.SalesRecord{},
		logger:  slog.Default(),
	}
}

// SetRecords replaces the collection, e.g. after an upload.
func (d *Dataset) SetRecords(records []models.SalesRecord, source string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = records
	d.source = source
	d.loadedAt = time.Now()
}

// Records returns the current collection. Callers must treat it as
// read-only; aggregations never mutate their input.
func (d *Dataset) Records() []models.SalesRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records
}

// Page returns one pagination window plus the total record count.
func (d *Dataset) Page(limit, offset int) ([]models.SalesRecord, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	total := len(d.records)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return d.records[offset:end], total
}

// LoadFromCSV streams a delimited file through the normalizer. Malformed
// rows are skipped row by row; only a file with no valid records at all
// is an error.
func (d *Dataset) LoadFromCSV(ctx context.Context, filename string) error {
	start := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	if !scanner.Scan() {
		return fmt.Errorf("empty file")
	}
	header := normalize.SplitLine(scanner.Text())

	var rows [][]string
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		rows = append(rows, normalize.SplitLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	records, stats := normalize.FromRows(header, rows)
	if len(records) == 0 {
		return fmt.Errorf("no valid records found")
	}

	d.SetRecords(records, filename)
	d.logger.Info("csv processing complete",
		"records", stats.Rows,
		"skipped", stats.Skipped,
		"duration", time.Since(start))
	return nil
}

// Stats exposes dataset shape for the admin endpoint.
func (d *Dataset) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]any{
		"record_count": len(d.records),
		"source":       d.source,
		"loaded_at":    d.loadedAt,
	}
}
