// Package ingest reads raw telemetry into memory: either a directory of
// fleet snapshot JSON files (read with a bounded worker pool, in fixed
// size batches) or an already combined CSV.
package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/fleettrace/fleettrace/pkg/tabular"
	"github.com/fleettrace/fleettrace/pkg/telemetry"
)

const (
	DefaultWorkers   = 16
	DefaultBatchSize = 5000
)

// SnapshotRows is the flattened content of a snapshot directory. Fields
// is the union of field names over every row read, needed before any
// output row can be written.
type SnapshotRows struct {
	Rows   []map[string]interface{}
	Fields tabular.FieldSet

	FilesRead    int
	FilesSkipped int
}

type snapshotFile struct {
	filename string
	rows     []map[string]interface{}
	fields   tabular.FieldSet
	err      error
}

// ReadSnapshotDirectory reads every *.json snapshot under directory.
// Files are read workers-at-a-time in batches of batchSize; each row is
// stamped with the datetime embedded in its source file name. A file
// that fails to read or parse is logged and skipped, it never aborts the
// run.
func ReadSnapshotDirectory(directory string, workers int, batchSize int) (*SnapshotRows, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	filenames, err := filepath.Glob(filepath.Join(directory, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(filenames)

	log.Info().Int("files", len(filenames)).Str("directory", directory).Msg("Found snapshot files")

	snapshots := &SnapshotRows{
		Fields: tabular.FieldSet{},
	}

	for start := 0; start < len(filenames); start += batchSize {
		end := min(start+batchSize, len(filenames))

		p := pool.NewWithResults[*snapshotFile]().WithMaxGoroutines(workers)
		for _, filename := range filenames[start:end] {
			filename := filename
			p.Go(func() *snapshotFile {
				return readSnapshotFile(filename)
			})
		}

		// Field sets are reduced after the batch completes rather than
		// merged under a lock inside the workers
		for _, snapshot := range p.Wait() {
			if snapshot.err != nil {
				log.Warn().Err(snapshot.err).Str("file", snapshot.filename).Msg("Skipping unreadable snapshot file")
				snapshots.FilesSkipped += 1
				continue
			}

			snapshots.Rows = append(snapshots.Rows, snapshot.rows...)
			snapshots.Fields.Merge(snapshot.fields)
			snapshots.FilesRead += 1
		}

		log.Debug().Int("completed", end).Int("total", len(filenames)).Msg("Snapshot batch read")
	}

	return snapshots, nil
}

func readSnapshotFile(filename string) *snapshotFile {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return &snapshotFile{filename: filename, err: err}
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(contents, &rows); err != nil {
		return &snapshotFile{filename: filename, err: err}
	}

	fileDatetime := ""
	if timestamp := telemetry.TimestampFromFilename(filepath.Base(filename)); timestamp != nil {
		fileDatetime = timestamp.Format("2006-01-02T15:04:05")
	}

	fields := tabular.FieldSet{}
	for _, row := range rows {
		if fileDatetime != "" {
			row["file_datetime"] = fileDatetime
		}
		row["source_file"] = filepath.Base(filename)

		for name := range row {
			fields.Add(name)
		}
	}

	return &snapshotFile{
		filename: filename,
		rows:     rows,
		fields:   fields,
	}
}

// RawPings converts the flattened rows into raw ping records.
func (snapshots *SnapshotRows) RawPings() []telemetry.RawPing {
	pings := make([]telemetry.RawPing, 0, len(snapshots.Rows))
	for _, row := range snapshots.Rows {
		pings = append(pings, telemetry.RawPing{
			LicencePlate:  stringField(row, "licencePlate"),
			Lat:           floatField(row, "lat"),
			Lon:           floatField(row, "lon"),
			FuelLevel:     optionalFloatField(row, "fuelLevel"),
			VehicleTypeID: stringField(row, "vehicleTypeId"),
			ZipCode:       stringField(row, "zipCode"),
			FileDatetime:  stringField(row, "file_datetime"),
			SourceFile:    stringField(row, "source_file"),
		})
	}

	return pings
}

// Record renders one flattened row for the tabular writer. Missing
// fields stay absent and serialise as empty strings.
func Record(row map[string]interface{}) map[string]string {
	record := make(map[string]string, len(row))
	for name, value := range row {
		record[name] = fieldString(value)
	}

	return record
}

func fieldString(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	case time.Time:
		return typed.Format(time.RFC3339)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

func stringField(row map[string]interface{}, name string) string {
	return fieldString(row[name])
}

func floatField(row map[string]interface{}, name string) float64 {
	value, _ := row[name].(float64)

	return value
}

func optionalFloatField(row map[string]interface{}, name string) *float64 {
	if value, exists := row[name].(float64); exists {
		return &value
	}

	return nil
}
