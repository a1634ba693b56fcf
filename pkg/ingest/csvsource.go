package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/fleettrace/fleettrace/pkg/telemetry"
)

// ReadCombinedCSV reads an already flattened ping table. The reader is
// lenient about records with missing columns, matching how the flattener
// pads absent fields.
func ReadCombinedCSV(path string) ([]telemetry.RawPing, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})

	var pings []telemetry.RawPing
	if err := gocsv.Unmarshal(file, &pings); err != nil {
		return nil, err
	}

	for i := range pings {
		if pings[i].SourceFile == "" {
			pings[i].SourceFile = filepath.Base(path)
		}
	}

	return pings, nil
}
