package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var combinedHeader = "licencePlate,lat,lon,fuelLevel,vehicleTypeId,zipCode,file_datetime\n"

func runTransform(t *testing.T, csvContents string) (*RunSummary, []string) {
	t.Helper()

	directory := t.TempDir()
	inputPath := filepath.Join(directory, "combined.csv")
	outputPath := filepath.Join(directory, "episodes.csv")

	if err := os.WriteFile(inputPath, []byte(csvContents), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	summary, err := Run(Options{
		InputPath:         inputPath,
		OutputPath:        outputPath,
		MovementThreshold: 1e-3,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")

	return summary, lines
}

func TestTransformEndToEnd(t *testing.T) {
	summary, lines := runTransform(t, combinedHeader+
		"AB 12 345,55.6761,12.5683,80,1,2200,2025-08-01T12:00:00\n"+
		"AB 12 345,55.6761,12.5683,79,1,2200,2025-08-01T12:05:00\n"+
		"XY 99 999,55.7,12.6,50,95,2700,2025-08-01T12:00:00\n")

	if summary.RowsRead != 3 || summary.Episodes != 2 {
		t.Errorf("summary = %+v, expected 3 rows / 2 episodes", summary)
	}

	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}

	expectedHeader := "licence_plate,start_time,end_time,start_lat,start_lon,duration_minutes," +
		"vehicle_type_id,zip_code,car_model,car_type,zone_name," +
		"day_of_week_start,hour_of_day_start,day_of_week_end,hour_of_day_end"
	if lines[0] != expectedHeader {
		t.Errorf("header = %q", lines[0])
	}

	first := strings.Split(lines[1], ",")
	if first[0] != "ab12345" {
		t.Errorf("plate not normalised: %q", first[0])
	}
	if first[5] != "5" {
		t.Errorf("duration = %q, expected 5", first[5])
	}
	if first[10] != "Kobenhavn N" {
		t.Errorf("zone = %q", first[10])
	}
	if first[11] != "Friday" || first[12] != "12" {
		t.Errorf("calendar features = %q / %q", first[11], first[12])
	}

	second := strings.Split(lines[2], ",")
	if second[0] != "xy99999" || second[9] != "van" || second[10] != "Bronshoj" {
		t.Errorf("second episode = %q", lines[2])
	}
}

func TestTransformEmptyInput(t *testing.T) {
	// Zero pings is a valid run: header only output, no error
	summary, lines := runTransform(t, combinedHeader)

	if summary.RowsRead != 0 || summary.Episodes != 0 {
		t.Errorf("summary = %+v, expected empty run", summary)
	}
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "licence_plate,") {
		t.Errorf("expected header-only output, got %v", lines)
	}
}

func TestTransformDegradedRows(t *testing.T) {
	summary, lines := runTransform(t, combinedHeader+
		"AB 12 345,55.6761,12.5683,80,1,not-a-zip,not-a-datetime\n")

	if summary.MissingTimestamps != 1 {
		t.Errorf("MissingTimestamps = %d, expected 1", summary.MissingTimestamps)
	}
	if summary.UnparsableZips != 1 {
		t.Errorf("UnparsableZips = %d, expected 1", summary.UnparsableZips)
	}
	if summary.Episodes != 1 || summary.EpisodesWithoutTimestamps != 1 {
		t.Errorf("summary = %+v, expected one degraded episode", summary)
	}

	row := strings.Split(lines[1], ",")
	if row[1] != "" || row[2] != "" {
		t.Errorf("timestamps should serialise empty: %q", lines[1])
	}
	if row[7] != "-1" {
		t.Errorf("zip sentinel = %q, expected -1", row[7])
	}
	if row[10] != "NOT_ANNOTATED" {
		t.Errorf("zone = %q, expected NOT_ANNOTATED", row[10])
	}
}
