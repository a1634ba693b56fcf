package stats

import (
	"os"
	"path/filepath"
	"testing"
)

var testTable = `licence_plate,start_time,end_time,start_lat,start_lon,duration_minutes,vehicle_type_id,zip_code,car_model,car_type,zone_name
aa11111,2025-08-01T12:00:00Z,2025-08-01T12:30:00Z,55.6,12.5,30,1,2200,Renault Zoe,car,Kobenhavn N
aa11111,2025-08-01T13:00:00Z,2025-08-01T13:45:00Z,55.7,12.6,45,1,2100,Renault Zoe,car,Kobenhavn O
bb22222,2025-08-01T12:00:00Z,2025-08-01T14:00:00Z,55.6,12.5,120,95,2700,Renault Kangoo,van,Bronshoj
cc33333,2025-08-01T12:00:00Z,2025-08-01T12:05:00Z,55.6,12.5,5,1,-1,Renault Zoe,car,NOT_ANNOTATED
`

func writeTestTable(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "episodes.csv")
	if err := os.WriteFile(path, []byte(testTable), 0644); err != nil {
		t.Fatalf("failed to write test table: %v", err)
	}

	return path
}

func TestSummarise(t *testing.T) {
	rows, err := ReadEpisodeTable(writeTestTable(t))
	if err != nil {
		t.Fatalf("ReadEpisodeTable failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	summary := Summarise(rows)

	if summary.UniqueVehicles != 3 {
		t.Errorf("UniqueVehicles = %d, expected 3", summary.UniqueVehicles)
	}
	if summary.CategoryCounts["car"] != 2 || summary.CategoryCounts["van"] != 1 {
		t.Errorf("CategoryCounts = %v", summary.CategoryCounts)
	}

	share := summary.CategoryShare("van")
	if share < 0.33 || share > 0.34 {
		t.Errorf("van share = %f, expected ~1/3", share)
	}
	if summary.CategoryShare("bus") != 0 {
		t.Errorf("unknown category share should be 0")
	}
}

func TestFilter(t *testing.T) {
	rows, err := ReadEpisodeTable(writeTestTable(t))
	if err != nil {
		t.Fatalf("ReadEpisodeTable failed: %v", err)
	}

	if err := Filter(&rows, `DurationMinutes > 30 && CarType == "van"`); err != nil {
		t.Fatalf("Filter failed: %v", err)
	}

	if len(rows) != 1 || rows[0].LicencePlate != "bb22222" {
		t.Errorf("filtered rows = %+v", rows)
	}

	if err := Filter(&rows, `not an expression (((`); err == nil {
		t.Error("expected an error for an invalid expression")
	}
}
