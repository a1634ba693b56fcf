// Package stats summarises an episode table: fleet size and the share
// of each vehicle category, optionally restricted by a filter
// expression evaluated per episode row.
package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/expr-lang/expr"
	"github.com/gocarina/gocsv"

	"github.com/fleettrace/fleettrace/pkg/util"
)

// EpisodeRow is one row of the episode table produced by the pipeline.
type EpisodeRow struct {
	LicencePlate    string  `csv:"licence_plate"`
	StartTime       string  `csv:"start_time"`
	EndTime         string  `csv:"end_time"`
	StartLat        float64 `csv:"start_lat"`
	StartLon        float64 `csv:"start_lon"`
	DurationMinutes int     `csv:"duration_minutes"`
	VehicleTypeID   string  `csv:"vehicle_type_id"`
	ZipCode         int     `csv:"zip_code"`
	CarModel        string  `csv:"car_model"`
	CarType         string  `csv:"car_type"`
	ZoneName        string  `csv:"zone_name"`
}

// Summary aggregates a set of episode rows. The category of a vehicle
// is the first one observed for its plate.
type Summary struct {
	Episodes       int
	UniqueVehicles int
	CategoryCounts map[string]int
}

// CategoryShare returns the fraction of the fleet in a category, 0 for
// an empty fleet.
func (summary *Summary) CategoryShare(category string) float64 {
	if summary.UniqueVehicles == 0 {
		return 0
	}

	return float64(summary.CategoryCounts[category]) / float64(summary.UniqueVehicles)
}

// ReadEpisodeTable loads an episode table written by the pipeline.
func ReadEpisodeTable(path string) ([]EpisodeRow, error) {
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

	var rows []EpisodeRow
	if err := gocsv.Unmarshal(file, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// Filter keeps only the rows satisfying the expression, eg.
// `DurationMinutes > 30 && CarType == "van"`.
func Filter(rows *[]EpisodeRow, expression string) error {
	program, err := expr.Compile(expression, expr.Env(EpisodeRow{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}

	var runErr error
	util.InPlaceFilter(rows, func(row EpisodeRow) bool {
		output, err := expr.Run(program, row)
		if err != nil {
			runErr = err
			return false
		}

		keep, _ := output.(bool)
		return keep
	})

	return runErr
}

// Summarise computes fleet statistics over the (possibly filtered) rows.
func Summarise(rows []EpisodeRow) Summary {
	summary := Summary{
		Episodes:       len(rows),
		CategoryCounts: map[string]int{},
	}

	categoryByPlate := map[string]string{}
	for _, row := range rows {
		if _, seen := categoryByPlate[row.LicencePlate]; seen {
			continue
		}

		categoryByPlate[row.LicencePlate] = row.CarType
		summary.CategoryCounts[row.CarType] += 1
	}

	summary.UniqueVehicles = len(categoryByPlate)

	return summary
}
