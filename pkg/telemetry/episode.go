package telemetry

import (
	"strconv"
	"time"
)

// Episode is a maximal contiguous run of pings for one vehicle between
// two boundaries - a stay or a trip depending on downstream
// interpretation. Start coordinates always come from the first ping of
// the run, never averaged.
type Episode struct {
	LicencePlate    string
	StartTime       *time.Time
	EndTime         *time.Time
	StartLat        float64
	StartLon        float64
	DurationMinutes int
	VehicleTypeID   string
	ZipCode         int

	// Enrichment joins
	CarModel string
	CarType  string
	ZoneName string

	// Calendar features, nil / empty when the anchoring timestamp is nil
	DayOfWeekStart string
	HourOfDayStart *int
	DayOfWeekEnd   string
	HourOfDayEnd   *int
}

// EpisodeColumns is the fixed output column order for episode tables.
var EpisodeColumns = []string{
	"licence_plate",
	"start_time",
	"end_time",
	"start_lat",
	"start_lon",
	"duration_minutes",
	"vehicle_type_id",
	"zip_code",
	"car_model",
	"car_type",
	"zone_name",
	"day_of_week_start",
	"hour_of_day_start",
	"day_of_week_end",
	"hour_of_day_end",
}

// Record returns the episode as serialisable fields keyed by
// EpisodeColumns names. Nil timestamps and hours serialise as empty
// strings.
func (episode *Episode) Record() map[string]string {
	return map[string]string{
		"licence_plate":     episode.LicencePlate,
		"start_time":        formatTimestamp(episode.StartTime),
		"end_time":          formatTimestamp(episode.EndTime),
		"start_lat":         strconv.FormatFloat(episode.StartLat, 'f', -1, 64),
		"start_lon":         strconv.FormatFloat(episode.StartLon, 'f', -1, 64),
		"duration_minutes":  strconv.Itoa(episode.DurationMinutes),
		"vehicle_type_id":   episode.VehicleTypeID,
		"zip_code":          strconv.Itoa(episode.ZipCode),
		"car_model":         episode.CarModel,
		"car_type":          episode.CarType,
		"zone_name":         episode.ZoneName,
		"day_of_week_start": episode.DayOfWeekStart,
		"hour_of_day_start": formatHour(episode.HourOfDayStart),
		"day_of_week_end":   episode.DayOfWeekEnd,
		"hour_of_day_end":   formatHour(episode.HourOfDayEnd),
	}
}

func formatTimestamp(timestamp *time.Time) string {
	if timestamp == nil {
		return ""
	}

	return timestamp.Format(time.RFC3339)
}

func formatHour(hour *int) string {
	if hour == nil {
		return ""
	}

	return strconv.Itoa(*hour)
}
