package enrichment

import (
	"time"

	"github.com/fleettrace/fleettrace/pkg/telemetry"
)

// Mapper joins episodes against the static catalogs and derives calendar
// features. Pure per-episode function of the episode and the catalogs;
// running it twice yields identical output.
type Mapper struct {
	VehicleTypes *VehicleTypeCatalog
	PostalZones  *PostalZoneCatalog
}

func NewMapper(vehicleTypes *VehicleTypeCatalog, postalZones *PostalZoneCatalog) *Mapper {
	return &Mapper{
		VehicleTypes: vehicleTypes,
		PostalZones:  postalZones,
	}
}

// Enrich fills the episode's catalog and calendar fields in place.
func (mapper *Mapper) Enrich(episode *telemetry.Episode) {
	vehicleType := mapper.VehicleTypes.Lookup(episode.VehicleTypeID)
	episode.CarModel = vehicleType.Model
	episode.CarType = vehicleType.Category

	if zone, exists := mapper.PostalZones.Lookup(episode.ZipCode); exists {
		episode.ZoneName = zone.Name
	} else {
		episode.ZoneName = ZoneNotAnnotated
	}

	episode.DayOfWeekStart, episode.HourOfDayStart = calendarFeatures(episode.StartTime)
	episode.DayOfWeekEnd, episode.HourOfDayEnd = calendarFeatures(episode.EndTime)
}

// calendarFeatures derives the day-of-week name and hour-of-day (0-23)
// for one timestamp. Nil timestamps yield empty / nil features.
func calendarFeatures(timestamp *time.Time) (string, *int) {
	if timestamp == nil {
		return "", nil
	}

	hour := timestamp.Hour()

	return timestamp.Weekday().String(), &hour
}
