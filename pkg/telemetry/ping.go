package telemetry

import (
	"time"
)

// ZipCodeUnknown is the sentinel stored when no 4 digit postal code could
// be extracted from the raw field.
const ZipCodeUnknown = -1

// RawPing is one row as it arrives from a source file, before any
// normalisation. Field names match the fleet API / combined CSV columns.
type RawPing struct {
	LicencePlate  string   `csv:"licencePlate" json:"licencePlate"`
	Lat           float64  `csv:"lat" json:"lat"`
	Lon           float64  `csv:"lon" json:"lon"`
	FuelLevel     *float64 `csv:"fuelLevel" json:"fuelLevel"`
	VehicleTypeID string   `csv:"vehicleTypeId" json:"vehicleTypeId"`
	ZipCode       string   `csv:"zipCode" json:"zipCode"`
	FileDatetime  string   `csv:"file_datetime" json:"file_datetime"`

	SourceFile string `csv:"source_file" json:"-"`
}

// Ping is one normalised telemetry fix. Immutable once produced.
type Ping struct {
	LicencePlate  string
	Timestamp     *time.Time // nil when neither the row nor the filename had a parsable datetime
	Lat           float64
	Lon           float64
	FuelLevel     *float64
	VehicleTypeID string
	ZipCode       int // ZipCodeUnknown when not extractable
}
