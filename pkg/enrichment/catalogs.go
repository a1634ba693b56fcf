package enrichment

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed data/vehicle-types.yaml
var defaultVehicleTypesYaml []byte

//go:embed data/postal-zones.yaml
var defaultPostalZonesYaml []byte

// Fallbacks applied on catalog misses. Both vehicle-type fields use the
// same canonical lowercase literal.
const (
	UnknownVehicleType = "unknown"
	ZoneNotAnnotated   = "NOT_ANNOTATED"
)

// VehicleType is one vehicle-type catalog entry.
type VehicleType struct {
	ID       string `yaml:"id"`
	Model    string `yaml:"model"`
	Category string `yaml:"category"`
}

// VehicleTypeCatalog maps a vehicle type code onto model & category.
// Loaded once, never mutated.
type VehicleTypeCatalog struct {
	types map[string]VehicleType
}

// Lookup resolves a vehicle type code. A miss returns the structured
// unknown fallback for both fields.
func (catalog *VehicleTypeCatalog) Lookup(vehicleTypeID string) VehicleType {
	if vehicleType, exists := catalog.types[vehicleTypeID]; exists {
		return vehicleType
	}

	return VehicleType{
		ID:       vehicleTypeID,
		Model:    UnknownVehicleType,
		Category: UnknownVehicleType,
	}
}

// PostalZone is one closed postal code interval and its canonical zone.
type PostalZone struct {
	Name    string `yaml:"name"`
	ZipFrom int    `yaml:"zip_from"`
	ZipTo   int    `yaml:"zip_to"`
	Setting int    `yaml:"setting"`
}

// PostalZoneCatalog is the ordered interval list. Lookup returns the
// first declared interval containing the query, so overlapping intervals
// resolve deterministically. Loaded once, never mutated.
type PostalZoneCatalog struct {
	zones []PostalZone
}

// Lookup resolves a raw postal code to its zone. Closed on both interval
// ends. The sentinel -1 (and any unmatched code) misses.
func (catalog *PostalZoneCatalog) Lookup(zipCode int) (PostalZone, bool) {
	for _, zone := range catalog.zones {
		if zone.ZipFrom <= zipCode && zipCode <= zone.ZipTo {
			return zone, true
		}
	}

	return PostalZone{}, false
}

// LoadCatalogs builds both catalogs. With an empty directory the
// compiled-in defaults are used, otherwise the directory must contain
// vehicle-types.yaml and postal-zones.yaml.
func LoadCatalogs(directory string) (*VehicleTypeCatalog, *PostalZoneCatalog, error) {
	vehicleTypesYaml := defaultVehicleTypesYaml
	postalZonesYaml := defaultPostalZonesYaml

	if directory != "" {
		var err error

		vehicleTypesYaml, err = os.ReadFile(filepath.Join(directory, "vehicle-types.yaml"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read vehicle types catalog: %w", err)
		}

		postalZonesYaml, err = os.ReadFile(filepath.Join(directory, "postal-zones.yaml"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read postal zones catalog: %w", err)
		}
	}

	var vehicleTypes []VehicleType
	if err := yaml.NewDecoder(bytes.NewReader(vehicleTypesYaml)).Decode(&vehicleTypes); err != nil {
		return nil, nil, fmt.Errorf("failed to parse vehicle types catalog: %w", err)
	}

	var postalZones []PostalZone
	if err := yaml.NewDecoder(bytes.NewReader(postalZonesYaml)).Decode(&postalZones); err != nil {
		return nil, nil, fmt.Errorf("failed to parse postal zones catalog: %w", err)
	}

	typesByID := map[string]VehicleType{}
	for _, vehicleType := range vehicleTypes {
		typesByID[vehicleType.ID] = vehicleType
	}

	return &VehicleTypeCatalog{types: typesByID}, &PostalZoneCatalog{zones: postalZones}, nil
}
