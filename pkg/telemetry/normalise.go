package telemetry

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
)

const filenameDatetimeLayout = "20060102_150405"

var (
	filenameDatetimeRegex = regexp.MustCompile(`\d{8}_\d{6}`)
	digitRunRegex         = regexp.MustCompile(`\d+`)
)

// Problems reported by Normalise. These degrade individual fields and
// never fail a run.
const (
	ProblemMissingTimestamp = "missing-timestamp"
	ProblemUnparsableZip    = "unparsable-zip"
)

var rowTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalise coerces a raw row into a canonical Ping. Unparsable
// timestamps and postal codes degrade to nil / ZipCodeUnknown and are
// reported as problems rather than errors.
func Normalise(raw RawPing) (Ping, []string) {
	var problems []string

	ping := Ping{
		LicencePlate:  NormalisePlate(raw.LicencePlate),
		Lat:           raw.Lat,
		Lon:           raw.Lon,
		FuelLevel:     raw.FuelLevel,
		VehicleTypeID: strings.TrimSpace(raw.VehicleTypeID),
	}

	if timestamp := parseRowTimestamp(raw.FileDatetime); timestamp != nil {
		ping.Timestamp = timestamp
	} else if timestamp := TimestampFromFilename(raw.SourceFile); timestamp != nil {
		ping.Timestamp = timestamp
	} else {
		problems = append(problems, ProblemMissingTimestamp)
	}

	zip, ok := ExtractZipCode(raw.ZipCode)
	ping.ZipCode = zip
	if !ok {
		problems = append(problems, ProblemUnparsableZip)
	}

	return ping, problems
}

// NormalisePlate folds a licence plate to lowercase with all whitespace
// removed. An empty result is a valid identity.
func NormalisePlate(plate string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, plate)
}

// TimestampFromFilename extracts a datetime from source file names
// containing a YYYYMMDD_HHMMSS token, eg. cars_20250801_120000.json
func TimestampFromFilename(filename string) *time.Time {
	match := filenameDatetimeRegex.FindString(filename)
	if match == "" {
		return nil
	}

	timestamp, err := time.Parse(filenameDatetimeLayout, match)
	if err != nil {
		return nil
	}

	return &timestamp
}

// ExtractZipCode returns the first run of exactly 4 digits in the raw
// field, or ZipCodeUnknown when there is none.
func ExtractZipCode(raw string) (int, bool) {
	for _, run := range digitRunRegex.FindAllString(raw, -1) {
		if len(run) != 4 {
			continue
		}

		zip := 0
		for _, digit := range run {
			zip = zip*10 + int(digit-'0')
		}
		return zip, true
	}

	return ZipCodeUnknown, false
}

func parseRowTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range rowTimestampLayouts {
		if timestamp, err := time.Parse(layout, value); err == nil {
			return &timestamp
		}
	}

	return nil
}

// SortPings orders pings by (licence plate, timestamp) ascending, the
// ordering segmentation requires. Pings without a timestamp sort before
// timestamped ones for the same plate.
func SortPings(pings []Ping) {
	sort.SliceStable(pings, func(i, j int) bool {
		if pings[i].LicencePlate != pings[j].LicencePlate {
			return pings[i].LicencePlate < pings[j].LicencePlate
		}

		switch {
		case pings[i].Timestamp == nil:
			return pings[j].Timestamp != nil
		case pings[j].Timestamp == nil:
			return false
		default:
			return pings[i].Timestamp.Before(*pings[j].Timestamp)
		}
	})
}
