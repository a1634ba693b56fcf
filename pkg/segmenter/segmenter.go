// Package segmenter turns a plate-and-time sorted ping stream into
// episodes. A boundary opens a new episode when the licence plate
// changes, when the vehicle moved further than the movement threshold on
// either axis, or (when enabled) when too much time passed since the
// previous ping of the same vehicle. Rules compose with logical OR.
package segmenter

import (
	"fmt"
	"math"
	"time"

	"github.com/fleettrace/fleettrace/pkg/telemetry"
)

// DefaultMovementThreshold is roughly 100m per axis at mid latitudes.
const DefaultMovementThreshold = 1e-3

type Config struct {
	// MovementThreshold is the per-axis degree delta above which a ping
	// counts as moved. Strictly greater-than; a delta of exactly the
	// threshold does not open a boundary.
	MovementThreshold float64

	// MaxGap opens a boundary when the time since the previous ping of
	// the same vehicle exceeds it. Zero disables the rule.
	MaxGap time.Duration
}

func DefaultConfig() Config {
	return Config{
		MovementThreshold: DefaultMovementThreshold,
	}
}

// OrderingViolationError reports input that would silently corrupt
// episode boundaries. It fails the run.
type OrderingViolationError struct {
	Index        int
	LicencePlate string
	Detail       string
}

func (e *OrderingViolationError) Error() string {
	return fmt.Sprintf("ordering violation at ping %d (plate %q): %s", e.Index, e.LicencePlate, e.Detail)
}

// VerifyOrdering checks the (plate, timestamp) sort invariant the
// detector relies on. Nil timestamps are expected to sort first within a
// plate group.
func VerifyOrdering(pings []telemetry.Ping) error {
	for i := 1; i < len(pings); i++ {
		previous := pings[i-1]
		current := pings[i]

		if current.LicencePlate < previous.LicencePlate {
			return &OrderingViolationError{
				Index:        i,
				LicencePlate: current.LicencePlate,
				Detail:       "licence plates not grouped ascending",
			}
		}

		if current.LicencePlate != previous.LicencePlate {
			continue
		}

		if current.Timestamp == nil && previous.Timestamp != nil {
			return &OrderingViolationError{
				Index:        i,
				LicencePlate: current.LicencePlate,
				Detail:       "ping without timestamp after timestamped ping",
			}
		}

		if current.Timestamp != nil && previous.Timestamp != nil && current.Timestamp.Before(*previous.Timestamp) {
			return &OrderingViolationError{
				Index:        i,
				LicencePlate: current.LicencePlate,
				Detail:       "timestamps not ascending",
			}
		}
	}

	return nil
}

// DetectBoundaries flags, for each ping, whether it starts a new episode.
// Single forward pass, each ping examined against its immediate
// predecessor only. Index 0 is always a boundary.
func DetectBoundaries(pings []telemetry.Ping, config Config) []bool {
	boundaries := make([]bool, len(pings))
	if len(pings) == 0 {
		return boundaries
	}

	boundaries[0] = true

	for i := 1; i < len(pings); i++ {
		previous := pings[i-1]
		current := pings[i]

		if current.LicencePlate != previous.LicencePlate {
			boundaries[i] = true
			continue
		}

		if math.Abs(current.Lat-previous.Lat) > config.MovementThreshold ||
			math.Abs(current.Lon-previous.Lon) > config.MovementThreshold {
			boundaries[i] = true
			continue
		}

		if config.MaxGap > 0 && current.Timestamp != nil && previous.Timestamp != nil &&
			current.Timestamp.Sub(*previous.Timestamp) > config.MaxGap {
			boundaries[i] = true
		}
	}

	return boundaries
}
