package segmenter

import (
	"math"

	"github.com/fleettrace/fleettrace/pkg/telemetry"
)

// BuildEpisodes closes the boundary flags into [start, end] index
// intervals and materialises one episode per interval. The episodes
// exactly partition the input: every ping index belongs to exactly one
// episode, in order.
//
// Zero pings produce zero episodes. An episode whose endpoints both lack
// timestamps gets duration 0; callers count those via the nil StartTime.
// A negative duration is an ordering violation and fails the run.
func BuildEpisodes(pings []telemetry.Ping, boundaries []bool) ([]telemetry.Episode, error) {
	if len(pings) == 0 {
		return nil, nil
	}

	var starts []int
	for i, isBoundary := range boundaries {
		if isBoundary {
			starts = append(starts, i)
		}
	}

	episodes := make([]telemetry.Episode, 0, len(starts))
	for j, start := range starts {
		end := len(pings) - 1
		if j+1 < len(starts) {
			end = starts[j+1] - 1
		}

		first := pings[start]
		last := pings[end]

		duration := 0
		if first.Timestamp != nil && last.Timestamp != nil {
			duration = int(math.Round(last.Timestamp.Sub(*first.Timestamp).Minutes()))
			if duration < 0 {
				return nil, &OrderingViolationError{
					Index:        start,
					LicencePlate: first.LicencePlate,
					Detail:       "episode duration is negative",
				}
			}
		}

		episodes = append(episodes, telemetry.Episode{
			LicencePlate:    first.LicencePlate,
			StartTime:       first.Timestamp,
			EndTime:         last.Timestamp,
			StartLat:        first.Lat,
			StartLon:        first.Lon,
			DurationMinutes: duration,
			VehicleTypeID:   first.VehicleTypeID,
			ZipCode:         first.ZipCode,
		})
	}

	return episodes, nil
}

// Segment runs boundary detection and episode building over an already
// sorted ping stream.
func Segment(pings []telemetry.Ping, config Config) ([]telemetry.Episode, error) {
	if err := VerifyOrdering(pings); err != nil {
		return nil, err
	}

	return BuildEpisodes(pings, DetectBoundaries(pings, config))
}
