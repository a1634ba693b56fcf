package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fleettrace/fleettrace/pkg/enrichment"
	"github.com/fleettrace/fleettrace/pkg/ingest"
	"github.com/fleettrace/fleettrace/pkg/segmenter"
	"github.com/fleettrace/fleettrace/pkg/tabular"
	"github.com/fleettrace/fleettrace/pkg/telemetry"
	"github.com/fleettrace/fleettrace/pkg/util"
)

var combinedTableExtensions = []string{".csv", ".txt"}

type Options struct {
	InputPath  string
	OutputPath string

	Workers   int
	BatchSize int

	MovementThreshold float64
	MaxGap            time.Duration

	CatalogDirectory string
	Delimiter        string
}

// RunSummary is the partial-success accounting surfaced at the end of a
// run. Per-file and per-row failures land here instead of aborting.
type RunSummary struct {
	FilesRead    int
	FilesSkipped int
	RowsRead     int

	MissingTimestamps int
	UnparsableZips    int

	Episodes                  int
	EpisodesWithoutTimestamps int
}

// Run executes the full transformation: read, normalise, sort, detect
// boundaries, build episodes, enrich, write. Ordering violations fail
// the run; everything else degrades and is counted in the summary.
func Run(options Options) (*RunSummary, error) {
	vehicleTypes, postalZones, err := enrichment.LoadCatalogs(options.CatalogDirectory)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{}

	rawPings, err := readInput(options, summary)
	if err != nil {
		return nil, err
	}
	summary.RowsRead = len(rawPings)

	log.Info().Int("rows", len(rawPings)).Str("input", options.InputPath).Msg("Loaded raw pings")

	pings := make([]telemetry.Ping, 0, len(rawPings))
	for _, rawPing := range rawPings {
		ping, problems := telemetry.Normalise(rawPing)

		for _, problem := range problems {
			switch problem {
			case telemetry.ProblemMissingTimestamp:
				summary.MissingTimestamps += 1
			case telemetry.ProblemUnparsableZip:
				summary.UnparsableZips += 1
			}
		}

		pings = append(pings, ping)
	}

	telemetry.SortPings(pings)

	if err := segmenter.VerifyOrdering(pings); err != nil {
		return nil, err
	}

	boundaries := segmenter.DetectBoundaries(pings, segmenter.Config{
		MovementThreshold: options.MovementThreshold,
		MaxGap:            options.MaxGap,
	})

	episodes, err := segmenter.BuildEpisodes(pings, boundaries)
	if err != nil {
		return nil, err
	}
	summary.Episodes = len(episodes)

	mapper := enrichment.NewMapper(vehicleTypes, postalZones)
	for i := range episodes {
		mapper.Enrich(&episodes[i])

		if episodes[i].StartTime == nil || episodes[i].EndTime == nil {
			summary.EpisodesWithoutTimestamps += 1
		}
	}

	if err := writeEpisodes(options, episodes); err != nil {
		return nil, err
	}

	logSummary(summary)

	return summary, nil
}

func readInput(options Options, summary *RunSummary) ([]telemetry.RawPing, error) {
	info, err := os.Stat(options.InputPath)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		snapshots, err := ingest.ReadSnapshotDirectory(options.InputPath, options.Workers, options.BatchSize)
		if err != nil {
			return nil, err
		}

		summary.FilesRead = snapshots.FilesRead
		summary.FilesSkipped = snapshots.FilesSkipped

		return snapshots.RawPings(), nil
	}

	if !util.ContainsString(combinedTableExtensions, filepath.Ext(options.InputPath)) {
		return nil, fmt.Errorf("unsupported input file %s, expected a snapshot directory or a delimited table", options.InputPath)
	}

	pings, err := ingest.ReadCombinedCSV(options.InputPath)
	if err != nil {
		return nil, err
	}

	summary.FilesRead = 1

	return pings, nil
}

func writeEpisodes(options Options, episodes []telemetry.Episode) error {
	file, err := os.Create(options.OutputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := tabular.NewWriter(file, options.Delimiter)

	// Header goes out even for an empty run
	if err := writer.WriteHeader(telemetry.EpisodeColumns); err != nil {
		return err
	}

	flushEvery := options.BatchSize
	if flushEvery <= 0 {
		flushEvery = ingest.DefaultBatchSize
	}

	for i := range episodes {
		if err := writer.WriteRow(episodes[i].Record()); err != nil {
			return err
		}

		if (i+1)%flushEvery == 0 {
			if err := writer.Flush(); err != nil {
				return err
			}
		}
	}

	return writer.Flush()
}

func logSummary(summary *RunSummary) {
	log.Info().
		Int("files_read", summary.FilesRead).
		Int("files_skipped", summary.FilesSkipped).
		Int("rows", summary.RowsRead).
		Int("missing_timestamps", summary.MissingTimestamps).
		Int("unparsable_zips", summary.UnparsableZips).
		Int("episodes", summary.Episodes).
		Int("episodes_without_timestamps", summary.EpisodesWithoutTimestamps).
		Msg("Transformation run complete")
}
