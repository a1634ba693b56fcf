package pipeline

import (
	"github.com/urfave/cli/v2"

	"github.com/fleettrace/fleettrace/pkg/ingest"
	"github.com/fleettrace/fleettrace/pkg/segmenter"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "pipeline",
		Usage: "Convert raw fleet telemetry into enriched episodes",
		Subcommands: []*cli.Command{
			{
				Name:  "transform",
				Usage: "Segment a ping table or snapshot directory into enriched episodes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Usage:    "Combined ping table (CSV) or directory of snapshot JSON files",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Usage:    "Path of the episode table to write",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent snapshot file reads",
						Value: ingest.DefaultWorkers,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Snapshot files per read batch / rows per output flush",
						Value: ingest.DefaultBatchSize,
					},
					&cli.Float64Flag{
						Name:  "movement-threshold",
						Usage: "Per-axis degree delta above which a vehicle counts as moved",
						Value: segmenter.DefaultMovementThreshold,
					},
					&cli.DurationFlag{
						Name:  "max-gap",
						Usage: "Time gap between pings that opens a new episode (eg. 10m), 0 disables the rule",
						Value: 0,
					},
					&cli.StringFlag{
						Name:  "catalogs",
						Usage: "Directory containing vehicle-types.yaml & postal-zones.yaml, defaults to the built in catalogs",
					},
					&cli.StringFlag{
						Name:  "delimiter",
						Usage: "Output field delimiter",
						Value: ",",
					},
				},
				Action: func(c *cli.Context) error {
					_, err := Run(Options{
						InputPath:         c.String("input"),
						OutputPath:        c.String("output"),
						Workers:           c.Int("workers"),
						BatchSize:         c.Int("batch-size"),
						MovementThreshold: c.Float64("movement-threshold"),
						MaxGap:            c.Duration("max-gap"),
						CatalogDirectory:  c.String("catalogs"),
						Delimiter:         c.String("delimiter"),
					})

					return err
				},
			},
			{
				Name:  "flatten",
				Usage: "Combine a directory of snapshot JSON files into one delimited table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Usage:    "Directory of snapshot JSON files",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Usage:    "Path of the combined table to write",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent snapshot file reads",
						Value: ingest.DefaultWorkers,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Snapshot files per read batch / rows per output flush",
						Value: ingest.DefaultBatchSize,
					},
					&cli.StringFlag{
						Name:  "delimiter",
						Usage: "Output field delimiter",
						Value: ",",
					},
				},
				Action: func(c *cli.Context) error {
					_, err := Flatten(Options{
						InputPath:  c.String("input"),
						OutputPath: c.String("output"),
						Workers:    c.Int("workers"),
						BatchSize:  c.Int("batch-size"),
						Delimiter:  c.String("delimiter"),
					})

					return err
				},
			},
		},
	}
}
