package fetcher

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "fetcher",
		Usage: "Periodically archive fleet snapshots to S3",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "endpoint",
				Usage:    "Fleet cars API endpoint",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "bucket",
				Usage:    "S3 bucket to store snapshots in",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "key-prefix",
				Usage: "S3 key prefix for snapshots",
				Value: "cars",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region of the bucket",
				Value: "eu-central-1",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Time between snapshots",
				Value: 2 * time.Minute,
			},
		},
		Action: func(c *cli.Context) error {
			fetcher := NewFetcher(c.String("endpoint"), c.String("region"), c.String("bucket"), c.String("key-prefix"))
			interval := c.Duration("interval")

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			log.Info().
				Str("endpoint", fetcher.Endpoint).
				Str("interval", interval.String()).
				Msg("Starting snapshot fetcher")

			for {
				select {
				case <-ticker.C:
					if err := fetcher.FetchSnapshot(); err != nil {
						log.Error().Err(err).Msg("Snapshot failed")
					}
				case <-signals:
					log.Info().Msg("Shutting down fetcher")
					return nil
				}
			}
		},
	}
}
