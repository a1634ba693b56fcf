package stats

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Summarise an episode table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Usage:    "Episode table to summarise",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: `Only count episodes matching this expression, eg. 'DurationMinutes > 30'`,
			},
		},
		Action: func(c *cli.Context) error {
			rows, err := ReadEpisodeTable(c.String("input"))
			if err != nil {
				return err
			}

			log.Info().Int("rows", len(rows)).Str("input", c.String("input")).Msg("Loaded episode table")

			if filter := c.String("filter"); filter != "" {
				if err := Filter(&rows, filter); err != nil {
					return err
				}

				log.Info().Int("rows", len(rows)).Str("filter", filter).Msg("Applied filter")
			}

			summary := Summarise(rows)

			log.Info().Int("vehicles", summary.UniqueVehicles).Msg("Unique licence plates")

			for category, count := range summary.CategoryCounts {
				log.Info().
					Str("category", category).
					Int("count", count).
					Float64("share", summary.CategoryShare(category)).
					Msg("Fleet category")
			}

			return nil
		},
	}
}
