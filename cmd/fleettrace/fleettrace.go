package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/fleettrace/fleettrace/pkg/fetcher"
	"github.com/fleettrace/fleettrace/pkg/pipeline"
	"github.com/fleettrace/fleettrace/pkg/stats"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("FLEETTRACE_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("FLEETTRACE_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "fleettrace",
		Description: "Single binary of truth for fleettrace - runs all the services",

		Commands: []*cli.Command{
			pipeline.RegisterCLI(),
			stats.RegisterCLI(),
			fetcher.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
