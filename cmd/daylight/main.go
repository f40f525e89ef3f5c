package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/daylighthq/daylight-client/internal/buildinfo"
	"github.com/daylighthq/daylight-client/internal/client/cli"
	"github.com/daylighthq/daylight-client/internal/client/config"
	"github.com/daylighthq/daylight-client/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
