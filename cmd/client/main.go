package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/smolyakovd/inkpad/internal/buildinfo"
	"github.com/smolyakovd/inkpad/internal/client/cli"
	"github.com/smolyakovd/inkpad/internal/client/config"
	"github.com/smolyakovd/inkpad/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	log := logging.NewDefault(os.Stderr, slog.LevelWarn)

	app := cli.NewApp(cfg, log)
	app.Run(ctx)
}
