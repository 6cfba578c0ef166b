package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"marketsim/internal/api"
	"marketsim/internal/config"
	"marketsim/internal/engine"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stdout
	if cfg.Logging.Format != "json" {
		writer = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	logger := zerolog.New(writer).
		Level(level).
		With().Timestamp().Logger()

	eng := engine.New(cfg.Market.EventFee, logger)
	server := api.New(cfg.Server.Addr, eng, logger)

	logger.Info().Str("addr", cfg.Server.Addr).Msg("marketsimd starting")
	if err := server.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
