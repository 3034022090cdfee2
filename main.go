package main

import (
	"os"

	"github.com/crosscut-io/crosscut/cmd"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if os.Getenv("CROSSCUT_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Run failed")
		os.Exit(1)
	}
}
