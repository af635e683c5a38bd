package main

import (
	"os"

	"decalup/cmd"
	"decalup/config"
	"decalup/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	logging.Init()

	cnf, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cmd.Execute(cnf); err != nil {
		log.Error().Err(err).Msg("Failed to execute command")
		os.Exit(1)
	}
}
