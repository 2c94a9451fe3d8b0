package main

import (
	"os"

	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
	"github.com/RUFFNER25/sistema-de-certificados/internal/server"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}
}
