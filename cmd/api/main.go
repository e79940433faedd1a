package main

import (
	"os"

	"github.com/rollbook/rollbook/internal/pkg/logger"
	"github.com/rollbook/rollbook/internal/server"
)

// @title Rollbook API
// @version 1.0
// @description Classroom attendance recording and reporting service

// @host localhost:8080
// @BasePath /api/v1
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}
