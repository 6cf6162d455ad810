package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-assembly-sync/internal/config"
	"github.com/MKhiriev/go-assembly-sync/internal/handler"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/server"
	"github.com/MKhiriev/go-assembly-sync/internal/service"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
	"github.com/MKhiriev/go-assembly-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(buildInfo)

	log := logger.NewLogger("assembly-sync-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" && buildInfo.Known() {
		cfg.App.Version = buildInfo.Version
	}

	log.Debug().Str("address", cfg.Server.HTTPAddress).Bool("auth", cfg.AuthEnabled()).Msg("received configs")

	db, err := store.NewConnectPostgres(context.Background(), cfg.Storage.DB, log.ForComponent("db"))
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting datastore")
	}
	defer db.Close()

	if err = db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error migrating datastore")
	}

	repo := store.NewModelsRepository(db, log.ForComponent("repository"))
	services := service.NewServices(repo, *cfg, log)

	handlers, err := handler.NewHandlers(services, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}
