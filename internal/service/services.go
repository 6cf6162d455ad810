package service

import (
	"github.com/MKhiriev/go-assembly-sync/internal/config"
	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/store"
)

// Services are the services of the reference server.
type Services struct {
	AuthService       *AuthService
	AutoupdateService *ServerAutoupdateService
	ModelService      *ModelService
}

func NewServices(repo store.ModelsRepository, cfg config.ServerConfig, log *logger.Logger) *Services {
	return &Services{
		AuthService:       NewAuthService(repo, cfg.App, log.ForComponent("auth")),
		AutoupdateService: NewServerAutoupdateService(repo, cfg.Server.PollInterval, log.ForComponent("autoupdate")),
		ModelService:      NewModelService(repo, log.ForComponent("models")),
	}
}
