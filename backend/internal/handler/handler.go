package handler

import (
	"context"

	"github.com/a2z-dev/a2z/backend/internal/service"
	"github.com/a2z-dev/a2z/shared/config"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	admin  service.AdminService
	health HealthChecker
	cfg    *config.Config
}

func New(admin service.AdminService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{admin: admin, health: health, cfg: cfg}
}
