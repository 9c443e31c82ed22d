// Package fingerprints provides the visitor fingerprint bounded context module.
package fingerprints

import (
	"lead_intake_backend/internal/events"
	"lead_intake_backend/internal/fingerprints/handler"
	"lead_intake_backend/internal/fingerprints/repository"
	"lead_intake_backend/internal/fingerprints/service"
	apphttp "lead_intake_backend/internal/http"
	"lead_intake_backend/platform/logger"
	"lead_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the fingerprints bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the fingerprints repository, service and handler together.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier for logging.
func (m *Module) Name() string { return "fingerprints" }

// RegisterRoutes mounts the fingerprint endpoints under /api/v1.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1)
}

var _ apphttp.Module = (*Module)(nil)
