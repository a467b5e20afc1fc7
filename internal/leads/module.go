// Package leads provides the BD lead pipeline bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"fmt"

	"bd_pipeline_backend/internal/events"
	apphttp "bd_pipeline_backend/internal/http"
	"bd_pipeline_backend/internal/leads/assignment"
	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/grouping"
	"bd_pipeline_backend/internal/leads/handler"
	"bd_pipeline_backend/internal/leads/management"
	"bd_pipeline_backend/internal/leads/pipeline"
	"bd_pipeline_backend/internal/leads/ports"
	"bd_pipeline_backend/internal/leads/repository"
	"bd_pipeline_backend/internal/leads/views"
	"bd_pipeline_backend/platform/config"
	"bd_pipeline_backend/platform/logger"
	"bd_pipeline_backend/platform/phone"
	"bd_pipeline_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the leads module with all its dependencies.
// handover may be nil, in which case every lead reports a pending handover.
func NewModule(
	repo repository.Store,
	eventBus events.Bus,
	val *validator.Validator,
	cfg config.PipelineConfig,
	handover ports.HandoverClassifier,
	users ports.UserExistenceChecker,
	log *logger.Logger,
) (*Module, error) {
	catalog, err := domain.LoadStageCatalog(cfg.GetStagesFile())
	if err != nil {
		return nil, fmt.Errorf("load stage catalog: %w", err)
	}

	presenter := views.New(handover)
	phones := phone.NewNormalizer(cfg.GetPhoneRegion())

	// Focused services (vertical slices) over the shared store
	mgmtSvc := management.New(repo, presenter, phones, eventBus, log)
	groupSvc := grouping.New(repo, presenter, phones, eventBus, log)
	pipelineSvc := pipeline.New(repo, presenter, catalog, eventBus, log)
	assignSvc := assignment.New(repo, users, presenter, eventBus, log)

	return &Module{
		handler: handler.New(mgmtSvc, groupSvc, pipelineSvc, assignSvc, val),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts leads, groups and handover routes. All of them
// require authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterGroupRoutes(ctx.Protected.Group("/groups"))
	m.handler.RegisterHandoverRoutes(ctx.Protected.Group("/handover"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
