package handler

import (
	"net/http"

	"bd_pipeline_backend/internal/leads/assignment"
	"bd_pipeline_backend/internal/leads/grouping"
	"bd_pipeline_backend/internal/leads/management"
	"bd_pipeline_backend/internal/leads/pipeline"
	"bd_pipeline_backend/platform/httpkit"
	"bd_pipeline_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	roleAdmin = "admin"

	defaultPageSize = 20
)

// Handler serves the lead and group endpoints.
type Handler struct {
	leads      *management.Service
	groups     *grouping.Service
	pipeline   *pipeline.Service
	assignment *assignment.Service
	val        *validator.Validator
}

// New creates a new leads handler.
func New(leads *management.Service, groups *grouping.Service, pipelineSvc *pipeline.Service, assignmentSvc *assignment.Service, val *validator.Validator) *Handler {
	return &Handler{
		leads:      leads,
		groups:     groups,
		pipeline:   pipelineSvc,
		assignment: assignmentSvc,
		val:        val,
	}
}

// RegisterRoutes mounts lead routes. Static segments are registered next to
// /:id; gin resolves them first.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateLead)
	rg.GET("", h.ListLeads)
	rg.GET("/check-duplicate", h.CheckDuplicate)
	rg.GET("/stages", h.Stages)
	rg.PUT("/assign", h.AssignLeads)
	rg.PUT("/attach-group", h.AttachGroup)
	rg.GET("/:id", h.GetLead)
	rg.PUT("/:id", h.UpdateLead)
	rg.DELETE("/:id", httpkit.RequireRole(roleAdmin), h.DeleteLead)
	rg.PUT("/:id/status", h.UpdateLeadStatus)
	rg.GET("/:id/status-history", h.LeadStatusHistory)
}

// RegisterGroupRoutes mounts group routes.
func (h *Handler) RegisterGroupRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateGroup)
	rg.GET("", h.ListGroups)
	rg.GET("/:id", h.GetGroup)
	rg.PUT("/:id", h.UpdateGroup)
	rg.PUT("/:id/status", h.UpdateGroupStatus)
	rg.GET("/:id/capacity", h.GroupCapacity)
}

// RegisterHandoverRoutes mounts the handover lookup.
func (h *Handler) RegisterHandoverRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.HandoverStatus)
}

// bindJSON decodes and validates a request body, writing the 400 itself.
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func pageDefaults(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 {
		*pageSize = defaultPageSize
	}
}
