package handler

import (
	"net/http"

	"bd_pipeline_backend/internal/leads/transport"
	"bd_pipeline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// CreateLead creates a lead in the initial stage and answers 200 with it.
// POST /api/v1/leads
func (h *Handler) CreateLead(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actor, ok := httpkit.MustGetActor(c)
	if !ok {
		return
	}

	lead, err := h.leads.Create(c.Request.Context(), req, actor.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// ListLeads returns a filtered page of leads.
// GET /api/v1/leads
func (h *Handler) ListLeads(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	pageDefaults(&req.Page, &req.PageSize)
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.leads.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetLead returns one lead.
// GET /api/v1/leads/:id
func (h *Handler) GetLead(c *gin.Context) {
	lead, err := h.leads.GetByID(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// UpdateLead changes editable lead fields.
// PUT /api/v1/leads/:id
func (h *Handler) UpdateLead(c *gin.Context) {
	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actor, ok := httpkit.MustGetActor(c)
	if !ok {
		return
	}

	lead, err := h.leads.Update(c.Request.Context(), c.Param("id"), req, actor.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// DeleteLead removes a lead.
// DELETE /api/v1/leads/:id
func (h *Handler) DeleteLead(c *gin.Context) {
	actor, ok := httpkit.MustGetActor(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.leads.Delete(c.Request.Context(), c.Param("id"), actor.ID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckDuplicate reports whether a mobile number is already on a lead.
// GET /api/v1/leads/check-duplicate?mobile=
func (h *Handler) CheckDuplicate(c *gin.Context) {
	result, err := h.leads.CheckDuplicate(c.Request.Context(), c.Query("mobile"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Stages lists known lead and group stages.
// GET /api/v1/leads/stages
func (h *Handler) Stages(c *gin.Context) {
	httpkit.OK(c, h.pipeline.Stages())
}

// UpdateLeadStatus appends a stage transition.
// PUT /api/v1/leads/:id/status
func (h *Handler) UpdateLeadStatus(c *gin.Context) {
	var req transport.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actor, ok := httpkit.MustGetActor(c)
	if !ok {
		return
	}

	lead, err := h.pipeline.UpdateLeadStatus(c.Request.Context(), c.Param("id"), req, actor.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// LeadStatusHistory returns the full transition log.
// GET /api/v1/leads/:id/status-history
func (h *Handler) LeadStatusHistory(c *gin.Context) {
	history, err := h.pipeline.LeadStatusHistory(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, history)
}

// AssignLeads assigns a user to many leads.
// PUT /api/v1/leads/assign
func (h *Handler) AssignLeads(c *gin.Context) {
	// leadIds and userId are checked by the service.
	var req transport.AssignLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	actor, ok := httpkit.MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.assignment.Assign(c.Request.Context(), req, actor.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AttachGroup moves ungrouped leads into a group.
// PUT /api/v1/leads/attach-group
func (h *Handler) AttachGroup(c *gin.Context) {
	var req transport.AttachGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actor, ok := httpkit.MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.groups.AttachLeads(c.Request.Context(), req, actor.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// HandoverStatus classifies the handover of one lead.
// GET /api/v1/handover/:id
func (h *Handler) HandoverStatus(c *gin.Context) {
	result, err := h.leads.HandoverStatus(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
