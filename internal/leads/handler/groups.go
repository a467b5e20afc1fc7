package handler

import (
	"net/http"

	"bd_pipeline_backend/internal/leads/transport"
	"bd_pipeline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// CreateGroup creates a group in the open stage.
// POST /api/v1/groups
func (h *Handler) CreateGroup(c *gin.Context) {
	var req transport.CreateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actor, ok := httpkit.MustGetActor(c)
	if !ok {
		return
	}

	group, err := h.groups.Create(c.Request.Context(), req, actor.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, group)
}

// ListGroups returns a page of groups.
// GET /api/v1/groups
func (h *Handler) ListGroups(c *gin.Context) {
	var req transport.ListGroupsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	pageDefaults(&req.Page, &req.PageSize)
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.groups.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetGroup returns a group with its member leads.
// GET /api/v1/groups/:id
func (h *Handler) GetGroup(c *gin.Context) {
	group, err := h.groups.GetByID(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, group)
}

// UpdateGroup changes editable group fields.
// PUT /api/v1/groups/:id
func (h *Handler) UpdateGroup(c *gin.Context) {
	var req transport.UpdateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actor, ok := httpkit.MustGetActor(c)
	if !ok {
		return
	}

	group, err := h.groups.Update(c.Request.Context(), c.Param("id"), req, actor.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, group)
}

// UpdateGroupStatus appends a stage transition to a group.
// PUT /api/v1/groups/:id/status
func (h *Handler) UpdateGroupStatus(c *gin.Context) {
	var req transport.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actor, ok := httpkit.MustGetActor(c)
	if !ok {
		return
	}

	group, err := h.pipeline.UpdateGroupStatus(c.Request.Context(), c.Param("id"), req, actor.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, group)
}

// GroupCapacity previews whether extra capacity fits.
// GET /api/v1/groups/:id/capacity?additional=
func (h *Handler) GroupCapacity(c *gin.Context) {
	result, err := h.groups.Capacity(c.Request.Context(), c.Param("id"), c.Query("additional"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
