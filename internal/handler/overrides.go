package handler

import (
	"net/http"
	"time"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/dto"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/model"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/service"

	"github.com/gin-gonic/gin"
)

// OverridesHandler lets admins mint single-use override codes. Admin role is
// enforced on the route.
type OverridesHandler struct{ svc service.OverrideService }

func NewOverridesHandler(svc service.OverrideService) *OverridesHandler {
	return &OverridesHandler{svc: svc}
}

func (h *OverridesHandler) Issue(c *gin.Context) {
	var req dto.IssueOverrideRequest
	if !bindAndValidate(c, &req) {
		return
	}
	adminID, _ := actor(c)

	purpose := model.OverridePurpose(req.Purpose)
	code, expiresAt, err := h.svc.Issue(c.Request.Context(), adminID, purpose, req.Justification, time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.IssueOverrideResponse{
		Code:      code,
		Purpose:   req.Purpose,
		ExpiresAt: expiresAt,
	})
}
