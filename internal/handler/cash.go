package handler

import (
	"net/http"

	"github.com/Cairo-Maranzatto/PDVNow-API/internal/dto"
	"github.com/Cairo-Maranzatto/PDVNow-API/internal/service"

	"github.com/gin-gonic/gin"
)

// CashHandler exposes the register/session lifecycle endpoints.
type CashHandler struct{ svc service.CashService }

func NewCashHandler(svc service.CashService) *CashHandler { return &CashHandler{svc: svc} }

// OpenSession opens a session on a register, creating the register on first
// use. Cashiers present an open-session override code; admins do not.
func (h *CashHandler) OpenSession(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, isAdmin := actor(c)
	session, err := h.svc.OpenSession(c.Request.Context(), userID, isAdmin, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromCashSession(session))
}

// CloseSession closes the open session on a register with a denomination
// count.
func (h *CashHandler) CloseSession(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, isAdmin := actor(c)
	session, err := h.svc.CloseSession(c.Request.Context(), userID, isAdmin, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCashSession(session))
}

// CreateMovement posts a manual supply or withdrawal into the register's open
// session.
func (h *CashHandler) CreateMovement(c *gin.Context) {
	var req dto.CreateMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, isAdmin := actor(c)
	movement, err := h.svc.CreateMovement(c.Request.Context(), userID, isAdmin, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromCashMovement(movement))
}

// ReopenSession reverses a close. Admin role is enforced on the route.
func (h *CashHandler) ReopenSession(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	var req dto.ReopenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	userID, _ := actor(c)
	session, err := h.svc.ReopenSession(c.Request.Context(), userID, sessionID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCashSession(session))
}

func (h *CashHandler) ListRegisters(c *gin.Context) {
	registers, err := h.svc.ListRegisters(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.CashRegisterResponse, len(registers))
	for i := range registers {
		resp[i] = dto.FromCashRegister(&registers[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetOpenSession returns the register's currently open session, 404 when
// there is none.
func (h *CashHandler) GetOpenSession(c *gin.Context) {
	registerID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	session, err := h.svc.GetOpenSession(c.Request.Context(), registerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCashSession(session))
}

// ListMovements returns a session's full cash ledger in posting order.
func (h *CashHandler) ListMovements(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionId")
	if !ok {
		return
	}
	movements, err := h.svc.ListMovements(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.CashMovementResponse, len(movements))
	for i := range movements {
		resp[i] = dto.FromCashMovement(&movements[i])
	}
	c.JSON(http.StatusOK, resp)
}
