package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"smsguard/internal/logger"
	"smsguard/internal/middleware"
	"smsguard/internal/service"
)

// ScanHandler serves the authenticated /checkmessage endpoints. It must be
// mounted behind middleware.AuthGate.
type ScanHandler struct {
	svc           service.ScanService
	log           *logger.Logger
	exposeDetails bool
}

// NewScanHandler creates a scan handler. exposeDetails controls whether
// classifier diagnostics are included in upstream error bodies.
func NewScanHandler(svc service.ScanService, log *logger.Logger, exposeDetails bool) *ScanHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ScanHandler{svc: svc, log: log, exposeDetails: exposeDetails}
}

// CheckMessageRequest is the body of a classification request.
type CheckMessageRequest struct {
	Message string `json:"message"`
}

// CheckMessage godoc
// @Summary Classify a message
// @Description Sends the message to the spam classifier and stores the verdict.
// @Tags checkmessage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CheckMessageRequest true "Message to classify"
// @Success 201 {object} model.ScanRecord
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /checkmessage [post]
func (h *ScanHandler) CheckMessage(c echo.Context) error {
	var req CheckMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}

	user := middleware.CurrentUser(c)
	scan, err := h.svc.Check(c.Request().Context(), user.ID, req.Message)
	if err != nil {
		return fail(c, h.log, err, h.exposeDetails)
	}
	return c.JSON(http.StatusCreated, scan)
}

// ListScans godoc
// @Summary List scanned messages
// @Description Returns the caller's scans, newest first.
// @Tags checkmessage
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ScanRecord
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /checkmessage [get]
func (h *ScanHandler) ListScans(c echo.Context) error {
	scans, err := h.svc.List(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(c, h.log, err, false)
	}
	return c.JSON(http.StatusOK, scans)
}

// Stats godoc
// @Summary Scan statistics
// @Tags checkmessage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ScanStats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /checkmessage/stats [get]
func (h *ScanHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(c, h.log, err, false)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetScan godoc
// @Summary Get a scanned message
// @Tags checkmessage
// @Produce json
// @Security BearerAuth
// @Param id path int true "Scan ID"
// @Success 200 {object} model.ScanRecord
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /checkmessage/{id} [get]
func (h *ScanHandler) GetScan(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	scan, err := h.svc.Get(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return fail(c, h.log, err, false)
	}
	return c.JSON(http.StatusOK, scan)
}

// DeleteScan godoc
// @Summary Delete a scanned message
// @Tags checkmessage
// @Security BearerAuth
// @Param id path int true "Scan ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /checkmessage/{id} [delete]
func (h *ScanHandler) DeleteScan(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.CurrentUser(c).ID, id); err != nil {
		return fail(c, h.log, err, false)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid id", "INVALID_ID")
	}
	return uint(id), nil
}
