package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"supper-club/internal/model"
	"supper-club/internal/service"
	apperrors "supper-club/pkg/app_errors"
	"supper-club/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegistrationHandler struct {
	service service.RegistrationService
}

func NewRegistrationHandler(service service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

func (h *RegistrationHandler) RegisterRoutes(r *gin.Engine, adminAuth gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.POST("events/:uuid/registrations", h.Register)
		router.GET("events/:uuid/registrations", adminAuth, h.ListByEvent)
		router.GET("events/:uuid/registrations.csv", adminAuth, h.ExportCSV)
		router.GET("registrations/:id", h.GetRegistration)
		router.PUT("registrations/:id", adminAuth, h.UpdateRegistration)
		router.DELETE("registrations/:id", adminAuth, h.DeleteRegistration)
	}
}

// UpdateRegistrationRequest 管理員修正報名資料
type UpdateRegistrationRequest struct {
	Name                *string `json:"name"`
	Phone               *string `json:"phone"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
	NumGuests           *int    `json:"num_guests"`
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	var req model.CreateRegistrationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.Register(c, eventID, req)
	if err != nil {
		h.handleError(c, err, "Register")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *RegistrationHandler) GetRegistration(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	registration, err := h.service.GetWithEvent(c, id)
	if err != nil {
		h.handleError(c, err, "GetRegistration")
		return
	}
	c.JSON(http.StatusOK, registration)
}

func (h *RegistrationHandler) ListByEvent(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	registrations, err := h.service.ListByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListByEvent")
		return
	}
	c.JSON(http.StatusOK, registrations)
}

func (h *RegistrationHandler) UpdateRegistration(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRegistrationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateRegistrationParams{
		Name:                req.Name,
		Phone:               req.Phone,
		DietaryRestrictions: req.DietaryRestrictions,
		NumGuests:           req.NumGuests,
	}
	updated, err := h.service.Update(c, id, params)
	if err != nil {
		h.handleError(c, err, "UpdateRegistration")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RegistrationHandler) DeleteRegistration(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c, id); err != nil {
		h.handleError(c, err, "DeleteRegistration")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RegistrationHandler) ExportCSV(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportCSV(c, eventID, &buf); err != nil {
		h.handleError(c, err, "ExportCSV")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="guests-%s.csv"`, eventID))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *RegistrationHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		log.Warn("Capacity exceeded")
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough spots remaining"})
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrRegistrationNotFound):
		log.Warn("Registration not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.ErrInternalServerError.Error()})
	}
}
