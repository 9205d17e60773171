package handler

import (
	"errors"
	"net/http"
	"time"

	"supper-club/internal/model"
	"supper-club/internal/service"
	apperrors "supper-club/pkg/app_errors"
	"supper-club/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine, adminAuth gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.GET("events/next", h.GetNextUpcoming)
		router.GET("events/:uuid", h.GetByEventID)
		router.POST("events", adminAuth, h.Create)
		router.PUT("events/:uuid", adminAuth, h.UpdateByEventID)
		router.DELETE("events/:uuid", adminAuth, h.DeleteByEventID)
	}
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Title           string  `json:"title" binding:"required"`
	Date            string  `json:"date" binding:"required"`
	Time            *string `json:"time"`
	Location        string  `json:"location" binding:"required"`
	MenuDescription string  `json:"menu_description" binding:"required"`
	Capacity        int     `json:"capacity" binding:"required,min=1"`
	Charity         *string `json:"charity"`
	CharityURL      *string `json:"charity_url"`
	SuggestedPrice  *string `json:"suggested_price"`
}

// UpdateEventRequest 更新活動請求，全部欄位可選
type UpdateEventRequest struct {
	Title           *string `json:"title"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	Location        *string `json:"location"`
	MenuDescription *string `json:"menu_description"`
	Capacity        *int    `json:"capacity"`
	Charity         *string `json:"charity"`
	CharityURL      *string `json:"charity_url"`
	SuggestedPrice  *string `json:"suggested_price"`
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByEventID(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	event, err := h.service.GetByEventID(c, eventID)
	if err != nil {
		h.handleError(c, err, "GetByEventID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetNextUpcoming(c *gin.Context) {
	event, err := h.service.GetNextUpcoming(c)
	if err != nil {
		h.handleError(c, err, "GetNextUpcoming")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	event := &model.Event{
		Title:           req.Title,
		Date:            date,
		Time:            req.Time,
		Location:        req.Location,
		MenuDescription: req.MenuDescription,
		Capacity:        req.Capacity,
		Charity:         req.Charity,
		CharityURL:      req.CharityURL,
		SuggestedPrice:  req.SuggestedPrice,
	}
	created, err := h.service.Create(c, event)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) UpdateByEventID(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateEventParams{
		Title:           req.Title,
		Time:            req.Time,
		Location:        req.Location,
		MenuDescription: req.MenuDescription,
		Capacity:        req.Capacity,
		Charity:         req.Charity,
		CharityURL:      req.CharityURL,
		SuggestedPrice:  req.SuggestedPrice,
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		params.Date = &date
	}

	updated, err := h.service.UpdateByEventID(c, eventID, params)
	if err != nil {
		h.handleError(c, err, "UpdateByEventID")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) DeleteByEventID(c *gin.Context) {
	eventID, ok := ParseUUIDParam(c, "uuid")
	if !ok {
		return
	}
	if err := h.service.DeleteByEventID(c, eventID); err != nil {
		h.handleError(c, err, "DeleteByEventID")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.ErrInternalServerError.Error()})
	}
}
