package handler

import (
	"errors"
	"net/http"

	"supper-club/internal/service"
	apperrors "supper-club/pkg/app_errors"
	"supper-club/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PostHandler struct {
	service service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{service: service}
}

func (h *PostHandler) RegisterRoutes(r *gin.Engine, adminAuth gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.GET("posts", h.List)
		router.GET("posts/:id", h.GetPost)
		router.POST("posts", adminAuth, h.Create)
		router.PUT("posts/:id", adminAuth, h.UpdatePost)
		router.DELETE("posts/:id", adminAuth, h.DeletePost)
	}
}

// CreatePostRequest 建立文章請求；event_id 可選，為活動的 uuid
type CreatePostRequest struct {
	Title   string  `json:"title" binding:"required"`
	Body    string  `json:"body" binding:"required"`
	EventID *string `json:"event_id"`
}

// UpdatePostRequest 更新文章請求；event_id 給空字串表示解除活動連結
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Body    *string `json:"body"`
	EventID *string `json:"event_id"`
}

func (h *PostHandler) List(c *gin.Context) {
	var eventID *uuid.UUID
	if raw, ok := c.GetQuery("event"); ok {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
			return
		}
		eventID = &parsed
	}

	posts, err := h.service.List(c, eventID)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := h.service.GetByID(c, id)
	if err != nil {
		h.handleError(c, err, "GetPost")
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c *gin.Context) {
	var req CreatePostRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	var eventID *uuid.UUID
	if req.EventID != nil && *req.EventID != "" {
		parsed, err := uuid.Parse(*req.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
			return
		}
		eventID = &parsed
	}

	created, err := h.service.Create(c, req.Title, req.Body, eventID)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePostRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	var eventID *uuid.UUID
	unlinkEvent := false
	if req.EventID != nil {
		if *req.EventID == "" {
			unlinkEvent = true
		} else {
			parsed, err := uuid.Parse(*req.EventID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event uuid"})
				return
			}
			eventID = &parsed
		}
	}

	updated, err := h.service.Update(c, id, req.Title, req.Body, eventID, unlinkEvent)
	if err != nil {
		h.handleError(c, err, "UpdatePost")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c, id); err != nil {
		h.handleError(c, err, "DeletePost")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrPostNotFound):
		log.Warn("Post not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
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
