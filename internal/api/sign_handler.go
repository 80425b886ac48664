package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"theorie-backend-go/internal/core"
)

// SignHandler handles API endpoints for the traffic-sign reference and quiz.
type SignHandler struct {
	signService core.SignService
}

// NewSignHandler creates a new SignHandler.
func NewSignHandler(ss core.SignService) *SignHandler {
	return &SignHandler{signService: ss}
}

// ListSigns handles GET /signs
func (h *SignHandler) ListSigns(c *gin.Context) {
	signs, err := h.signService.ListSigns(c.Request.Context())
	if err != nil {
		log.Printf("ListSigns Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list traffic signs"})
		return
	}
	c.JSON(http.StatusOK, signs)
}

// Quiz handles GET /signs/quiz. The optional count query parameter is
// clamped by the service.
func (h *SignHandler) Quiz(c *gin.Context) {
	count := 0
	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid count query parameter"})
			return
		}
		count = parsed
	}

	signs, err := h.signService.Quiz(c.Request.Context(), count)
	if err != nil {
		if errors.Is(err, core.ErrNoSigns) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrNoSigns.Error()})
			return
		}
		log.Printf("Quiz Error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to build sign quiz"})
		return
	}
	c.JSON(http.StatusOK, signs)
}
