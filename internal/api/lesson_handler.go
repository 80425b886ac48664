package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"theorie-backend-go/internal/core"
)

// LessonHandler handles API endpoints for the theory course content.
type LessonHandler struct {
	lessonService core.LessonService
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(ls core.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: ls}
}

// mapLessonErrorToStatus maps errors from core.LessonService to HTTP status codes and ErrorResponse.
func mapLessonErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrLessonNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrLessonNotFound.Error()}
	case errors.Is(err, core.ErrAuthRequired):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: "Sign in to read this lesson"}
	case errors.Is(err, core.ErrPlanRequired):
		statusCode = http.StatusPaymentRequired
		errResponse = ErrorResponse{Error: "An active plan is required", Details: err.Error()}
	default:
		log.Printf("Internal Server Error in LessonHandler: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// ListLessons handles GET /lessons. Public: everyone sees the course
// outline, locked lessons come back without their bodies.
func (h *LessonHandler) ListLessons(c *gin.Context) {
	lessons, err := h.lessonService.ListLessons(c.Request.Context(), optionalUserID(c))
	if err != nil {
		mapLessonErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, lessons)
}

// GetLesson handles GET /lessons/:slug
func (h *LessonHandler) GetLesson(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Lesson slug is required"})
		return
	}

	lesson, err := h.lessonService.GetLesson(c.Request.Context(), optionalUserID(c), slug)
	if err != nil {
		mapLessonErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}
