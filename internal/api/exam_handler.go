package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"theorie-backend-go/internal/core"
	"theorie-backend-go/internal/models"
)

// ExamHandler handles API endpoints related to mock exams and attempts.
type ExamHandler struct {
	examService core.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(es core.ExamService) *ExamHandler {
	return &ExamHandler{examService: es}
}

// mapExamErrorToStatus maps errors from core.ExamService to HTTP status codes and ErrorResponse.
func mapExamErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrAuthRequired):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: "Sign in to start an exam"}
	case errors.Is(err, core.ErrPlanRequired):
		// 402: the content exists but sits behind the paywall.
		statusCode = http.StatusPaymentRequired
		errResponse = ErrorResponse{Error: "An active plan is required", Details: err.Error()}
	case errors.Is(err, core.ErrAttemptLimitReached):
		statusCode = http.StatusPaymentRequired
		errResponse = ErrorResponse{Error: "Exam attempt limit reached", Details: err.Error()}
	case errors.Is(err, core.ErrExamNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrExamNotFound.Error()}
	case errors.Is(err, core.ErrAttemptNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrAttemptNotFound.Error()}
	case errors.Is(err, core.ErrAttemptForbidden):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrAttemptForbidden.Error()}
	case errors.Is(err, core.ErrAttemptCompleted):
		// 409: the attempt exists but was already submitted.
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrAttemptCompleted.Error()}
	case errors.Is(err, core.ErrEmptyQuestionPool):
		statusCode = http.StatusUnprocessableEntity
		errResponse = ErrorResponse{Error: core.ErrEmptyQuestionPool.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "User profile not found", Details: err.Error()}
	default:
		log.Printf("Internal Server Error in ExamHandler: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// ListExams handles GET /exams. Public: the catalog is browsable without an
// account, only starting an exam is gated.
func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.ListExams(c.Request.Context())
	if err != nil {
		mapExamErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

// GetExam handles GET /exams/:slug
func (h *ExamHandler) GetExam(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Exam slug is required"})
		return
	}

	exam, err := h.examService.GetExam(c.Request.Context(), slug)
	if err != nil {
		mapExamErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

// StartExam handles POST /exams/:slug/start
func (h *ExamHandler) StartExam(c *gin.Context) {
	userID := optionalUserID(c)

	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Exam slug is required"})
		return
	}

	started, err := h.examService.StartExam(c.Request.Context(), userID, slug)
	if err != nil {
		mapExamErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, started)
}

// GenerateExam handles POST /exams/generate
func (h *ExamHandler) GenerateExam(c *gin.Context) {
	userID := optionalUserID(c)

	var req models.GenerateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	started, err := h.examService.GenerateExam(c.Request.Context(), userID, req)
	if err != nil {
		mapExamErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, started)
}

// SubmitExam handles POST /attempts/:attemptId/submit
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	attemptID := c.Param("attemptId")
	if attemptID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Attempt ID is required"})
		return
	}

	var req models.SubmitExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.examService.SubmitExam(c.Request.Context(), userID.(string), attemptID, req)
	if err != nil {
		mapExamErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AttemptHistory handles GET /attempts
func (h *ExamHandler) AttemptHistory(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit query parameter"})
			return
		}
		limit = parsed
	}

	attempts, err := h.examService.AttemptHistory(c.Request.Context(), userID.(string), limit)
	if err != nil {
		mapExamErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, attempts)
}
