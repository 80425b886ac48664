package api

import "github.com/gin-gonic/gin"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// optionalUserID returns the authenticated user's ID, or "" when the request
// came in anonymously. Routes behind OptionalToken use this; routes behind
// VerifyToken can rely on the key being present.
func optionalUserID(c *gin.Context) string {
	rawUserID, exists := c.Get("userID")
	if !exists {
		return ""
	}
	userID, _ := rawUserID.(string)
	return userID
}
