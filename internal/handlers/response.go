package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondAPIError maps service errors onto the envelope. Business outcomes
// (duplicate demand, insufficient stock, ...) arrive as *apierr.Error with
// their own status; anything else is a 500.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: ae.Error(),
			Code:    ae.Code,
		},
	})
}
