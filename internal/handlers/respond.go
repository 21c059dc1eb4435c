package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/apperr"
)

// Envelope is the uniform response shape of the API.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// respondError translates the error taxonomy into the envelope, exactly
// once, at the boundary. Unexpected errors are logged in full but surfaced
// as a generic message unless showDetail is set (non-production).
func respondError(c *gin.Context, log *logrus.Entry, showDetail bool, err error) {
	ae := apperr.From(err)
	body := Envelope{Success: false, Message: ae.Message}
	if len(ae.Fields) > 0 {
		body.Errors = ae.Fields
	}
	if ae.Status == http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("unhandled error")
		if showDetail {
			body.Errors = []apperr.FieldError{{Field: "error", Message: err.Error()}}
		}
	}
	c.JSON(ae.Status, body)
}

// respondBindError wraps a gin binding failure as a validation response.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Message: "Validation error",
		Errors:  []apperr.FieldError{{Field: "body", Message: err.Error()}},
	})
}
