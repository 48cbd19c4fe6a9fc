package handler

import (
	"errors"
	"net/http"

	"collabtask/internal/middleware"
	"collabtask/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error" example:"Task not found"`
}

var statusByKind = map[service.Kind]int{
	service.KindValidation: http.StatusBadRequest,
	service.KindAuth:       http.StatusUnauthorized,
	service.KindForbidden:  http.StatusForbidden,
	service.KindNotFound:   http.StatusNotFound,
	service.KindConflict:   http.StatusConflict,
}

// respondError writes err as {"error": ...}. Domain errors keep their
// message; anything else is logged and reported as a generic 500.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"route":  c.FullPath(),
		}).Error("❌ Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	status, ok := statusByKind[svcErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	body := gin.H{"error": svcErr.Message}
	if svcErr.DetailsKey != "" && len(svcErr.Details) > 0 {
		body[svcErr.DetailsKey] = svcErr.Details
	}
	c.JSON(status, body)
}

func respondInvalidBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
}

// actorID is the authenticated caller, or "" when authentication is optional
// and no token was sent.
func actorID(c *gin.Context) string {
	if id, ok := middleware.CurrentUserID(c); ok {
		return id.String()
	}
	return ""
}
