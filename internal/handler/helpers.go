package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jotbox/jotbox/internal/middleware"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
	"github.com/jotbox/jotbox/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := value.(string)
	return userID
}

// handleError maps service sentinels onto the wire. Anything unexpected is
// logged with the request id and reported as a bare internal error.
func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case err == appErr.ErrUnauthorized:
		response.Error(c, http.StatusUnauthorized, "unauthorized", "invalid or expired credentials")
	case err == appErr.ErrForbidden:
		response.Error(c, http.StatusForbidden, "forbidden", "forbidden")
	case err == appErr.ErrNotFound:
		response.Error(c, http.StatusNotFound, "not_found", "not found")
	case err == appErr.ErrInvalid:
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request")
	case err == appErr.ErrConflict:
		response.Error(c, http.StatusConflict, "conflict", "conflict")
	case err == appErr.ErrTooMany:
		response.Error(c, http.StatusTooManyRequests, "too_many", "too many requests")
	default:
		requestID, _ := c.Get("request_id")
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.Any("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("user_id", getUserID(c)),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
