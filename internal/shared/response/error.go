package response

import (
	"errors"
	"net/http"

	apperrors "github.com/clickcart/server/internal/shared/errors"
	"github.com/gin-gonic/gin"
)

// Error writes an error as a JSON response with the appropriate status code.
func Error(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	status := apperrors.GetStatusCode(err)
	detail := apperrors.ErrorDetail{Code: "INTERNAL_ERROR", Message: "internal server error"}
	if status != http.StatusInternalServerError {
		detail = apperrors.ErrorDetail{Code: http.StatusText(status), Message: err.Error()}
	}
	c.JSON(status, apperrors.ErrorResponse{Error: detail})
}

// NotFoundMasked writes a not-found response regardless of the underlying
// error. Used where access denial must be indistinguishable from absence.
func NotFoundMasked(c *gin.Context, resource string) {
	appErr := apperrors.NotFound(resource)
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
