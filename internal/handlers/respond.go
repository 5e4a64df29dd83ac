package handlers

import (
	"errors"
	"net/http"

	"church-service/internal/services"
	"church-service/pkg/common"

	"github.com/gin-gonic/gin"
)

// fail translates service errors to the HTTP taxonomy: validation and
// transition errors are 400, missing records 404, everything else 500.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidTransition):
		status = http.StatusBadRequest
	}
	c.JSON(status, common.NewErrorResponse(err.Error(), nil, status))
}
