package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/markreg/caseflow/internal/domain/workflow"
)

var (
	errBadID         = fmt.Errorf("%w: invalid ID", workflow.ErrValidation)
	errBadStatus     = fmt.Errorf("%w: unknown status", workflow.ErrValidation)
	errBadPersonType = fmt.Errorf("%w: unknown person type", workflow.ErrValidation)
	errMissingBundle = fmt.Errorf("%w: document bundle for the person type is required", workflow.ErrValidation)
)

// respondError maps an error kind to its HTTP status
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, workflow.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, workflow.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrState), errors.Is(err, workflow.ErrConflict):
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}

	c.JSON(status, Response{Success: false, Error: message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: message})
}
