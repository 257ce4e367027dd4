package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/logger"
)

// Response bodies
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

const (
	msgTaskNotFound     = "Task not found"
	msgInvalidRequest   = "Invalid request format"
	msgNoUpdatableField = "At least one field (status, dueDate, description) is required"
)

// methodNotAllowed answers 405 and advertises the supported methods.
func methodNotAllowed(c echo.Context, allowed ...string) error {
	c.Response().Header().Set(echo.HeaderAllow, strings.Join(allowed, ", "))
	return c.JSON(http.StatusMethodNotAllowed, ErrorResponse{
		Error: fmt.Sprintf("Method %s Not Allowed", c.Request().Method),
	})
}

// decodeStrict decodes the request body into v, rejecting unknown keys,
// mistyped values and anything after the first JSON value. An empty body
// leaves v untouched.
func decodeStrict(c echo.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		if err = dec.Decode(&struct{}{}); errors.Is(err, io.EOF) {
			return nil
		}
		if err == nil {
			err = errors.New("unexpected data after request body")
		}
	}

	return fmt.Errorf("%w: %v", entities.ErrInvalidRequestShape, err)
}

// parseTaskID returns false for anything that is not a positive integer;
// such ids cannot match a row.
func parseTaskID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto status codes. Anything unclassified is
// logged and reported as "Failed to <op>" without the cause.
func respondError(c echo.Context, log *logger.Logger, op string, err error) error {
	var validationErr *entities.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: validationErr.Messages})
	case errors.Is(err, entities.ErrInvalidRequestShape):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest})
	case errors.Is(err, entities.ErrNoUpdatableFields):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgNoUpdatableField})
	case errors.Is(err, entities.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: msgTaskNotFound})
	}

	l := log.WithError(err)
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		l = l.WithRequestID(id)
	}
	fields := []interface{}{"op", op}
	var storageErr *entities.StorageError
	if errors.As(err, &storageErr) && storageErr.Code != "" {
		fields = append(fields, "sqlstate", storageErr.Code)
	}
	l.Errorw("Task operation failed", fields...)

	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to " + op})
}
