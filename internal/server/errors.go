// Package server provides the HTTP REST API for the outreach agent.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/vendor-outreach/internal/outreach"
)

// ErrThreadNotFound indicates the thread does not exist
type ErrThreadNotFound struct {
	ThreadID uuid.UUID
}

func (e *ErrThreadNotFound) Error() string {
	return fmt.Sprintf("thread not found: %s", e.ThreadID)
}

// ErrEventNotFound indicates the event does not exist
type ErrEventNotFound struct {
	EventID uuid.UUID
}

func (e *ErrEventNotFound) Error() string {
	return fmt.Sprintf("event not found: %s", e.EventID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrInvalidStatus indicates an unknown thread status value
type ErrInvalidStatus struct {
	Status string
}

func (e *ErrInvalidStatus) Error() string {
	return fmt.Sprintf("invalid thread status: %s", e.Status)
}

// ErrConflict indicates the thread is not in a state that allows the
// requested operation
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var vendorNotFound *outreach.VendorNotFoundError
	if errors.As(err, &vendorNotFound) {
		return http.StatusNotFound
	}

	switch err.(type) {
	case *ErrThreadNotFound, *ErrEventNotFound:
		return http.StatusNotFound
	case *ErrValidation, *ErrInvalidStatus:
		return http.StatusBadRequest
	case *ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
