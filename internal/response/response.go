// Package response defines the JSON envelopes every endpoint answers with.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkboard/internal/resolver"
)

// Success wraps the payload of a successful response.
type Success struct {
	Data any `json:"data"`
}

// Error wraps a failed response.
type Error struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	// Code is machine readable, e.g. "ALREADY_VOTED".
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeOutOfRange      = "OUT_OF_RANGE"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeLinkNotFound    = "LINK_NOT_FOUND"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeInvalidPassword = "INVALID_PASSWORD"
	CodeAlreadyVoted    = "ALREADY_VOTED"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_ERROR"
)

// OK sends a 200 response with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success{Data: data})
}

// Created sends a 201 response with the created resource.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Success{Data: data})
}

// Fail aborts the request with the given status and error detail.
func Fail(c *gin.Context, status int, code, message, requestID string) {
	c.AbortWithStatusJSON(status, Error{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// BadRequest is used for malformed input rejected before reaching a resolver.
func BadRequest(c *gin.Context, message, requestID string) {
	Fail(c, http.StatusBadRequest, CodeInvalidArgument, message, requestID)
}

func InternalError(c *gin.Context, requestID string) {
	Fail(c, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", requestID)
}

var kinds = []struct {
	kind   error
	status int
	code   string
}{
	{resolver.ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated},
	{resolver.ErrOutOfRange, http.StatusBadRequest, CodeOutOfRange},
	{resolver.ErrInvalidArgument, http.StatusBadRequest, CodeInvalidArgument},
	{resolver.ErrLinkNotFound, http.StatusNotFound, CodeLinkNotFound},
	{resolver.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound},
	{resolver.ErrInvalidPassword, http.StatusUnauthorized, CodeInvalidPassword},
	{resolver.ErrAlreadyVoted, http.StatusConflict, CodeAlreadyVoted},
}

// Classify returns the status and code an error is reported with. The second
// result is false for errors that are not one of the resolver's kinds.
func Classify(err error) (int, string, bool) {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.status, k.code, true
		}
	}
	return http.StatusInternalServerError, CodeInternal, false
}

// FromError converts a resolver error into a response. Errors of unknown kind
// are reported as internal without exposing their text; the caller is
// expected to have logged them.
func FromError(c *gin.Context, err error, requestID string) {
	status, code, known := Classify(err)
	if !known {
		InternalError(c, requestID)
		return
	}
	Fail(c, status, code, err.Error(), requestID)
}
