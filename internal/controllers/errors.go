package controllers

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/Bitfisherllc/roofdb"
	"github.com/Bitfisherllc/roofdb/internal/data"
	"github.com/Bitfisherllc/roofdb/internal/literal"
)

// statusOf maps store errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, literal.ErrNotFound), errors.Is(err, roofdb.ErrKeyDoesNotExist):
		return http.StatusNotFound
	case errors.Is(err, roofdb.ErrStaleDocument):
		return http.StatusConflict
	case errors.Is(err, roofdb.ErrVersionMismatch):
		return http.StatusPreconditionFailed
	case errors.Is(err, literal.ErrMalformed),
		errors.Is(err, literal.ErrInvalid),
		errors.Is(err, data.ErrInvalidUpdate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
