package api

import (
	"errors"
	"net/http"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/errs"
)

// classify maps transport and status failures onto the shared error kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return errs.Persist(op, err)
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return errs.E(errs.KindAuthExpired, op, err)
	case http.StatusNotFound, http.StatusGone:
		return errs.E(errs.KindNotFound, op, err)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &errs.Error{Kind: errs.KindValidation, Op: op, Msg: apiErr.Message, Err: err}
	default:
		return errs.Persist(op, err)
	}
}

// StatusCode returns the HTTP status behind err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
