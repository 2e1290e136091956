package server

import (
	"errors"
	"net/http"
)

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument   = 1000
	ErrCodeInvalidJSON       = 1001
	ErrCodeRequestTooLarge   = 1002
	ErrCodeInvalidQuery      = 1003
	ErrCodeInvalidID         = 1004
	ErrCodeInvalidStatus     = 1005
	ErrCodeInvalidType       = 1006
	ErrCodeInvalidPriority   = 1007
	ErrCodeInvalidDueDate    = 1008
	ErrCodeMissingRequired   = 1009
	ErrCodeInvalidPermission = 1010
	ErrCodeInvalidParentID   = 1013

	// Domain state (2xxx)
	ErrCodeTaskNotFound    = 2001
	ErrCodeProjectNotFound = 2002
	ErrCodeUserNotFound    = 2003
	ErrCodeRoleNotFound    = 2004
	ErrCodeTaskIDExists    = 2101
	ErrCodeConflict        = 2102
	ErrCodeStatusBackward  = 2103

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003
	ErrCodeActorMismatch     = 3004

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
	ErrCodeImportFailed = 4004
)

// statusClass is the wire code and fallback numeric code for one HTTP status.
type statusClass struct {
	code    string
	errCode int
	warn    bool
}

var statusClasses = map[int]statusClass{
	http.StatusBadRequest:          {code: "invalid_argument", errCode: ErrCodeInvalidArgument},
	http.StatusUnauthorized:        {code: "unauthorized", errCode: ErrCodeUnauthorized, warn: true},
	http.StatusForbidden:           {code: "forbidden", errCode: ErrCodeForbidden, warn: true},
	http.StatusNotFound:            {code: "not_found", errCode: ErrCodeTaskNotFound},
	http.StatusConflict:            {code: "conflict", errCode: ErrCodeConflict},
	http.StatusTooManyRequests:     {code: "resource_exhausted", errCode: ErrCodeResourceExhausted, warn: true},
	http.StatusInternalServerError: {code: "internal", errCode: ErrCodeInternal},
}

func defaultErrorCodeByStatus(status int) int {
	return statusClasses[status].errCode
}

func shouldWarnClientError(status int) bool {
	return statusClasses[status].warn
}

// apiError carries the HTTP status and error codes a handler responds with.
type apiError struct {
	status  int
	code    string
	errCode int
	err     error
}

func (e apiError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e apiError) Unwrap() error {
	return e.err
}

// makeAPIError wraps err with a status. An error that already carries a
// status keeps it; an empty code is filled from the status class.
func makeAPIError(status int, code string, errCode int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	var existing apiError
	if errors.As(err, &existing) && existing.status != 0 {
		return existing
	}
	if code == "" {
		code = statusClasses[status].code
	}
	return apiError{status: status, code: code, errCode: errCode, err: err}
}

func badRequest(err error) error { return badRequestCode(err, ErrCodeInvalidArgument) }

func badRequestCode(err error, code int) error {
	return makeAPIError(http.StatusBadRequest, "", code, err)
}

func notFoundCode(err error, code int) error {
	return makeAPIError(http.StatusNotFound, "", code, err)
}

func conflictCode(err error, code int) error {
	return makeAPIError(http.StatusConflict, "", code, err)
}

func unauthorized(err error) error {
	return makeAPIError(http.StatusUnauthorized, "", ErrCodeUnauthorized, err)
}

func forbiddenCode(err error, code int) error {
	return makeAPIError(http.StatusForbidden, "", code, err)
}

func storeFailure(err error) error {
	return makeAPIError(http.StatusInternalServerError, "", ErrCodeStoreFailure, err)
}

func httpStatusFromError(err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) {
		return apiErr.status
	}
	return http.StatusInternalServerError
}

func errorCode(status int, err error) string {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.code != "" {
		return apiErr.code
	}
	return statusClasses[status].code
}

func errorNumericCode(status int, err error) int {
	var apiErr apiError
	if errors.As(err, &apiErr) && apiErr.errCode > 0 {
		return apiErr.errCode
	}
	return defaultErrorCodeByStatus(status)
}
