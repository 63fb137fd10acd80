// Package weberr carries client-facing failures from handlers to the
// errors middleware.
package weberr

import (
	"errors"
	"net/http"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RequestError pairs an error with the message and status the client sees.
// Fields are logged by the errors middleware and never sent.
type RequestError struct {
	Err     error
	Message string
	Status  int
	Fields  map[string]interface{}
}

func (e *RequestError) Error() string { return e.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

// Body is the failure envelope for e.
func (e *RequestError) Body() ErrorResponse {
	return ErrorResponse{Success: false, Error: e.Message}
}

type Opt func(*RequestError)

func WithFields(fields map[string]interface{}) Opt {
	return func(e *RequestError) {
		if e.Fields == nil {
			e.Fields = make(map[string]interface{}, len(fields))
		}
		for k, v := range fields {
			e.Fields[k] = v
		}
	}
}

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err, Message: msg, Status: status}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NotFound, NotAuthorized and BadRequest expose the message of err to the
// client, so err must be built for that audience.
func NotFound(err error, opts ...Opt) error {
	return NewError(err, err.Error(), http.StatusNotFound, opts...)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(err, err.Error(), http.StatusUnauthorized, opts...)
}

func BadRequest(err error, opts ...Opt) error {
	return NewError(err, err.Error(), http.StatusBadRequest, opts...)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(err, err.Error(), http.StatusTooManyRequests, opts...)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(
		err,
		"the server encountered a problem and could not process your request",
		http.StatusInternalServerError,
		opts...,
	)
}

// Response finds the outermost RequestError in err's chain and returns its
// envelope and status.
func Response(err error) (ErrorResponse, int, bool) {
	var re *RequestError
	if !errors.As(err, &re) {
		return ErrorResponse{}, 0, false
	}
	return re.Body(), re.Status, true
}

// Fields returns the log fields attached to err, if any.
func Fields(err error) (map[string]interface{}, bool) {
	var re *RequestError
	if !errors.As(err, &re) || len(re.Fields) == 0 {
		return nil, false
	}
	return re.Fields, true
}
