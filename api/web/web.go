package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

type Middleware func(Handler) Handler

func WrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h := mw[i]
		if h != nil {
			handler = h(handler)
		}
	}

	return handler
}

// Envelope is the body shape shared by every endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Count      *int        `json:"count,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Token      string      `json:"token,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Empty is the data payload of deletions and logouts.
var Empty = struct{}{}

func Respond(ctx context.Context, w http.ResponseWriter, data interface{}, statusCode int) error {
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("cannot marshal response data: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := w.Write(jsonData); err != nil {
		return fmt.Errorf("cannot write response data to response writer: %w", err)
	}

	return nil
}

// RespondData wraps data in a successful envelope.
func RespondData(ctx context.Context, w http.ResponseWriter, data interface{}, statusCode int) error {
	return Respond(ctx, w, Envelope{Success: true, Data: data}, statusCode)
}

// RespondList wraps a collection, its size and an optional pagination descriptor.
func RespondList(ctx context.Context, w http.ResponseWriter, data interface{}, count int, pagination interface{}) error {
	env := Envelope{
		Success:    true,
		Count:      &count,
		Pagination: pagination,
		Data:       data,
	}
	return Respond(ctx, w, env, http.StatusOK)
}

func Decode(w http.ResponseWriter, r *http.Request, val interface{}) error {
	maxBytes := 1048576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return err
	}

	return nil
}

func Param(r *http.Request, key string) string {
	m := mux.Vars(r)
	return m[key]
}
