package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/irsalhamdi/devcamper/api/web"
)

const (
	RequestIDHeader = "X-Request-Id"

	requestIDLengthLimit = 64
)

type reqIDKeyCtx int

const reqIDKey reqIDKeyCtx = 1

var (
	reqSeq    uint64
	reqPrefix = newPrefix()
)

func newPrefix() string {
	var buf [5]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "devcamper"
	}
	return hex.EncodeToString(buf[:])
}

// RequestID tags the request context with the caller supplied request id, or
// a process unique one, and echoes it back in the response headers.
func RequestID() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			id := r.Header.Get(RequestIDHeader)
			switch {
			case id == "":
				id = fmt.Sprintf("%s-%06d", reqPrefix, atomic.AddUint64(&reqSeq, 1))
			case len(id) > requestIDLengthLimit:
				id = id[:requestIDLengthLimit]
			}

			w.Header().Set(RequestIDHeader, id)
			ctx = context.WithValue(ctx, reqIDKey, id)

			return handler(ctx, w, r.WithContext(ctx))
		}
		return h
	}
	return m
}

func ContextRequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}
