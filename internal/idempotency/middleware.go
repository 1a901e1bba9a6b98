package idempotency

import (
	"bytes"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "comanda/internal/errors"
	"comanda/internal/httpx"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"
	maxKeyLength   = 128
)

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware replays the first successful response for a repeated
// Idempotency-Key. Requests without the header pass through untouched; a
// key claimed by a request still in flight is rejected with 409.
func Middleware(store Store, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	rs := httpx.NewResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			traceID := httpx.NewTraceID()
			if len(key) > maxKeyLength {
				rs.Validation(w, traceID, "invalid "+HeaderKey, apperrors.ValidationDetail{
					Field:   HeaderKey,
					Message: "key must be at most 128 characters",
				})
				return
			}

			scoped := r.Method + " " + r.URL.Path + " " + key
			ctx := r.Context()

			existing, started, err := store.Begin(ctx, scoped, ttl)
			if err != nil {
				logger.Error("idempotency store unavailable", zap.Error(err))
				rs.Error(w, traceID, apperrors.NewStoreError("idempotency store unavailable", err))
				return
			}
			if existing != nil {
				w.Header().Set(HeaderReplayed, "true")
				if existing.ContentType != "" {
					w.Header().Set("Content-Type", existing.ContentType)
				}
				w.WriteHeader(existing.Status)
				_, _ = w.Write(existing.Body)
				return
			}
			if !started {
				rs.Error(w, traceID, apperrors.NewStaleStateError("a request with this Idempotency-Key is still in progress"))
				return
			}

			rec := &recorder{ResponseWriter: w}
			completed := false
			defer func() {
				if !completed {
					if err := store.Abort(ctx, scoped); err != nil {
						logger.Warn("failed to release idempotency key", zap.Error(err))
					}
				}
			}()

			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				resp := Response{
					Status:      rec.status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.body.Bytes(),
				}
				if err := store.Complete(ctx, scoped, resp, ttl); err != nil {
					logger.Warn("failed to store idempotent response", zap.Error(err))
					return
				}
				completed = true
			}
		})
	}
}
