package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chris/vault-wallet/pkg/auth"
	"github.com/go-chi/chi/v5/middleware"
)

const maxKeyLength = 255

// Middleware replays responses of POST requests that repeat an Idempotency-Key.
// Keys are scoped to the caller and the request path. Responses with a 5xx
// status, and requests whose handler panicked, release the key so the client
// can retry. Store failures let the request through.
func Middleware(store Store, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(Header))
			if r.Method != http.MethodPost || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(clientKey) > maxKeyLength {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Idempotency-Key is too long", "code": "invalid_payload"})
				return
			}

			ctx := r.Context()
			key := auth.UserID(ctx) + ":" + r.URL.Path + ":" + clientKey

			reserved, err := store.Reserve(ctx, key, min(PendingTTL, ttl))
			if err != nil {
				logger.Warn("idempotency store unavailable", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			if !reserved {
				entry, err := store.Get(ctx, key)
				switch {
				case errors.Is(err, ErrNotFound):
					// Expired or released between Reserve and Get.
					next.ServeHTTP(w, r)
				case err != nil:
					logger.Warn("idempotency lookup failed", slog.String("error", err.Error()))
					next.ServeHTTP(w, r)
				case entry.Pending():
					writeJSON(w, http.StatusConflict, map[string]string{"error": "A request with this Idempotency-Key is already in progress", "code": "conflict"})
				default:
					replay(w, entry)
				}
				return
			}

			// The outcome is recorded even when the client has gone away.
			storeCtx := context.WithoutCancel(ctx)
			completed := false
			defer func() {
				if completed {
					return
				}
				// Runs while a handler panic unwinds, before Recoverer answers 500.
				if err := store.Release(storeCtx, key); err != nil {
					logger.Warn("failed to release idempotency key", slog.String("error", err.Error()))
				}
			}()

			var body bytes.Buffer
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= 500 {
				return
			}

			// A response that cannot be stored keeps the pending marker until
			// PendingTTL, so a quick retry cannot run the request twice.
			completed = true
			entry := &Entry{Status: status, ContentType: ww.Header().Get("Content-Type"), Body: body.Bytes()}
			if err := store.Complete(storeCtx, key, entry, ttl); err != nil {
				logger.Warn("failed to store idempotent response", slog.String("error", err.Error()))
			}
		})
	}
}

func replay(w http.ResponseWriter, entry *Entry) {
	if entry.ContentType != "" {
		w.Header().Set("Content-Type", entry.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(entry.Status)
	_, _ = w.Write(entry.Body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
