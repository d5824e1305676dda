package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/luminastudio/studio-backend/api/responses"
	pkgerrors "github.com/luminastudio/studio-backend/pkg/errors"
	"github.com/luminastudio/studio-backend/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// UploadRateLimit throttles upload batches per caller with a fixed
// window counter in Redis. Limiter outages fail open: a throttle must
// never take the upload path down with it.
func UploadRateLimit(limiter rateLimiter, scope string, limit int64, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := scope + ":" + UserIDFromContext(r.Context())
			allowed, _, err := limiter.FixedWindowAllow(r.Context(), key, limit, window)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "rate limiter unavailable, failing open")
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeRateLimit, "too many upload batches, slow down"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
