package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
)

const msgTooManyRequests = "слишком много запросов, попробуйте позже"

// Limiter счётчик запросов на ключ
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit ограничивает запросы на пользователя. Ставится после Authenticator.
// При недоступности хранилища лимитов запрос пропускается.
func RateLimit(limiter Limiter, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if actor, ok := ActorFromContext(r.Context()); ok {
				key = "user:" + strconv.FormatInt(actor.UserID, 10)
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("%s %s - Rate limiter unavailable, letting request through: %v", r.Method, r.URL.Path, err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				logger.Warn("%s %s - Rate limit exceeded for %s", r.Method, r.URL.Path, key)
				handlers.RespondTooManyRequests(w, msgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
