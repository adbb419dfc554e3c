package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/render"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/harmonyeco/gec-subscriptions/internal/http/response"
)

const visitorTTL = 3 * time.Minute

// RateLimitMiddleware ограничивает частоту запросов с одного IP:
// limit запросов в секунду с запасом burst. Неактивные адреса забываются через visitorTTL.
func RateLimitMiddleware(log *slog.Logger, limit float64, burst int) func(http.Handler) http.Handler {
	visitors := gocache.New(visitorTTL, time.Minute)

	limiterFor := func(ip string) *rate.Limiter {
		if v, ok := visitors.Get(ip); ok {
			l := v.(*rate.Limiter)
			visitors.SetDefault(ip, l)
			return l
		}
		l := rate.NewLimiter(rate.Limit(limit), burst)
		// при гонке побеждает первый добавленный лимитер
		if err := visitors.Add(ip, l, gocache.DefaultExpiration); err != nil {
			if v, ok := visitors.Get(ip); ok {
				return v.(*rate.Limiter)
			}
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiterFor(ip).Allow() {
				log.Warn("too many requests", slog.String("ip", ip))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
