package middleware

import (
	"net"
	"net/http"

	"github.com/ChronoCoders/flashloanbot/pkg/ratelimit"
)

// RateLimit - middleware для ограничения частоты запросов по клиенту.
//
// Назначение:
// Защищает API от перегрузки и bruteforce. Каждый клиентский IP
// получает собственный token bucket; исчерпанный bucket дает 429.
//
// Ключ клиента - IP из RemoteAddr без порта. Прокси-заголовки
// намеренно не учитываются: за reverse proxy лимит настраивается там.
func RateLimit(limiter *ratelimit.PerClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
