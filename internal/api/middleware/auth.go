package middleware

import (
	"net/http"
	"strings"

	"github.com/ChronoCoders/flashloanbot/pkg/crypto"
)

// ControlTokenHeader - заголовок с токеном контроллера
const ControlTokenHeader = "X-Control-Token"

// ControlAuth - middleware для защиты привилегированных endpoints.
//
// Назначение:
// Аутентифицирует запросы к /api/v1/control/* по секретному токену.
// Токен сравнивается с bcrypt-хешем из конфигурации, сам секрет
// на сервере не хранится.
//
// Токен передается одним из способов:
// - заголовок X-Control-Token: <token>
// - заголовок Authorization: Bearer <token>
//
// Аутентификация здесь отвечает только на вопрос "запрос от
// оператора". Авторизацию конкретной операции выполняет движок,
// сравнивая вызывающего с текущим контроллером.
func ControlAuth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				http.Error(w, "Control endpoints disabled. Set CONTROL_TOKEN_HASH.", http.StatusForbidden)
				return
			}

			token := extractToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := crypto.VerifyToken(token, tokenHash); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	if token := r.Header.Get(ControlTokenHeader); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
