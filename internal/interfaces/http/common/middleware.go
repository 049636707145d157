package common

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/sngm3741/mess-finder/api/internal/auth"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// Authenticator builds the bearer-token middlewares.
type Authenticator struct {
	verifier TokenVerifier
	logger   logrus.FieldLogger
}

func NewAuthenticator(verifier TokenVerifier, logger logrus.FieldLogger) *Authenticator {
	return &Authenticator{verifier: verifier, logger: logger}
}

// Require は Authorization ヘッダーから JWT を検証し、認証済みユーザーをコンテキストへ詰める。
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, msg := bearerToken(r)
		if msg != "" {
			WriteMessage(a.logger, w, http.StatusUnauthorized, msg)
			return
		}
		identity, err := a.verifier.Verify(tokenString)
		if err != nil {
			WriteMessage(a.logger, w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := ContextWithUser(r.Context(), AuthenticatedUser{Principal: identity.Principal, Name: identity.Name})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional はトークンがあれば検証してコンテキストへ詰め、なければ匿名として通す。
// 無効なトークンは匿名扱いにせず 401 を返す。
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
			next.ServeHTTP(w, r)
			return
		}
		a.Require(next).ServeHTTP(w, r)
	})
}

// RequireRole は Require の後段で使い、ロールが一致しないリクエストを 403 で拒否する。
func RequireRole(logger logrus.FieldLogger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				WriteMessage(logger, w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if principal.Role() == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteMessage(logger, w, http.StatusForbidden, "you are not allowed to perform this action")
		})
	}
}

// RequestLogger はリクエストごとに 1 行の構造化ログを出力する。
func RequestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"remote":     r.RemoteAddr,
			}).Info("http request")
		})
	}
}

func bearerToken(r *http.Request) (string, string) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", "authorization header is missing"
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", "authorization header must use the Bearer scheme"
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if tokenString == "" {
		return "", "access token is empty"
	}
	return tokenString, ""
}
