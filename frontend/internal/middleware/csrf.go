package middleware

import (
	"context"
	"net/http"

	"github.com/a2z-dev/a2z/shared/csrf"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/a2z-dev/a2z/shared/utils"
)

const csrfFormField = "csrf_token"

type csrfContextKey string

const csrfTokenContextKey csrfContextKey = "csrf_token"

type CSRFConfig struct {
	SecureCookies bool
}

// GenerateCSRFToken makes sure every visitor holds a token cookie. The cookie is readable by
// scripts so the client can echo it in the X-CSRF-Token header.
func GenerateCSRFToken(config CSRFConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(csrf.CookieName)
			var token string

			if err != nil || cookie.Value == "" {
				token, err = csrf.GenerateToken()
				if err != nil {
					logger.Log.Error("failed to generate CSRF token", "error", err)
					utils.WriteErrorAndStatusCode(w, errors.New(errors.UnknownProviderError, "Internal server error"))
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     csrf.CookieName,
					Value:    token,
					Path:     "/",
					Secure:   config.SecureCookies,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   86400, // 24 hours
				})
			} else {
				token = cookie.Value
			}

			ctx := context.WithValue(r.Context(), csrfTokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidateCSRFToken rejects state-changing requests whose header (or form field) token does not
// match the cookie.
func ValidateCSRFToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(csrf.CookieName)
			if err != nil {
				logger.Log.Warn("CSRF token cookie missing", "path", r.URL.Path)
				utils.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "CSRF token missing"})
				return
			}

			submitted := r.Header.Get(csrf.HeaderName)
			if submitted == "" && r.Header.Get("Content-Type") == "application/x-www-form-urlencoded" {
				submitted = r.FormValue(csrfFormField)
			}

			if !csrf.ValidateToken(cookie.Value, submitted) {
				logger.Log.Warn("CSRF token validation failed", "path", r.URL.Path)
				utils.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "CSRF token invalid"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetCSRFTokenFromContext(r *http.Request) string {
	token, _ := r.Context().Value(csrfTokenContextKey).(string)
	return token
}
