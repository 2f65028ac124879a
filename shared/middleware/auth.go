package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	jwt_internal "github.com/a2z-dev/a2z/shared/jwt"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/a2z-dev/a2z/shared/utils"
)

const AccessTokenCookie = "accessToken"

const msgBlocked = "Your account has been blocked by the administrator."

type BlacklistCache interface {
	IsBlacklisted(id domain.IdentityId) bool
}

type key int

const SessionKey key = 0

type Auth struct {
	jwtService     jwt_internal.JwtService
	blacklistCache BlacklistCache
	secureCookies  bool
}

// NewAuth builds the auth middleware. blacklistCache may be nil.
func NewAuth(jwtService jwt_internal.JwtService, blacklistCache BlacklistCache, secureCookies bool) *Auth {
	return &Auth{
		jwtService:     jwtService,
		blacklistCache: blacklistCache,
		secureCookies:  secureCookies,
	}
}

func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

// OptionalAuth attaches the session when the token is valid and lets the request through either way.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := a.extractSession(r)
			if stderrors.Is(err, errBlacklisted) {
				a.ClearCookie(w)
			}
			if session != nil {
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		return token
	}
	return ""
}

func (a *Auth) extractSession(r *http.Request) (*domain.Session, error) {
	tokenString := tokenFromRequest(r)
	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	session, ok := jwt_internal.SessionFromToken(token)
	if !ok {
		return nil, errInvalidClaims
	}

	if a.blacklistCache != nil && a.blacklistCache.IsBlacklisted(session.IdentityId) {
		return nil, errBlacklisted
	}
	return session, nil
}

var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
	errBlacklisted   = errorString("blacklisted")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// ClearCookie expires the access token cookie.
func (a *Auth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     AccessTokenCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) auth(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := a.extractSession(r)
			if err != nil {
				switch err {
				case errNoToken:
					utils.WriteErrorAndStatusCode(w, errors.New(errors.InvalidCredentials, "Please sign-in"))
				case errBlacklisted:
					a.ClearCookie(w)
					utils.WriteErrorAndStatusCode(w, errors.New(errors.AccountBlocked, msgBlocked))
				case errInvalidClaims:
					logger.Log.Error("invalid jwt claims")
					utils.WriteErrorAndStatusCode(w, errors.New(errors.InvalidCredentials, "Invalid token"))
				default:
					utils.WriteErrorAndStatusCode(w, err)
				}
				return
			}

			if adminOnly && !session.Admin {
				utils.WriteErrorAndStatusCode(w, errors.New(errors.AccountBlocked, "Access denied. Only for admin"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSessionFromContext returns the session attached by the auth middleware, or nil.
func GetSessionFromContext(r *http.Request) *domain.Session {
	session, ok := r.Context().Value(SessionKey).(*domain.Session)
	if !ok {
		return nil
	}
	return session
}
