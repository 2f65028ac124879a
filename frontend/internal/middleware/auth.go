package middleware

import (
	"net/http"

	mw "github.com/a2z-dev/a2z/shared/middleware"
)

// Auth wraps the shared auth middleware. When a request is rejected the snapshot cookie is
// dropped too, so the client stops showing a signed-in state it no longer has.
type Auth struct {
	sharedAuth     *mw.Auth
	snapshotCookie string
	secureCookies  bool
}

func NewAuth(sharedAuth *mw.Auth, snapshotCookie string, secureCookies bool) *Auth {
	return &Auth{
		sharedAuth:     sharedAuth,
		snapshotCookie: snapshotCookie,
		secureCookies:  secureCookies,
	}
}

func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.wrapWithSnapshotReset(a.sharedAuth.NeedAuth())
}

func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.wrapWithSnapshotReset(a.sharedAuth.AdminOnly())
}

// OptionalAuth populates the session when one is present; nothing is ever rejected.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return a.sharedAuth.OptionalAuth()
}

// snapshotResetWriter expires the snapshot cookie on 401/403 before the header is sent.
type snapshotResetWriter struct {
	http.ResponseWriter
	auth        *Auth
	wroteHeader bool
}

func (w *snapshotResetWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader && (statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden) {
		http.SetCookie(w.ResponseWriter, &http.Cookie{
			Name:     w.auth.snapshotCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Secure:   w.auth.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *snapshotResetWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func (a *Auth) wrapWithSnapshotReset(authMiddleware func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// only the auth layer's own responses are intercepted
			guarded := authMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r)
			}))
			guarded.ServeHTTP(&snapshotResetWriter{ResponseWriter: w, auth: a}, r)
		})
	}
}
