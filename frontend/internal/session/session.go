// Package session owns the signed-in state of a storefront visitor: it signs people in and out
// through the credential store, persists the session in cookies and normalizes every credential
// failure onto the user-facing error kinds.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/jwt"
	"github.com/a2z-dev/a2z/shared/logger"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/markbates/goth"
)

const (
	SnapshotCookie = "session"
	msgUnexpected  = "Something went wrong. Please try again."
)

// Credentials is the credential store as seen by the storefront.
type Credentials interface {
	SignIn(ctx context.Context, email domain.Email, password domain.Password) (domain.Session, error)
	SignUp(ctx context.Context, email domain.Email, password domain.Password, name string) (domain.Session, error)
	BeginProvider(providerName, state string) (authURL, sessionBlob string, err error)
	CompleteProvider(ctx context.Context, providerName, sessionBlob string, params goth.Params) (domain.Session, error)
	SendVerificationEmail(ctx context.Context, session domain.Session) error
	VerifyEmail(ctx context.Context, token string) error
	SendPasswordReset(ctx context.Context, email domain.Email) error
	ResetPassword(ctx context.Context, token string, newPassword domain.Password) error
}

type Context struct {
	creds         Credentials
	jwt           jwt.JwtService
	ttl           time.Duration
	secureCookies bool
}

func New(creds Credentials, jwtService jwt.JwtService, ttl time.Duration, secureCookies bool) *Context {
	return &Context{creds: creds, jwt: jwtService, ttl: ttl, secureCookies: secureCookies}
}

func (c *Context) SignIn(ctx context.Context, email domain.Email, password domain.Password) (*domain.Session, error) {
	s, err := c.creds.SignIn(ctx, email, password)
	if err != nil {
		return nil, normalize(err)
	}
	return &s, nil
}

// SignUp creates the identity and returns its session, active immediately.
func (c *Context) SignUp(ctx context.Context, email domain.Email, password domain.Password, name string) (*domain.Session, error) {
	s, err := c.creds.SignUp(ctx, email, password, name)
	if err != nil {
		return nil, normalize(err)
	}
	return &s, nil
}

// BeginProvider returns the provider's consent URL and the state blob to keep until the callback.
func (c *Context) BeginProvider(provider, state string) (authURL, sessionBlob string, err error) {
	authURL, sessionBlob, err = c.creds.BeginProvider(provider, state)
	if err != nil {
		return "", "", normalize(err)
	}
	return authURL, sessionBlob, nil
}

func (c *Context) CompleteProvider(ctx context.Context, provider, sessionBlob string, params goth.Params) (*domain.Session, error) {
	s, err := c.creds.CompleteProvider(ctx, provider, sessionBlob, params)
	if err != nil {
		return nil, normalize(err)
	}
	return &s, nil
}

// SignOut clears both session cookies. Calling it without a session is fine.
func (c *Context) SignOut(w http.ResponseWriter) {
	c.clear(w, mw.AccessTokenCookie)
	c.clear(w, SnapshotCookie)
}

// Persist issues the access token cookie and the snapshot cookie for s.
func (c *Context) Persist(w http.ResponseWriter, s *domain.Session) error {
	token, err := c.jwt.NewToken(*s)
	if err != nil {
		return normalize(err)
	}
	snapshot, err := json.Marshal(s)
	if err != nil {
		return normalize(err)
	}

	maxAge := int(c.ttl.Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     mw.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     SnapshotCookie,
		Value:    base64.RawURLEncoding.EncodeToString(snapshot),
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   c.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current returns the session the auth middleware attached to the request, or nil. The token is
// never decoded here: the middleware has already applied the blacklist to it.
func (c *Context) Current(r *http.Request) *domain.Session {
	return mw.GetSessionFromContext(r)
}

// Snapshot returns the last-known session copy. It is not authoritative and must not be used
// for access decisions.
func (c *Context) Snapshot(r *http.Request) *domain.Session {
	cookie, err := r.Cookie(SnapshotCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// SendVerificationEmail is best-effort: failures are logged and dropped.
func (c *Context) SendVerificationEmail(ctx context.Context, s *domain.Session) {
	if s == nil {
		return
	}
	if err := c.creds.SendVerificationEmail(ctx, *s); err != nil {
		logger.Log.Warn("failed to send verification email", "identity_id", s.IdentityId, "error", err)
	}
}

func (c *Context) VerifyEmail(ctx context.Context, token string) error {
	return normalize(c.creds.VerifyEmail(ctx, token))
}

// RequestPasswordReset always succeeds from the caller's point of view so that account existence
// cannot be probed.
func (c *Context) RequestPasswordReset(ctx context.Context, email domain.Email) {
	if err := c.creds.SendPasswordReset(ctx, email); err != nil {
		logger.Log.Warn("failed to send password reset", "error", err)
	}
}

func (c *Context) ResendPasswordReset(ctx context.Context, email domain.Email) {
	c.RequestPasswordReset(ctx, email)
}

func (c *Context) ResetPassword(ctx context.Context, token string, newPassword domain.Password) error {
	return normalize(c.creds.ResetPassword(ctx, token, newPassword))
}

func (c *Context) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: name == mw.AccessTokenCookie,
		Secure:   c.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// normalize maps credential store failures onto the user-facing kinds. Anything unclassified
// becomes UnknownProviderError.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	switch errors.KindOf(err) {
	case errors.InvalidCredentials, errors.EmailAlreadyInUse, errors.WeakPassword,
		errors.AccountBlocked, errors.IdentityNotFound, errors.ValidationError, errors.BackendUnavailable,
		errors.UnknownProviderError:
		return err
	case errors.NotFound:
		return errors.New(errors.IdentityNotFound, err.Error())
	}
	logger.Log.Error("unclassified credential store error", "error", err)
	return errors.New(errors.UnknownProviderError, msgUnexpected)
}
