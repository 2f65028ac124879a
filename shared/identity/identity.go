// Package identity is the credential store: password and OAuth sign-in, sign-up,
// email verification, password reset and the two privileged admin operations.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/jwt"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6

	verifyTTL = 24 * time.Hour
	resetTTL  = time.Hour
)

const (
	msgInvalidCredentials = "Incorrect email or password."
	msgDisabled           = "This account has been disabled by an administrator."
	msgWeakPassword       = "Password should be at least 6 characters."
	msgEmailInUse         = "The email address is already in use by another account."
	msgNoUserRecord       = "There is no user record corresponding to the provided identifier."
)

type Storage interface {
	SaveIdentity(ctx context.Context, identity domain.Identity) error
	IdentityByEmail(ctx context.Context, email domain.Email) (domain.Identity, error)
	ListIdentities(ctx context.Context, limit int) ([]domain.Identity, error)
	SetIdentityDisabled(ctx context.Context, id domain.IdentityId, disabled bool) (domain.Identity, error)
	MarkEmailVerified(ctx context.Context, id domain.IdentityId) error
	UpdatePassHash(ctx context.Context, id domain.IdentityId, passHash string) error
	TouchSignIn(ctx context.Context, id domain.IdentityId) error
}

type Email interface {
	Send(recipientEmail, subject, body string) error
	IsCorrect(email domain.Email) error
}

type Jwt interface {
	NewPurposeToken(subject, purpose string, ttl time.Duration) (string, error)
	DecodePurposeToken(jwtStr, purpose string) (string, error)
}

type Options struct {
	// PublicURL prefixes the links sent by email.
	PublicURL string
	// IsAdmin decides the session admin flag from the identity email.
	IsAdmin func(email domain.Email) bool
}

type Service struct {
	storage   Storage
	email     Email
	jwt       Jwt
	opts      Options
	providers map[string]goth.Provider
	hashCost  int
}

func New(storage Storage, email Email, jwt Jwt, opts Options, providers ...goth.Provider) *Service {
	if opts.IsAdmin == nil {
		opts.IsAdmin = func(domain.Email) bool { return false }
	}
	s := &Service{
		storage:   storage,
		email:     email,
		jwt:       jwt,
		opts:      opts,
		providers: make(map[string]goth.Provider, len(providers)),
		hashCost:  bcrypt.DefaultCost,
	}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) sessionFor(identity domain.Identity) domain.Session {
	return domain.Session{
		IdentityId:    identity.Id,
		Email:         identity.Email,
		DisplayName:   identity.DisplayName,
		EmailVerified: identity.EmailVerified,
		Admin:         s.opts.IsAdmin(identity.Email),
	}
}

func (s *Service) touch(ctx context.Context, id domain.IdentityId) {
	if err := s.storage.TouchSignIn(ctx, id); err != nil {
		logger.Log.Warn("failed to record sign-in time", "identity_id", id, "error", err)
	}
}

// SignIn checks a password. Unknown emails, wrong passwords and OAuth-only accounts all
// look the same to the caller.
func (s *Service) SignIn(ctx context.Context, email domain.Email, password domain.Password) (domain.Session, error) {
	email = normalizeEmail(email)
	invalid := errors.New(errors.InvalidCredentials, msgInvalidCredentials)

	identity, err := s.storage.IdentityByEmail(ctx, email)
	if errors.IsKind(err, errors.NotFound) {
		return domain.Session{}, invalid
	}
	if err != nil {
		return domain.Session{}, err
	}
	if identity.PassHash == "" {
		return domain.Session{}, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PassHash), []byte(password)); err != nil {
		logger.Log.Debug("password mismatch", "identity_id", identity.Id)
		return domain.Session{}, invalid
	}
	if identity.Disabled {
		return domain.Session{}, errors.New(errors.AccountBlocked, msgDisabled)
	}

	s.touch(ctx, identity.Id)
	return s.sessionFor(identity), nil
}

// SignUp creates a password identity and signs it in.
func (s *Service) SignUp(ctx context.Context, email domain.Email, password domain.Password, name string) (domain.Session, error) {
	email = normalizeEmail(email)
	if err := s.email.IsCorrect(email); err != nil {
		return domain.Session{}, err
	}
	if len(password) < MinPasswordLength {
		return domain.Session{}, errors.New(errors.WeakPassword, msgWeakPassword)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.Session{}, err
	}

	now := time.Now().UTC()
	identity := domain.Identity{
		Id:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(name),
		PassHash:     string(passHash),
		Provider:     domain.PasswordProvider,
		CreatedAt:    now,
		LastSignInAt: &now,
	}
	if err := s.storage.SaveIdentity(ctx, identity); err != nil {
		return domain.Session{}, err
	}
	logger.Log.Info("identity created", "identity_id", identity.Id, "provider", identity.Provider)
	return s.sessionFor(identity), nil
}

func (s *Service) provider(name string) (goth.Provider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, errors.New(errors.ValidationError, "Unsupported sign-in provider: "+name)
	}
	return p, nil
}

// BeginProvider starts a federated sign-in. The returned blob must be handed back to
// CompleteProvider unchanged.
func (s *Service) BeginProvider(providerName, state string) (authURL, sessionBlob string, err error) {
	p, err := s.provider(providerName)
	if err != nil {
		return "", "", err
	}
	sess, err := p.BeginAuth(state)
	if err != nil {
		return "", "", fmt.Errorf("begin %s auth: %w", providerName, err)
	}
	authURL, err = sess.GetAuthURL()
	if err != nil {
		return "", "", fmt.Errorf("build %s auth url: %w", providerName, err)
	}
	return authURL, sess.Marshal(), nil
}

// CompleteProvider finishes a federated sign-in. An identity is created on first use;
// an existing identity with the same email is signed in since the provider verified it.
func (s *Service) CompleteProvider(ctx context.Context, providerName, sessionBlob string, params goth.Params) (domain.Session, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return domain.Session{}, err
	}
	sess, err := p.UnmarshalSession(sessionBlob)
	if err != nil {
		return domain.Session{}, errors.New(errors.ValidationError, "The sign-in attempt expired. Please try again.")
	}
	if _, err := sess.Authorize(p, params); err != nil {
		logger.Log.Warn("oauth authorize failed", "provider", providerName, "error", err)
		return domain.Session{}, errors.New(errors.InvalidCredentials, "Sign-in with "+providerName+" failed.")
	}
	user, err := p.FetchUser(sess)
	if err != nil {
		return domain.Session{}, fmt.Errorf("fetch %s user: %w", providerName, err)
	}
	email := normalizeEmail(user.Email)
	if email == "" {
		return domain.Session{}, errors.New(errors.ValidationError, "The provider did not share an email address.")
	}

	identity, err := s.storage.IdentityByEmail(ctx, email)
	switch {
	case err == nil:
		if identity.Disabled {
			return domain.Session{}, errors.New(errors.AccountBlocked, msgDisabled)
		}
		s.touch(ctx, identity.Id)
		return s.sessionFor(identity), nil
	case !errors.IsKind(err, errors.NotFound):
		return domain.Session{}, err
	}

	name := user.Name
	if name == "" {
		name = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	now := time.Now().UTC()
	identity = domain.Identity{
		Id:             uuid.NewString(),
		Email:          email,
		DisplayName:    name,
		Provider:       providerName,
		ProviderUserId: user.UserID,
		EmailVerified:  true,
		CreatedAt:      now,
		LastSignInAt:   &now,
	}
	if err := s.storage.SaveIdentity(ctx, identity); err != nil {
		return domain.Session{}, err
	}
	logger.Log.Info("identity created", "identity_id", identity.Id, "provider", providerName)
	return s.sessionFor(identity), nil
}

// SendVerificationEmail mails a link that marks the identity's email as verified.
func (s *Service) SendVerificationEmail(ctx context.Context, session domain.Session) error {
	token, err := s.jwt.NewPurposeToken(session.IdentityId, jwt.PurposeVerifyEmail, verifyTTL)
	if err != nil {
		return err
	}
	link := s.opts.PublicURL + "/api/auth/verify?token=" + token
	body := fmt.Sprintf(`
		Hello,

		Follow this link to verify your email address:

		%s

		If you did not create an account, please ignore this email.
	`, link)
	return s.email.Send(session.Email, "Verify your email address", body)
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	id, err := s.jwt.DecodePurposeToken(token, jwt.PurposeVerifyEmail)
	if err != nil {
		return err
	}
	err = s.storage.MarkEmailVerified(ctx, id)
	if errors.IsKind(err, errors.NotFound) {
		return errors.New(errors.ValidationError, "The link is invalid or has expired.")
	}
	return err
}

// SendPasswordReset mails a reset link. Unknown emails are silently ignored.
func (s *Service) SendPasswordReset(ctx context.Context, email domain.Email) error {
	email = normalizeEmail(email)
	identity, err := s.storage.IdentityByEmail(ctx, email)
	if errors.IsKind(err, errors.NotFound) {
		logger.Log.Debug("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	token, err := s.jwt.NewPurposeToken(identity.Id, jwt.PurposeResetPassword, resetTTL)
	if err != nil {
		return err
	}
	link := s.opts.PublicURL + "/reset-password?token=" + token
	body := fmt.Sprintf(`
		Hello,

		Follow this link to choose a new password:

		%s

		The link expires in one hour. If you did not request this, please ignore this email.
	`, link)
	return s.email.Send(identity.Email, "Reset your password", body)
}

func (s *Service) ResetPassword(ctx context.Context, token string, newPassword domain.Password) error {
	id, err := s.jwt.DecodePurposeToken(token, jwt.PurposeResetPassword)
	if err != nil {
		return err
	}
	if len(newPassword) < MinPasswordLength {
		return errors.New(errors.WeakPassword, msgWeakPassword)
	}
	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return err
	}
	err = s.storage.UpdatePassHash(ctx, id, string(passHash))
	if errors.IsKind(err, errors.NotFound) {
		return errors.New(errors.ValidationError, "The link is invalid or has expired.")
	}
	return err
}

// ListUsers returns at most limit identities shaped for the admin console.
func (s *Service) ListUsers(ctx context.Context, limit int) ([]api.AdminUser, error) {
	identities, err := s.storage.ListIdentities(ctx, limit)
	if err != nil {
		return nil, err
	}
	users := make([]api.AdminUser, 0, len(identities))
	for _, identity := range identities {
		users = append(users, ToAdminUser(identity))
	}
	return users, nil
}

func ToAdminUser(identity domain.Identity) api.AdminUser {
	u := api.AdminUser{
		Uid:         identity.Id,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Disabled:    identity.Disabled,
		Metadata: api.UserMetadata{
			CreationTime: identity.CreatedAt.UTC().Format(http.TimeFormat),
		},
	}
	if identity.LastSignInAt != nil {
		u.Metadata.LastSignInTime = identity.LastSignInAt.UTC().Format(http.TimeFormat)
	}
	return u
}

// SetUserDisabled toggles the disabled flag. Disabled identities cannot sign in.
func (s *Service) SetUserDisabled(ctx context.Context, id domain.IdentityId, disabled bool) (domain.Identity, error) {
	identity, err := s.storage.SetIdentityDisabled(ctx, id, disabled)
	if errors.IsKind(err, errors.NotFound) {
		return domain.Identity{}, errors.New(errors.IdentityNotFound, msgNoUserRecord)
	}
	if err != nil {
		return domain.Identity{}, err
	}
	logger.Log.Info("identity disabled flag changed", "identity_id", id, "disabled", disabled)
	return identity, nil
}
