// Package reconcile runs every login and registration attempt through one procedure:
// credentials, profile, ban check, then routing.
package reconcile

import (
	"context"
	"net/http"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/a2z-dev/a2z/shared/middleware/metrics"
)

type State string

const (
	Submitted          State = "Submitted"
	CredentialChecked  State = "CredentialChecked"
	AutoLoginAttempted State = "AutoLoginAttempted"
	ProfileReconciled  State = "ProfileReconciled"
	BanChecked         State = "BanChecked"
	Routed             State = "Routed"
	Failed             State = "Failed"
)

const (
	MsgBlocked         = "Your account has been blocked by the administrator."
	MsgEmailMismatch   = "An account with this email already exists, but the password provided was incorrect. Please login normally."
	msgPasswordsDiffer = "Passwords do not match."
)

type Sessions interface {
	SignIn(ctx context.Context, email domain.Email, password domain.Password) (*domain.Session, error)
	SignUp(ctx context.Context, email domain.Email, password domain.Password, name string) (*domain.Session, error)
	SignOut(w http.ResponseWriter)
	SendVerificationEmail(ctx context.Context, s *domain.Session)
}

type Directory interface {
	EnsureProfile(ctx context.Context, session domain.Session, defaultRole domain.Role) (domain.UserProfile, error)
	AssignRole(ctx context.Context, session domain.Session, role domain.Role) (domain.UserProfile, error)
}

type Moderation interface {
	IsBanned(ctx context.Context, id domain.IdentityId) bool
}

type Businesses interface {
	IsSlugTaken(ctx context.Context, sl domain.Slug) (bool, error)
	Create(ctx context.Context, owner domain.Session, name string, sl domain.Slug) (domain.Business, error)
	ByOwner(ctx context.Context, ownerId domain.IdentityId) ([]domain.Business, error)
}

// Attempt is what the visitor submitted.
type Attempt struct {
	Email           domain.Email
	Password        domain.Password
	ConfirmPassword domain.Password
	Name            string
	Register        bool
	// Existing is the already signed-in session, if any. Flows that allow it skip the credential step.
	Existing *domain.Session
}

// Params turn the single procedure into a concrete login or registration flow.
type Params struct {
	Flow        string
	DefaultRole domain.Role
	// ForceRole overwrites the stored role with DefaultRole through a merge write.
	ForceRole bool
	// BannedProfileBlocks treats a profile with status banned like a ban record.
	BannedProfileBlocks bool
	// ReuseSession lets an already signed-in visitor skip the credential step.
	ReuseSession bool
	Prepare      func(ctx context.Context, a Attempt) error
	Authorize    func(s *domain.Session) error
	Provision    func(ctx context.Context, s *domain.Session) error
	Route        func(ctx context.Context, s *domain.Session, p domain.UserProfile) (string, error)
	AfterSignUp  func(ctx context.Context, s *domain.Session)
}

type Outcome struct {
	Session  *domain.Session
	Profile  domain.UserProfile
	Redirect string
	States   []State
	Err      error
}

func (o *Outcome) enter(s State) { o.States = append(o.States, s) }

func (o *Outcome) Last() State {
	if len(o.States) == 0 {
		return ""
	}
	return o.States[len(o.States)-1]
}

type Flow struct {
	sessions    Sessions
	directory   Directory
	moderation  Moderation
	businesses  Businesses
	defaultSlug domain.Slug
}

func New(sessions Sessions, directory Directory, moderation Moderation, businesses Businesses, defaultSlug domain.Slug) *Flow {
	return &Flow{
		sessions:    sessions,
		directory:   directory,
		moderation:  moderation,
		businesses:  businesses,
		defaultSlug: defaultSlug,
	}
}

// Run drives one attempt to Routed or Failed. A session is only returned on success;
// the caller persists it.
func (f *Flow) Run(ctx context.Context, w http.ResponseWriter, p Params, a Attempt) Outcome {
	out := Outcome{}
	out.enter(Submitted)

	fail := func(err error) Outcome {
		out.enter(Failed)
		out.Err = err
		out.Session = nil
		metrics.AuthAttempt(p.Flow, resultOf(err))
		logger.Log.Info("auth attempt failed", "flow", p.Flow, "states", out.States, "error", err)
		return out
	}

	if p.Prepare != nil {
		if err := p.Prepare(ctx, a); err != nil {
			return fail(err)
		}
	}

	session, err := f.credentials(ctx, p, a, &out)
	if err != nil {
		if errors.IsKind(err, errors.AccountBlocked) {
			f.sessions.SignOut(w)
			return fail(errors.New(errors.AccountBlocked, MsgBlocked))
		}
		return fail(err)
	}
	if p.Authorize != nil {
		if err := p.Authorize(session); err != nil {
			f.sessions.SignOut(w)
			return fail(err)
		}
	}

	profile, err := f.reconcileProfile(ctx, p, session)
	if err != nil {
		return fail(err)
	}
	out.Profile = profile
	out.enter(ProfileReconciled)

	if f.moderation.IsBanned(ctx, session.IdentityId) ||
		(p.BannedProfileBlocks && profile.Status == domain.UserBanned) {
		f.sessions.SignOut(w)
		return fail(errors.New(errors.AccountBlocked, MsgBlocked))
	}
	out.enter(BanChecked)

	if p.Provision != nil {
		if err := p.Provision(ctx, session); err != nil {
			return fail(err)
		}
	}

	redirect := "/"
	if p.Route != nil {
		if redirect, err = p.Route(ctx, session, profile); err != nil {
			return fail(err)
		}
	}
	out.Session = session
	out.Redirect = redirect
	out.enter(Routed)
	metrics.AuthAttempt(p.Flow, "success")
	return out
}

// credentials covers Submitted -> CredentialChecked, including the auto-login branch taken when
// a registration hits an existing email.
func (f *Flow) credentials(ctx context.Context, p Params, a Attempt, out *Outcome) (*domain.Session, error) {
	if p.ReuseSession && a.Existing != nil {
		out.enter(CredentialChecked)
		return a.Existing, nil
	}
	if !a.Register {
		s, err := f.sessions.SignIn(ctx, a.Email, a.Password)
		if err != nil {
			return nil, err
		}
		out.enter(CredentialChecked)
		return s, nil
	}

	s, err := f.sessions.SignUp(ctx, a.Email, a.Password, a.Name)
	if err == nil {
		out.enter(CredentialChecked)
		if p.AfterSignUp != nil {
			p.AfterSignUp(ctx, s)
		}
		return s, nil
	}
	if !errors.IsKind(err, errors.EmailAlreadyInUse) {
		return nil, err
	}

	out.enter(AutoLoginAttempted)
	s, err = f.sessions.SignIn(ctx, a.Email, a.Password)
	if errors.IsKind(err, errors.InvalidCredentials) {
		return nil, errors.New(errors.EmailAlreadyInUse, MsgEmailMismatch)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (f *Flow) reconcileProfile(ctx context.Context, p Params, s *domain.Session) (domain.UserProfile, error) {
	if p.ForceRole {
		return f.directory.AssignRole(ctx, *s, p.DefaultRole)
	}
	profile, err := f.directory.EnsureProfile(ctx, *s, p.DefaultRole)
	if err != nil {
		// profile read failures do not block the visitor
		logger.Log.Warn("profile reconcile failed", "identity_id", s.IdentityId, "error", err)
		return domain.UserProfile{Id: s.IdentityId, Email: s.Email, Role: p.DefaultRole, Status: domain.UserActive}, nil
	}
	return profile, nil
}

func resultOf(err error) string {
	switch errors.KindOf(err) {
	case errors.AccountBlocked:
		return "blocked"
	case errors.InvalidCredentials, errors.EmailAlreadyInUse:
		return "rejected"
	case errors.ValidationError, errors.WeakPassword, errors.SlugTaken:
		return "invalid"
	}
	return "error"
}
