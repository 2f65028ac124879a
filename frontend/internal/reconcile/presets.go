package reconcile

import (
	"context"
	"strings"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/identity"
	"github.com/a2z-dev/a2z/shared/slug"
)

const (
	SellerCreateAccountPath = "/a2z/seller/create-account"
	SuperAdminPath          = "/a2z/super-admin"
)

// StoreRequest is the business half of a seller registration.
type StoreRequest struct {
	BusinessName string
	Slug         string
}

func (f *Flow) BuyerLogin(returnURL string, currentSlug domain.Slug) Params {
	return Params{
		Flow:                "buyer_login",
		DefaultRole:         domain.RoleUser,
		BannedProfileBlocks: true,
		Route:               f.buyerRoute(returnURL, currentSlug),
	}
}

// BuyerRegister is BuyerLogin for new accounts; it also sends the verification email.
func (f *Flow) BuyerRegister(returnURL string, currentSlug domain.Slug) Params {
	p := f.BuyerLogin(returnURL, currentSlug)
	p.Flow = "buyer_register"
	p.Prepare = matchingPasswords
	p.AfterSignUp = f.sessions.SendVerificationEmail
	return p
}

// BuyerProvider reconciles a federated sign-in that already produced a session.
func (f *Flow) BuyerProvider(returnURL string, currentSlug domain.Slug) Params {
	p := f.BuyerLogin(returnURL, currentSlug)
	p.Flow = "buyer_oauth"
	p.ReuseSession = true
	return p
}

func (f *Flow) SellerLogin() Params {
	return Params{
		Flow:        "seller_login",
		DefaultRole: domain.RoleSeller,
		Route:       f.sellerRoute,
	}
}

// SellerRegister validates the store, signs the seller up (or reuses the signed-in session),
// forces the seller role and creates the pending business.
func (f *Flow) SellerRegister(store StoreRequest) Params {
	name := strings.TrimSpace(store.BusinessName)
	sl := slug.Sanitize(store.Slug)
	if sl == "" {
		sl = slug.Normalize(name)
	}

	return Params{
		Flow:         "seller_register",
		DefaultRole:  domain.RoleSeller,
		ForceRole:    true,
		ReuseSession: true,
		Prepare: func(ctx context.Context, a Attempt) error {
			if a.Existing == nil {
				if err := matchingPasswords(ctx, a); err != nil {
					return err
				}
				if len(a.Password) < identity.MinPasswordLength {
					return errors.New(errors.WeakPassword, "Password should be at least 6 characters.")
				}
			}
			if name == "" {
				return errors.New(errors.ValidationError, "Business name is required.")
			}
			if err := slug.Validate(sl); err != nil {
				return err
			}
			taken, err := f.businesses.IsSlugTaken(ctx, sl)
			if err != nil {
				return err
			}
			if taken {
				return errors.New(errors.SlugTaken, "This store URL is already taken. Please choose another.")
			}
			return nil
		},
		Provision: func(ctx context.Context, s *domain.Session) error {
			_, err := f.businesses.Create(ctx, *s, name, sl)
			return err
		},
		Route: func(context.Context, *domain.Session, domain.UserProfile) (string, error) {
			return "/a2z/" + sl + "/admin", nil
		},
	}
}

// AdminLogin admits only sessions flagged admin.
func (f *Flow) AdminLogin() Params {
	return Params{
		Flow:        "admin_login",
		DefaultRole: domain.RoleAdmin,
		Authorize: func(s *domain.Session) error {
			if !s.Admin {
				return errors.New(errors.AccountBlocked, "Access denied. Only for admin")
			}
			return nil
		},
		Route: func(context.Context, *domain.Session, domain.UserProfile) (string, error) {
			return SuperAdminPath, nil
		},
	}
}

// AdminSignup registers an allow-listed operator. The caller checks the admin secret first.
func (f *Flow) AdminSignup() Params {
	p := f.AdminLogin()
	p.Flow = "admin_signup"
	p.ForceRole = true
	return p
}

func (f *Flow) buyerRoute(returnURL string, currentSlug domain.Slug) func(context.Context, *domain.Session, domain.UserProfile) (string, error) {
	return func(context.Context, *domain.Session, domain.UserProfile) (string, error) {
		if isLocalPath(returnURL) {
			return returnURL, nil
		}
		if currentSlug != "" {
			return "/a2z/" + currentSlug, nil
		}
		return "/a2z/" + f.defaultSlug, nil
	}
}

// sellerRoute sends the seller to the first store they own. Owners of several stores are not asked to choose.
func (f *Flow) sellerRoute(ctx context.Context, s *domain.Session, _ domain.UserProfile) (string, error) {
	owned, err := f.businesses.ByOwner(ctx, s.IdentityId)
	if err != nil {
		return "", err
	}
	if len(owned) == 0 {
		return SellerCreateAccountPath, nil
	}
	return "/a2z/" + owned[0].Slug + "/admin", nil
}

func matchingPasswords(_ context.Context, a Attempt) error {
	if a.ConfirmPassword != "" && a.Password != a.ConfirmPassword {
		return errors.New(errors.ValidationError, msgPasswordsDiffer)
	}
	return nil
}

// isLocalPath rejects absolute and protocol-relative URLs so a return link cannot leave the site.
func isLocalPath(u string) bool {
	return strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") && !strings.HasPrefix(u, "/\\")
}
