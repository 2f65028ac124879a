package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/a2z-dev/a2z/frontend/internal/reconcile"
	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/csrf"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/a2z-dev/a2z/shared/utils"
)

const (
	oauthProvider      = "google"
	oauthStateCookie   = "oauth_state"
	oauthSessionCookie = "oauth_session"
	oauthReturnCookie  = "oauth_return"
	oauthCookieTTL     = 10 * time.Minute

	msgResetSent = "If an account exists for this email, a password reset link has been sent."
)

// finish persists a successful outcome or writes its error.
func (h *Handler) finish(w http.ResponseWriter, out reconcile.Outcome) {
	if out.Err != nil {
		utils.WriteErrorAndStatusCode(w, out.Err)
		return
	}
	if err := h.sessions.Persist(w, out.Session); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.AuthResponse{Session: out.Session, Redirect: out.Redirect})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	out := h.flow.Run(r.Context(), w, h.flow.BuyerLogin(body.ReturnURL, body.Store),
		reconcile.Attempt{Email: body.Email, Password: body.Password})
	h.finish(w, out)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	out := h.flow.Run(r.Context(), w, h.flow.BuyerRegister(body.ReturnURL, body.Store), reconcile.Attempt{
		Email:           body.Email,
		Password:        body.Password,
		ConfirmPassword: body.ConfirmPassword,
		Name:            body.Name,
		Register:        true,
	})
	h.finish(w, out)
}

// BeginGoogle redirects to the provider. The state and provider session live in short-lived cookies
// until the callback.
func (h *Handler) BeginGoogle(w http.ResponseWriter, r *http.Request) {
	state, err := csrf.GenerateToken()
	if err != nil {
		logger.Log.Error("failed to generate oauth state", "error", err)
		utils.WriteErrorAndStatusCode(w, errors.New(errors.UnknownProviderError, "Could not start sign-in."))
		return
	}
	authURL, blob, err := h.sessions.BeginProvider(oauthProvider, state)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	back := url.Values{"returnUrl": {r.URL.Query().Get("returnUrl")}, "store": {r.URL.Query().Get("store")}}
	h.setTempCookie(w, oauthStateCookie, state)
	h.setTempCookie(w, oauthSessionCookie, blob)
	h.setTempCookie(w, oauthReturnCookie, back.Encode())
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleCallback completes the provider sign-in and reconciles it like a buyer login.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, stateErr := r.Cookie(oauthStateCookie)
	blobCookie, blobErr := r.Cookie(oauthSessionCookie)
	back := url.Values{}
	if c, err := r.Cookie(oauthReturnCookie); err == nil {
		back, _ = url.ParseQuery(c.Value)
	}
	// the temporary cookies are single use
	for _, name := range []string{oauthStateCookie, oauthSessionCookie, oauthReturnCookie} {
		h.setTempCookie(w, name, "")
	}

	if stateErr != nil || blobErr != nil || !csrf.ValidateToken(stateCookie.Value, r.URL.Query().Get("state")) {
		h.loginRedirect(w, r, "Sign-in expired. Please try again.")
		return
	}

	s, err := h.sessions.CompleteProvider(r.Context(), oauthProvider, blobCookie.Value, r.URL.Query())
	if err != nil {
		h.loginRedirect(w, r, err.Error())
		return
	}
	out := h.flow.Run(r.Context(), w, h.flow.BuyerProvider(back.Get("returnUrl"), back.Get("store")),
		reconcile.Attempt{Existing: s})
	if out.Err != nil {
		h.loginRedirect(w, r, out.Err.Error())
		return
	}
	if err := h.sessions.Persist(w, out.Session); err != nil {
		h.loginRedirect(w, r, err.Error())
		return
	}
	http.Redirect(w, r, out.Redirect, http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(w)
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Signed out."})
}

// Session returns the authoritative session, falling back to the snapshot only to tell the client
// that its cached copy is stale.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	current := h.sessions.Current(r)
	if current == nil && h.sessions.Snapshot(r) != nil {
		h.sessions.SignOut(w)
	}
	utils.WriteJSON(w, http.StatusOK, api.AuthResponse{Session: current})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body api.ForgotPasswordRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	h.sessions.RequestPasswordReset(r.Context(), body.Email)
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: msgResetSent, BackLink: loginPathFor(body.Role)})
}

func (h *Handler) ResendReset(w http.ResponseWriter, r *http.Request) {
	var body api.ForgotPasswordRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	h.sessions.ResendPasswordReset(r.Context(), body.Email)
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: msgResetSent, BackLink: loginPathFor(body.Role)})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body api.ResetPasswordRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if err := h.sessions.ResetPassword(r.Context(), body.Token, body.Password); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Your password has been reset. Please sign in."})
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.WriteErrorAndStatusCode(w, errors.New(errors.ValidationError, "Verification token is missing."))
		return
	}
	if err := h.sessions.VerifyEmail(r.Context(), token); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Your email has been verified."})
}

func (h *Handler) setTempCookie(w http.ResponseWriter, name, value string) {
	maxAge := int(oauthCookieTTL.Seconds())
	if value == "" {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/api/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) loginRedirect(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/a2z/login?error="+url.QueryEscape(msg), http.StatusFound)
}

// loginPathFor picks the back link of the reset screens by role.
func loginPathFor(role string) string {
	switch role {
	case "seller":
		return "/a2z/seller/login"
	case "admin":
		return reconcile.SuperAdminPath + "/login"
	}
	return "/a2z/login"
}
