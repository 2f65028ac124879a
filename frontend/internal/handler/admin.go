package handler

import (
	"crypto/subtle"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/a2z-dev/a2z/frontend/internal/apiclient"
	"github.com/a2z-dev/a2z/frontend/internal/console"
	"github.com/a2z-dev/a2z/frontend/internal/reconcile"
	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/errors"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/a2z-dev/a2z/shared/utils"
)

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	out := h.flow.Run(r.Context(), w, h.flow.AdminLogin(), reconcile.Attempt{Email: body.Email, Password: body.Password})
	h.finish(w, out)
}

// AdminSignup registers an operator. Both the shared admin secret and an allow-listed email are required.
func (h *Handler) AdminSignup(w http.ResponseWriter, r *http.Request) {
	var body api.AdminSignupRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.Secret), []byte(h.cfg.Private.AdminSecret)) != 1 {
		utils.WriteErrorAndStatusCode(w, errors.New(errors.AccountBlocked, "Invalid admin secret."))
		return
	}
	if !h.cfg.IsAdminEmail(body.Email) {
		utils.WriteErrorAndStatusCode(w, errors.New(errors.AccountBlocked, "This email is not allowed to register as admin."))
		return
	}
	out := h.flow.Run(r.Context(), w, h.flow.AdminSignup(), reconcile.Attempt{
		Email:    body.Email,
		Password: body.Password,
		Name:     "Super Admin",
		Register: true,
	})
	h.finish(w, out)
}

// operatorConsole returns the caller's console and a backend bound to the caller's credentials.
func (h *Handler) operatorConsole(r *http.Request) (*console.Console, console.Backend) {
	operator := mw.GetSessionFromContext(r)
	creds := apiclient.Credentials{}
	if c, err := r.Cookie(mw.AccessTokenCookie); err == nil && c.Value != "" {
		creds.Token = c.Value
	} else if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		creds.Token = token
	}
	return h.consoles.For(*operator), h.services.For(creds)
}

func (h *Handler) ConsoleLoad(w http.ResponseWriter, r *http.Request) {
	c, backend := h.operatorConsole(r)
	if err := c.Load(r.Context(), backend, r.URL.Query().Get("tab")); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c.View())
}

func (h *Handler) ConsoleStage(w http.ResponseWriter, r *http.Request) {
	var body api.StageRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	c, _ := h.operatorConsole(r)
	if _, err := c.Stage(body.TargetType, body.TargetId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c.View())
}

func (h *Handler) ConsoleCancel(w http.ResponseWriter, r *http.Request) {
	c, _ := h.operatorConsole(r)
	c.Cancel()
	utils.WriteJSON(w, http.StatusOK, c.View())
}

// ConsoleConfirm runs the staged action. A rolled-back action is reported with the backend's status
// and the restored view.
func (h *Handler) ConsoleConfirm(w http.ResponseWriter, r *http.Request) {
	c, backend := h.operatorConsole(r)
	res, err := c.Confirm(r.Context(), backend)
	if err != nil && !res.Applied && res.Action.TargetId == "" {
		// nothing was executed
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	resp := api.ConfirmResponse{Applied: res.Applied, View: c.View()}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = statusOf(err)
	}
	utils.WriteJSON(w, status, resp)
}

func statusOf(err error) int {
	var e *errors.ErrorWithStatusCode
	if stderrors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}
