package handler

import (
	"fmt"
	"net/http"

	"github.com/a2z-dev/a2z/shared/api"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/a2z-dev/a2z/shared/utils"
)

const msgUseClientSDK = "Use Client SDK for now due to backend conflict"

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) BanUser(w http.ResponseWriter, r *http.Request) {
	var body api.BanUserRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	operator := mw.GetSessionFromContext(r)
	if operator == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.admin.SetUserDisabled(r.Context(), *operator, body.Uid, *body.Disabled); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	state := "Active"
	if *body.Disabled {
		state = "Banned"
	}
	utils.WriteJSON(w, http.StatusOK, api.BanUserResponse{
		Success: true,
		Message: fmt.Sprintf("User %s is now %s", body.Uid, state),
	})
}

// NotImplemented answers the business routes, which the console serves without the proxy.
func (h *Handler) NotImplemented(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusNotImplemented, api.ErrorResponse{Error: msgUseClientSDK})
}

func (h *Handler) ListBans(w http.ResponseWriter, r *http.Request) {
	bans, err := h.admin.ListBans(r.Context())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.BansResponse{Bans: bans})
}

func (h *Handler) RefreshBans(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.RefreshBans(r.Context()); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.BanUserResponse{Success: true, Message: "Blacklist cache refreshed"})
}
