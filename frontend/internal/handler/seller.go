package handler

import (
	"net/http"

	"github.com/a2z-dev/a2z/frontend/internal/reconcile"
	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/slug"
	"github.com/a2z-dev/a2z/shared/utils"
)

func (h *Handler) SellerLogin(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	out := h.flow.Run(r.Context(), w, h.flow.SellerLogin(), reconcile.Attempt{Email: body.Email, Password: body.Password})
	h.finish(w, out)
}

// SellerRegister opens a store. A visitor who is already signed in only supplies the store fields.
func (h *Handler) SellerRegister(w http.ResponseWriter, r *http.Request) {
	var body api.SellerRegisterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	params := h.flow.SellerRegister(reconcile.StoreRequest{BusinessName: body.BusinessName, Slug: body.Slug})
	out := h.flow.Run(r.Context(), w, params, reconcile.Attempt{
		Email:           body.Email,
		Password:        body.Password,
		ConfirmPassword: body.ConfirmPassword,
		Name:            body.OwnerName,
		Register:        true,
		Existing:        h.sessions.Current(r),
	})
	h.finish(w, out)
}

// SuggestSlug derives the default store URL from a business name.
func (h *Handler) SuggestSlug(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.SlugResponse{Slug: slug.Normalize(r.URL.Query().Get("name"))})
}
