package handler

import (
	"net/http"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/a2z-dev/a2z/shared/utils"
	"github.com/go-chi/chi/v5"
)

// Store returns the public record of a store. Suspended stores are hidden from buyers.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	b, err := h.stores.BySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if b.Status == domain.BusinessSuspended {
		utils.WriteErrorAndStatusCode(w, errors.New(errors.AccountBlocked, "This store is currently unavailable."))
		return
	}
	utils.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var body api.CreateOrderRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	buyer := mw.GetSessionFromContext(r)
	o, err := h.orders.Create(r.Context(), *buyer, chi.URLParam(r, "slug"), body.Items)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	buyer := mw.GetSessionFromContext(r)
	list, err := h.orders.ListByUser(r.Context(), buyer.IdentityId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.OrdersResponse{Orders: list})
}

func (h *Handler) Order(w http.ResponseWriter, r *http.Request) {
	buyer := mw.GetSessionFromContext(r)
	o, err := h.orders.Get(r.Context(), buyer.IdentityId, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}
