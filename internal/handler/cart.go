package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/service"
	"github.com/sakif/robotics-league/internal/storage"
)

// CartHandler reads and replaces the browser's storefront cart.
type CartHandler struct {
	cart    *service.CartService
	backend storage.Backend
	logger  *slog.Logger
}

// NewCartHandler creates a CartHandler.
func NewCartHandler(cart *service.CartService, backend storage.Backend, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, backend: backend, logger: logger}
}

// HTTP: GET /api/cart
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.cart.Get(r.Context(), local)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HTTP: PUT /api/cart
// REQUEST BODY: [{"id":1,"name":"...","price":10,"image":"...","quantity":2}]
func (h *CartHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	var items []model.CartItem
	if err := decodeJSON(w, r, &items); err != nil {
		writeError(w, err)
		return
	}
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	saved, err := h.cart.Replace(r.Context(), local, items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
