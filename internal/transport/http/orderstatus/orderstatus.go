package orderstatus

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/order"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the order service.
type service interface {
	UpdateStatus(ctx context.Context, orderID string, status order.Status) error
	RemoveOrder(ctx context.Context, orderID string) error
}

type updateRequest struct {
	Status string `json:"status"`
}

// Update moves an order to the requested status.
func Update(w http.ResponseWriter, r *http.Request, service service) {
	var req updateRequest
	if !response.Decode(w, r, &req) {
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		response.FromError(w, err)

		return
	}

	if err := service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		response.FromError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove deletes a collected order.
func Remove(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.RemoveOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
