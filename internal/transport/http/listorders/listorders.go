package listorders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/order"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the order service.
type service interface {
	Get(ctx context.Context, orderID string) (order.Order, error)
	OrdersOf(ctx context.Context, studentID string) []order.Order
	ListByStatus(ctx context.Context, status order.Status) []order.Order
}

// ListByStatus returns the orders in the status given by ?status=, oldest first.
func ListByStatus(w http.ResponseWriter, r *http.Request, service service) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		response.FromError(w, fmt.Errorf("%w: status query parameter is required", apperrors.ErrInvalidArgument))

		return
	}

	status, err := order.ParseStatus(raw)
	if err != nil {
		response.FromError(w, err)

		return
	}

	response.JSON(w, http.StatusOK, service.ListByStatus(r.Context(), status))
}

// ListStudentOrders returns a student's orders, newest first.
func ListStudentOrders(w http.ResponseWriter, r *http.Request, service service) {
	response.JSON(w, http.StatusOK, service.OrdersOf(r.Context(), chi.URLParam(r, "id")))
}

// Get returns one order.
func Get(w http.ResponseWriter, r *http.Request, service service) {
	o, err := service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)

		return
	}

	response.JSON(w, http.StatusOK, o)
}
