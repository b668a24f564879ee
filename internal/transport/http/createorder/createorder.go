package createorder

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/order"
	"github.com/corray333/backend-labs/cafeteria/internal/service/payment"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/menusvc"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/ordersvc"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/response"
)

// cartBuilder is an interface for the menu service.
type cartBuilder interface {
	BuildCart(ctx context.Context, requests []menusvc.CartRequest) ([]order.Line, error)
}

// service is an interface for the order service.
type service interface {
	PlaceOrder(ctx context.Context, studentID string, cart []order.Line, pay ordersvc.Authorizer) (order.Order, error)
}

// Request is the body of a place order call.
type Request struct {
	StudentID     string                `json:"student_id"`
	PaymentMethod string                `json:"payment_method"`
	Items         []menusvc.CartRequest `json:"items"`
}

// PlaceOrder snapshots the requested items and places the order.
func PlaceOrder(w http.ResponseWriter, r *http.Request, menu cartBuilder, service service) {
	var req Request
	if !response.Decode(w, r, &req) {
		return
	}

	pay, err := payment.ForMethod(req.PaymentMethod)
	if err != nil {
		response.FromError(w, err)

		return
	}

	cart, err := menu.BuildCart(r.Context(), req.Items)
	if err != nil {
		response.FromError(w, err)

		return
	}

	o, err := service.PlaceOrder(r.Context(), req.StudentID, cart, pay)
	if err != nil {
		response.FromError(w, err)

		return
	}

	response.JSON(w, http.StatusCreated, o)
}
