package menu

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/menuitem"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

// service is an interface for the menu service.
type service interface {
	List(ctx context.Context) []menuitem.MenuItem
	Add(ctx context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error)
	Rename(ctx context.Context, id, name string) (menuitem.MenuItem, error)
	Reprice(ctx context.Context, id string, price money.Amount) (menuitem.MenuItem, error)
	Remove(ctx context.Context, id string) error
}

type updateRequest struct {
	Name  *string       `json:"name"`
	Price *money.Amount `json:"price"`
}

// List returns the catalog.
func List(w http.ResponseWriter, r *http.Request, service service) {
	response.JSON(w, http.StatusOK, service.List(r.Context()))
}

// Add creates a catalog entry.
func Add(w http.ResponseWriter, r *http.Request, service service) {
	var item menuitem.MenuItem
	if !response.Decode(w, r, &item) {
		return
	}

	created, err := service.Add(r.Context(), item)
	if err != nil {
		response.FromError(w, err)

		return
	}

	response.JSON(w, http.StatusCreated, created)
}

// Update renames and/or reprices an entry.
func Update(w http.ResponseWriter, r *http.Request, service service) {
	id := chi.URLParam(r, "id")

	var req updateRequest
	if !response.Decode(w, r, &req) {
		return
	}
	if req.Name == nil && req.Price == nil {
		response.FromError(w, apperrors.ErrInvalidArgument)

		return
	}

	var (
		item menuitem.MenuItem
		err  error
	)
	if req.Name != nil {
		if item, err = service.Rename(r.Context(), id, *req.Name); err != nil {
			response.FromError(w, err)

			return
		}
	}
	if req.Price != nil {
		if item, err = service.Reprice(r.Context(), id, *req.Price); err != nil {
			response.FromError(w, err)

			return
		}
	}

	response.JSON(w, http.StatusOK, item)
}

// Remove deletes an entry.
func Remove(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
