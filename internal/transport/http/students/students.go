package students

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/student"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/loyaltysvc"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/response"
	"github.com/go-chi/chi/v5"
)

// accountService is an interface for the student service.
type accountService interface {
	Register(ctx context.Context, name, id, password string) (student.Student, error)
	Login(ctx context.Context, id, password string) (student.Student, bool)
	Get(ctx context.Context, id string) (student.Student, error)
	History(ctx context.Context, id string) []string
}

// ledger is an interface for the loyalty ledger.
type ledger interface {
	Rewards() (discount, freeItem loyaltysvc.Reward)
	RedeemDiscount(ctx context.Context, studentID string, pointsCost int, egpDiscount money.Amount) bool
	RedeemFreeItem(ctx context.Context, studentID string, pointsCost int, itemID string) bool
	PointsOf(ctx context.Context, studentID string) int
	WalletOf(ctx context.Context, studentID string) money.Amount
}

type registerRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// View is the public representation of a student account.
type View struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Points   int          `json:"points"`
	Wallet   money.Amount `json:"wallet"`
	OrderIDs []string     `json:"order_ids"`
}

type redemptionResponse struct {
	Redeemed bool         `json:"redeemed"`
	Points   int          `json:"points"`
	Wallet   money.Amount `json:"wallet"`
	ItemID   string       `json:"item_id,omitempty"`
}

func view(s student.Student, history []string) View {
	return View{ID: s.ID, Name: s.Name, Points: s.Points, Wallet: s.Wallet, OrderIDs: history}
}

// Register handles account creation.
func Register(w http.ResponseWriter, r *http.Request, service accountService) {
	var req registerRequest
	if !response.Decode(w, r, &req) {
		return
	}

	s, err := service.Register(r.Context(), req.Name, req.ID, req.Password)
	if err != nil {
		response.FromError(w, err)

		return
	}

	response.JSON(w, http.StatusCreated, view(s, []string{}))
}

// Login checks a student's credentials.
func Login(w http.ResponseWriter, r *http.Request, service accountService) {
	var req loginRequest
	if !response.Decode(w, r, &req) {
		return
	}

	s, ok := service.Login(r.Context(), req.ID, req.Password)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "invalid id or password")

		return
	}

	response.JSON(w, http.StatusOK, view(s, service.History(r.Context(), s.ID)))
}

// Get returns a student's balances and order history.
func Get(w http.ResponseWriter, r *http.Request, service accountService) {
	id := chi.URLParam(r, "id")

	s, err := service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)

		return
	}

	response.JSON(w, http.StatusOK, view(s, service.History(r.Context(), id)))
}

// Rewards lists the redeemable rewards.
func Rewards(w http.ResponseWriter, _ *http.Request, l ledger) {
	discount, freeItem := l.Rewards()

	response.JSON(w, http.StatusOK, map[string]loyaltysvc.Reward{
		"discount":  discount,
		"free_item": freeItem,
	})
}

// RedeemDiscount exchanges points for wallet credit.
func RedeemDiscount(w http.ResponseWriter, r *http.Request, l ledger) {
	id := chi.URLParam(r, "id")
	reward, _ := l.Rewards()

	ok := l.RedeemDiscount(r.Context(), id, reward.PointsCost, reward.Discount)
	writeRedemption(w, r, l, id, ok, "")
}

// RedeemFreeItem exchanges points for the free item reward.
func RedeemFreeItem(w http.ResponseWriter, r *http.Request, l ledger) {
	id := chi.URLParam(r, "id")
	_, reward := l.Rewards()

	ok := l.RedeemFreeItem(r.Context(), id, reward.PointsCost, reward.ItemID)
	writeRedemption(w, r, l, id, ok, reward.ItemID)
}

func writeRedemption(w http.ResponseWriter, r *http.Request, l ledger, id string, ok bool, itemID string) {
	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
		itemID = ""
	}

	response.JSON(w, status, redemptionResponse{
		Redeemed: ok,
		Points:   l.PointsOf(r.Context(), id),
		Wallet:   l.WalletOf(r.Context(), id),
		ItemID:   itemID,
	})
}
