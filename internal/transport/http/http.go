package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/service/services/loyaltysvc"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/menusvc"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/ordersvc"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/studentsvc"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/createorder"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/listorders"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/menu"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/orderstatus"
	"github.com/corray333/backend-labs/cafeteria/internal/transport/http/students"
	"github.com/corray333/backend-labs/cafeteria/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/cafeteria/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type HTTPTransport struct {
	server *http.Server
	router *chi.Mux

	studentSvc *studentsvc.StudentService
	menuSvc    *menusvc.MenuService
	orderSvc   *ordersvc.OrderService
	ledger     *loyaltysvc.Ledger
}

func NewHTTPTransport(
	studentSvc *studentsvc.StudentService,
	menuSvc *menusvc.MenuService,
	orderSvc *ordersvc.OrderService,
	ledger *loyaltysvc.Ledger,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:     server,
		router:     router,
		studentSvc: studentSvc,
		menuSvc:    menuSvc,
		orderSvc:   orderSvc,
		ledger:     ledger,
	}
}

// Handler returns the router, for tests and embedding.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// Run serves until Shutdown is called. A graceful stop is not an error.
func (h *HTTPTransport) Run() error {
	slog.Info("HTTP server listening", "addr", h.server.Addr)
	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Route("/students", func(r chi.Router) {
			r.Post("/", h.register)
			r.Post("/login", h.login)
			r.Get("/{id}", h.getStudent)
			r.Get("/{id}/orders", h.studentOrders)
			r.Post("/{id}/redemptions/discount", h.redeemDiscount)
			r.Post("/{id}/redemptions/free-item", h.redeemFreeItem)
		})

		r.Get("/rewards", h.rewards)

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", h.listMenu)
			r.Post("/", h.addMenuItem)
			r.Patch("/{id}", h.updateMenuItem)
			r.Delete("/{id}", h.removeMenuItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.placeOrder)
			r.Get("/", h.listOrders)
			r.Get("/{id}", h.getOrder)
			r.Patch("/{id}/status", h.updateOrderStatus)
			r.Delete("/{id}", h.removeOrder)
		})
	})
}

func (h *HTTPTransport) register(w http.ResponseWriter, r *http.Request) {
	students.Register(w, r, h.studentSvc)
}

func (h *HTTPTransport) login(w http.ResponseWriter, r *http.Request) {
	students.Login(w, r, h.studentSvc)
}

func (h *HTTPTransport) getStudent(w http.ResponseWriter, r *http.Request) {
	students.Get(w, r, h.studentSvc)
}

func (h *HTTPTransport) studentOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListStudentOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) redeemDiscount(w http.ResponseWriter, r *http.Request) {
	students.RedeemDiscount(w, r, h.ledger)
}

func (h *HTTPTransport) redeemFreeItem(w http.ResponseWriter, r *http.Request) {
	students.RedeemFreeItem(w, r, h.ledger)
}

func (h *HTTPTransport) rewards(w http.ResponseWriter, r *http.Request) {
	students.Rewards(w, r, h.ledger)
}

func (h *HTTPTransport) listMenu(w http.ResponseWriter, r *http.Request) {
	menu.List(w, r, h.menuSvc)
}

func (h *HTTPTransport) addMenuItem(w http.ResponseWriter, r *http.Request) {
	menu.Add(w, r, h.menuSvc)
}

func (h *HTTPTransport) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	menu.Update(w, r, h.menuSvc)
}

func (h *HTTPTransport) removeMenuItem(w http.ResponseWriter, r *http.Request) {
	menu.Remove(w, r, h.menuSvc)
}

func (h *HTTPTransport) placeOrder(w http.ResponseWriter, r *http.Request) {
	createorder.PlaceOrder(w, r, h.menuSvc, h.orderSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListByStatus(w, r, h.orderSvc)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	listorders.Get(w, r, h.orderSvc)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderstatus.Update(w, r, h.orderSvc)
}

func (h *HTTPTransport) removeOrder(w http.ResponseWriter, r *http.Request) {
	orderstatus.Remove(w, r, h.orderSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	if len(allowedMethods) == 0 {
		allowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	}
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
