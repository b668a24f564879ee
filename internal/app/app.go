package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/rabbitmq"
	historyrepo "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/history/flatfile"
	menurepo "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/menuitem/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/notification/lognotifier"
	rabbitnotifier "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/notification/rabbitmq"
	orderrepo "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/order/flatfile"
	outboxrepo "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/outbox/flatfile"
	studentrepo "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/student/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/otel"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/loyaltysvc"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/menusvc"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/ordersvc"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/studentsvc"
	grpctransport "github.com/corray333/backend-labs/cafeteria/internal/transport/grpc"
	httptransport "github.com/corray333/backend-labs/cafeteria/internal/transport/http"
	outboxworker "github.com/corray333/backend-labs/cafeteria/internal/worker/outbox"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// App represents the application.
type App struct {
	otel           *otel.OtelController
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	rabbitmqClient *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
}

// loader is a table that reads its file at startup.
type loader interface {
	Load() error
}

// MustNewApp loads every table and wires the services and transports.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	client := flatfile.MustNewClient(viper.GetString("storage.dir"))

	studentRepo := studentrepo.NewStudentRepository(client)
	menuRepo := menurepo.NewMenuItemRepository(client)
	orderRepo := orderrepo.NewOrderRepository(client,
		orderrepo.WithLinePersistence(viper.GetBool("storage.orders.persist_lines")),
	)
	historyRepo := historyrepo.NewHistoryRepository(client)
	outboxRepo := outboxrepo.NewOutboxRepository(client)

	for _, t := range []loader{studentRepo, menuRepo, orderRepo, historyRepo, outboxRepo} {
		if err := t.Load(); err != nil {
			panic(fmt.Sprintf("failed to load table: %v", err))
		}
	}

	calculator, err := calculatorFromConfig()
	if err != nil {
		panic(err)
	}
	discount, freeItem, err := rewardsFromConfig()
	if err != nil {
		panic(err)
	}
	seed, err := seedCatalogFromConfig()
	if err != nil {
		panic(err)
	}

	ledger := loyaltysvc.MustNewLedger(
		loyaltysvc.WithStudentRepository(studentRepo),
		loyaltysvc.WithCalculator(calculator),
		loyaltysvc.WithRewards(discount, freeItem),
	)

	studentSvc := studentsvc.MustNewStudentService(
		studentsvc.WithStudentRepository(studentRepo),
		studentsvc.WithHistoryRepository(historyRepo),
	)

	menuSvc := menusvc.MustNewMenuService(
		menusvc.WithMenuRepository(menuRepo),
		menusvc.WithSeedCatalog(seed),
	)
	if viper.GetBool("menu.seed_on_start") {
		if _, err := menuSvc.Seed(context.Background()); err != nil {
			panic(err)
		}
	}

	a := &App{otel: otelController}
	notifier := a.mustNewNotifier(outboxRepo)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithOrderRepository(orderRepo),
		ordersvc.WithStudentRepository(studentRepo),
		ordersvc.WithHistoryRepository(historyRepo),
		ordersvc.WithLedger(ledger),
		ordersvc.WithNotifier(notifier),
		ordersvc.WithStrictTransitions(viper.GetBool("orders.strict_transitions")),
	)

	a.httpTransport = httptransport.NewHTTPTransport(studentSvc, menuSvc, orderSvc, ledger)
	a.httpTransport.RegisterRoutes()

	a.grpcTransport = grpctransport.MustNewGRPCTransport()
	a.grpcTransport.MarkServing()

	slog.Info("Tables loaded",
		"students", studentRepo.Len(),
		"menu_items", menuRepo.Len(),
		"orders", orderRepo.Len(),
		"outbox", outboxRepo.Len(),
	)

	return a
}

// mustNewNotifier builds the notifier selected by notifications.driver.
// The rabbitmq driver also starts the outbox worker on Run.
func (a *App) mustNewNotifier(outboxRepo *outboxrepo.OutboxRepository) ordersvc.Notifier {
	switch driver := viper.GetString("notifications.driver"); driver {
	case "", "log":
		return lognotifier.NewNotifier(slog.Default())
	case "rabbitmq":
		a.rabbitmqClient = rabbitmq.MustNewClient()

		queue := viper.GetString("rabbitmq.notifications.queue")
		if _, err := a.rabbitmqClient.DeclareQueue(rabbitmq.DeclareQueueConfig{
			Name:    queue,
			Durable: true,
		}); err != nil {
			panic(fmt.Sprintf("failed to declare queue %s: %v", queue, err))
		}

		a.outboxWorker = outboxworker.NewWorker(outboxRepo, a.rabbitmqClient)

		return rabbitnotifier.NewNotifier(a.rabbitmqClient, queue,
			rabbitnotifier.WithOutbox(
				outboxRepo,
				viper.GetInt("rabbitmq.outbox.max_retries"),
				time.Duration(viper.GetInt("rabbitmq.outbox.retry_interval_seconds"))*time.Second,
			),
		)
	default:
		panic(fmt.Sprintf("unknown notifications.driver %q", driver))
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpTransport.Run(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := a.grpcTransport.Run(); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}

		return nil
	})

	if a.outboxWorker != nil {
		g.Go(func() error {
			a.outboxWorker.Start(gCtx)

			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("Shutdown signal received")
		a.shutdown()

		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Application stopped with error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

func (a *App) shutdown() {
	timeout := time.Duration(viper.GetInt("server.http.shutdown_timeout_seconds")) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	if a.outboxWorker != nil {
		a.outboxWorker.Stop()
	}

	if a.rabbitmqClient != nil {
		if err := a.rabbitmqClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed gracefully")
		}
	}

	if err := a.otel.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}
}
