package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/corray333/backend-labs/cafeteria/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CAFETERIA_STORAGE_DIR.
const EnvPrefix = "CAFETERIA"

func MustInit() {
	envErr := godotenv.Load("./.env")

	SetDefaults()
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/cafeteria")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer())
	viper.AutomaticEnv()

	var notFound viper.ConfigFileNotFoundError
	cfgErr := viper.ReadInConfig()
	if cfgErr != nil && !errors.As(cfgErr, &notFound) {
		panic("error while reading config file: " + cfgErr.Error())
	}

	SetupLogger()

	if envErr != nil {
		slog.Warn("No .env file loaded", "error", envErr)
	}
	if cfgErr != nil {
		slog.Warn("No config file found, using defaults")
	} else {
		slog.Info("Config loaded", "file", viper.ConfigFileUsed())
	}
}

// SetDefaults registers the default value of every setting.
func SetDefaults() {
	viper.SetDefault("storage.dir", "./data")
	viper.SetDefault("storage.orders.persist_lines", true)

	viper.SetDefault("menu.seed_on_start", true)

	viper.SetDefault("loyalty.calculator", "basic")
	viper.SetDefault("loyalty.egp_per_point", 10)
	viper.SetDefault("loyalty.tiered.threshold", "200")
	viper.SetDefault("loyalty.tiered.egp_per_point", 5)
	viper.SetDefault("loyalty.rewards.discount.points_cost", 50)
	viper.SetDefault("loyalty.rewards.discount.egp", "10")
	viper.SetDefault("loyalty.rewards.free_item.points_cost", 100)
	viper.SetDefault("loyalty.rewards.free_item.item_id", "D001")

	viper.SetDefault("orders.strict_transitions", false)

	viper.SetDefault("notifications.driver", "log")

	viper.SetDefault("rabbitmq.host", "rabbitmq")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.notifications.queue", "cafeteria.order.ready")
	viper.SetDefault("rabbitmq.outbox.poll_interval_seconds", 10)
	viper.SetDefault("rabbitmq.outbox.batch_size", 100)
	viper.SetDefault("rabbitmq.outbox.retry_interval_seconds", 30)
	viper.SetDefault("rabbitmq.outbox.max_retries", 5)

	viper.SetDefault("server.http.port", 8080)
	viper.SetDefault("server.http.shutdown_timeout_seconds", 10)
	viper.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	viper.SetDefault("server.grpc.port", 9090)
	viper.SetDefault("server.grpc.keepalive.max_connection_idle", "15m")
	viper.SetDefault("server.grpc.keepalive.max_connection_age", "30m")
	viper.SetDefault("server.grpc.keepalive.max_connection_age_grace", "5m")
	viper.SetDefault("server.grpc.keepalive.time", "5m")
	viper.SetDefault("server.grpc.keepalive.timeout", "20s")
	viper.SetDefault("server.grpc.keepalive.min_time", "5m")
	viper.SetDefault("server.grpc.keepalive.permit_without_stream", false)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.service_name", "cafeteria")
	viper.SetDefault("otel.jaeger_endpoint", "http://jaeger:14268/api/traces")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

func SetupLogger() {
	handler := logger.NewHandler(&logger.HandlerOptions{
		Level:  logger.ParseLevel(viper.GetString("log.level")),
		Format: viper.GetString("log.format"),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}
