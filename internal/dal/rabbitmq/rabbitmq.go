package rabbitmq

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"sync"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// Client is a single broker connection with one channel shared by the
// ready notifier and the outbox worker.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel

	publishMu sync.Mutex
}

// Close closes the channel and connection for graceful shutdown.
func (r *Client) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}

	return nil
}

// URL builds the broker address from the rabbitmq.* settings.
func URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(viper.GetString("rabbitmq.user"), viper.GetString("rabbitmq.password")),
		Host:   net.JoinHostPort(viper.GetString("rabbitmq.host"), strconv.Itoa(viper.GetInt("rabbitmq.port"))),
		Path:   "/",
	}

	return u.String()
}

// MustNewClient creates a new RabbitMQ client.
func MustNewClient() *Client {
	client, err := NewClient(URL())
	if err != nil {
		panic(err)
	}

	return client
}

// NewClient dials the broker and opens a channel.
func NewClient(connStr string) (*Client, error) {
	conn, err := amqp.Dial(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			slog.Error("Failed to close a connection", "error", cerr)
		}

		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	slog.Info("RabbitMQ connected", "host", viper.GetString("rabbitmq.host"))

	return &Client{
		conn:    conn,
		channel: channel,
	}, nil
}

// DeclareQueueConfig mirrors the arguments of amqp.Channel.QueueDeclare.
type DeclareQueueConfig struct {
	Name       string
	Durable    bool
	AutoDelete bool
	Exclusive  bool
	NoWait     bool
	Args       amqp.Table
}

// DeclareQueue declares a queue with the given configuration.
func (r *Client) DeclareQueue(cfg DeclareQueueConfig) (amqp.Queue, error) {
	return r.channel.QueueDeclare(
		cfg.Name,
		cfg.Durable,
		cfg.AutoDelete,
		cfg.Exclusive,
		cfg.NoWait,
		cfg.Args,
	)
}

// Publish sends msg through the client's channel. Publishes are serialized.
func (r *Client) Publish(exchange, routingKey string, msg amqp.Publishing) error {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	return r.channel.Publish(exchange, routingKey, false, false, msg)
}
