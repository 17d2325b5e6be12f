// Package rabbitmq publishes ride status events to a topic exchange.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"rideengine/internal/config"
	"rideengine/internal/logger"
)

var (
	ErrNotConnected = errors.New("rabbitmq: connection is not open")
	ErrNacked       = errors.New("rabbitmq: publish not acknowledged")
)

const maxBackoff = 30 * time.Second

// Client owns one connection and one confirm-mode publishing channel and
// re-dials them in the background when the broker drops either.
type Client struct {
	url      string
	exchange string
	timeout  time.Duration
	log      *slog.Logger
	logCtx   context.Context

	mu   sync.RWMutex
	conn *amqp.Connection
	ch   *amqp.Channel

	pubMu    sync.Mutex
	confirms chan amqp.Confirmation

	closeOnce sync.Once
	closed    chan struct{}
	reconnect chan struct{}
}

// Connect dials the broker, declares the exchange and starts the reconnect
// watcher. The first dial is not retried.
func Connect(ctx context.Context, cfg config.RabbitMQConfig, log *slog.Logger) (*Client, error) {
	timeout := cfg.ConfirmTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		url:       cfg.URL,
		exchange:  cfg.Exchange,
		timeout:   timeout,
		log:       log,
		logCtx:    context.WithoutCancel(ctx),
		closed:    make(chan struct{}),
		reconnect: make(chan struct{}, 1),
	}

	if err := c.connectOnce(); err != nil {
		return nil, err
	}
	go c.watch()

	return c, nil
}

// Close stops the watcher and closes the channel and connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.closed) })

	c.mu.Lock()
	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *Client) connectOnce() (err error) {
	conn, err := amqp.DialConfig(c.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(30 * time.Second),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() {
		if err != nil {
			_ = conn.Close()
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq open channel: %w", err)
	}

	if err = ch.ExchangeDeclare(c.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq declare exchange %s: %w", c.exchange, err)
	}
	if err = ch.Confirm(false); err != nil {
		return fmt.Errorf("rabbitmq enable confirms: %w", err)
	}

	c.pubMu.Lock()
	c.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	c.pubMu.Unlock()

	c.mu.Lock()
	if c.ch != nil && !c.ch.IsClosed() {
		_ = c.ch.Close()
	}
	c.conn = conn
	c.ch = ch
	c.mu.Unlock()

	go func() {
		connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
		chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-c.closed:
			return
		case <-connClosed:
		case <-chClosed:
		}
		select {
		case c.reconnect <- struct{}{}:
		default:
		}
	}()

	logger.Info(c.logCtx, c.log, "rabbitmq_connected", "rabbitmq connection established", "exchange", c.exchange)
	return nil
}

func (c *Client) watch() {
	backoff := time.Second
	for {
		select {
		case <-c.closed:
			return
		case <-c.reconnect:
		}

		for {
			select {
			case <-c.closed:
				return
			default:
			}

			err := c.connectOnce()
			if err == nil {
				backoff = time.Second
				break
			}
			logger.Error(c.logCtx, c.log, "rabbitmq_reconnect", "failed to reconnect to rabbitmq", err, "backoff", backoff.String())

			select {
			case <-c.closed:
				return
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff)
		}
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// publish sends body with publisher confirms and waits for the ack.
func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	c.mu.RLock()
	conn, ch := c.conn, c.ch
	c.mu.RUnlock()

	if conn == nil || conn.IsClosed() || ch == nil || ch.IsClosed() {
		return ErrNotConnected
	}

	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := ch.PublishWithContext(ctx, c.exchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", routingKey, err)
	}

	select {
	case conf, ok := <-c.confirms:
		if !ok {
			return ErrNotConnected
		}
		if !conf.Ack {
			return ErrNacked
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
