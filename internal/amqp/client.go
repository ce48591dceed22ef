package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"pinledger/internal/log"
)

const (
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
)

// Handler processes one delivery body. Returning an error requeues the message.
type Handler func(ctx context.Context, body []byte) error

// ErrMalformed marks a message that can never be processed; it is dropped
// instead of requeued.
var ErrMalformed = errors.New("malformed message")

// connection and channel are the parts of amqp091 the client drives.
type connection interface {
	Channel() (channel, error)
	IsClosed() bool
	Close() error
}

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	IsClosed() bool
	Close() error
}

type amqpConnection struct {
	*amqp091.Connection
}

func (c amqpConnection) Channel() (channel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// Client shares one connection between the publisher and every consumer.
// Publishing uses a dedicated channel; each Consume call opens its own.
type Client struct {
	mu           sync.Mutex
	url          string
	dial         func(url string) (connection, error)
	conn         connection
	channel      channel
	exchangeName string
	queues       []string
	backoff      func(attempt int) time.Duration
	logger       *log.Logger
}

// NewClient dials the broker and declares a direct exchange with one durable
// queue per name, each bound with its own name as routing key.
func NewClient(url, exchangeName string, queues ...string) (*Client, error) {
	return newClient(url, exchangeName, queues, dialAMQP)
}

func newClient(url, exchangeName string, queues []string, dial func(string) (connection, error)) (*Client, error) {
	c := &Client{
		url:          url,
		dial:         dial,
		exchangeName: exchangeName,
		queues:       queues,
		backoff:      exponentialBackoff,
		logger:       log.Default(log.ComponentAMQP),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(); err != nil {
		c.closeLocked()
		return nil, err
	}
	return c, nil
}

// WithLogger replaces the default logger.
func (c *Client) WithLogger(logger *log.Logger) *Client {
	c.logger = logger.WithComponent(log.ComponentAMQP)
	return c
}

// ensureLocked redials only when the connection itself is gone and reopens
// the publish channel when it was closed. Consumer channels on a live
// connection are left alone.
func (c *Client) ensureLocked() error {
	if c.conn == nil || c.conn.IsClosed() {
		c.closeLocked()
		conn, err := c.dial(c.url)
		if err != nil {
			return fmt.Errorf("dial AMQP: %w", err)
		}
		c.conn = conn
	}

	if c.channel == nil || c.channel.IsClosed() {
		ch, err := c.conn.Channel()
		if err != nil {
			return fmt.Errorf("open channel: %w", err)
		}
		if err := c.setup(ch); err != nil {
			ch.Close()
			return fmt.Errorf("setup exchange and queues: %w", err)
		}
		c.channel = ch
	}
	return nil
}

func (c *Client) setup(ch channel) error {
	err := ch.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, q := range c.queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		if err := ch.QueueBind(q, q, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}
	return nil
}

// Publish marshals v as JSON and sends it to queue. One reconnect is
// attempted when the connection or the publish channel has dropped.
func (c *Client) Publish(ctx context.Context, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = c.publish(ctx, queue, body)
	if err != nil && isConnectionError(err) {
		c.logger.WarnContext(ctx, "AMQP connection lost, reconnecting", log.FieldError, err)
		if rerr := c.reconnect(); rerr != nil {
			return fmt.Errorf("publish message: %w (reconnect: %v)", err, rerr)
		}
		err = c.publish(ctx, queue, body)
	}
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.DebugContext(ctx, "Published message", "exchange", c.exchangeName, "queue", queue)
	return nil
}

func (c *Client) publish(ctx context.Context, queue string, body []byte) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return amqp091.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		queue,          // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (c *Client) reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureLocked()
}

// openChannel returns a fresh channel on the shared connection, redialing
// first if the connection is closed.
func (c *Client) openChannel() (channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(); err != nil {
		return nil, err
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consumer channel: %w", err)
	}
	return ch, nil
}

// Consume delivers messages from queue to handler until ctx ends. If the
// delivery channel closes, it retries on a new channel with exponential
// backoff; the backoff resets once consuming has started again.
func (c *Client) Consume(ctx context.Context, queue string, handler Handler) error {
	attempt := 0
	for {
		started, err := c.consumeOnce(ctx, queue, handler)
		if ctx.Err() != nil {
			c.logger.InfoContext(ctx, "Stopping message consumption", "queue", queue, "reason", ctx.Err())
			return ctx.Err()
		}
		if started {
			attempt = 0
		}

		wait := c.backoff(attempt)
		attempt++
		c.logger.WarnContext(ctx, "Consumer interrupted, retrying",
			"queue", queue, log.FieldError, err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// consumeOnce reports whether the consumer was registered before it stopped.
func (c *Client) consumeOnce(ctx context.Context, queue string, handler Handler) (bool, error) {
	ch, err := c.openChannel()
	if err != nil {
		return false, err
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return false, fmt.Errorf("set prefetch: %w", err)
	}

	msgs, err := ch.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return false, fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming messages", "queue", queue)

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return true, fmt.Errorf("message channel closed")
			}

			err := handler(ctx, delivery.Body)
			switch {
			case err == nil:
				delivery.Ack(false)
			case errors.Is(err, ErrMalformed):
				c.logger.ErrorContext(ctx, "Dropping malformed message", "queue", queue, log.FieldError, err)
				delivery.Nack(false, false)
			default:
				c.logger.ErrorContext(ctx, "Failed to handle message", "queue", queue, log.FieldError, err)
				delivery.Nack(false, true)
			}
		}
	}
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	return nil
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection closed", "eof", "broken pipe", "closed network connection", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
