package amqp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	conn *fakeConnection

	mu         sync.Mutex
	closed     bool
	queue      string
	deliveries chan amqp091.Delivery
}

func (ch *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp091.Table) error {
	return nil
}

func (ch *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	return amqp091.Queue{Name: name}, nil
}

func (ch *fakeChannel) QueueBind(string, string, string, bool, amqp091.Table) error { return nil }

func (ch *fakeChannel) Qos(int, int, bool) error { return nil }

func (ch *fakeChannel) PublishWithContext(context.Context, string, string, bool, bool, amqp091.Publishing) error {
	if ch.IsClosed() {
		return amqp091.ErrClosed
	}
	return nil
}

func (ch *fakeChannel) Consume(queue, _ string, _, _, _, _ bool, _ amqp091.Table) (<-chan amqp091.Delivery, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return nil, amqp091.ErrClosed
	}
	ch.queue = queue
	ch.deliveries = make(chan amqp091.Delivery)
	return ch.deliveries, nil
}

func (ch *fakeChannel) IsClosed() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.closed
}

func (ch *fakeChannel) Close() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return amqp091.ErrClosed
	}
	ch.closed = true
	if ch.deliveries != nil {
		close(ch.deliveries)
	}
	return nil
}

func (ch *fakeChannel) consuming() string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return ""
	}
	return ch.queue
}

type fakeConnection struct {
	mu       sync.Mutex
	closed   bool
	channels []*fakeChannel
}

func (c *fakeConnection) Channel() (channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, amqp091.ErrClosed
	}
	ch := &fakeChannel{conn: c}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeConnection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close drops the connection and every channel on it, like a broker restart.
func (c *fakeConnection) Close() error {
	c.mu.Lock()
	c.closed = true
	channels := append([]*fakeChannel(nil), c.channels...)
	c.mu.Unlock()
	for _, ch := range channels {
		ch.Close()
	}
	return nil
}

// consumer returns the open channel consuming queue, if any.
func (c *fakeConnection) consumer(queue string) *fakeChannel {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.channels {
		if ch.consuming() == queue {
			return ch
		}
	}
	return nil
}

type fakeBroker struct {
	mu    sync.Mutex
	conns []*fakeConnection
}

func (b *fakeBroker) dial(string) (connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conn := &fakeConnection{}
	b.conns = append(b.conns, conn)
	return conn, nil
}

func (b *fakeBroker) dials() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}

func (b *fakeBroker) current() *fakeConnection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conns[len(b.conns)-1]
}

func newFakeClient(t *testing.T, broker *fakeBroker) *Client {
	t.Helper()
	c, err := newClient("amqp://fake", "pinledger", []string{"notifications", "expense_events"}, broker.dial)
	require.NoError(t, err)
	c.backoff = func(int) time.Duration { return 10 * time.Millisecond }
	t.Cleanup(func() { c.Close() })
	return c
}

func startConsumers(t *testing.T, c *Client, queues ...string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, q := range queues {
		q := q
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Consume(ctx, q, func(context.Context, []byte) error { return nil })
		}()
	}
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func TestConsumerRestartLeavesOtherConsumersAlone(t *testing.T) {
	broker := &fakeBroker{}
	c := newFakeClient(t, broker)
	startConsumers(t, c, "notifications", "expense_events")

	conn := broker.current()
	require.Eventually(t, func() bool {
		return conn.consumer("notifications") != nil && conn.consumer("expense_events") != nil
	}, time.Second, 5*time.Millisecond)

	events := conn.consumer("expense_events")
	notifications := conn.consumer("notifications")
	notifications.Close()

	require.Eventually(t, func() bool {
		ch := conn.consumer("notifications")
		return ch != nil && ch != notifications
	}, time.Second, 5*time.Millisecond)

	// Give a runaway reconnect loop time to show itself.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, events.IsClosed(), "events consumer channel was torn down")
	assert.Same(t, events, conn.consumer("expense_events"))
	assert.Equal(t, 1, broker.dials())
}

func TestConsumersShareOneRedialAfterConnectionLoss(t *testing.T) {
	broker := &fakeBroker{}
	c := newFakeClient(t, broker)
	startConsumers(t, c, "notifications", "expense_events")

	first := broker.current()
	require.Eventually(t, func() bool {
		return first.consumer("notifications") != nil && first.consumer("expense_events") != nil
	}, time.Second, 5*time.Millisecond)

	first.Close()

	require.Eventually(t, func() bool {
		if broker.dials() < 2 {
			return false
		}
		conn := broker.current()
		return conn.consumer("notifications") != nil && conn.consumer("expense_events") != nil
	}, time.Second, 5*time.Millisecond)

	second := broker.current()
	events := second.consumer("expense_events")
	notifications := second.consumer("notifications")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, broker.dials())
	assert.False(t, events.IsClosed())
	assert.False(t, notifications.IsClosed())
}

func TestPublishReopensChannelWithoutRedial(t *testing.T) {
	broker := &fakeBroker{}
	c := newFakeClient(t, broker)
	startConsumers(t, c, "expense_events")

	conn := broker.current()
	require.Eventually(t, func() bool { return conn.consumer("expense_events") != nil }, time.Second, 5*time.Millisecond)
	events := conn.consumer("expense_events")

	c.mu.Lock()
	c.channel.Close()
	c.mu.Unlock()

	require.NoError(t, c.Publish(context.Background(), "notifications", map[string]string{"k": "v"}))
	assert.Equal(t, 1, broker.dials())
	assert.False(t, events.IsClosed(), "publish recovery closed a consumer channel")
}
