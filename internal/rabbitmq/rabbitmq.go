package rabbitmq

import (
	"context"
	"fmt"
	"passreset/internal/core/domain/logging"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 3 * time.Second

// Connection wraps amqp.Connection and redials when the broker drops it.
type Connection struct {
	url  string
	log  logging.Logger
	lock sync.RWMutex
	conn *amqp.Connection
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		return nil, fmt.Errorf("log argument must not be nil")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	connection := &Connection{url: url, log: log, conn: conn}
	go connection.watch(conn)
	return connection, nil
}

func (c *Connection) current() *amqp.Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.conn
}

func (c *Connection) watch(conn *amqp.Connection) {
	reason, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
	if !ok || reason == nil {
		c.log.Info(context.Background(), "RabbitMQ connection closed.")
		return
	}

	c.log.Warning(context.Background(), "RabbitMQ connection lost.", logging.Entry("reason", reason.Error()))
	for {
		time.Sleep(reconnectDelay)

		conn, err := amqp.Dial(c.url)
		if err == nil {
			c.lock.Lock()
			c.conn = conn
			c.lock.Unlock()
			c.log.Info(context.Background(), "RabbitMQ reconnect success.")
			go c.watch(conn)
			return
		}
		c.log.Error(context.Background(), "RabbitMQ reconnect failed.", logging.Entry("err", err))
	}
}

func (c *Connection) Close() error {
	return c.current().Close()
}

// Channel opens a channel which is recreated after unexpected closes.
func (c *Connection) Channel() (*Channel, error) {
	ch, err := c.current().Channel()
	if err != nil {
		return nil, err
	}
	channel := &Channel{conn: c, ch: ch, log: c.log}
	go channel.watch(ch)
	return channel, nil
}

type Channel struct {
	conn   *Connection
	log    logging.Logger
	lock   sync.RWMutex
	ch     *amqp.Channel
	closed int32
}

func (ch *Channel) current() *amqp.Channel {
	ch.lock.RLock()
	defer ch.lock.RUnlock()
	return ch.ch
}

func (ch *Channel) watch(current *amqp.Channel) {
	reason, ok := <-current.NotifyClose(make(chan *amqp.Error, 1))
	if !ok || reason == nil || ch.IsClosed() {
		return
	}

	ch.log.Warning(context.Background(), "RabbitMQ channel closed.", logging.Entry("reason", reason.Error()))
	for !ch.IsClosed() {
		time.Sleep(reconnectDelay)

		recreated, err := ch.conn.current().Channel()
		if err == nil {
			ch.lock.Lock()
			ch.ch = recreated
			ch.lock.Unlock()
			ch.log.Info(context.Background(), "Channel recreate success.")
			go ch.watch(recreated)
			return
		}
		ch.log.Error(context.Background(), "Channel recreate failed.", logging.Entry("err", err))
	}
}

// IsClosed reports whether Close has been called.
func (ch *Channel) IsClosed() bool {
	return atomic.LoadInt32(&ch.closed) == 1
}

func (ch *Channel) Close() error {
	if !atomic.CompareAndSwapInt32(&ch.closed, 0, 1) {
		return amqp.ErrClosed
	}
	return ch.current().Close()
}

// DeclareQueue declares a durable queue.
func (ch *Channel) DeclareQueue(name string) error {
	_, err := ch.current().QueueDeclare(name, true, false, false, false, nil)
	return err
}

func (ch *Channel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	return ch.current().PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// Consume keeps delivering until the channel is closed with Close,
// consuming is restarted on the recreated channel after failures.
func (ch *Channel) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	deliveries := make(chan amqp.Delivery)

	go func() {
		defer close(deliveries)
		for {
			current := ch.current()
			if prefetch > 0 {
				if err := current.Qos(prefetch, 0, false); err != nil {
					ch.log.Error(context.Background(), "Could not set QoS.", logging.Entry("err", err))
				}
			}
			d, err := current.Consume(queue, consumer, false, false, false, false, nil)
			if err != nil {
				ch.log.Error(context.Background(), "Consume failed.", logging.Entry("err", err))
				time.Sleep(reconnectDelay)
				if ch.IsClosed() {
					return
				}
				continue
			}

			for msg := range d {
				deliveries <- msg
			}

			// The closed flag may be set right after the deliveries end.
			time.Sleep(reconnectDelay)

			if ch.IsClosed() {
				ch.log.Info(context.Background(), "Channel is closed, stop consuming.", logging.Entry("queue", queue))
				return
			}
		}
	}()

	return deliveries, nil
}
