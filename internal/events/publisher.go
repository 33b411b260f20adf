package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dialTimeout    = 2 * time.Second
	minRedialDelay = time.Second
	maxRedialDelay = 30 * time.Second
)

// ErrBrokerUnavailable 上次连接失败后的退避期内直接返回
var ErrBrokerUnavailable = errors.New("amqp broker unavailable")

// AMQPPublisher 复用一条连接，断开后下次发布时重连。
// 拨号超时取 dialTimeout 与 ctx 截止时间中较短者；失败后指数退避，退避期内不再拨号。
type AMQPPublisher struct {
	url   string
	queue string

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	delay   time.Duration
	retryAt time.Time
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue}
}

func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if now := time.Now(); now.Before(p.retryAt) {
		return nil, fmt.Errorf("%w: retry in %s", ErrBrokerUnavailable, p.retryAt.Sub(now).Round(time.Millisecond))
	}
	timeout := dialTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(dl))
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		p.backoff()
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		p.backoff()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		p.backoff()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.delay, p.retryAt = 0, time.Time{}
	return ch, nil
}

func (p *AMQPPublisher) backoff() {
	p.delay = min(max(p.delay*2, minRedialDelay), maxRedialDelay)
	p.retryAt = time.Now().Add(p.delay)
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.closeLocked()
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}
