package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, ev BookingEvent) error

type Consumer struct {
	URL      string
	Queue    string
	Prefetch int
	Log      *zap.Logger
	Handle   Handler
}

// Run 断线自动重连（指数退避，上限 30s），ctx 取消后返回
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("amqp dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if c.Prefetch > 0 {
		if err := ch.Qos(c.Prefetch, 0, false); err != nil {
			c.Log.Warn("set qos failed", zap.Error(err))
		}
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, d)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery) {
	if err := c.process(ctx, d.Body); err != nil {
		c.Log.Error("handle event failed", zap.Error(err), zap.String("type", d.Type))
		// 不重新入队，避免毒消息死循环
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) process(ctx context.Context, body []byte) error {
	ev, err := Decode(body)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return c.Handle(ctx, ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// LogHandler 默认处理：结构化记录每条预订事件
func LogHandler(log *zap.Logger) Handler {
	return func(_ context.Context, ev BookingEvent) error {
		log.Info("booking event",
			zap.String("type", ev.Type),
			zap.String("booking_id", ev.BookingID),
			zap.String("car_id", ev.CarID),
			zap.String("user_id", ev.UserID),
			zap.String("status", string(ev.Status)),
			zap.String("start_date", ev.StartDate),
			zap.String("end_date", ev.EndDate),
			zap.Time("occurred_at", ev.OccurredAt),
		)
		return nil
	}
}
