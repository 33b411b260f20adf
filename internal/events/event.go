// Package events 预订领域事件，经 RabbitMQ 投递给 worker。
// 发布在事务提交之后进行，失败只记日志，不影响请求结果。
package events

import (
	"context"
	"encoding/json"
	"time"

	"car-rental-api/internal/domain"
)

const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	BookingDeleted       = "booking.deleted"
)

type BookingEvent struct {
	Type       string               `json:"type"`
	BookingID  string               `json:"booking_id"`
	CarID      string               `json:"car_id"`
	UserID     string               `json:"user_id"`
	Status     domain.BookingStatus `json:"status,omitempty"`
	StartDate  string               `json:"start_date,omitempty"`
	EndDate    string               `json:"end_date,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

func NewBookingEvent(typ string, b *domain.Booking) BookingEvent {
	return BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		CarID:      b.CarID,
		UserID:     b.UserID,
		Status:     b.Status,
		StartDate:  b.StartDate.String(),
		EndDate:    b.EndDate.String(),
		OccurredAt: time.Now().UTC(),
	}
}

func Decode(body []byte) (BookingEvent, error) {
	var ev BookingEvent
	err := json.Unmarshal(body, &ev)
	return ev, err
}

type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
}

// Nop 未配置 AMQP 时使用
type Nop struct{}

func (Nop) Publish(context.Context, BookingEvent) error { return nil }
