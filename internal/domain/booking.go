package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// Active 未取消的预订占用车辆
func (s BookingStatus) Active() bool { return s == BookingPending || s == BookingConfirmed }

// Notifiable 变更到这些状态需要通知车主
func (s BookingStatus) Notifiable() bool { return s == BookingConfirmed || s == BookingCancelled }

type Booking struct {
	ID        string        `gorm:"primaryKey;size:32" json:"id"`
	StartDate Date          `gorm:"not null;index:idx_bookings_car_range,priority:2" json:"start_date"`
	EndDate   Date          `gorm:"not null;index:idx_bookings_car_range,priority:3" json:"end_date"`
	Status    BookingStatus `gorm:"size:20;not null;default:pending" json:"status"`
	UserID    string        `gorm:"size:32;not null;index" json:"user_id"`
	CarID     string        `gorm:"size:32;not null;index:idx_bookings_car_range,priority:1" json:"car_id"`
	CreatedAt time.Time     `json:"created_at"`
}

// Overlaps 半开区间 [start, end) 相交；首尾相接不算
func (b *Booking) Overlaps(start, end Date) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}
