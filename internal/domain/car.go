package domain

import "time"

type CarStatus string

const (
	CarAvailable        CarStatus = "available"
	CarBooked           CarStatus = "booked"
	CarUnderMaintenance CarStatus = "under_maintenance"
)

func (s CarStatus) Valid() bool {
	switch s {
	case CarAvailable, CarBooked, CarUnderMaintenance:
		return true
	}
	return false
}

type Car struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	Brand       string    `gorm:"size:50;not null;uniqueIndex:idx_cars_brand_model" json:"brand"`
	Model       string    `gorm:"size:50;not null;uniqueIndex:idx_cars_brand_model" json:"model"`
	PricePerDay float64   `gorm:"not null" json:"price_per_day"`
	Image1      string    `gorm:"size:512" json:"image1"`
	Image2      string    `gorm:"size:512" json:"image2"`
	Status      CarStatus `gorm:"size:20;not null;default:available" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Bookings []Booking `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE" json:"-"`
	Reviews  []Review  `gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE" json:"-"`
}
