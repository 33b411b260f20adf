package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
	UserID    string    `gorm:"size:32;not null;index" json:"user_id"`
	CarID     string    `gorm:"size:32;not null;index" json:"car_id"`
}

// CarReview 按车查询时带出用户名与车型
type CarReview struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CarModel  string    `json:"car_model"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}
