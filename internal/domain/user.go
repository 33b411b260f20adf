package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Role         string    `gorm:"size:20;not null;default:user" json:"role"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Bookings []Booking `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Reviews  []Review  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// SetRole 同步维护 Role 与 IsAdmin
func (u *User) SetRole(role string) {
	if role == RoleAdmin {
		u.Role, u.IsAdmin = RoleAdmin, true
		return
	}
	u.Role, u.IsAdmin = RoleUser, false
}

// Administrator 任一标记为 admin 即视为管理员
func (u *User) Administrator() bool { return u != nil && (u.IsAdmin || u.Role == RoleAdmin) }

// RevokedToken token_blocklist 表
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	JTI       string    `gorm:"column:jti;uniqueIndex;size:36;not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index"`
}

func (RevokedToken) TableName() string { return "token_blocklist" }
