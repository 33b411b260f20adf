package notify

import (
	"fmt"
	"strings"

	"car-rental-api/internal/domain"
)

const signature = "\n\nBest regards,\nYour Service Team"

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func Welcome(u *domain.User) Message {
	return Message{
		To:      []string{u.Email},
		Subject: "Account Registration Confirmation",
		Body: fmt.Sprintf("Hello %s,\n\nYour account has been created successfully.\n\nEmail: %s\nRole: %s%s",
			u.Username, u.Email, titleCase(u.Role), signature),
	}
}

func AccountUpdated(u *domain.User, email string) Message {
	return Message{
		To:      []string{email},
		Subject: "Account Update Notification",
		Body: fmt.Sprintf("Hello %s,\n\nYour account email and password have been updated successfully.%s",
			u.Username, signature),
	}
}

func BookingCreated(u *domain.User, c *domain.Car, b *domain.Booking) Message {
	return Message{
		To:      []string{u.Email},
		Subject: "Booking Confirmation",
		Body: fmt.Sprintf("Hello %s,\n\nYour booking of the %s %s from %s to %s has been received.\n\nBooking ID: %s\nStatus: %s%s",
			u.Username, c.Brand, c.Model, b.StartDate, b.EndDate, b.ID, titleCase(string(b.Status)), signature),
	}
}

func BookingStatusChanged(u *domain.User, b *domain.Booking) Message {
	return Message{
		To:      []string{u.Email},
		Subject: "Booking " + titleCase(string(b.Status)),
		Body: fmt.Sprintf("Hello %s,\n\nYour booking %s (%s to %s) is now %s.%s",
			u.Username, b.ID, b.StartDate, b.EndDate, b.Status, signature),
	}
}

// BookingCancelledByUser 用户自行取消时发给管理员
func BookingCancelledByUser(admins []string, u *domain.User, b *domain.Booking) Message {
	return Message{
		To:      admins,
		Subject: "Booking Cancelled by User",
		Body: fmt.Sprintf("User %s (%s) cancelled booking %s for car %s, %s to %s.",
			u.Username, u.Email, b.ID, b.CarID, b.StartDate, b.EndDate),
	}
}
