package service

import (
	"context"
	"strings"

	"car-rental-api/internal/core/auth"
	"car-rental-api/internal/domain"
	"car-rental-api/pkg/utils"
)

type AuthService struct{ d *Deps }

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", domain.Validation("Email and password are required")
	}
	u, err := s.d.Store.Users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", domain.Unauthenticated("Invalid email or password")
	}
	role := domain.RoleUser
	if u.Administrator() {
		role = domain.RoleAdmin
	}
	tok, err := s.d.JWT.Issue(u.ID, role)
	if err != nil {
		return "", domain.Dependency("issue token failed", err)
	}
	return tok, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, callerID string) (UserView, error) {
	u, err := loadCaller(ctx, s.d.Store, callerID)
	if err != nil {
		return UserView{}, err
	}
	return ViewOf(u), nil
}

// Logout 把当前 token 的 jti 加入吊销表
func (s *AuthService) Logout(ctx context.Context, c *auth.Claims) error {
	if c == nil || c.JTI() == "" {
		return domain.Unauthenticated("unauthorized")
	}
	return s.d.Blocklist.Revoke(ctx, c)
}
