package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"car-rental-api/internal/domain"
	"car-rental-api/internal/notify"
	"car-rental-api/internal/repo"
	"car-rental-api/pkg/utils"
)

type UserService struct{ d *Deps }

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UserView 对外的用户投影
type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
}

func ViewOf(u *domain.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, IsAdmin: u.Administrator()}
}

// Register callerID 为空表示匿名注册；已登录的管理员不能代建账号
func (s *UserService) Register(ctx context.Context, callerID string, in RegisterInput) (*domain.User, error) {
	in.Username, in.Email = strings.TrimSpace(in.Username), strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.Validation("Missing required fields")
	}
	if callerID != "" {
		caller, err := s.d.Store.Users.FindByID(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if caller.Administrator() {
			return nil, domain.Forbidden("Admins are not allowed to create users")
		}
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{ID: utils.NewID(), Username: in.Username, Email: in.Email, PasswordHash: hash}
	u.SetRole(domain.RoleUser)
	err = s.d.Store.Tx(ctx, func(tx *repo.Store) error {
		if dup, err := tx.Users.FindByUsername(ctx, u.Username); err != nil {
			return err
		} else if dup != nil {
			return domain.Conflict("Username already exists")
		}
		if dup, err := tx.Users.FindByEmail(ctx, u.Email); err != nil {
			return err
		} else if dup != nil {
			return domain.Conflict("Email already exists")
		}
		if err := tx.Users.Create(ctx, u); err != nil {
			if repo.IsDupKey(err) {
				return domain.Conflict("Username or email already exists")
			}
			return err
		}
		return s.d.send(ctx, notify.Welcome(u))
	})
	if err != nil {
		return nil, err
	}
	s.d.Log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

type UpdateUserInput struct {
	Email    string
	Password string
}

// Update 本人或管理员；通知发往新邮箱，失败回滚
func (s *UserService) Update(ctx context.Context, callerID, userID string, in UpdateUserInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return domain.Validation("Email and password are required")
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return err
	}
	return s.d.Store.Tx(ctx, func(tx *repo.Store) error {
		target, err := s.authorizeSelf(ctx, tx, callerID, userID)
		if err != nil {
			return err
		}
		other, err := tx.Users.FindByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if other != nil && other.ID != target.ID {
			return domain.Conflict("Email already exists")
		}
		if err := tx.Users.UpdateCredentials(ctx, target.ID, in.Email, hash); err != nil {
			return err
		}
		return s.d.send(ctx, notify.AccountUpdated(target, in.Email))
	})
}

// authorizeSelf 调用者须是目标本人或管理员
func (s *UserService) authorizeSelf(ctx context.Context, st *repo.Store, callerID, userID string) (*domain.User, error) {
	caller, err := loadCaller(ctx, st, callerID)
	if err != nil {
		return nil, err
	}
	if caller.ID == userID {
		return caller, nil
	}
	if !caller.Administrator() {
		return nil, domain.Forbidden("Access denied")
	}
	target, err := st.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.NotFound("User not found")
	}
	return target, nil
}

func (s *UserService) Get(ctx context.Context, callerID, userID string) (UserView, error) {
	u, err := s.authorizeSelf(ctx, s.d.Store, callerID, userID)
	if err != nil {
		return UserView{}, err
	}
	return ViewOf(u), nil
}

func (s *UserService) List(ctx context.Context, callerID string) ([]UserView, error) {
	if _, err := requireAdmin(ctx, s.d.Store, callerID); err != nil {
		return nil, err
	}
	us, err := s.d.Store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(us))
	for i := range us {
		out = append(out, ViewOf(&us[i]))
	}
	return out, nil
}

// Delete 级联删除预订与评价，并重新计算受影响车辆的状态
func (s *UserService) Delete(ctx context.Context, callerID, userID string) error {
	return s.d.Store.Tx(ctx, func(tx *repo.Store) error {
		target, err := s.authorizeSelf(ctx, tx, callerID, userID)
		if err != nil {
			return err
		}
		carIDs, err := tx.Bookings.ActiveCarIDsByUser(ctx, target.ID)
		if err != nil {
			return err
		}
		if err := tx.Reviews.DeleteByUser(ctx, target.ID); err != nil {
			return err
		}
		if err := tx.Bookings.DeleteByUser(ctx, target.ID); err != nil {
			return err
		}
		if _, err := tx.Users.Delete(ctx, target.ID); err != nil {
			return err
		}
		today := s.d.today()
		for _, id := range carIDs {
			if err := reconcileCar(ctx, tx, id, today); err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureAdmin 幂等：按邮箱找到则提升为管理员，否则新建
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, bool, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, false, domain.Validation("admin username, email and password are required")
	}
	var (
		u       *domain.User
		created bool
	)
	err := s.d.Store.Tx(ctx, func(tx *repo.Store) error {
		var err error
		if u, err = tx.Users.FindByEmail(ctx, email); err != nil {
			return err
		}
		if u != nil {
			if u.IsAdmin && u.Role == domain.RoleAdmin {
				return nil
			}
			u.SetRole(domain.RoleAdmin)
			return tx.Users.UpdateRole(ctx, u)
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		u = &domain.User{ID: utils.NewID(), Username: username, Email: email, PasswordHash: hash}
		u.SetRole(domain.RoleAdmin)
		created = true
		return tx.Users.Create(ctx, u)
	})
	if err != nil {
		return nil, false, err
	}
	return u, created, nil
}
