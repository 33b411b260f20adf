package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"car-rental-api/internal/domain"
	"car-rental-api/internal/repo"
	"car-rental-api/internal/storage"
	"car-rental-api/pkg/utils"
)

type FleetService struct{ d *Deps }

// CarInput PricePerDay 保持原始文本，数字或数字字符串都接受
type CarInput struct {
	Brand       string
	Model       string
	Image1      string
	Image2      string
	PricePerDay string
	Status      string
}

func (in CarInput) validate() (*domain.Car, error) {
	c := &domain.Car{
		Brand:  strings.TrimSpace(in.Brand),
		Model:  strings.TrimSpace(in.Model),
		Image1: strings.TrimSpace(in.Image1),
		Image2: strings.TrimSpace(in.Image2),
		Status: domain.CarAvailable,
	}
	if c.Brand == "" || c.Model == "" || c.Image1 == "" || c.Image2 == "" || strings.TrimSpace(in.PricePerDay) == "" {
		return nil, domain.Validation("Missing required fields")
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(in.PricePerDay), 64)
	if err != nil {
		return nil, domain.Validation("Price per day must be a number")
	}
	if p <= 0 {
		return nil, domain.Validation("Price per day must be greater than 0")
	}
	c.PricePerDay = p
	if in.Status != "" {
		st := domain.CarStatus(in.Status)
		if !st.Valid() {
			return nil, domain.Validation("Invalid status")
		}
		c.Status = st
	}
	return c, nil
}

func (s *FleetService) Create(ctx context.Context, callerID string, in CarInput) (*domain.Car, error) {
	c, err := in.validate()
	if err != nil {
		return nil, err
	}
	// booked 只能由预订产生
	if c.Status == domain.CarBooked {
		return nil, domain.Validation("Invalid status")
	}
	if _, err := requireAdmin(ctx, s.d.Store, callerID); err != nil {
		return nil, err
	}
	dup, err := s.d.Store.Cars.FindByBrandModel(ctx, c.Brand, c.Model)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, domain.Conflict("Car with this brand and model already exists")
	}
	c.ID = utils.NewID()
	if err := s.d.Store.Cars.Create(ctx, c); err != nil {
		if repo.IsDupKey(err) {
			return nil, domain.Conflict("Car with this brand and model already exists")
		}
		return nil, err
	}
	return c, nil
}

// Update 整体替换 brand/model/图片/价格，状态走 UpdateStatus
func (s *FleetService) Update(ctx context.Context, callerID, carID string, in CarInput) (*domain.Car, error) {
	in.Status = ""
	c, err := in.validate()
	if err != nil {
		return nil, err
	}
	var out *domain.Car
	err = s.d.Store.Tx(ctx, func(tx *repo.Store) error {
		if _, err := requireAdmin(ctx, tx, callerID); err != nil {
			return err
		}
		cur, err := tx.Cars.LockByID(ctx, carID)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.NotFound("Car not found")
		}
		other, err := tx.Cars.FindByBrandModel(ctx, c.Brand, c.Model)
		if err != nil {
			return err
		}
		if other != nil && other.ID != cur.ID {
			return domain.Conflict("Car with this brand and model already exists")
		}
		c.ID = cur.ID
		if err := tx.Cars.UpdateDetails(ctx, c); err != nil {
			return err
		}
		out, err = tx.Cars.FindByID(ctx, cur.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FleetService) UpdateStatus(ctx context.Context, callerID, carID, status string) (*domain.Car, error) {
	st := domain.CarStatus(status)
	if !st.Valid() {
		return nil, domain.Validation("Invalid status")
	}
	if _, err := requireAdmin(ctx, s.d.Store, callerID); err != nil {
		return nil, err
	}
	c, err := s.d.Store.Cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("Car not found")
	}
	if err := s.d.Store.Cars.UpdateStatus(ctx, carID, st); err != nil {
		return nil, err
	}
	c.Status = st
	return c, nil
}

func (s *FleetService) Get(ctx context.Context, carID string) (*domain.Car, error) {
	c, err := s.d.Store.Cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("Car not found")
	}
	return c, nil
}

func (s *FleetService) List(ctx context.Context) ([]domain.Car, error) {
	return s.d.Store.Cars.List(ctx)
}

// Delete 同一事务内先删评价和预订
func (s *FleetService) Delete(ctx context.Context, callerID, carID string) error {
	return s.d.Store.Tx(ctx, func(tx *repo.Store) error {
		if _, err := requireAdmin(ctx, tx, callerID); err != nil {
			return err
		}
		c, err := tx.Cars.LockByID(ctx, carID)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.NotFound("Car not found")
		}
		if err := tx.Reviews.DeleteByCar(ctx, carID); err != nil {
			return err
		}
		if err := tx.Bookings.DeleteByCar(ctx, carID); err != nil {
			return err
		}
		_, err = tx.Cars.Delete(ctx, carID)
		return err
	})
}

// UploadImage 返回的 URL 用作 image1/image2
func (s *FleetService) UploadImage(ctx context.Context, callerID string, data []byte) (string, error) {
	if s.d.Images == nil {
		return "", domain.Unavailable("Image storage is not configured")
	}
	if len(data) == 0 {
		return "", domain.Validation("File is empty")
	}
	if _, err := requireAdmin(ctx, s.d.Store, callerID); err != nil {
		return "", err
	}
	url, err := s.d.Images.PutImage(ctx, data)
	if errors.Is(err, storage.ErrNotImage) {
		return "", domain.Validation("Uploaded file is not an image")
	}
	if err != nil {
		return "", domain.Dependency("Failed to store image", err)
	}
	return url, nil
}
