package customer

import (
	"context"
	"errors"
	"strings"

	"isletme-backend/internal/audit"
	"isletme-backend/internal/database"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Input struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Address string `json:"address" form:"address"`
}

// View müşteri ve sorgu anında sayılan satış adedi.
type View struct {
	models.Customer
	OrderCount int64 `json:"order_count"`
}

type Service struct {
	db  *database.Conn
	log *zap.Logger
}

func NewService(db *database.Conn, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("customer")}
}

func (s *Service) GetCustomers(ctx context.Context, userID uint) result.Result {
	s.db.ResetBackoff()

	customers := make([]View, 0)
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		q := db.Table("customers AS c").
			Select("c.*, COUNT(s.id) AS order_count").
			Joins("LEFT JOIN sales s ON c.id = s.customer_id").
			Group("c.id").
			Order("c.created_at DESC, c.id DESC")
		if userID > 0 {
			q = q.Where("c.created_by = ?", userID)
		}
		return q.Scan(&customers).Error
	})
	if err != nil {
		result.Log(s.log, "Get customers", err)
		return result.FromError(err).WithData([]View{})
	}
	return result.OK("", customers)
}

func (s *Service) AddCustomer(ctx context.Context, in Input, userID uint) result.Result {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return result.Fail(result.KindValidation, "Name is required")
	}

	s.db.ResetBackoff()

	c := models.Customer{
		Name:      in.Name,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   in.Address,
		CreatedBy: userID,
	}
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityCustomer,
			EntityID:    c.ID,
			Action:      models.AuditActionCreate,
			Description: "Customer created: " + c.Name,
			After:       c,
		})
	})
	if err != nil {
		result.Log(s.log, "Add customer", err)
		return result.FromError(err)
	}
	return result.OK("Customer added successfully", c)
}

// UpdateCustomer userID verilirse sadece o kullanıcının kaydını günceller.
func (s *Service) UpdateCustomer(ctx context.Context, id uint, in Input, userID uint) result.Result {
	in.Name = strings.TrimSpace(in.Name)
	if id == 0 || in.Name == "" {
		return result.Fail(result.KindValidation, "ID and name are required")
	}

	s.db.ResetBackoff()

	var c models.Customer
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Customer
		q := tx
		if userID > 0 {
			q = q.Where("created_by = ?", userID)
		}
		if err := q.First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Customer not found")
			}
			return err
		}

		if err := tx.Model(&models.Customer{}).Where("id = ?", id).Updates(map[string]any{
			"name":    in.Name,
			"email":   strings.TrimSpace(in.Email),
			"phone":   strings.TrimSpace(in.Phone),
			"address": in.Address,
		}).Error; err != nil {
			return err
		}
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityCustomer,
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: "Customer updated: " + c.Name,
			Before:      before,
			After:       c,
		})
	})
	if err != nil {
		result.Log(s.log, "Update customer", err)
		return result.FromError(err)
	}
	return result.OK("Customer updated successfully", c)
}

// DeleteCustomer satışı olan müşteriyi silmez.
func (s *Service) DeleteCustomer(ctx context.Context, id, userID uint) result.Result {
	if id == 0 {
		return result.Fail(result.KindValidation, "Customer ID is required")
	}

	s.db.ResetBackoff()

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Customer
		q := tx
		if userID > 0 {
			q = q.Where("created_by = ?", userID)
		}
		if err := q.First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Customer not found")
			}
			return err
		}

		var sales int64
		if err := tx.Model(&models.Sale{}).Where("customer_id = ?", id).Count(&sales).Error; err != nil {
			return err
		}
		if sales > 0 {
			return result.Business("Cannot delete customer with existing sales")
		}

		if err := tx.Delete(&models.Customer{}, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityCustomer,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Customer deleted: " + before.Name,
			Before:      before,
		})
	})
	if err != nil {
		result.Log(s.log, "Delete customer", err)
		return result.FromError(err)
	}
	return result.OK("Customer deleted successfully", nil)
}
