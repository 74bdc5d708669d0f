package supplier

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

// View tedarikçi ve sorgu anında sayılan alım adedi.
type View struct {
	models.Supplier
	PurchaseCount int64 `json:"purchase_count"`
}

type Service struct {
	db  *database.Conn
	log *zap.Logger
}

func NewService(db *database.Conn, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("supplier")}
}

func (s *Service) GetSuppliers(ctx context.Context, userID uint) result.Result {
	s.db.ResetBackoff()

	suppliers := make([]View, 0)
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		q := db.Table("suppliers AS sp").
			Select("sp.*, COUNT(p.id) AS purchase_count").
			Joins("LEFT JOIN purchases p ON sp.id = p.supplier_id").
			Group("sp.id").
			Order("sp.created_at DESC, sp.id DESC")
		if userID > 0 {
			q = q.Where("sp.created_by = ?", userID)
		}
		return q.Scan(&suppliers).Error
	})
	if err != nil {
		result.Log(s.log, "Get suppliers", err)
		return result.FromError(err).WithData([]View{})
	}
	return result.OK("", suppliers)
}

func (s *Service) AddSupplier(ctx context.Context, in Input, userID uint) result.Result {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return result.Fail(result.KindValidation, "Name is required")
	}

	s.db.ResetBackoff()

	sp := models.Supplier{
		Name:      in.Name,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   in.Address,
		CreatedBy: userID,
	}
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&sp).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntitySupplier,
			EntityID:    sp.ID,
			Action:      models.AuditActionCreate,
			Description: "Supplier created: " + sp.Name,
			After:       sp,
		})
	})
	if err != nil {
		result.Log(s.log, "Add supplier", err)
		return result.FromError(err)
	}
	return result.OK("Supplier added successfully", sp)
}

// UpdateSupplier userID verilirse sadece o kullanıcının kaydını günceller.
func (s *Service) UpdateSupplier(ctx context.Context, id uint, in Input, userID uint) result.Result {
	in.Name = strings.TrimSpace(in.Name)
	if id == 0 || in.Name == "" {
		return result.Fail(result.KindValidation, "ID and name are required")
	}

	s.db.ResetBackoff()

	var sp models.Supplier
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Supplier
		q := tx
		if userID > 0 {
			q = q.Where("created_by = ?", userID)
		}
		if err := q.First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Supplier not found")
			}
			return err
		}

		if err := tx.Model(&models.Supplier{}).Where("id = ?", id).Updates(map[string]any{
			"name":    in.Name,
			"email":   strings.TrimSpace(in.Email),
			"phone":   strings.TrimSpace(in.Phone),
			"address": in.Address,
		}).Error; err != nil {
			return err
		}
		if err := tx.First(&sp, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntitySupplier,
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: "Supplier updated: " + sp.Name,
			Before:      before,
			After:       sp,
		})
	})
	if err != nil {
		result.Log(s.log, "Update supplier", err)
		return result.FromError(err)
	}
	return result.OK("Supplier updated successfully", sp)
}

// DeleteSupplier alımı olan tedarikçiyi silmez.
func (s *Service) DeleteSupplier(ctx context.Context, id, userID uint) result.Result {
	if id == 0 {
		return result.Fail(result.KindValidation, "Supplier ID is required")
	}

	s.db.ResetBackoff()

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Supplier
		q := tx
		if userID > 0 {
			q = q.Where("created_by = ?", userID)
		}
		if err := q.First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Supplier not found")
			}
			return err
		}

		var purchases int64
		if err := tx.Model(&models.Purchase{}).Where("supplier_id = ?", id).Count(&purchases).Error; err != nil {
			return err
		}
		if purchases > 0 {
			return result.Business("Cannot delete supplier with existing purchases")
		}

		if err := tx.Delete(&models.Supplier{}, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntitySupplier,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Supplier deleted: " + before.Name,
			Before:      before,
		})
	})
	if err != nil {
		result.Log(s.log, "Delete supplier", err)
		return result.FromError(err)
	}
	return result.OK("Supplier deleted successfully", nil)
}
