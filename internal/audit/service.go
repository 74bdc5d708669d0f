package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"isletme-backend/internal/database"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entity tipleri
const (
	EntityProduct  = "product"
	EntityPurchase = "purchase"
	EntitySale     = "sale"
	EntityCustomer = "customer"
	EntitySupplier = "supplier"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog kaydı değişikliği yapan transaction içinde yazar; log yazılamazsa
// değişiklik de geri alınır.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	if opts.UserName == "" && opts.UserID > 0 {
		var u models.User
		if err := tx.Select("name").First(&u, opts.UserID).Error; err == nil {
			opts.UserName = u.Name
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

type Filter struct {
	UserID     uint
	EntityType string
	EntityID   uint
}

type Service struct {
	db  *database.Conn
	log *zap.Logger
}

func NewService(db *database.Conn, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("audit")}
}

func (s *Service) ListLogs(ctx context.Context, f Filter) result.Result {
	s.db.ResetBackoff()

	logs := make([]models.AuditLog, 0)
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		q := db.Model(&models.AuditLog{})
		if f.UserID > 0 {
			q = q.Where("user_id = ?", f.UserID)
		}
		if f.EntityType != "" {
			q = q.Where("entity_type = ?", f.EntityType)
		}
		if f.EntityID > 0 {
			q = q.Where("entity_id = ?", f.EntityID)
		}
		return q.Order("created_at DESC, id DESC").Find(&logs).Error
	})
	if err != nil {
		result.Log(s.log, "List audit logs", err)
		return result.FromError(err).WithData([]models.AuditLog{})
	}
	return result.OK("", logs)
}
