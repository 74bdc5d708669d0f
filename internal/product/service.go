package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"isletme-backend/internal/audit"
	"isletme-backend/internal/database"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"
	"isletme-backend/internal/stock"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	AdjustIncrease = "increase"
	AdjustDecrease = "decrease"

	referenceManual = "manual"
)

type Input struct {
	Name        string   `json:"name" form:"name"`
	Category    string   `json:"category" form:"category"`
	Description string   `json:"description" form:"description"`
	Price       *float64 `json:"price" form:"price"`
	Stock       *int     `json:"stock" form:"stock"`
}

type AdjustInput struct {
	ProductID uint   `json:"product_id" form:"product_id"`
	Quantity  int    `json:"quantity" form:"quantity"`
	Type      string `json:"type" form:"type"`
	Notes     string `json:"notes" form:"notes"`
}

// HistoryEntry ürün ekranındaki stok geçmişi satırı.
type HistoryEntry struct {
	ID            uint                    `json:"id"`
	ProductID     uint                    `json:"product_id"`
	Quantity      int                     `json:"quantity"`
	Type          models.StockHistoryType `json:"type"`
	ReferenceID   *uint                   `json:"reference_id"`
	ReferenceType string                  `json:"reference_type"`
	Notes         string                  `json:"notes"`
	Date          time.Time               `json:"date"`
}

type Service struct {
	db  *database.Conn
	log *zap.Logger
}

func NewService(db *database.Conn, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("product")}
}

func scoped(db *gorm.DB, userID uint) *gorm.DB {
	if userID > 0 {
		return db.Where("created_by = ?", userID)
	}
	return db
}

// GetProducts userID verilirse sadece o kullanıcının ürünlerini döndürür.
func (s *Service) GetProducts(ctx context.Context, userID uint) result.Result {
	s.db.ResetBackoff()

	products := make([]models.Product, 0)
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		return scoped(db, userID).Order("created_at DESC, id DESC").Find(&products).Error
	})
	if err != nil {
		result.Log(s.log, "Get products", err)
		return result.FromError(err).WithData([]models.Product{})
	}
	return result.OK("", products)
}

func (s *Service) GetProductByID(ctx context.Context, id, userID uint) result.Result {
	if id == 0 {
		return result.Fail(result.KindValidation, "Product ID is required")
	}

	s.db.ResetBackoff()

	var p models.Product
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		return scoped(db, userID).First(&p, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return result.Fail(result.KindNotFound, "Product not found")
	}
	if err != nil {
		result.Log(s.log, "Get product", err)
		return result.FromError(err)
	}
	return result.OK("", p)
}

func (s *Service) AddProduct(ctx context.Context, in Input, userID uint) result.Result {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Price == nil || *in.Price < 0 {
		return result.Fail(result.KindValidation, "Name and valid price are required")
	}
	initial := 0
	if in.Stock != nil {
		initial = *in.Stock
	}
	if initial < 0 {
		return result.Fail(result.KindValidation, "Stock cannot be negative")
	}

	s.db.ResetBackoff()

	p := models.Product{
		Name:        in.Name,
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Price:       *in.Price,
		CreatedBy:   userID,
	}
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		// stok sıfırla oluşturulur, başlangıç stoğu defter üzerinden eklenir
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		if initial > 0 {
			if _, err := stock.Increase(tx, stock.Change{
				ProductID: p.ID,
				Quantity:  initial,
				Source:    models.SourceInitial,
				Notes:     "Initial stock",
				UserID:    userID,
			}); err != nil {
				return err
			}
			if err := tx.Create(&models.ProductStockHistory{
				ProductID:     p.ID,
				Quantity:      initial,
				Type:          models.HistoryAdjustment,
				ReferenceType: referenceManual,
				Notes:         "Initial stock",
				CreatedBy:     userID,
			}).Error; err != nil {
				return err
			}
			if err := tx.First(&p, p.ID).Error; err != nil {
				return err
			}
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityProduct,
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: "Product created: " + p.Name,
			After:       p,
		})
	})
	if err != nil {
		result.Log(s.log, "Add product", err)
		return result.FromError(err)
	}
	return result.OK("Product added successfully", p)
}

// UpdateProduct alanları günceller; stok farkı varsa defter üzerinden uygulanır.
// Stock gönderilmezse mevcut stok korunur.
func (s *Service) UpdateProduct(ctx context.Context, id uint, in Input, userID uint) result.Result {
	in.Name = strings.TrimSpace(in.Name)
	if id == 0 || in.Name == "" || in.Price == nil || *in.Price < 0 {
		return result.Fail(result.KindValidation, "ID, name, and valid price are required")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return result.Fail(result.KindValidation, "Stock cannot be negative")
	}

	s.db.ResetBackoff()

	var p models.Product
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Product
		if err := scoped(tx, userID).First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Product not found")
			}
			return err
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
			"name":        in.Name,
			"category":    strings.TrimSpace(in.Category),
			"description": in.Description,
			"price":       *in.Price,
		}).Error; err != nil {
			return err
		}

		if in.Stock != nil {
			delta := *in.Stock - before.Stock
			ch := stock.Change{
				ProductID: id,
				Source:    models.SourceManual,
				Notes:     "Stock adjustment from product edit",
				UserID:    userID,
			}
			if _, err := stock.Apply(tx, delta, ch); err != nil {
				return err
			}
			if delta != 0 {
				typ, qty := models.HistoryIncrease, delta
				if delta < 0 {
					typ, qty = models.HistoryDecrease, -delta
				}
				if err := tx.Create(&models.ProductStockHistory{
					ProductID:     id,
					Quantity:      qty,
					Type:          typ,
					ReferenceType: referenceManual,
					Notes:         ch.Notes,
					CreatedBy:     userID,
				}).Error; err != nil {
					return err
				}
			}
		}

		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityProduct,
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: "Product updated: " + p.Name,
			Before:      before,
			After:       p,
		})
	})
	if err != nil {
		result.Log(s.log, "Update product", err)
		return result.FromError(err)
	}
	return result.OK("Product updated successfully", p)
}

// DeleteProduct satış ya da alımda kullanılmış ürünü silmez. Ürün stok
// geçmişi ürünle birlikte silinir, stok defteri olduğu gibi kalır.
func (s *Service) DeleteProduct(ctx context.Context, id, userID uint) result.Result {
	if id == 0 {
		return result.Fail(result.KindValidation, "Product ID is required")
	}

	s.db.ResetBackoff()

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var p models.Product
		if err := scoped(tx, userID).First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Product not found")
			}
			return err
		}

		var saleItems, purchaseItems int64
		if err := tx.Model(&models.SaleItem{}).Where("product_id = ?", id).Count(&saleItems).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PurchaseItem{}).Where("product_id = ?", id).Count(&purchaseItems).Error; err != nil {
			return err
		}
		if saleItems > 0 || purchaseItems > 0 {
			return result.Business("Cannot delete product that has been used in sales or purchases")
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.ProductStockHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Product{}, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityProduct,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Product deleted: " + p.Name,
			Before:      p,
		})
	})
	if err != nil {
		result.Log(s.log, "Delete product", err)
		return result.FromError(err)
	}
	return result.OK("Product deleted successfully", nil)
}

// GetProductStockHistory başka bir kullanıcının ürünü için boş liste döner.
func (s *Service) GetProductStockHistory(ctx context.Context, productID, userID uint) result.Result {
	if productID == 0 {
		return result.Fail(result.KindValidation, "Product ID is required").WithData([]HistoryEntry{})
	}

	s.db.ResetBackoff()

	var rows []models.ProductStockHistory
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		owned := scoped(db.Model(&models.Product{}), userID).Select("id")
		return db.Where("product_id = ? AND product_id IN (?)", productID, owned).
			Order("created_at DESC, id DESC").
			Find(&rows).Error
	})
	if err != nil {
		result.Log(s.log, "Get product stock history", err)
		return result.FromError(err).WithData([]HistoryEntry{})
	}

	history := make([]HistoryEntry, 0, len(rows))
	for _, h := range rows {
		history = append(history, HistoryEntry{
			ID:            h.ID,
			ProductID:     h.ProductID,
			Quantity:      h.Quantity,
			Type:          h.Type,
			ReferenceID:   h.ReferenceID,
			ReferenceType: h.ReferenceType,
			Notes:         h.Notes,
			Date:          h.CreatedAt,
		})
	}
	return result.OK("", history)
}

// AdjustProductStock elle stok artırır/azaltır. Ürün geçmişine yön ne olursa
// olsun "adjustment" etiketiyle yazılır, defterde ise in/out kullanılır.
func (s *Service) AdjustProductStock(ctx context.Context, in AdjustInput, userID uint) result.Result {
	if in.ProductID == 0 || in.Quantity <= 0 || in.Type == "" {
		return result.Fail(result.KindValidation, "Product ID, valid quantity, and adjustment type are required")
	}
	if in.Type != AdjustIncrease && in.Type != AdjustDecrease {
		return result.Fail(result.KindValidation, "Type must be 'increase' or 'decrease'")
	}
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = "Manual stock adjustment"
	}

	s.db.ResetBackoff()

	var p models.Product
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		ch := stock.Change{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Source:    models.SourceAdjustment,
			Notes:     notes,
			UserID:    userID,
		}
		var err error
		if in.Type == AdjustIncrease {
			_, err = stock.Increase(tx, ch)
		} else {
			_, err = stock.Decrease(tx, ch)
		}
		if err != nil {
			return err
		}

		if err := tx.Create(&models.ProductStockHistory{
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			Type:          models.HistoryAdjustment,
			ReferenceType: referenceManual,
			Notes:         notes,
			CreatedBy:     userID,
		}).Error; err != nil {
			return err
		}
		return tx.First(&p, in.ProductID).Error
	})
	switch {
	case errors.Is(err, result.ErrInsufficientStock):
		result.Log(s.log, "Adjust product stock", err)
		return result.Fail(result.KindBusiness, "Insufficient stock for adjustment")
	case result.KindOf(err) == result.KindNotFound:
		return result.Fail(result.KindNotFound, "Product not found")
	case err != nil:
		result.Log(s.log, "Adjust product stock", err)
		return result.FromError(err)
	}

	verb := "increased"
	if in.Type == AdjustDecrease {
		verb = "decreased"
	}
	return result.OK("Stock "+verb+" successfully", p)
}
