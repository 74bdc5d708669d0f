package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"isletme-backend/internal/audit"
	"isletme-backend/internal/database"
	"isletme-backend/internal/form"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"
	"isletme-backend/internal/stock"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Input alım formu. Items form gövdelerinde JSON string olarak gelir.
type Input struct {
	SupplierID   *uint      `json:"supplier_id" form:"supplier_id"`
	Supplier     string     `json:"supplier" form:"supplier"`
	TotalAmount  *float64   `json:"total_amount" form:"total_amount"`
	Status       string     `json:"status" form:"status"`
	PurchaseDate string     `json:"purchase_date" form:"purchase_date"`
	Items        form.Items `json:"items" form:"-"`
}

type Header struct {
	models.Purchase
	SupplierDisplayName string `json:"supplier_name"`
}

type ItemView struct {
	models.PurchaseItem
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
}

type Details struct {
	Purchase Header     `json:"purchase"`
	Items    []ItemView `json:"items"`
}

type Service struct {
	db  *database.Conn
	log *zap.Logger
}

func NewService(db *database.Conn, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("purchase")}
}

func parseStatus(raw string) (models.PurchaseStatus, error) {
	if raw == "" {
		return models.PurchasePending, nil
	}
	st := models.PurchaseStatus(raw)
	if !st.Valid() {
		return "", result.Validation("Invalid purchase status")
	}
	return st, nil
}

func scoped(db *gorm.DB, userID uint) *gorm.DB {
	if userID > 0 {
		return db.Where("created_by = ?", userID)
	}
	return db
}

// received alımın stoğa katkısı: Received değilse boş.
func received(status models.PurchaseStatus, items []models.PurchaseItem) map[uint]int {
	out := make(map[uint]int)
	if status != models.PurchaseReceived {
		return out
	}
	for _, it := range items {
		out[it.ProductID] += it.Quantity
	}
	return out
}

func toItems(purchaseID uint, items form.Items) []models.PurchaseItem {
	out := make([]models.PurchaseItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.PurchaseItem{
			PurchaseID: purchaseID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			Price:      it.Price,
		})
	}
	return out
}

// checkProducts her kalemin kullanıcının kendi ürününe ait olduğunu doğrular.
// Pending alımlar stoğa dokunmadığı için kontrol burada yapılır.
func checkProducts(tx *gorm.DB, items form.Items, userID uint) error {
	for _, it := range items {
		var n int64
		if err := scoped(tx.Model(&models.Product{}), userID).Where("id = ?", it.ProductID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return result.NotFound(fmt.Sprintf("Product ID %d not found", it.ProductID))
		}
	}
	return nil
}

func (s *Service) list(ctx context.Context, action string, userID uint) result.Result {
	s.db.ResetBackoff()

	purchases := make([]models.Purchase, 0)
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		return scoped(db, userID).Order("purchase_date DESC, id DESC").Find(&purchases).Error
	})
	if err != nil {
		result.Log(s.log, action, err)
		return result.FromError(err).WithData([]models.Purchase{})
	}
	return result.OK("", purchases)
}

// GetPurchases tüm kullanıcıların alımları.
func (s *Service) GetPurchases(ctx context.Context) result.Result {
	return s.list(ctx, "Get purchases", 0)
}

func (s *Service) GetUserPurchases(ctx context.Context, userID uint) result.Result {
	if userID == 0 {
		return result.Fail(result.KindValidation, "User ID is required").WithData([]models.Purchase{})
	}
	return s.list(ctx, "Get user purchases", userID)
}

func (s *Service) GetPurchaseDetails(ctx context.Context, purchaseID, userID uint) result.Result {
	if purchaseID == 0 {
		return result.Fail(result.KindValidation, "Purchase ID is required")
	}

	s.db.ResetBackoff()

	var d Details
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		if err := scoped(db, userID).First(&d.Purchase.Purchase, purchaseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Purchase not found")
			}
			return err
		}
		if d.Purchase.SupplierID != nil {
			var sup models.Supplier
			if err := db.Select("name").First(&sup, *d.Purchase.SupplierID).Error; err == nil {
				d.Purchase.SupplierDisplayName = sup.Name
			}
		}

		d.Items = make([]ItemView, 0)
		return db.Table("purchase_items AS pi").
			Select("pi.*, p.name AS product_name, p.category AS category").
			Joins("JOIN products p ON pi.product_id = p.id").
			Where("pi.purchase_id = ?", purchaseID).
			Order("pi.id").
			Scan(&d.Items).Error
	})
	if err != nil {
		result.Log(s.log, "Get purchase details", err)
		return result.FromError(err)
	}
	return result.OK("", d)
}

func (s *Service) AddPurchase(ctx context.Context, in Input, userID uint) result.Result {
	if in.TotalAmount == nil || len(in.Items) == 0 || userID == 0 {
		return result.Fail(result.KindValidation, "Total amount, at least one item, and user ID are required")
	}
	if err := in.Items.Validate(); err != nil {
		return result.FromError(err)
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return result.FromError(err)
	}
	date, err := form.ParseDate(in.PurchaseDate)
	if err != nil {
		return result.FromError(err)
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	s.db.ResetBackoff()

	p := models.Purchase{
		SupplierID:   in.SupplierID,
		SupplierName: strings.TrimSpace(in.Supplier),
		TotalAmount:  *in.TotalAmount,
		Status:       status,
		PurchaseDate: date,
		CreatedBy:    userID,
	}
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := checkProducts(tx, in.Items, userID); err != nil {
			return err
		}
		if err := tx.Omit("Items").Create(&p).Error; err != nil {
			return err
		}
		p.Items = toItems(p.ID, in.Items)
		if err := tx.Create(&p.Items).Error; err != nil {
			return err
		}

		if _, err := stock.ApplyDeltas(tx, received(status, p.Items), stock.Change{
			Source:      models.SourcePurchase,
			ReferenceID: &p.ID,
			Notes:       fmt.Sprintf("Purchase #%d received", p.ID),
			UserID:      userID,
		}); err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityPurchase,
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Purchase #%d created (%s)", p.ID, p.Status),
			After:       p,
		})
	})
	if err != nil {
		result.Log(s.log, "Add purchase", err)
		return result.FromError(err)
	}
	return result.OK("Purchase added successfully", p)
}

// UpdatePurchase başlığı ve kalemleri değiştirir. Önceki durum güncellemeden
// önce okunur; stok farkı eski ve yeni katkı arasındaki net fark kadar uygulanır.
func (s *Service) UpdatePurchase(ctx context.Context, id uint, in Input, userID uint) result.Result {
	if id == 0 || in.TotalAmount == nil || len(in.Items) == 0 || userID == 0 {
		return result.Fail(result.KindValidation, "Purchase ID, total amount, at least one item, and user ID are required")
	}
	if err := in.Items.Validate(); err != nil {
		return result.FromError(err)
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return result.FromError(err)
	}
	date, err := form.ParseDate(in.PurchaseDate)
	if err != nil {
		return result.FromError(err)
	}

	s.db.ResetBackoff()

	var p models.Purchase
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Purchase
		if err := scoped(tx, userID).Preload("Items").First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Purchase not found")
			}
			return err
		}
		if err := checkProducts(tx, in.Items, userID); err != nil {
			return err
		}
		if date.IsZero() {
			date = before.PurchaseDate
		}

		if err := tx.Model(&models.Purchase{}).Where("id = ?", id).Updates(map[string]any{
			"supplier_id":   in.SupplierID,
			"supplier":      strings.TrimSpace(in.Supplier),
			"total_amount":  *in.TotalAmount,
			"status":        status,
			"purchase_date": date,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("purchase_id = ?", id).Delete(&models.PurchaseItem{}).Error; err != nil {
			return err
		}
		items := toItems(id, in.Items)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		deltas := received(status, items)
		for pid, q := range received(before.Status, before.Items) {
			deltas[pid] -= q
		}
		if _, err := stock.ApplyDeltas(tx, deltas, stock.Change{
			Source:      models.SourcePurchase,
			ReferenceID: &before.ID,
			Notes:       fmt.Sprintf("Purchase #%d edited", id),
			UserID:      userID,
		}); err != nil {
			return err
		}

		if err := tx.Preload("Items").First(&p, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityPurchase,
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Purchase #%d updated", id),
			Before:      before,
			After:       p,
		})
	})
	if err != nil {
		result.Log(s.log, "Update purchase", err)
		return result.FromError(err)
	}
	return result.OK("Purchase updated successfully", p)
}

func (s *Service) UpdatePurchaseStatus(ctx context.Context, id uint, rawStatus string, userID uint) result.Result {
	if id == 0 || rawStatus == "" {
		return result.Fail(result.KindValidation, "Purchase ID and status are required")
	}
	status, err := parseStatus(rawStatus)
	if err != nil {
		return result.FromError(err)
	}

	s.db.ResetBackoff()

	var p models.Purchase
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Purchase
		if err := scoped(tx, userID).Preload("Items").First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Purchase not found")
			}
			return err
		}

		if err := tx.Model(&models.Purchase{}).Where("id = ?", id).Update("status", status).Error; err != nil {
			return err
		}

		ch := stock.Change{
			Source:      models.SourcePurchase,
			ReferenceID: &before.ID,
			UserID:      userID,
		}
		var deltas map[uint]int
		switch {
		case before.Status != models.PurchaseReceived && status == models.PurchaseReceived:
			deltas = received(status, before.Items)
			ch.Notes = fmt.Sprintf("Purchase #%d received", id)
		case before.Status == models.PurchaseReceived && status != models.PurchaseReceived:
			deltas = make(map[uint]int)
			for pid, q := range received(before.Status, before.Items) {
				deltas[pid] = -q
			}
			ch.Notes = fmt.Sprintf("Purchase #%d status changed to %s", id, status)
		}
		if _, err := stock.ApplyDeltas(tx, deltas, ch); err != nil {
			return err
		}

		if err := tx.Preload("Items").First(&p, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityPurchase,
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Purchase #%d status: %s -> %s", id, before.Status, status),
			Before:      before,
			After:       p,
		})
	})
	if err != nil {
		result.Log(s.log, "Update purchase status", err)
		return result.FromError(err)
	}
	return result.OK("Purchase status updated successfully", p)
}

// DeletePurchase Received bir alımın stoğunu geri düşer; stok yetmiyorsa silmez.
func (s *Service) DeletePurchase(ctx context.Context, id, userID uint) result.Result {
	if id == 0 {
		return result.Fail(result.KindValidation, "Purchase ID is required")
	}

	s.db.ResetBackoff()

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Purchase
		if err := scoped(tx, userID).Preload("Items").First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Purchase not found")
			}
			return err
		}

		deltas := make(map[uint]int)
		for pid, q := range received(before.Status, before.Items) {
			deltas[pid] = -q
		}
		if _, err := stock.ApplyDeltas(tx, deltas, stock.Change{
			Source:      models.SourcePurchase,
			ReferenceID: &before.ID,
			Notes:       fmt.Sprintf("Purchase #%d deleted", id),
			UserID:      userID,
			ErrPrefix:   "Cannot delete: ",
		}); err != nil {
			return err
		}

		if err := tx.Where("purchase_id = ?", id).Delete(&models.PurchaseItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Purchase{}, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntityPurchase,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Purchase #%d deleted", id),
			Before:      before,
		})
	})
	if err != nil {
		result.Log(s.log, "Delete purchase", err)
		return result.FromError(err)
	}
	return result.OK("Purchase deleted successfully", nil)
}
