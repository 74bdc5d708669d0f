package sale

import (
	"context"
	"errors"
	"fmt"
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

type Input struct {
	CustomerID  *uint      `json:"customer_id" form:"customer_id"`
	TotalAmount *float64   `json:"total_amount" form:"total_amount"`
	Status      string     `json:"status" form:"status"`
	SaleDate    string     `json:"sale_date" form:"sale_date"`
	Items       form.Items `json:"items" form:"-"`
}

type View struct {
	models.Sale
	CustomerName *string `json:"customer_name"`
}

type ItemView struct {
	models.SaleItem
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
}

type Details struct {
	Sale  View       `json:"sale"`
	Items []ItemView `json:"items"`
}

type Service struct {
	db  *database.Conn
	log *zap.Logger
}

func NewService(db *database.Conn, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("sale")}
}

func parseStatus(raw string) (models.SaleStatus, error) {
	if raw == "" {
		return models.SalePending, nil
	}
	st := models.SaleStatus(raw)
	if !st.Valid() {
		return "", result.Validation("Invalid sale status")
	}
	return st, nil
}

// customerID 0 müşterisiz satış demektir.
func customerRef(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func checkCustomer(tx *gorm.DB, id *uint, userID uint) error {
	if id == nil {
		return nil
	}
	q := tx.Model(&models.Customer{}).Where("id = ?", *id)
	if userID > 0 {
		q = q.Where("created_by = ?", userID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return result.NotFound("Customer not found")
	}
	return nil
}

func quantities(items []models.SaleItem) map[uint]int {
	out := make(map[uint]int)
	for _, it := range items {
		out[it.ProductID] += it.Quantity
	}
	return out
}

func toItems(saleID uint, items form.Items) []models.SaleItem {
	out := make([]models.SaleItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.SaleItem{
			SaleID:    saleID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return out
}

func viewQuery(db *gorm.DB) *gorm.DB {
	return db.Table("sales AS s").
		Select("s.*, c.name AS customer_name").
		Joins("LEFT JOIN customers c ON s.customer_id = c.id")
}

func (s *Service) GetUserSales(ctx context.Context, userID uint) result.Result {
	if userID == 0 {
		return result.Fail(result.KindValidation, "User ID is required").WithData([]View{})
	}

	s.db.ResetBackoff()

	sales := make([]View, 0)
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		return viewQuery(db).
			Where("s.created_by = ?", userID).
			Order("s.sale_date DESC, s.id DESC").
			Scan(&sales).Error
	})
	if err != nil {
		result.Log(s.log, "Get user sales", err)
		return result.FromError(err).WithData([]View{})
	}
	return result.OK("", sales)
}

func (s *Service) GetSaleDetails(ctx context.Context, saleID, userID uint) result.Result {
	if saleID == 0 {
		return result.Fail(result.KindValidation, "Sale ID is required")
	}

	s.db.ResetBackoff()

	var d Details
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		var rows []View
		q := viewQuery(db).Where("s.id = ?", saleID)
		if userID > 0 {
			q = q.Where("s.created_by = ?", userID)
		}
		if err := q.Limit(1).Scan(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return result.NotFound("Sale not found")
		}
		d.Sale = rows[0]

		d.Items = make([]ItemView, 0)
		return db.Table("sale_items AS si").
			Select("si.*, p.name AS product_name, p.category AS category").
			Joins("JOIN products p ON si.product_id = p.id").
			Where("si.sale_id = ?", saleID).
			Order("si.id").
			Scan(&d.Items).Error
	})
	if err != nil {
		result.Log(s.log, "Get sale details", err)
		return result.FromError(err)
	}
	return result.OK("", d)
}

// AddSale kalemlerin stoğunu satış anında düşer; herhangi bir kalem için stok
// yetmezse satış hiç oluşmaz.
func (s *Service) AddSale(ctx context.Context, in Input, userID uint) result.Result {
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
	date, err := form.ParseDate(in.SaleDate)
	if err != nil {
		return result.FromError(err)
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	s.db.ResetBackoff()

	sl := models.Sale{
		CustomerID:  customerRef(in.CustomerID),
		TotalAmount: *in.TotalAmount,
		Status:      status,
		SaleDate:    date,
		CreatedBy:   userID,
	}
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := checkCustomer(tx, sl.CustomerID, userID); err != nil {
			return err
		}
		if err := tx.Omit("Items").Create(&sl).Error; err != nil {
			return err
		}
		sl.Items = toItems(sl.ID, in.Items)
		if err := tx.Create(&sl.Items).Error; err != nil {
			return err
		}

		deltas := make(map[uint]int)
		for pid, q := range quantities(sl.Items) {
			deltas[pid] = -q
		}
		if _, err := stock.ApplyDeltas(tx, deltas, stock.Change{
			Source:      models.SourceSale,
			ReferenceID: &sl.ID,
			Notes:       fmt.Sprintf("Sale #%d", sl.ID),
			UserID:      userID,
		}); err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntitySale,
			EntityID:    sl.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Sale #%d created", sl.ID),
			After:       sl,
		})
	})
	if err != nil {
		result.Log(s.log, "Add sale", err)
		return result.FromError(err)
	}
	return result.OK("Sale added successfully", sl)
}

// UpdateSale eski kalemleri geri yükleyip yenilerini düşmenin net etkisini uygular:
// sonrası = öncesi + eski miktar - yeni miktar (ürün bazında).
func (s *Service) UpdateSale(ctx context.Context, id uint, in Input, userID uint) result.Result {
	if id == 0 || in.TotalAmount == nil || len(in.Items) == 0 || userID == 0 {
		return result.Fail(result.KindValidation, "Sale ID, total amount, at least one item, and user ID are required")
	}
	if err := in.Items.Validate(); err != nil {
		return result.FromError(err)
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return result.FromError(err)
	}
	date, err := form.ParseDate(in.SaleDate)
	if err != nil {
		return result.FromError(err)
	}

	s.db.ResetBackoff()

	var sl models.Sale
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Sale
		q := tx.Preload("Items")
		if userID > 0 {
			q = q.Where("created_by = ?", userID)
		}
		if err := q.First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Sale not found")
			}
			return err
		}
		customerID := customerRef(in.CustomerID)
		if err := checkCustomer(tx, customerID, userID); err != nil {
			return err
		}
		if date.IsZero() {
			date = before.SaleDate
		}

		if err := tx.Model(&models.Sale{}).Where("id = ?", id).Updates(map[string]any{
			"customer_id":  customerID,
			"total_amount": *in.TotalAmount,
			"status":       status,
			"sale_date":    date,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		items := toItems(id, in.Items)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		deltas := quantities(before.Items)
		for pid, q := range quantities(items) {
			deltas[pid] -= q
		}
		if _, err := stock.ApplyDeltas(tx, deltas, stock.Change{
			Source:      models.SourceSale,
			ReferenceID: &before.ID,
			Notes:       fmt.Sprintf("Sale #%d edited", id),
			UserID:      userID,
		}); err != nil {
			return err
		}

		if err := tx.Preload("Items").First(&sl, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntitySale,
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Sale #%d updated", id),
			Before:      before,
			After:       sl,
		})
	})
	if err != nil {
		result.Log(s.log, "Update sale", err)
		return result.FromError(err)
	}
	return result.OK("Sale updated successfully", sl)
}

// DeleteSale satılan miktarları stoğa geri ekler.
func (s *Service) DeleteSale(ctx context.Context, id, userID uint) result.Result {
	if id == 0 {
		return result.Fail(result.KindValidation, "Sale ID is required")
	}

	s.db.ResetBackoff()

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		var before models.Sale
		q := tx.Preload("Items")
		if userID > 0 {
			q = q.Where("created_by = ?", userID)
		}
		if err := q.First(&before, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return result.NotFound("Sale not found")
			}
			return err
		}

		if _, err := stock.ApplyDeltas(tx, quantities(before.Items), stock.Change{
			Source:      models.SourceSale,
			ReferenceID: &before.ID,
			Notes:       fmt.Sprintf("Sale #%d deleted", id),
			UserID:      userID,
		}); err != nil {
			return err
		}

		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Sale{}, id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      userID,
			EntityType:  audit.EntitySale,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Sale #%d deleted", id),
			Before:      before,
		})
	})
	if err != nil {
		result.Log(s.log, "Delete sale", err)
		return result.FromError(err)
	}
	return result.OK("Sale deleted successfully", nil)
}
