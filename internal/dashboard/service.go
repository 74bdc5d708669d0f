// Package dashboard kullanıcının özet ekranı için toplamları hesaplar.
package dashboard

import (
	"context"

	"isletme-backend/internal/database"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recentLimit = 5

type RecentSale struct {
	models.Sale
	CustomerName *string `json:"customer_name"`
}

type TopCustomer struct {
	ID         uint    `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Email      string  `db:"email" json:"email"`
	Phone      string  `db:"phone" json:"phone"`
	OrderCount int64   `db:"order_count" json:"order_count"`
	TotalSpent float64 `db:"total_spent" json:"total_spent"`
}

type Summary struct {
	TotalSales       float64           `json:"totalSales"`
	TotalPurchases   float64           `json:"totalPurchases"`
	TotalProfit      float64           `json:"totalProfit"`
	RecentSales      []RecentSale      `json:"recentSales"`
	RecentPurchases  []models.Purchase `json:"recentPurchases"`
	LowStockProducts []models.Product  `json:"lowStockProducts"`
	TopCustomers     []TopCustomer     `json:"topCustomers"`
}

func emptySummary() Summary {
	return Summary{
		RecentSales:      []RecentSale{},
		RecentPurchases:  []models.Purchase{},
		LowStockProducts: []models.Product{},
		TopCustomers:     []TopCustomer{},
	}
}

type Service struct {
	db        *database.Conn
	log       *zap.Logger
	threshold int
}

func NewService(db *database.Conn, log *zap.Logger, lowStockThreshold int) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("dashboard"), threshold: lowStockThreshold}
}

// GetUserDashboardSummary iptal edilen satış ve alımları toplamlara katmaz.
// Kâr basitçe satış toplamı eksi alım toplamıdır.
func (s *Service) GetUserDashboardSummary(ctx context.Context, userID uint) result.Result {
	if userID == 0 {
		return result.Fail(result.KindValidation, "User ID is required").WithData(emptySummary())
	}

	s.db.ResetBackoff()

	sum := emptySummary()
	err := s.db.Query(ctx, func(ctx context.Context, db *sqlx.DB) error {
		if err := db.GetContext(ctx, &sum.TotalSales, db.Rebind(
			"SELECT COALESCE(SUM(total_amount), 0) FROM sales WHERE status != ? AND created_by = ?"),
			string(models.SaleCancelled), userID); err != nil {
			return err
		}
		if err := db.GetContext(ctx, &sum.TotalPurchases, db.Rebind(
			"SELECT COALESCE(SUM(total_amount), 0) FROM purchases WHERE status != ? AND created_by = ?"),
			string(models.PurchaseCancelled), userID); err != nil {
			return err
		}
		return db.SelectContext(ctx, &sum.TopCustomers, db.Rebind(`
			SELECT c.id, c.name, c.email, c.phone,
			       COUNT(s.id) AS order_count,
			       COALESCE(SUM(s.total_amount), 0) AS total_spent
			FROM customers c
			JOIN sales s ON c.id = s.customer_id
			WHERE s.status != ? AND s.created_by = ?
			GROUP BY c.id, c.name, c.email, c.phone
			ORDER BY total_spent DESC
			LIMIT ?`), string(models.SaleCancelled), userID, recentLimit)
	})
	if err == nil {
		err = s.db.Do(ctx, func(db *gorm.DB) error {
			if err := db.Table("sales AS s").
				Select("s.*, c.name AS customer_name").
				Joins("LEFT JOIN customers c ON s.customer_id = c.id").
				Where("s.created_by = ?", userID).
				Order("s.sale_date DESC, s.id DESC").
				Limit(recentLimit).
				Scan(&sum.RecentSales).Error; err != nil {
				return err
			}
			if err := db.Where("created_by = ?", userID).
				Order("purchase_date DESC, id DESC").
				Limit(recentLimit).
				Find(&sum.RecentPurchases).Error; err != nil {
				return err
			}
			return db.Where("stock <= ? AND created_by = ?", s.threshold, userID).
				Order("stock ASC").
				Limit(recentLimit).
				Find(&sum.LowStockProducts).Error
		})
	}
	if err != nil {
		result.Log(s.log, "Get user dashboard summary", err)
		return result.FromError(err).WithData(emptySummary())
	}

	if sum.TopCustomers == nil {
		sum.TopCustomers = []TopCustomer{}
	}
	sum.TotalProfit = sum.TotalSales - sum.TotalPurchases
	return result.OK("", sum)
}
