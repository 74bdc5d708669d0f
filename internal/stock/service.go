package stock

import (
	"context"
	"errors"

	"isletme-backend/internal/database"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *database.Conn
	log       *zap.Logger
	threshold int
}

func NewService(db *database.Conn, log *zap.Logger, lowStockThreshold int) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log.Named("stock"), threshold: lowStockThreshold}
}

// MovementView defter satırı ve ekranda gösterilen ürün/kullanıcı adları.
type MovementView struct {
	models.StockMovement
	ProductName string `json:"product_name"`
	Category    string `json:"category,omitempty"`
	UserName    string `json:"user_name,omitempty"`
}

type Summary struct {
	TotalProducts   int64          `json:"totalProducts"`
	StockValue      float64        `json:"stockValue"`
	LowStockCount   int64          `json:"lowStockCount"`
	OutOfStockCount int64          `json:"outOfStockCount"`
	RecentMovements []MovementView `json:"recentMovements"`
}

type MovementInput struct {
	ProductID   uint                  `json:"product_id" form:"product_id"`
	Quantity    int                   `json:"quantity" form:"quantity"`
	Type        models.MovementType   `json:"type" form:"type"`
	Source      models.MovementSource `json:"source" form:"source"`
	ReferenceID *uint                 `json:"reference_id" form:"reference_id"`
	Notes       string                `json:"notes" form:"notes"`
}

func movementQuery(db *gorm.DB) *gorm.DB {
	return db.Table("stock_movements AS sm").
		Select("sm.*, p.name AS product_name, p.category AS category, u.name AS user_name").
		Joins("JOIN products p ON sm.product_id = p.id").
		Joins("LEFT JOIN users u ON sm.created_by = u.id").
		Order("sm.created_at DESC, sm.id DESC")
}

// GetStockHistory userID'nin ürünlerine ait defteri döndürür; productID
// verilirse tek ürüne daraltır. İkisi de yoksa tüm defter döner.
func (s *Service) GetStockHistory(ctx context.Context, productID, userID uint) result.Result {
	s.db.ResetBackoff()

	rows := make([]MovementView, 0)
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		q := movementQuery(db)
		if productID > 0 {
			q = q.Where("sm.product_id = ?", productID)
		}
		if userID > 0 {
			q = q.Where("p.created_by = ?", userID)
		}
		return q.Scan(&rows).Error
	})
	if err != nil {
		result.Log(s.log, "Get stock history", err)
		return result.FromError(err).WithData([]MovementView{})
	}
	return result.OK("", rows)
}

func (s *Service) GetLowStockProducts(ctx context.Context, userID uint, threshold int) result.Result {
	s.db.ResetBackoff()
	if threshold <= 0 {
		threshold = s.threshold
	}

	products := make([]models.Product, 0)
	err := s.db.Do(ctx, func(db *gorm.DB) error {
		return db.Where("stock <= ? AND created_by = ?", threshold, userID).
			Order("stock ASC").
			Find(&products).Error
	})
	if err != nil {
		result.Log(s.log, "Get low stock products", err)
		return result.FromError(err).WithData([]models.Product{})
	}
	return result.OK("", products)
}

// AddStockMovement elle girilen bir giriş/çıkış hareketini uygular.
func (s *Service) AddStockMovement(ctx context.Context, in MovementInput, userID uint) result.Result {
	if in.ProductID == 0 || in.Quantity == 0 || in.Type == "" || in.Source == "" || userID == 0 {
		return result.Fail(result.KindValidation, "Product ID, quantity, type, source, and user ID are required")
	}
	if in.Type != models.MovementIn && in.Type != models.MovementOut {
		return result.Fail(result.KindValidation, "Type must be 'in' or 'out'")
	}
	if in.Quantity < 0 {
		return result.Fail(result.KindValidation, "Quantity must be greater than zero")
	}

	s.db.ResetBackoff()

	var mv models.StockMovement
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		ch := Change{
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			Source:      in.Source,
			ReferenceID: in.ReferenceID,
			Notes:       in.Notes,
			UserID:      userID,
		}
		var err error
		if in.Type == models.MovementIn {
			mv, err = Increase(tx, ch)
		} else {
			mv, err = Decrease(tx, ch)
		}
		return err
	})
	switch {
	case errors.Is(err, result.ErrInsufficientStock):
		result.Log(s.log, "Add stock movement", err)
		return result.Fail(result.KindBusiness, "Insufficient stock for this operation")
	case result.KindOf(err) == result.KindNotFound:
		return result.Fail(result.KindNotFound, "Product not found")
	case err != nil:
		result.Log(s.log, "Add stock movement", err)
		return result.FromError(err)
	}

	s.log.Info("stock movement recorded",
		zap.Uint("product_id", mv.ProductID),
		zap.String("type", string(mv.Type)),
		zap.Int("quantity", mv.Quantity),
		zap.Int("stock_after", mv.StockAfter))
	return result.OK("Stock movement recorded successfully", mv)
}

// GetStockSummary sayıları tek tek sqlx ile, son hareketleri gorm ile okur.
func (s *Service) GetStockSummary(ctx context.Context, userID uint) result.Result {
	s.db.ResetBackoff()

	sum := Summary{RecentMovements: make([]MovementView, 0)}
	err := s.db.Query(ctx, func(ctx context.Context, db *sqlx.DB) error {
		if err := db.GetContext(ctx, &sum.TotalProducts,
			db.Rebind("SELECT COUNT(*) FROM products WHERE created_by = ?"), userID); err != nil {
			return err
		}
		if err := db.GetContext(ctx, &sum.StockValue,
			db.Rebind("SELECT COALESCE(SUM(stock * price), 0) FROM products WHERE created_by = ?"), userID); err != nil {
			return err
		}
		if err := db.GetContext(ctx, &sum.LowStockCount,
			db.Rebind("SELECT COUNT(*) FROM products WHERE stock <= ? AND created_by = ?"), s.threshold, userID); err != nil {
			return err
		}
		return db.GetContext(ctx, &sum.OutOfStockCount,
			db.Rebind("SELECT COUNT(*) FROM products WHERE stock = 0 AND created_by = ?"), userID)
	})
	if err == nil {
		err = s.db.Do(ctx, func(db *gorm.DB) error {
			return movementQuery(db).
				Where("p.created_by = ?", userID).
				Limit(5).
				Scan(&sum.RecentMovements).Error
		})
	}
	if err != nil {
		result.Log(s.log, "Get stock summary", err)
		return result.FromError(err).WithData(Summary{RecentMovements: []MovementView{}})
	}
	return result.OK("", sum)
}
