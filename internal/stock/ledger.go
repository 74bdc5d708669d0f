package stock

import (
	"fmt"
	"slices"

	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"gorm.io/gorm"
)

// Change tek bir stok olayını tarif eder. Quantity her zaman pozitiftir,
// yön Increase/Decrease çağrısıyla belirlenir. UserID verilmişse yalnızca o
// kullanıcının ürünü değiştirilir; başkasının ürünü bulunamadı sayılır.
type Change struct {
	ProductID   uint
	Quantity    int
	Source      models.MovementSource
	ReferenceID *uint
	Notes       string
	UserID      uint

	// ErrPrefix yetersiz stok mesajının başına eklenir ("Cannot delete: ").
	ErrPrefix string
}

func owned(tx *gorm.DB, ch Change) *gorm.DB {
	q := tx.Model(&models.Product{}).Where("id = ?", ch.ProductID)
	if ch.UserID > 0 {
		q = q.Where("created_by = ?", ch.UserID)
	}
	return q
}

// Increase stoğu artırır ve bir "in" defter satırı yazar. tx açık bir
// transaction olmalı.
func Increase(tx *gorm.DB, ch Change) (models.StockMovement, error) {
	if ch.Quantity <= 0 {
		return models.StockMovement{}, result.Validation("Quantity must be greater than zero")
	}

	res := owned(tx, ch).
		UpdateColumns(map[string]any{
			"stock":      gorm.Expr("stock + ?", ch.Quantity),
			"updated_at": tx.NowFunc(),
		})
	if res.Error != nil {
		return models.StockMovement{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.StockMovement{}, result.NotFound(fmt.Sprintf("Product ID %d not found", ch.ProductID))
	}

	return writeMovement(tx, ch, models.MovementIn)
}

// Decrease stoğu koşullu tek bir UPDATE ile düşürür: satır yalnızca yeterli
// stok varsa güncellenir, böylece eşzamanlı istekler stoğu eksiye çekemez.
func Decrease(tx *gorm.DB, ch Change) (models.StockMovement, error) {
	if ch.Quantity <= 0 {
		return models.StockMovement{}, result.Validation("Quantity must be greater than zero")
	}

	res := owned(tx, ch).
		Where("stock >= ?", ch.Quantity).
		UpdateColumns(map[string]any{
			"stock":      gorm.Expr("stock - ?", ch.Quantity),
			"updated_at": tx.NowFunc(),
		})
	if res.Error != nil {
		return models.StockMovement{}, res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := owned(tx, ch).Count(&n).Error; err != nil {
			return models.StockMovement{}, err
		}
		if n == 0 {
			return models.StockMovement{}, result.NotFound(fmt.Sprintf("Product ID %d not found", ch.ProductID))
		}
		return models.StockMovement{}, result.InsufficientStock(ch.ErrPrefix, ch.ProductID)
	}

	return writeMovement(tx, ch, models.MovementOut)
}

// Apply işaretli bir farkı uygular; sıfır fark hiçbir şey yazmaz.
func Apply(tx *gorm.DB, delta int, ch Change) (*models.StockMovement, error) {
	var (
		mv  models.StockMovement
		err error
	)
	switch {
	case delta > 0:
		ch.Quantity = delta
		mv, err = Increase(tx, ch)
	case delta < 0:
		ch.Quantity = -delta
		mv, err = Decrease(tx, ch)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mv, nil
}

// ApplyDeltas ürün bazlı net farkları ürün id sırasıyla uygular. Düzenlemelerde
// eski kalemleri geri alıp yenilerini uygulamak yerine tek net hareket yazılır;
// yetersiz stok yalnızca sonuç eksiye düşecekse oluşur.
func ApplyDeltas(tx *gorm.DB, deltas map[uint]int, base Change) ([]models.StockMovement, error) {
	ids := make([]uint, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []models.StockMovement
	for _, id := range ids {
		ch := base
		ch.ProductID = id
		mv, err := Apply(tx, deltas[id], ch)
		if err != nil {
			return nil, err
		}
		if mv != nil {
			out = append(out, *mv)
		}
	}
	return out, nil
}

func writeMovement(tx *gorm.DB, ch Change, typ models.MovementType) (models.StockMovement, error) {
	var after int
	if err := tx.Model(&models.Product{}).
		Select("stock").
		Where("id = ?", ch.ProductID).
		Scan(&after).Error; err != nil {
		return models.StockMovement{}, err
	}

	mv := models.StockMovement{
		ProductID:   ch.ProductID,
		Quantity:    ch.Quantity,
		Type:        typ,
		Source:      ch.Source,
		ReferenceID: ch.ReferenceID,
		Notes:       ch.Notes,
		StockAfter:  after,
		CreatedBy:   ch.UserID,
	}
	if err := tx.Create(&mv).Error; err != nil {
		return models.StockMovement{}, fmt.Errorf("stok hareketi yazılamadı: %w", err)
	}
	return mv, nil
}
