package stock_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"isletme-backend/internal/database/dbtest"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"
	"isletme-backend/internal/stock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIncrease_WritesMovement(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	p := dbtest.Product(t, conn, "Kalem", 5, u.ID)

	var mv models.StockMovement
	err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
		var err error
		mv, err = stock.Increase(tx, stock.Change{
			ProductID: p.ID,
			Quantity:  3,
			Source:    models.SourceManual,
			Notes:     "sayım",
			UserID:    u.ID,
		})
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 8, dbtest.Stock(t, conn, p.ID))
	assert.Equal(t, models.MovementIn, mv.Type)
	assert.Equal(t, 3, mv.Quantity)
	assert.Equal(t, 8, mv.StockAfter)
	assert.Equal(t, int64(1), dbtest.Count(t, conn, &models.StockMovement{}, "product_id = ?", p.ID))
}

func TestDecrease_InsufficientStockLeavesStockUnchanged(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	p := dbtest.Product(t, conn, "Defter", 5, u.ID)

	err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
		_, err := stock.Decrease(tx, stock.Change{ProductID: p.ID, Quantity: 6, Source: models.SourceSale, UserID: u.ID})
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, result.ErrInsufficientStock))
	assert.Equal(t, fmt.Sprintf("Insufficient stock for product ID %d", p.ID), err.Error())

	assert.Equal(t, 5, dbtest.Stock(t, conn, p.ID))
	assert.Equal(t, int64(0), dbtest.Count(t, conn, &models.StockMovement{}, ""))
}

func TestDecrease_UnknownProduct(t *testing.T) {
	conn := dbtest.New(t)

	err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
		_, err := stock.Decrease(tx, stock.Change{ProductID: 999, Quantity: 1, Source: models.SourceSale})
		return err
	})
	assert.Equal(t, result.KindNotFound, result.KindOf(err))
}

func TestDecrease_OtherOwnerIsNotFound(t *testing.T) {
	conn := dbtest.New(t)
	owner := dbtest.User(t, conn, "a@example.com")
	other := dbtest.User(t, conn, "b@example.com")
	p := dbtest.Product(t, conn, "Kalem", 5, owner.ID)

	err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
		_, err := stock.Decrease(tx, stock.Change{ProductID: p.ID, Quantity: 1, Source: models.SourceSale, UserID: other.ID})
		return err
	})
	assert.Equal(t, result.KindNotFound, result.KindOf(err))
	assert.Equal(t, 5, dbtest.Stock(t, conn, p.ID))
}

func TestDecrease_PrefixedMessage(t *testing.T) {
	conn := dbtest.New(t)
	p := dbtest.Product(t, conn, "Silgi", 1, 1)

	err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
		_, err := stock.Decrease(tx, stock.Change{ProductID: p.ID, Quantity: 2, ErrPrefix: "Cannot delete: "})
		return err
	})
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("Cannot delete: Insufficient stock for product ID %d", p.ID), err.Error())
}

func TestApplyDeltas_NetEffect(t *testing.T) {
	conn := dbtest.New(t)
	a := dbtest.Product(t, conn, "A", 10, 1)
	b := dbtest.Product(t, conn, "B", 2, 1)
	c := dbtest.Product(t, conn, "C", 4, 1)

	var mvs []models.StockMovement
	err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
		var err error
		mvs, err = stock.ApplyDeltas(tx, map[uint]int{a.ID: -4, b.ID: 3, c.ID: 0}, stock.Change{Source: models.SourceSale})
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 6, dbtest.Stock(t, conn, a.ID))
	assert.Equal(t, 5, dbtest.Stock(t, conn, b.ID))
	assert.Equal(t, 4, dbtest.Stock(t, conn, c.ID))
	// sıfır fark defter satırı yazmaz
	require.Len(t, mvs, 2)
	assert.Equal(t, a.ID, mvs[0].ProductID)
	assert.Equal(t, models.MovementOut, mvs[0].Type)
	assert.Equal(t, models.MovementIn, mvs[1].Type)
}

func TestApplyDeltas_RollsBackEverythingOnShortage(t *testing.T) {
	conn := dbtest.New(t)
	a := dbtest.Product(t, conn, "A", 10, 1)
	b := dbtest.Product(t, conn, "B", 1, 1)

	err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
		_, err := stock.ApplyDeltas(tx, map[uint]int{a.ID: -3, b.ID: -2}, stock.Change{Source: models.SourceSale})
		return err
	})
	require.ErrorIs(t, err, result.ErrInsufficientStock)

	assert.Equal(t, 10, dbtest.Stock(t, conn, a.ID))
	assert.Equal(t, 1, dbtest.Stock(t, conn, b.ID))
	assert.Equal(t, int64(0), dbtest.Count(t, conn, &models.StockMovement{}, ""))
}

func TestDecrease_ConcurrentCallersNeverOversell(t *testing.T) {
	conn := dbtest.New(t)
	p := dbtest.Product(t, conn, "Son parça", 5, 1)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
				_, err := stock.Decrease(tx, stock.Change{ProductID: p.ID, Quantity: 1, Source: models.SourceSale})
				return err
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 0, dbtest.Stock(t, conn, p.ID))
}
