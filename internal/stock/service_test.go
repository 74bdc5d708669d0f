package stock_test

import (
	"context"
	"testing"

	"isletme-backend/internal/database/dbtest"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"
	"isletme-backend/internal/stock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStockMovement_Validation(t *testing.T) {
	conn := dbtest.New(t)
	svc := stock.NewService(conn, nil, 10)
	ctx := context.Background()

	res := svc.AddStockMovement(ctx, stock.MovementInput{ProductID: 1, Quantity: 1, Type: models.MovementIn}, 1)
	assert.False(t, res.Success)
	assert.Equal(t, result.KindValidation, res.Kind)
	assert.Equal(t, "Product ID, quantity, type, source, and user ID are required", res.Message)

	res = svc.AddStockMovement(ctx, stock.MovementInput{ProductID: 1, Quantity: 1, Type: "sideways", Source: models.SourceManual}, 1)
	assert.Equal(t, "Type must be 'in' or 'out'", res.Message)
}

func TestAddStockMovement_InAndOut(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	p := dbtest.Product(t, conn, "Zımba", 4, u.ID)
	svc := stock.NewService(conn, nil, 10)
	ctx := context.Background()

	res := svc.AddStockMovement(ctx, stock.MovementInput{ProductID: p.ID, Quantity: 6, Type: models.MovementIn, Source: models.SourceManual}, u.ID)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Stock movement recorded successfully", res.Message)
	assert.Equal(t, 10, dbtest.Stock(t, conn, p.ID))

	res = svc.AddStockMovement(ctx, stock.MovementInput{ProductID: p.ID, Quantity: 11, Type: models.MovementOut, Source: models.SourceManual}, u.ID)
	assert.False(t, res.Success)
	assert.Equal(t, result.KindBusiness, res.Kind)
	assert.Equal(t, "Insufficient stock for this operation", res.Message)
	assert.Equal(t, 10, dbtest.Stock(t, conn, p.ID))

	res = svc.AddStockMovement(ctx, stock.MovementInput{ProductID: 999, Quantity: 1, Type: models.MovementOut, Source: models.SourceManual}, u.ID)
	assert.Equal(t, result.KindNotFound, res.Kind)
	assert.Equal(t, "Product not found", res.Message)
}

func TestAddStockMovement_OtherUsersProduct(t *testing.T) {
	conn := dbtest.New(t)
	owner := dbtest.User(t, conn, "a@example.com")
	other := dbtest.User(t, conn, "b@example.com")
	p := dbtest.Product(t, conn, "Zımba", 10, owner.ID)
	svc := stock.NewService(conn, nil, 10)
	ctx := context.Background()

	for _, typ := range []models.MovementType{models.MovementOut, models.MovementIn} {
		res := svc.AddStockMovement(ctx, stock.MovementInput{ProductID: p.ID, Quantity: 2, Type: typ, Source: models.SourceManual}, other.ID)
		assert.Equal(t, result.KindNotFound, res.Kind, string(typ))
		assert.Equal(t, "Product not found", res.Message)
	}
	assert.Equal(t, 10, dbtest.Stock(t, conn, p.ID))

	require.True(t, svc.AddStockMovement(ctx, stock.MovementInput{ProductID: p.ID, Quantity: 2, Type: models.MovementOut, Source: models.SourceManual}, owner.ID).Success)
	assert.Len(t, svc.GetStockHistory(ctx, p.ID, owner.ID).Data.([]stock.MovementView), 1)
	assert.Empty(t, svc.GetStockHistory(ctx, p.ID, other.ID).Data.([]stock.MovementView))
}

func TestGetStockHistory_JoinsNames(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	other := dbtest.User(t, conn, "b@example.com")
	p := dbtest.Product(t, conn, "Klasör", 0, u.ID)
	q := dbtest.Product(t, conn, "Başkasının", 0, other.ID)
	svc := stock.NewService(conn, nil, 10)
	ctx := context.Background()

	for _, in := range []stock.MovementInput{
		{ProductID: p.ID, Quantity: 3, Type: models.MovementIn, Source: models.SourceManual},
		{ProductID: p.ID, Quantity: 1, Type: models.MovementOut, Source: models.SourceManual},
	} {
		require.True(t, svc.AddStockMovement(ctx, in, u.ID).Success)
	}
	require.True(t, svc.AddStockMovement(ctx, stock.MovementInput{ProductID: q.ID, Quantity: 1, Type: models.MovementIn, Source: models.SourceManual}, other.ID).Success)

	res := svc.GetStockHistory(ctx, p.ID, 0)
	require.True(t, res.Success)
	rows := res.Data.([]stock.MovementView)
	require.Len(t, rows, 2)
	// en yeni önce
	assert.Equal(t, models.MovementOut, rows[0].Type)
	assert.Equal(t, 2, rows[0].StockAfter)
	assert.Equal(t, "Klasör", rows[0].ProductName)
	assert.Equal(t, u.Name, rows[0].UserName)

	res = svc.GetStockHistory(ctx, 0, other.ID)
	assert.Len(t, res.Data.([]stock.MovementView), 1)

	res = svc.GetStockHistory(ctx, 0, 0)
	assert.Len(t, res.Data.([]stock.MovementView), 3)
}

func TestGetLowStockProducts(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	dbtest.Product(t, conn, "Az", 2, u.ID)
	dbtest.Product(t, conn, "Sıfır", 0, u.ID)
	dbtest.Product(t, conn, "Bol", 50, u.ID)
	svc := stock.NewService(conn, nil, 10)
	ctx := context.Background()

	res := svc.GetLowStockProducts(ctx, u.ID, 0)
	require.True(t, res.Success)
	products := res.Data.([]models.Product)
	require.Len(t, products, 2)
	assert.Equal(t, "Sıfır", products[0].Name)

	res = svc.GetLowStockProducts(ctx, u.ID, 100)
	assert.Len(t, res.Data.([]models.Product), 3)
}

func TestGetStockSummary(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	p := dbtest.Product(t, conn, "A", 3, u.ID)
	dbtest.Product(t, conn, "B", 0, u.ID)
	dbtest.Product(t, conn, "C", 20, u.ID)
	svc := stock.NewService(conn, nil, 5)
	ctx := context.Background()

	require.True(t, svc.AddStockMovement(ctx, stock.MovementInput{ProductID: p.ID, Quantity: 1, Type: models.MovementOut, Source: models.SourceManual}, u.ID).Success)

	res := svc.GetStockSummary(ctx, u.ID)
	require.True(t, res.Success, res.Message)
	sum := res.Data.(stock.Summary)
	assert.Equal(t, int64(3), sum.TotalProducts)
	// fiyatlar 10: (2 + 0 + 20) * 10
	assert.InDelta(t, 220.0, sum.StockValue, 0.001)
	assert.Equal(t, int64(2), sum.LowStockCount)
	assert.Equal(t, int64(1), sum.OutOfStockCount)
	require.Len(t, sum.RecentMovements, 1)
	assert.Equal(t, "A", sum.RecentMovements[0].ProductName)
}
