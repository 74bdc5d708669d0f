package dashboard_test

import (
	"context"
	"testing"
	"time"

	"isletme-backend/internal/dashboard"
	"isletme-backend/internal/database/dbtest"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserDashboardSummary(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	other := dbtest.User(t, conn, "b@example.com")
	ayse := dbtest.Customer(t, conn, "Ayşe", u.ID)
	mehmet := dbtest.Customer(t, conn, "Mehmet", u.ID)
	dbtest.Product(t, conn, "Az kalan", 1, u.ID)
	dbtest.Product(t, conn, "Bol", 100, u.ID)

	now := time.Now().UTC()
	sales := []models.Sale{
		{CustomerID: &ayse.ID, TotalAmount: 100, Status: models.SaleCompleted, SaleDate: now.Add(-2 * time.Hour), CreatedBy: u.ID},
		{CustomerID: &mehmet.ID, TotalAmount: 250, Status: models.SalePending, SaleDate: now.Add(-time.Hour), CreatedBy: u.ID},
		{CustomerID: &ayse.ID, TotalAmount: 999, Status: models.SaleCancelled, SaleDate: now, CreatedBy: u.ID},
		{TotalAmount: 50, Status: models.SaleCompleted, SaleDate: now, CreatedBy: other.ID},
	}
	require.NoError(t, conn.DB().Create(&sales).Error)

	purchases := []models.Purchase{
		{TotalAmount: 120, Status: models.PurchaseReceived, PurchaseDate: now, CreatedBy: u.ID},
		{TotalAmount: 500, Status: models.PurchaseCancelled, PurchaseDate: now, CreatedBy: u.ID},
	}
	require.NoError(t, conn.DB().Create(&purchases).Error)

	svc := dashboard.NewService(conn, nil, 10)
	res := svc.GetUserDashboardSummary(context.Background(), u.ID)
	require.True(t, res.Success, res.Message)
	sum := res.Data.(dashboard.Summary)

	assert.InDelta(t, 350.0, sum.TotalSales, 0.001)
	assert.InDelta(t, 120.0, sum.TotalPurchases, 0.001)
	assert.InDelta(t, 230.0, sum.TotalProfit, 0.001)

	require.Len(t, sum.RecentSales, 3)
	// en yeni satış, iptal edilen
	assert.Equal(t, models.SaleCancelled, sum.RecentSales[0].Status)
	require.NotNil(t, sum.RecentSales[0].CustomerName)
	assert.Equal(t, "Ayşe", *sum.RecentSales[0].CustomerName)

	assert.Len(t, sum.RecentPurchases, 2)
	require.Len(t, sum.LowStockProducts, 1)
	assert.Equal(t, "Az kalan", sum.LowStockProducts[0].Name)

	require.Len(t, sum.TopCustomers, 2)
	assert.Equal(t, "Mehmet", sum.TopCustomers[0].Name)
	assert.InDelta(t, 250.0, sum.TopCustomers[0].TotalSpent, 0.001)
	assert.Equal(t, int64(1), sum.TopCustomers[1].OrderCount)
}

func TestGetUserDashboardSummary_Empty(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	svc := dashboard.NewService(conn, nil, 10)

	res := svc.GetUserDashboardSummary(context.Background(), u.ID)
	require.True(t, res.Success, res.Message)
	sum := res.Data.(dashboard.Summary)
	assert.Zero(t, sum.TotalProfit)
	assert.NotNil(t, sum.TopCustomers)
	assert.NotNil(t, sum.RecentSales)

	res = svc.GetUserDashboardSummary(context.Background(), 0)
	assert.Equal(t, result.KindValidation, res.Kind)
	assert.IsType(t, dashboard.Summary{}, res.Data)
}
