package supplier_test

import (
	"context"
	"testing"
	"time"

	"isletme-backend/internal/database/dbtest"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"
	"isletme-backend/internal/supplier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierLifecycle(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	svc := supplier.NewService(conn, nil)
	ctx := context.Background()

	res := svc.AddSupplier(ctx, supplier.Input{}, u.ID)
	assert.Equal(t, result.KindValidation, res.Kind)
	assert.Equal(t, "Name is required", res.Message)

	res = svc.AddSupplier(ctx, supplier.Input{Name: "Değirmen A.Ş.", Phone: "0212"}, u.ID)
	require.True(t, res.Success, res.Message)
	sp := res.Data.(models.Supplier)

	res = svc.UpdateSupplier(ctx, sp.ID, supplier.Input{Name: "Değirmen Ltd."}, u.ID)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Değirmen Ltd.", res.Data.(models.Supplier).Name)

	require.NoError(t, conn.DB().Create(&models.Purchase{
		SupplierID:   &sp.ID,
		TotalAmount:  10,
		Status:       models.PurchasePending,
		PurchaseDate: time.Now(),
		CreatedBy:    u.ID,
	}).Error)

	list := svc.GetSuppliers(ctx, u.ID).Data.([]supplier.View)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].PurchaseCount)

	res = svc.DeleteSupplier(ctx, sp.ID, u.ID)
	assert.Equal(t, result.KindBusiness, res.Kind)
	assert.Equal(t, "Cannot delete supplier with existing purchases", res.Message)

	require.NoError(t, conn.DB().Where("supplier_id = ?", sp.ID).Delete(&models.Purchase{}).Error)
	res = svc.DeleteSupplier(ctx, sp.ID, u.ID)
	require.True(t, res.Success, res.Message)

	res = svc.DeleteSupplier(ctx, sp.ID, u.ID)
	assert.Equal(t, "Supplier not found", res.Message)
}
