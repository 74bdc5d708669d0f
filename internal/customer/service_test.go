package customer_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"isletme-backend/internal/auth"
	"isletme-backend/internal/customer"
	"isletme-backend/internal/database/dbtest"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerLifecycle(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	svc := customer.NewService(conn, nil)
	ctx := context.Background()

	res := svc.AddCustomer(ctx, customer.Input{Name: "  "}, u.ID)
	assert.Equal(t, "Name is required", res.Message)

	res = svc.AddCustomer(ctx, customer.Input{Name: "Ayşe", Email: " ayse@example.com "}, u.ID)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Customer added successfully", res.Message)
	c := res.Data.(models.Customer)
	assert.Equal(t, "ayse@example.com", c.Email)

	res = svc.UpdateCustomer(ctx, c.ID, customer.Input{Name: "Ayşe Yılmaz"}, u.ID)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Ayşe Yılmaz", res.Data.(models.Customer).Name)

	res = svc.UpdateCustomer(ctx, 0, customer.Input{Name: "x"}, u.ID)
	assert.Equal(t, "ID and name are required", res.Message)

	// satış sayısı sorgu anında hesaplanır
	require.NoError(t, conn.DB().Create(&models.Sale{CustomerID: &c.ID, TotalAmount: 5, Status: models.SaleCompleted, SaleDate: time.Now(), CreatedBy: u.ID}).Error)
	list := svc.GetCustomers(ctx, u.ID).Data.([]customer.View)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].OrderCount)

	res = svc.DeleteCustomer(ctx, c.ID, u.ID)
	assert.Equal(t, result.KindBusiness, res.Kind)
	assert.Equal(t, "Cannot delete customer with existing sales", res.Message)

	require.NoError(t, conn.DB().Where("customer_id = ?", c.ID).Delete(&models.Sale{}).Error)
	res = svc.DeleteCustomer(ctx, c.ID, u.ID)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Customer deleted successfully", res.Message)

	assert.Equal(t, int64(3), dbtest.Count(t, conn, &models.AuditLog{}, "entity_type = ?", "customer"))
}

func TestCustomer_OtherUserCannotTouch(t *testing.T) {
	conn := dbtest.New(t)
	owner := dbtest.User(t, conn, "a@example.com")
	other := dbtest.User(t, conn, "b@example.com")
	c := dbtest.Customer(t, conn, "Ayşe", owner.ID)
	svc := customer.NewService(conn, nil)
	ctx := context.Background()

	assert.Equal(t, "Customer not found", svc.UpdateCustomer(ctx, c.ID, customer.Input{Name: "x"}, other.ID).Message)
	assert.Equal(t, "Customer not found", svc.DeleteCustomer(ctx, c.ID, other.ID).Message)
	assert.Empty(t, svc.GetCustomers(ctx, other.ID).Data)
}

func TestCreateCustomerHandler(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")
	svc := customer.NewService(conn, nil)

	app := fiber.New(fiber.Config{ErrorHandler: result.ErrorHandler(nil)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, u.ID)
		return c.Next()
	})
	app.Post("/customers", customer.CreateCustomerHandler(svc))
	app.Delete("/customers/:id", customer.DeleteCustomerHandler(svc))

	req := httptest.NewRequest("POST", "/customers", strings.NewReader("name=Mehmet&phone=555"))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Success bool            `json:"success"`
		Data    models.Customer `json:"data"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Mehmet", body.Data.Name)
	assert.Equal(t, u.ID, body.Data.CreatedBy)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/customers/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/customers/999", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
