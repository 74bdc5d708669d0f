package audit_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"isletme-backend/internal/audit"
	"isletme-backend/internal/auth"
	"isletme-backend/internal/database/dbtest"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWriteLog(t *testing.T) {
	conn := dbtest.New(t)
	u := dbtest.User(t, conn, "a@example.com")

	err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
		return audit.WriteLog(tx, audit.LogOptions{
			UserID:      u.ID,
			EntityType:  audit.EntityProduct,
			EntityID:    7,
			Action:      models.AuditActionUpdate,
			Description: "Product updated: Kalem",
			Before:      map[string]int{"stock": 1},
			After:       map[string]int{"stock": 2},
		})
	})
	require.NoError(t, err)

	var l models.AuditLog
	require.NoError(t, conn.DB().First(&l).Error)
	assert.Equal(t, u.Name, l.UserName)
	assert.JSONEq(t, `{"stock":1}`, l.BeforeData)
	assert.JSONEq(t, `{"stock":2}`, l.AfterData)
}

func TestWriteLog_NilPayloadsAreJSONNull(t *testing.T) {
	conn := dbtest.New(t)

	err := conn.Transaction(context.Background(), func(tx *gorm.DB) error {
		return audit.WriteLog(tx, audit.LogOptions{UserName: "sistem", EntityType: audit.EntitySale, Action: models.AuditActionDelete})
	})
	require.NoError(t, err)

	var l models.AuditLog
	require.NoError(t, conn.DB().First(&l).Error)
	assert.Equal(t, "null", l.BeforeData)
	assert.Equal(t, "null", l.AfterData)
}

func TestListAuditLogsHandler_ScopedToCurrentUser(t *testing.T) {
	conn := dbtest.New(t)
	a := dbtest.User(t, conn, "a@example.com")
	b := dbtest.User(t, conn, "b@example.com")

	for _, opts := range []audit.LogOptions{
		{UserID: a.ID, EntityType: audit.EntityProduct, EntityID: 1, Action: models.AuditActionCreate},
		{UserID: a.ID, EntityType: audit.EntitySale, EntityID: 1, Action: models.AuditActionCreate},
		{UserID: b.ID, EntityType: audit.EntityProduct, EntityID: 1, Action: models.AuditActionCreate},
	} {
		require.NoError(t, conn.Transaction(context.Background(), func(tx *gorm.DB) error {
			return audit.WriteLog(tx, opts)
		}))
	}

	app := fiber.New(fiber.Config{ErrorHandler: result.ErrorHandler(nil)})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, a.ID)
		return c.Next()
	})
	app.Get("/audit-logs", audit.ListAuditLogsHandler(audit.NewService(conn, nil)))

	get := func(target string) (int, []models.AuditLog) {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		var body struct {
			Data []models.AuditLog `json:"data"`
		}
		raw, _ := io.ReadAll(resp.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		return resp.StatusCode, body.Data
	}

	status, logs := get("/audit-logs")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, logs, 2)

	_, logs = get("/audit-logs?entity_type=product&entity_id=1")
	require.Len(t, logs, 1)
	assert.Equal(t, a.ID, logs[0].UserID)

	status, _ = get("/audit-logs?entity_id=x")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
