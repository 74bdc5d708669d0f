// Package dbtest testler için bellek içi sqlite bağlantısı ve örnek kayıtlar üretir.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"isletme-backend/internal/config"
	"isletme-backend/internal/database"
	"isletme-backend/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var seq atomic.Int64

// New her test için ayrı, isimli bir bellek içi veritabanı açar.
func New(t testing.TB) *database.Conn {
	t.Helper()

	conn, err := Open(t.Name())
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// Open, testing.TB olmayan yerler (godog senaryoları) için.
func Open(name string) (*database.Conn, error) {
	name = strings.NewReplacer("/", "_", " ", "_", "?", "_", "&", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	return database.Open(context.Background(), config.DatabaseConfig{
		Driver:           config.DriverSQLite,
		DSN:              dsn,
		RetryMaxAttempts: 3,
		RetryCooldown:    5 * time.Second,
	}, zap.NewNop())
}

func User(t testing.TB, conn *database.Conn, email string) models.User {
	t.Helper()
	u := models.User{Name: "Test " + email, Email: email, PasswordHash: "x"}
	require.NoError(t, conn.DB().Create(&u).Error)
	return u
}

func Product(t testing.TB, conn *database.Conn, name string, stock int, createdBy uint) models.Product {
	t.Helper()
	p := models.Product{Name: name, Category: "Genel", Price: 10, Stock: stock, CreatedBy: createdBy}
	require.NoError(t, conn.DB().Create(&p).Error)
	return p
}

func Customer(t testing.TB, conn *database.Conn, name string, createdBy uint) models.Customer {
	t.Helper()
	c := models.Customer{Name: name, CreatedBy: createdBy}
	require.NoError(t, conn.DB().Create(&c).Error)
	return c
}

func Supplier(t testing.TB, conn *database.Conn, name string, createdBy uint) models.Supplier {
	t.Helper()
	s := models.Supplier{Name: name, CreatedBy: createdBy}
	require.NoError(t, conn.DB().Create(&s).Error)
	return s
}

// Stock ürünün güncel stok değerini okur.
func Stock(t testing.TB, conn *database.Conn, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, conn.DB().First(&p, productID).Error)
	return p.Stock
}

func Count(t testing.TB, conn *database.Conn, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := conn.DB().Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
