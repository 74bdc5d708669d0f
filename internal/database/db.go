package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"isletme-backend/internal/config"
	"isletme-backend/internal/models"
	"isletme-backend/internal/result"

	"github.com/glebarez/sqlite"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	// glebarez/sqlite sürücüsü "sqlite" adıyla kayıtlı, sqlx bunu tanımıyor.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var ErrConnectionFailed = errors.New("database connection failed")

// RetryPolicy, başarısız bağlantılardan sonra ne kadar süre hızlıca hata
// döneceğimizi belirler. Durum Conn'a aittir, süreç geneline değil.
type RetryPolicy struct {
	MaxAttempts int
	Cooldown    time.Duration
	Now         func() time.Time
}

func (p RetryPolicy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Conn, ilişkisel veritabanına erişen tek nokta. Parametreli ifadeleri
// çalıştırır, bağlantı durumunu ve son hatayı raporlar.
type Conn struct {
	db     *gorm.DB
	sqlxDB *sqlx.DB
	policy RetryPolicy
	log    *zap.Logger

	mu          sync.Mutex
	connected   bool
	lastErr     error
	lastAttempt time.Time
	attempts    int
}

func New(db *gorm.DB, driverName string, policy RetryPolicy, log *zap.Logger) (*Conn, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB alınamadı: %w", err)
	}
	return &Conn{
		db:     db,
		sqlxDB: sqlx.NewDb(sqlDB, driverName),
		policy: policy,
		log:    log,
	}, nil
}

// Open yapılandırmaya göre postgres ya da sqlite bağlantısı açar, bağlantıyı
// test eder ve tabloları migrate eder.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Conn, error) {
	var (
		dialector  gorm.Dialector
		driverName string
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
		driverName = "pgx"
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
		driverName = "sqlite"
	default:
		return nil, fmt.Errorf("desteklenmeyen veritabanı sürücüsü: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite tek yazıcı kabul eder
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	conn, err := New(db, driverName, RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		Cooldown:    cfg.RetryCooldown,
	}, log)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("bağlantı testi başarısız: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	log.Info("Veritabanı bağlantısı başarılı, migration tamamlandı", zap.String("driver", cfg.Driver))
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Supplier{},
		&models.Product{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.Sale{},
		&models.SaleItem{},
		&models.StockMovement{},
		&models.ProductStockHistory{},
		&models.AuditLog{},
	)
}

// DB ham gorm bağlantısı; yalnızca migration ve testler için.
func (c *Conn) DB() *gorm.DB { return c.db }

func (c *Conn) Close() error {
	return c.sqlxDB.Close()
}

// Do tek bir ifade grubunu çalıştırır.
func (c *Conn) Do(ctx context.Context, fn func(db *gorm.DB) error) error {
	if err := c.allow(); err != nil {
		return err
	}
	err := fn(c.db.WithContext(ctx))
	c.record(err)
	return err
}

// Transaction fn'i BEGIN/COMMIT arasında çalıştırır; fn hata dönerse ROLLBACK.
func (c *Conn) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := c.allow(); err != nil {
		return err
	}
	err := c.db.WithContext(ctx).Transaction(fn)
	c.record(err)
	return err
}

// Query ham SQL okumaları için aynı havuzu paylaşan sqlx bağlantısını verir.
func (c *Conn) Query(ctx context.Context, fn func(ctx context.Context, db *sqlx.DB) error) error {
	if err := c.allow(); err != nil {
		return err
	}
	err := fn(ctx, c.sqlxDB)
	c.record(err)
	return err
}

func (c *Conn) Ping(ctx context.Context) error {
	return c.Do(ctx, func(db *gorm.DB) error {
		return db.Exec("SELECT 1").Error
	})
}

func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Conn) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ResetBackoff yeni bir denemeye izin vermek için sayaçları sıfırlar.
func (c *Conn) ResetBackoff() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts = 0
	c.lastAttempt = time.Time{}
}

func (c *Conn) allow() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.policy.now()
	if !c.connected &&
		c.attempts > c.policy.MaxAttempts &&
		now.Sub(c.lastAttempt) < c.policy.Cooldown {
		if c.lastErr != nil {
			return c.lastErr
		}
		return ErrConnectionFailed
	}
	c.lastAttempt = now
	c.attempts++
	return nil
}

func (c *Conn) record(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// İş kuralı hataları ve bulunamayan kayıtlar veritabanının cevap verdiğini gösterir.
	if err == nil || result.KindOf(err) != result.KindDatabase || errors.Is(err, gorm.ErrRecordNotFound) {
		c.connected = true
		c.lastErr = nil
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	c.connected = false
	c.lastErr = err
	c.log.Error("Database query error", zap.Error(err))
}
