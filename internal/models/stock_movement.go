package models

import "time"

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

type MovementSource string

const (
	SourcePurchase   MovementSource = "purchase"
	SourceSale       MovementSource = "sale"
	SourceAdjustment MovementSource = "adjustment"
	SourceManual     MovementSource = "manual"
	SourceInitial    MovementSource = "initial"
)

// StockMovement: değiştirilemez stok defteri satırı. Sadece insert edilir.
type StockMovement struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProductID   uint           `gorm:"index;not null" json:"product_id"`
	Quantity    int            `gorm:"not null" json:"quantity"`
	Type        MovementType   `gorm:"size:10;not null" json:"type"`
	Source      MovementSource `gorm:"size:20;not null" json:"source"`
	ReferenceID *uint          `gorm:"index" json:"reference_id"`
	Notes       string         `gorm:"size:500" json:"notes"`
	StockAfter  int            `gorm:"not null" json:"stock_after"`
	CreatedBy   uint           `gorm:"index" json:"created_by"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

type StockHistoryType string

const (
	HistoryIncrease   StockHistoryType = "increase"
	HistoryDecrease   StockHistoryType = "decrease"
	HistoryAdjustment StockHistoryType = "adjustment"
)

// ProductStockHistory: ürün ekranındaki manuel stok geçmişi. stock_movements'tan
// farklı bir etiket şeması kullanır (bkz. DESIGN.md).
type ProductStockHistory struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	ProductID     uint             `gorm:"index;not null" json:"product_id"`
	Quantity      int              `gorm:"not null" json:"quantity"`
	Type          StockHistoryType `gorm:"size:20;not null" json:"type"`
	ReferenceID   *uint            `json:"reference_id"`
	ReferenceType string           `gorm:"size:20" json:"reference_type"`
	Notes         string           `gorm:"size:500" json:"notes"`
	CreatedBy     uint             `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (ProductStockHistory) TableName() string {
	return "product_stock_history"
}
