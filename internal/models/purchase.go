package models

import "time"

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "Pending"
	PurchaseReceived  PurchaseStatus = "Received"
	PurchaseCancelled PurchaseStatus = "Cancelled"
)

func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchasePending, PurchaseReceived, PurchaseCancelled:
		return true
	}
	return false
}

// Purchase: tedarikçiden alım. Stok yalnızca Received durumunda sayılır.
type Purchase struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SupplierID   *uint          `gorm:"index" json:"supplier_id"`
	SupplierName string         `gorm:"column:supplier;size:200" json:"supplier"`
	TotalAmount  float64        `gorm:"not null" json:"total_amount"`
	Status       PurchaseStatus `gorm:"size:20;not null" json:"status"`
	PurchaseDate time.Time      `gorm:"index;not null" json:"purchase_date"`
	CreatedBy    uint           `gorm:"index" json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Items []PurchaseItem `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
}

type PurchaseItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	PurchaseID uint    `gorm:"index;not null" json:"purchase_id"`
	ProductID  uint    `gorm:"index;not null" json:"product_id"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	Price      float64 `gorm:"not null" json:"price"`
}
