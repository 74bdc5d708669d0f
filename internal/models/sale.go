package models

import "time"

type SaleStatus string

const (
	SalePending   SaleStatus = "Pending"
	SaleCompleted SaleStatus = "Completed"
	SaleCancelled SaleStatus = "Cancelled"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case SalePending, SaleCompleted, SaleCancelled:
		return true
	}
	return false
}

// Sale: satış oluşturulduğu anda stoktan düşer, durumdan bağımsız.
type Sale struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CustomerID  *uint      `gorm:"index" json:"customer_id"`
	TotalAmount float64    `gorm:"not null" json:"total_amount"`
	Status      SaleStatus `gorm:"size:20;not null" json:"status"`
	SaleDate    time.Time  `gorm:"index;not null" json:"sale_date"`
	CreatedBy   uint       `gorm:"index" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

type SaleItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SaleID    uint    `gorm:"index;not null" json:"sale_id"`
	ProductID uint    `gorm:"index;not null" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}
