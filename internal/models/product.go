package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Category    string    `gorm:"size:100" json:"category"`
	Description string    `gorm:"size:500" json:"description"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedBy   uint      `gorm:"index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
