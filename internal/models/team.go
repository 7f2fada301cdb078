package models

import "time"

type Team struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `gorm:"not null;default:'#4f46e5'" json:"color"`
	Order     int       `gorm:"column:order_index;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"created_at"`
}
