package models

import "time"

const (
	SettingsRowID        = 1
	DefaultStakeAmount   = 200
	DefaultChallengeName = "The Challenge"
	DefaultRules         = "1. Log your habits daily.\n2. Be honest!"
	DefaultChallengeDays = 30
)

type ChallengeSettings struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Name        string    `gorm:"not null" json:"name"`
	StartDate   string    `gorm:"not null" json:"start_date"`
	EndDate     string    `gorm:"not null" json:"end_date"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	Rules       string    `gorm:"not null;default:''" json:"rules"`
	StakeAmount float64   `gorm:"not null" json:"stake_amount"`
	UpdatedAt   time.Time `json:"updated_at"`
}
