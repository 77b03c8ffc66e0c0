package model

import (
	"time"
)

type Candle struct {
	ID        uint      `gorm:"primarykey"`
	Symbol    string    `gorm:"not null;uniqueIndex:idx_candles_symbol_date"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_candles_symbol_date"`
	Open      float64   `gorm:"not null"`
	High      float64   `gorm:"not null"`
	Low       float64   `gorm:"not null"`
	Close     float64   `gorm:"not null"`
	Volume    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Candle) TableName() string {
	return "candles"
}

type GetCandlesParam struct {
	Symbol   string
	DateFrom time.Time
	DateTo   time.Time
}
