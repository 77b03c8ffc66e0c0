package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	BacktestRunKindInSample    = "in_sample"
	BacktestRunKindOutOfSample = "out_of_sample"
	BacktestRunKindAnalysis    = "oos_analysis"
)

type BacktestRun struct {
	ID               uint           `gorm:"primarykey"`
	StrategyName     string         `gorm:"not null"`
	Kind             string         `gorm:"not null;index"`
	StartDate        time.Time      `gorm:"not null"`
	EndDate          time.Time      `gorm:"not null"`
	ParamFingerprint string         `gorm:"not null;index"`
	Params           datatypes.JSON `gorm:"type:jsonb"`
	Result           datatypes.JSON `gorm:"type:jsonb"`
	ValidationLog    datatypes.JSON `gorm:"type:jsonb"`
	FinalValue       float64        `gorm:"not null"`
	TotalReturnPct   float64        `gorm:"not null"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BacktestRun) TableName() string {
	return "backtest_runs"
}

type GetBacktestRunsParam struct {
	StrategyName *string
	Kind         *string
	Limit        int
}
