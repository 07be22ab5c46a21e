package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DirectionLong  = "long"
	DirectionShort = "short"
)

// Trade is one journalled position, open or closed. Direction and
// RMultiple are derived fields but are stored as plain columns so the
// user can override direction when the derivation preconditions are
// not met.
type Trade struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	UserID      string           `gorm:"size:36;index;not null" json:"user_id"`
	TradeNumber int              `gorm:"index" json:"trade_number"`
	TradeDate   time.Time        `gorm:"type:date;index;not null" json:"trade_date"`
	TradeTime   *string          `gorm:"size:20" json:"trade_time,omitempty"`
	Coin        string           `gorm:"size:50;not null" json:"coin"`
	Direction   string           `gorm:"size:10;not null;default:long" json:"direction"`

	EntryOrderType *string `gorm:"size:50" json:"entry_order_type,omitempty"`

	AvgEntry     decimal.Decimal  `gorm:"type:numeric(30,10);not null" json:"avg_entry"`
	StopLoss     *decimal.Decimal `gorm:"type:numeric(30,10)" json:"stop_loss,omitempty"`
	AvgExit      *decimal.Decimal `gorm:"type:numeric(30,10)" json:"avg_exit,omitempty"`
	Risk         *decimal.Decimal `gorm:"type:numeric(30,10)" json:"risk,omitempty"`
	ExpectedLoss *decimal.Decimal `gorm:"type:numeric(30,10)" json:"expected_loss,omitempty"`
	RealisedLoss *decimal.Decimal `gorm:"type:numeric(30,10)" json:"realised_loss,omitempty"`
	RealisedWin  *decimal.Decimal `gorm:"type:numeric(30,10)" json:"realised_win,omitempty"`
	Deviation    *decimal.Decimal `gorm:"type:numeric(30,10)" json:"deviation,omitempty"`
	RMultiple    *decimal.Decimal `gorm:"column:r_multiple;type:numeric(30,10)" json:"r_multiple,omitempty"`

	EarlyExitReason *string `gorm:"type:text" json:"early_exit_reason,omitempty"`
	Rules           *string `gorm:"type:text" json:"rules,omitempty"`
	SystemNumber    *string `gorm:"size:50" json:"system_number,omitempty"`
	Notes           *string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName allows you to control the exact table name for trades.
func (Trade) TableName() string {
	return "trades"
}

// BeforeCreate assigns the store-side identifier. TradeNumber is
// assigned by the repository inside the insert transaction.
func (t *Trade) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// CreateTradePayload carries the client-supplied fields of a new
// trade. ID, trade number and creation timestamp are store-assigned
// and never accepted from the client.
type CreateTradePayload struct {
	TradeDate       time.Time        `json:"trade_date"`
	TradeTime       *string          `json:"trade_time,omitempty"`
	Coin            string           `json:"coin"`
	Direction       string           `json:"direction,omitempty"`
	EntryOrderType  *string          `json:"entry_order_type,omitempty"`
	AvgEntry        decimal.Decimal  `json:"avg_entry"`
	StopLoss        *decimal.Decimal `json:"stop_loss,omitempty"`
	AvgExit         *decimal.Decimal `json:"avg_exit,omitempty"`
	Risk            *decimal.Decimal `json:"risk,omitempty"`
	ExpectedLoss    *decimal.Decimal `json:"expected_loss,omitempty"`
	RealisedLoss    *decimal.Decimal `json:"realised_loss,omitempty"`
	RealisedWin     *decimal.Decimal `json:"realised_win,omitempty"`
	Deviation       *decimal.Decimal `json:"deviation,omitempty"`
	EarlyExitReason *string          `json:"early_exit_reason,omitempty"`
	Rules           *string          `json:"rules,omitempty"`
	SystemNumber    *string          `json:"system_number,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

// ToTrade builds the draft record for the given owner. A fresh draft
// starts out long unless the client chose otherwise.
func (p CreateTradePayload) ToTrade(userID string) *Trade {
	direction := p.Direction
	if direction == "" {
		direction = DirectionLong
	}

	return &Trade{
		UserID:          userID,
		TradeDate:       p.TradeDate,
		TradeTime:       p.TradeTime,
		Coin:            p.Coin,
		Direction:       direction,
		EntryOrderType:  p.EntryOrderType,
		AvgEntry:        p.AvgEntry,
		StopLoss:        p.StopLoss,
		AvgExit:         p.AvgExit,
		Risk:            p.Risk,
		ExpectedLoss:    p.ExpectedLoss,
		RealisedLoss:    p.RealisedLoss,
		RealisedWin:     p.RealisedWin,
		Deviation:       p.Deviation,
		EarlyExitReason: p.EarlyExitReason,
		Rules:           p.Rules,
		SystemNumber:    p.SystemNumber,
		Notes:           p.Notes,
	}
}

// TradeUpdate carries a partial update for an existing trade. Nil
// means "field not supplied"; supplied fields are merged over the
// stored record and derived fields are recomputed before saving.
type TradeUpdate struct {
	TradeDate       *time.Time       `json:"trade_date,omitempty"`
	TradeTime       *string          `json:"trade_time,omitempty"`
	Coin            *string          `json:"coin,omitempty"`
	Direction       *string          `json:"direction,omitempty"`
	EntryOrderType  *string          `json:"entry_order_type,omitempty"`
	AvgEntry        *decimal.Decimal `json:"avg_entry,omitempty"`
	StopLoss        *decimal.Decimal `json:"stop_loss,omitempty"`
	AvgExit         *decimal.Decimal `json:"avg_exit,omitempty"`
	Risk            *decimal.Decimal `json:"risk,omitempty"`
	ExpectedLoss    *decimal.Decimal `json:"expected_loss,omitempty"`
	RealisedLoss    *decimal.Decimal `json:"realised_loss,omitempty"`
	RealisedWin     *decimal.Decimal `json:"realised_win,omitempty"`
	Deviation       *decimal.Decimal `json:"deviation,omitempty"`
	EarlyExitReason *string          `json:"early_exit_reason,omitempty"`
	Rules           *string          `json:"rules,omitempty"`
	SystemNumber    *string          `json:"system_number,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

// ApplyTo merges the supplied fields onto the stored record.
func (u TradeUpdate) ApplyTo(t *Trade) {
	if u.TradeDate != nil {
		t.TradeDate = *u.TradeDate
	}
	if u.TradeTime != nil {
		t.TradeTime = u.TradeTime
	}
	if u.Coin != nil {
		t.Coin = *u.Coin
	}
	if u.Direction != nil {
		t.Direction = *u.Direction
	}
	if u.EntryOrderType != nil {
		t.EntryOrderType = u.EntryOrderType
	}
	if u.AvgEntry != nil {
		t.AvgEntry = *u.AvgEntry
	}
	if u.StopLoss != nil {
		t.StopLoss = u.StopLoss
	}
	if u.AvgExit != nil {
		t.AvgExit = u.AvgExit
	}
	if u.Risk != nil {
		t.Risk = u.Risk
	}
	if u.ExpectedLoss != nil {
		t.ExpectedLoss = u.ExpectedLoss
	}
	if u.RealisedLoss != nil {
		t.RealisedLoss = u.RealisedLoss
	}
	if u.RealisedWin != nil {
		t.RealisedWin = u.RealisedWin
	}
	if u.Deviation != nil {
		t.Deviation = u.Deviation
	}
	if u.EarlyExitReason != nil {
		t.EarlyExitReason = u.EarlyExitReason
	}
	if u.Rules != nil {
		t.Rules = u.Rules
	}
	if u.SystemNumber != nil {
		t.SystemNumber = u.SystemNumber
	}
	if u.Notes != nil {
		t.Notes = u.Notes
	}
}
