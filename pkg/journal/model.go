package journal

import "time"

// TradeRecord is one executed trade leg as persisted in the trades table.
type TradeRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	TradeID     string    `gorm:"column:trade_id;uniqueIndex"`
	Symbol      string    `gorm:"column:symbol;index"`
	Price       float64   `gorm:"column:price"`
	Volume      int64     `gorm:"column:volume"`
	BuyOrderID  string    `gorm:"column:buy_order_id"`
	BuyUserID   string    `gorm:"column:buy_user_id"`
	SellOrderID string    `gorm:"column:sell_order_id"`
	SellUserID  string    `gorm:"column:sell_user_id"`
	ExecutedAt  time.Time `gorm:"column:executed_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TradeRecord) TableName() string {
	return "trades"
}
