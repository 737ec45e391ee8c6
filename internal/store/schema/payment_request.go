package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-minter/internal/domain"
)

// PaymentRequest represents the payment_requests table. The payment id is assigned on submission;
// status only moves forward: quote requested, submitted, then approved or declined.
type PaymentRequest struct {
	ID         uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	QuoteID    string  `gorm:"column:quote_id;not null;type:text;uniqueIndex"`
	PaymentID  *string `gorm:"column:payment_id;type:text;uniqueIndex"`
	OrderID    *string `gorm:"column:order_id;type:text"`
	Scope      string  `gorm:"column:scope;not null;type:text"`
	TemplateID uint64  `gorm:"column:template_id;not null;index"`
	HolderID   uint64  `gorm:"column:holder_id;not null"`
	// UserID is the processor-side end user id
	UserID string `gorm:"column:user_id;type:text"`
	// Amount is the number of units that an approval mints
	Amount        uint64               `gorm:"column:amount;not null"`
	Price         decimal.Decimal      `gorm:"column:price;type:numeric;not null;default:0"`
	TotalAmount   decimal.Decimal      `gorm:"column:total_amount;type:numeric;not null;default:0"`
	FiatCurrency  string               `gorm:"column:fiat_currency;type:text"`
	Meta          datatypes.JSON       `gorm:"column:meta"`
	Status        domain.PaymentStatus `gorm:"column:status;not null;type:text;index"`
	MintedAssetID *uint64              `gorm:"column:minted_asset_id"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentRequest) TableName() string {
	return "payment_requests"
}
