package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-minter/internal/domain"
)

// Template represents the templates table - a mintable token definition owned by a scope (game)
type Template struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Scope is the owning game or tenant; requests from another scope are rejected
	Scope string `gorm:"column:scope;not null;type:text;index"`
	// ShortID is the template number passed to the contract mint call
	ShortID uint64 `gorm:"column:short_id;not null"`
	Name    string `gorm:"column:name;not null;type:text"`
	// Network is the logical network name the template mints on
	Network  string `gorm:"column:network;not null;type:text"`
	ImageURL string `gorm:"column:image_url;type:text"`
	Cap      uint64 `gorm:"column:cap;not null"`
	// Minted counts confirmed units
	Minted uint64 `gorm:"column:minted;not null;default:0"`
	// Reserved counts units submitted but not yet confirmed; minted + reserved never exceeds cap
	Reserved uint64 `gorm:"column:reserved;not null;default:0"`
	// Attributes holds the domain.AttributeSchema as JSON
	Attributes   datatypes.JSON        `gorm:"column:attributes"`
	SaleType     domain.SaleType       `gorm:"column:sale_type;not null;type:text;default:'NONE'"`
	SalePrice    decimal.Decimal       `gorm:"column:sale_price;type:numeric;not null;default:0"`
	SaleCurrency string                `gorm:"column:sale_currency;type:text"`
	Status       domain.TemplateStatus `gorm:"column:status;not null;type:text;index"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Template) TableName() string {
	return "templates"
}

// Remaining returns the units that can still be reserved
func (t *Template) Remaining() uint64 {
	used := t.Minted + t.Reserved
	if used >= t.Cap {
		return 0
	}
	return t.Cap - used
}
