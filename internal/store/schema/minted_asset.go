package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-minter/internal/domain"
)

// MintedAsset represents the minted_assets table. A row is created pending when a chain client
// accepts a submission and moves to minted exactly once when the confirmation is applied.
type MintedAsset struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	TemplateID uint64 `gorm:"column:template_id;not null;index"`
	Scope      string `gorm:"column:scope;not null;type:text"`
	Network    string `gorm:"column:network;not null;type:text"`
	// ContractAddress is lower-cased
	ContractAddress string `gorm:"column:contract_address;not null;type:text;index:idx_minted_assets_contract_ref,priority:1"`
	// TokenID is the id returned at submission and replaced by the confirmed id
	TokenID       string  `gorm:"column:token_id;type:text"`
	HolderID      *uint64 `gorm:"column:holder_id"`
	HolderEmail   string  `gorm:"column:holder_email;type:text"`
	HolderAddress string  `gorm:"column:holder_address;not null;type:text"`
	SourceAddress string  `gorm:"column:source_address;not null;type:text"`
	// SubmissionRef is the transaction hash; empty for back-ends that confirm synchronously
	SubmissionRef string             `gorm:"column:submission_ref;type:text;index:idx_minted_assets_contract_ref,priority:2"`
	BlockRef      uint64             `gorm:"column:block_ref"`
	Amount        uint64             `gorm:"column:amount;not null"`
	Name          string             `gorm:"column:name;type:text"`
	MarketURL     string             `gorm:"column:market_url;type:text"`
	ImageURL      string             `gorm:"column:image_url;type:text"`
	MetadataURL   string             `gorm:"column:metadata_url;type:text"`
	Attributes    datatypes.JSON     `gorm:"column:attributes"`
	Status        domain.AssetStatus `gorm:"column:status;not null;type:text;index"`
	MintedAt      *time.Time         `gorm:"column:minted_at"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (MintedAsset) TableName() string {
	return "minted_assets"
}
