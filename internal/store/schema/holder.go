package schema

import "time"

// Holder represents the holders table - a player that can receive minted assets
type Holder struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Scope      string    `gorm:"column:scope;not null;type:text;index"`
	Email      string    `gorm:"column:email;type:text;index"`
	ExternalID string    `gorm:"column:external_id;type:text;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Holder) TableName() string {
	return "holders"
}

// HolderWallet represents the holder_wallets table - one address per holder and network
type HolderWallet struct {
	ID       uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	HolderID uint64 `gorm:"column:holder_id;not null;uniqueIndex:idx_holder_wallets_holder_network,priority:1"`
	Network  string `gorm:"column:network;not null;type:text;uniqueIndex:idx_holder_wallets_holder_network,priority:2"`
	Address  string `gorm:"column:address;not null;type:text"`
	// IsExternal is true for wallets created in the custody vault on the holder's behalf
	IsExternal bool      `gorm:"column:is_external;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (HolderWallet) TableName() string {
	return "holder_wallets"
}
