package schema

import (
	"time"

	"github.com/feral-file/ff-minter/internal/domain"
)

// Contract represents the contracts table - the contract a scope mints through on one network
type Contract struct {
	ID      uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Scope   string `gorm:"column:scope;not null;type:text;index:idx_contracts_scope_network,priority:1"`
	Network string `gorm:"column:network;not null;type:text;index:idx_contracts_scope_network,priority:2"`
	Address string `gorm:"column:address;not null;type:text"`
	// ABI is the JSON interface descriptor; empty means the built-in mint/burn interface
	ABI       string                `gorm:"column:abi;type:text"`
	Owner     string                `gorm:"column:owner;not null;type:text"`
	Status    domain.ContractStatus `gorm:"column:status;not null;type:text"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (Contract) TableName() string {
	return "contracts"
}

// ToDomain converts the row into a domain contract reference
func (c *Contract) ToDomain() domain.Contract {
	return domain.Contract{
		Address: c.Address,
		ABI:     c.ABI,
		Network: c.Network,
		Owner:   c.Owner,
		Status:  c.Status,
	}
}
