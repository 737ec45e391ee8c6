package store

import (
	"context"
	"time"

	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/store/schema"
)

// HolderLookup identifies a holder by email or external id within a scope
type HolderLookup struct {
	Email      string
	ExternalID string
}

// FinalizeMintInput applies one confirmation to an asset record and its template
type FinalizeMintInput struct {
	AssetID     uint64
	TemplateID  uint64
	Amount      uint64
	TokenID     string
	BlockRef    uint64
	Name        string
	MarketURL   string
	MetadataURL string
	MintedAt    time.Time
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// CreateTemplate inserts a template
	CreateTemplate(ctx context.Context, template *schema.Template) error
	// GetTemplate returns a template or nil when it does not exist
	GetTemplate(ctx context.Context, id uint64) (*schema.Template, error)
	// ReserveCapacity holds amount units of a template for an in-flight mint.
	// It fails with domain.ErrCapExceeded when minted + reserved + amount would exceed cap.
	ReserveCapacity(ctx context.Context, templateID uint64, amount uint64) error
	// ReleaseCapacity returns units held by a mint whose submission failed
	ReleaseCapacity(ctx context.Context, templateID uint64, amount uint64) error

	// CreateContract inserts a contract reference
	CreateContract(ctx context.Context, contract *schema.Contract) error
	// GetActiveContract returns the active contract of a scope on a network or nil
	GetActiveContract(ctx context.Context, scope string, network string) (*schema.Contract, error)

	// CreateHolder inserts a holder
	CreateHolder(ctx context.Context, holder *schema.Holder) error
	// GetHolder returns a holder or nil
	GetHolder(ctx context.Context, id uint64) (*schema.Holder, error)
	// FindHolder returns the holder of a scope matching email or external id, or nil
	FindHolder(ctx context.Context, scope string, lookup HolderLookup) (*schema.Holder, error)
	// GetHolderWallet returns the wallet of a holder on a network or nil
	GetHolderWallet(ctx context.Context, holderID uint64, network string) (*schema.HolderWallet, error)
	// SaveHolderWallet inserts a wallet unless one exists for the holder and network,
	// and returns the stored wallet
	SaveHolderWallet(ctx context.Context, wallet *schema.HolderWallet) (*schema.HolderWallet, error)

	// CreateMintedAsset inserts a pending asset record
	CreateMintedAsset(ctx context.Context, asset *schema.MintedAsset) error
	// GetMintedAsset returns an asset record or nil
	GetMintedAsset(ctx context.Context, id uint64) (*schema.MintedAsset, error)
	// GetLatestMintedAsset returns the most recent asset record of a contract with an assigned token id, or nil
	GetLatestMintedAsset(ctx context.Context, contractAddress string) (*schema.MintedAsset, error)
	// ListUnconfirmedMintedAssets returns pending and needs-reconciliation records, oldest first
	ListUnconfirmedMintedAssets(ctx context.Context, limit int) ([]schema.MintedAsset, error)
	// FinalizeMint moves an unconfirmed asset record to minted and its reserved units to minted
	// in one transaction. It fails with domain.ErrAssetNotPending when the record was already finalized.
	FinalizeMint(ctx context.Context, input FinalizeMintInput) (*schema.Template, error)
	// FailMint moves an unconfirmed asset record to failed and returns its reserved units to the
	// template in one transaction. It fails with domain.ErrAssetNotPending when the record already left
	// the unconfirmed states.
	FailMint(ctx context.Context, assetID uint64) error
	// MarkAssetsNeedReconciliation flags pending records of a contract by lower-cased submission reference
	// and returns the ids of the records it changed
	MarkAssetsNeedReconciliation(ctx context.Context, contractAddress string, refs []string) ([]uint64, error)

	// CreatePaymentRequest inserts a payment request in the quote requested state
	CreatePaymentRequest(ctx context.Context, request *schema.PaymentRequest) error
	// GetPaymentRequestByQuoteID returns a payment request or nil
	GetPaymentRequestByQuoteID(ctx context.Context, quoteID string) (*schema.PaymentRequest, error)
	// GetPaymentRequestByPaymentID returns a payment request or nil
	GetPaymentRequestByPaymentID(ctx context.Context, paymentID string) (*schema.PaymentRequest, error)
	// MarkPaymentSubmitted assigns the external payment id to a quoted request
	MarkPaymentSubmitted(ctx context.Context, quoteID string, paymentID string, orderID string) error
	// SettlePayment moves a submitted request to a terminal status
	SettlePayment(ctx context.Context, paymentID string, status domain.PaymentStatus) error
	// LinkPaymentAsset records the asset minted for an approved payment
	LinkPaymentAsset(ctx context.Context, paymentID string, assetID uint64) error
	// ListPaymentRequestsByStatus returns all requests in a status
	ListPaymentRequestsByStatus(ctx context.Context, status domain.PaymentStatus) ([]schema.PaymentRequest, error)

	// AppendAuditEvent appends an entry to the trail of a subject
	AppendAuditEvent(ctx context.Context, subjectType string, subjectID uint64, event domain.AuditEvent) error
	// ListAuditEvents returns the trail of a subject in append order
	ListAuditEvents(ctx context.Context, subjectType string, subjectID uint64) ([]schema.AuditEvent, error)
}
