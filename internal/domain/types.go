package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ClientKind identifies the back-end family that serves a network.
// Multiple networks may share one client kind.
type ClientKind string

const (
	// ClientKindDefault submits mints and burns as direct contract calls
	ClientKindDefault ClientKind = "default"
	// ClientKindImmutable submits signed off-chain mint batches
	ClientKindImmutable ClientKind = "immutable"
)

// ClientKinds lists every supported client kind
var ClientKinds = []ClientKind{ClientKindDefault, ClientKindImmutable}

// Validate reports whether the kind is one of the supported client kinds
func (k ClientKind) Validate() error {
	switch k {
	case ClientKindDefault, ClientKindImmutable:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownClientKind, string(k))
	}
}

// EventKind is the named contract event the correlator listens for
type EventKind string

const (
	// EventKindTransfer is emitted for every mint (from the zero address) and transfer
	EventKindTransfer EventKind = "Transfer"
)

// Network describes a logical network. It is immutable once loaded from configuration.
type Network struct {
	Name         string
	ChainID      uint64
	DisplayName  string
	Slug         string // marketplace chain slug, e.g. "matic"
	CustodyAsset string // custody-network alias, e.g. "MATIC_POLYGON"
	ClientKind   ClientKind
	RPCURL       string
	WebSocketURL string
}

// Contract is the on-chain contract a template mints through
type Contract struct {
	Address string
	ABI     string
	Network string
	Owner   string
	Status  ContractStatus
}

// ContractStatus is the lifecycle status of a contract reference
type ContractStatus string

const (
	ContractStatusActive   ContractStatus = "active"
	ContractStatusInactive ContractStatus = "inactive"
)

// TemplateStatus is the lifecycle status of a mintable template
type TemplateStatus string

const (
	TemplateStatusInit    TemplateStatus = "init"
	TemplateStatusActive  TemplateStatus = "active"
	TemplateStatusPaused  TemplateStatus = "paused"
	TemplateStatusDeleted TemplateStatus = "deleted"
	// TemplateStatusExhausted is set once minted reaches cap
	TemplateStatusExhausted TemplateStatus = "minted"
)

// SaleType controls how a template can be bought
type SaleType string

const (
	SaleTypeInGame SaleType = "IN_GAME"
	SaleTypePublic SaleType = "PUBLIC"
	SaleTypeNone   SaleType = "NONE"
)

// Sale holds the sale terms of a template
type Sale struct {
	Type     SaleType        `json:"type"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// AttributeType is the value type of a template attribute
type AttributeType string

const (
	AttributeTypeText  AttributeType = "text"
	AttributeTypeRange AttributeType = "range"
)

// AttributeOptions describes one attribute of a template schema
type AttributeOptions struct {
	Type              AttributeType `json:"type"`
	Values            []string      `json:"values,omitempty"`
	AutoSelected      bool          `json:"autoSelected"`
	AutoSelectedValue string        `json:"autoSelectedValue,omitempty"`
}

// AttributeSchema maps attribute name to its options
type AttributeSchema map[string]AttributeOptions

// AssetStatus is the lifecycle status of a minted asset record
type AssetStatus string

const (
	AssetStatusPending AssetStatus = "pending"
	AssetStatusMinted  AssetStatus = "minted"
	// AssetStatusNeedsReconciliation marks a pending record whose confirmation never arrived
	AssetStatusNeedsReconciliation AssetStatus = "needs_reconciliation"
	// AssetStatusFailed marks a record whose submission reverted; its units went back to the template
	AssetStatusFailed AssetStatus = "failed"
)

// PaymentStatus is the lifecycle status of a payment request
type PaymentStatus string

const (
	PaymentStatusQuoteRequested PaymentStatus = "payment_quote_requested"
	PaymentStatusSubmitted      PaymentStatus = "payment_request_submitted"
	PaymentStatusApproved       PaymentStatus = "payment_simplexcc_approved"
	PaymentStatusDeclined       PaymentStatus = "payment_simplexcc_declined"
)

// IsTerminal reports whether no further transition is allowed from the status
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusDeclined
}

// ChainEvent is one decoded emission of a contract event
type ChainEvent struct {
	Contract      string
	Kind          EventKind
	SubmissionRef string
	BlockRef      uint64
	From          string
	To            string
	TokenID       string
	Args          map[string]string
}

// PaymentEvent is one event reported by the payment processor
type PaymentEvent struct {
	EventID   string
	Name      PaymentStatus
	PaymentID string
}

// IsTerminal reports whether the event carries a final payment outcome
func (e PaymentEvent) IsTerminal() bool {
	return e.Name.IsTerminal()
}

// AuditEvent is one entry of an append-only audit trail
type AuditEvent struct {
	Actor     string
	Action    string
	Message   string
	Meta      map[string]any
	Timestamp time.Time
}

// NormalizeAddress lower-cases an address for use as a map or lookup key
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
