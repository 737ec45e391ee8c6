package chain

import (
	"context"
	"errors"

	"github.com/feral-file/ff-minter/internal/domain"
)

// ErrSubmissionReverted is returned by LookupSubmission when the submission was included but reverted
var ErrSubmissionReverted = errors.New("transaction reverted")

// MintCall is one mint submission
type MintCall struct {
	Network         domain.Network
	Contract        domain.Contract
	Scope           string
	TemplateShortID uint64
	To              string
	Amount          uint64
}

// BurnCall is one burn submission. Several token ids are burned in one batch call.
type BurnCall struct {
	Network  domain.Network
	Contract domain.Contract
	From     string
	TokenIDs []string
	Amount   uint64
}

// Submission is the handle returned once a back-end accepted a call
type Submission struct {
	// Ref is the transaction hash. Empty means the back-end confirmed synchronously.
	Ref string
	// TokenID is the id assigned at submission time, if the back-end assigns one
	TokenID string
	// ExternalID is a back-end specific receipt such as an off-chain transaction id
	ExternalID string
}

// EventHandler receives decoded contract events in stream order
type EventHandler func(event domain.ChainEvent)

// Subscription is a live event stream. Err delivers at most one error when the stream fails.
type Subscription interface {
	Err() <-chan error
	Unsubscribe()
}

// Client submits calls to one back-end family and streams its contract events
//
//go:generate mockgen -source=chain.go -destination=../mocks/chain.go -package=mocks -mock_names=Client=MockChainClient,CustodyClient=MockCustodyClient,Marketplace=MockMarketplace,Subscription=MockSubscription
type Client interface {
	// Kind returns the client kind this back-end serves
	Kind() domain.ClientKind
	// SubmitMint submits a mint and returns once the back-end accepted it
	SubmitMint(ctx context.Context, call MintCall) (*Submission, error)
	// SubmitBurn submits a burn; acceptance is treated as final
	SubmitBurn(ctx context.Context, call BurnCall) (*Submission, error)
	// SubscribeEvents attaches a live stream of one event kind of a contract.
	// It returns once the stream is established; handler runs on the stream goroutine.
	SubscribeEvents(ctx context.Context, network domain.Network, contract string, kind domain.EventKind, handler EventHandler) (Subscription, error)
	// LookupSubmission returns the confirmation event of a submission, or nil when it is not confirmed yet
	LookupSubmission(ctx context.Context, network domain.Network, contract string, kind domain.EventKind, ref string) (*domain.ChainEvent, error)
}

// CustodyClient creates vault wallets for holders without one
type CustodyClient interface {
	// CreateWallet opens a vault account for refID and returns its deposit address on the network
	CreateWallet(ctx context.Context, account string, refID string, network domain.Network) (string, error)
}

// Marketplace derives marketplace URLs and metadata documents
type Marketplace interface {
	// AssetURL returns the marketplace page of a token
	AssetURL(network domain.Network, contract string, tokenID string) string
	// Metadata builds the metadata document of a token from the template schema and caller attributes
	Metadata(name string, image string, schema domain.AttributeSchema, attributes map[string]string) map[string]any
}
