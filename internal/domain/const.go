package domain

// ZeroAddress is recorded as the source address of a mint
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// ActorSystem is the audit actor for transitions driven by confirmations and sweeps
const ActorSystem = "system"

// MetadataContentType is the content type of generated metadata documents
const MetadataContentType = "application/json"

// PaymentMintAmount is the number of units minted for one approved payment
const PaymentMintAmount = 1

// Audit actions
const (
	ActionMintSubmitted    = "mint_submitted"
	ActionMintFinalized    = "mint_finalized"
	ActionMintExpired      = "mint_expired"
	ActionMintReverted     = "mint_reverted"
	ActionBurnSubmitted    = "burn_submitted"
	ActionQuoteRequested   = "quote_requested"
	ActionPaymentSubmitted = "payment_submitted"
	ActionPaymentSettled   = "payment_settled"
	ActionWalletCreated    = "wallet_created"
)

// Audit subjects
const (
	SubjectTemplate = "template"
	SubjectAsset    = "minted_asset"
	SubjectPayment  = "payment_request"
	SubjectHolder   = "holder"
)
