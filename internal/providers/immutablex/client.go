package immutablex

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/store"
)

const (
	mintsPath = "/v2/mints"
	burnsPath = "/v1/burns"
)

// Config holds the configuration of the off-chain mint client
type Config struct {
	APIURL         string
	APIKey         string
	SignerKey      string
	RoyaltyAddress string
	RoyaltyPercent float64
	// MetadataBaseURL is the public base of the metadata blobs referenced by blueprints
	MetadataBaseURL string
}

type royalty struct {
	Recipient  string  `json:"recipient"`
	Percentage float64 `json:"percentage"`
}

type mintToken struct {
	ID        string `json:"id"`
	Blueprint string `json:"blueprint"`
}

type mintUser struct {
	User   string      `json:"user"`
	Tokens []mintToken `json:"tokens"`
}

type mintRequest struct {
	ContractAddress string     `json:"contract_address"`
	Royalties       []royalty  `json:"royalties,omitempty"`
	Users           []mintUser `json:"users"`
	AuthSignature   string     `json:"auth_signature,omitempty"`
}

type burnToken struct {
	Type string        `json:"type"`
	Data burnTokenData `json:"data"`
}

type burnTokenData struct {
	TokenID      string `json:"token_id"`
	TokenAddress string `json:"token_address"`
}

type burnRequest struct {
	Sender        string    `json:"sender"`
	Token         burnToken `json:"token"`
	Quantity      string    `json:"quantity"`
	AuthSignature string    `json:"auth_signature,omitempty"`
}

// Client mints through a signed off-chain mint API. A mint is final once the API accepts it,
// so submissions carry no reference and there is no event stream.
type Client struct {
	cfg        Config
	httpClient adapter.HTTPClient
	jcs        adapter.JCS
	store      store.Store
	key        *ecdsa.PrivateKey
	address    common.Address

	mu     sync.Mutex
	issued map[string]uint64
}

var _ chain.Client = (*Client)(nil)

// NewClient creates a new off-chain mint client
func NewClient(cfg Config, httpClient adapter.HTTPClient, jcs adapter.JCS, st store.Store) (*Client, error) {
	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		jcs:        jcs,
		store:      st,
		issued:     make(map[string]uint64),
	}

	if cfg.SignerKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.SignerKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid signer key: %w", err)
		}
		c.key = key
		c.address = crypto.PubkeyToAddress(key.PublicKey)
	}

	return c, nil
}

func (c *Client) Kind() domain.ClientKind {
	return domain.ClientKindImmutable
}

// SubmitMint assigns the next token id of the contract and mints it to the holder
func (c *Client) SubmitMint(ctx context.Context, call chain.MintCall) (*chain.Submission, error) {
	if call.Amount != 1 {
		return nil, fmt.Errorf("%w: off-chain mints issue one token per call, got %d", domain.ErrInvalidAmount, call.Amount)
	}
	if err := c.checkSigner(call.Contract); err != nil {
		return nil, err
	}

	contract := domain.NormalizeAddress(call.Contract.Address)

	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.nextTokenID(ctx, contract)
	if err != nil {
		return nil, err
	}
	tokenID := strconv.FormatUint(next, 10)

	key, err := chain.MetadataKey(domain.ClientKindImmutable, call.Scope, call.TemplateShortID, tokenID)
	if err != nil {
		return nil, err
	}
	metadataURL := chain.PublicURL(c.cfg.MetadataBaseURL, key)

	req := mintRequest{
		ContractAddress: contract,
		Users: []mintUser{
			{
				User:   strings.ToLower(call.To),
				Tokens: []mintToken{{ID: tokenID, Blueprint: fmt.Sprintf("%s:%s", tokenID, metadataURL)}},
			},
		},
	}
	if c.cfg.RoyaltyAddress != "" {
		req.Royalties = []royalty{{Recipient: strings.ToLower(c.cfg.RoyaltyAddress), Percentage: c.cfg.RoyaltyPercent}}
	}

	req.AuthSignature, err = c.sign(req)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Minting with metadata url", zap.String("metadata_url", metadataURL), zap.String("token_id", tokenID))

	resp, err := c.post(ctx, mintsPath, []mintRequest{req})
	if err != nil {
		return nil, fmt.Errorf("failed to submit mint: %w", err)
	}

	txID := gjson.GetBytes(resp, "results.0.tx_id")
	if !txID.Exists() {
		return nil, fmt.Errorf("mint response without transaction id: %s", string(resp))
	}
	if assigned := gjson.GetBytes(resp, "results.0.token_id").String(); assigned != "" && assigned != tokenID {
		logger.WarnCtx(ctx, "Mint API assigned a different token id",
			zap.String("requested", tokenID), zap.String("assigned", assigned))
		tokenID = assigned
	}

	c.issued[contract] = next
	logger.InfoCtx(ctx, "Mint request accepted", zap.String("tx_id", txID.String()), zap.String("token_id", tokenID))

	return &chain.Submission{TokenID: tokenID, ExternalID: txID.String()}, nil
}

// SubmitBurn sends one signed burn request per token id. Accepted burns are final.
func (c *Client) SubmitBurn(ctx context.Context, call chain.BurnCall) (*chain.Submission, error) {
	if len(call.TokenIDs) == 0 {
		return nil, fmt.Errorf("no token ids to burn")
	}
	if err := c.checkSigner(call.Contract); err != nil {
		return nil, err
	}

	amount := call.Amount
	if amount == 0 {
		amount = 1
	}

	transferIDs := make([]string, 0, len(call.TokenIDs))
	for _, id := range call.TokenIDs {
		req := burnRequest{
			Sender: strings.ToLower(call.From),
			Token: burnToken{
				Type: "ERC721",
				Data: burnTokenData{TokenID: id, TokenAddress: domain.NormalizeAddress(call.Contract.Address)},
			},
			Quantity: strconv.FormatUint(amount, 10),
		}

		sig, err := c.sign(req)
		if err != nil {
			return nil, err
		}
		req.AuthSignature = sig

		resp, err := c.post(ctx, burnsPath, req)
		if err != nil {
			return nil, fmt.Errorf("failed to submit burn of token %s: %w", id, err)
		}

		transferID := gjson.GetBytes(resp, "transfer_id").String()
		logger.InfoCtx(ctx, "Burn request accepted", zap.String("token_id", id), zap.String("transfer_id", transferID))
		transferIDs = append(transferIDs, transferID)
	}

	return &chain.Submission{ExternalID: strings.Join(transferIDs, ",")}, nil
}

func (c *Client) SubscribeEvents(_ context.Context, _ domain.Network, _ string, _ domain.EventKind, _ chain.EventHandler) (chain.Subscription, error) {
	return nil, domain.ErrEventStreamUnsupported
}

// LookupSubmission always reports nothing: accepted mints are finalized at submission
func (c *Client) LookupSubmission(_ context.Context, _ domain.Network, _ string, _ domain.EventKind, _ string) (*domain.ChainEvent, error) {
	return nil, nil
}

// nextTokenID must be called with c.mu held
func (c *Client) nextTokenID(ctx context.Context, contract string) (uint64, error) {
	latest, err := c.store.GetLatestMintedAsset(ctx, contract)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest minted asset: %w", err)
	}

	var last uint64
	if latest != nil {
		last, err = strconv.ParseUint(latest.TokenID, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid token id %q of asset %d: %w", latest.TokenID, latest.ID, err)
		}
	}
	if issued := c.issued[contract]; issued > last {
		last = issued
	}

	return last + 1, nil
}

func (c *Client) checkSigner(contract domain.Contract) error {
	if c.key == nil {
		return fmt.Errorf("%w: no off-chain signer key", domain.ErrSignerNotConfigured)
	}
	if contract.Owner != "" && !strings.EqualFold(contract.Owner, c.address.Hex()) {
		return fmt.Errorf("%w: owner %s of %s", domain.ErrSignerNotConfigured, contract.Owner, contract.Address)
	}
	return nil
}

// sign returns the personal signature of the keccak256 hash of the canonical request
func (c *Client) sign(payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	canonical, err := c.jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize payload: %w", err)
	}

	digest := crypto.Keccak256(canonical)
	sig, err := crypto.Sign(accounts.TextHash(digest), c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("x-api-key", c.cfg.APIKey)

	return c.httpClient.Do(ctx, adapter.Request{
		Method: http.MethodPost,
		URL:    strings.TrimSuffix(c.cfg.APIURL, "/") + path,
		Header: header,
		Body:   body,
	})
}
