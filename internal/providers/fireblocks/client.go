package fireblocks

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
)

// tokenTTL is the lifetime of one request token; the API rejects tokens valid for more than 30s
const tokenTTL = 29 * time.Second

// Config holds the vault API configuration
type Config struct {
	APIURL string
	APIKey string
	// PrivateKey is the PEM encoded RSA key; PrivateKeyPath is read when it is empty
	PrivateKey     string
	PrivateKeyPath string
}

// requestClaims are the claims of a signed vault API request
type requestClaims struct {
	jwt.RegisteredClaims
	URI      string `json:"uri"`
	Nonce    string `json:"nonce"`
	BodyHash string `json:"bodyHash"`
}

type createVaultAccountRequest struct {
	Name          string `json:"name"`
	HiddenOnUI    bool   `json:"hiddenOnUI"`
	CustomerRefID string `json:"customerRefId,omitempty"`
	AutoFuel      bool   `json:"autoFuel"`
}

// Client creates custody vault wallets
type Client struct {
	cfg        Config
	httpClient adapter.HTTPClient
	clock      adapter.Clock
	key        *rsa.PrivateKey
}

var _ chain.CustodyClient = (*Client)(nil)

// NewClient parses the signing key and returns a vault API client
func NewClient(cfg Config, httpClient adapter.HTTPClient, clock adapter.Clock) (*Client, error) {
	pemKey := cfg.PrivateKey
	if pemKey == "" && cfg.PrivateKeyPath != "" {
		data, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read custody private key: %w", err)
		}
		pemKey = string(data)
	}
	if pemKey == "" {
		return nil, fmt.Errorf("custody private key is not configured")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse custody private key: %w", err)
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		clock:      clock,
		key:        key,
	}, nil
}

// CreateWallet opens a vault account and activates the network custody asset in it
func (c *Client) CreateWallet(ctx context.Context, account string, refID string, network domain.Network) (string, error) {
	if network.CustodyAsset == "" {
		return "", fmt.Errorf("network %q has no custody asset", network.Name)
	}

	logger.InfoCtx(ctx, "Creating vault account",
		zap.String("account", account),
		zap.String("ref_id", refID),
		zap.String("network", network.Name))

	resp, err := c.call(ctx, http.MethodPost, "/v1/vault/accounts", createVaultAccountRequest{
		Name:          account,
		HiddenOnUI:    false,
		CustomerRefID: refID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create vault account: %w", err)
	}

	vaultID := gjson.GetBytes(resp, "id").String()
	if vaultID == "" {
		return "", fmt.Errorf("vault account response without id: %s", string(resp))
	}

	path := fmt.Sprintf("/v1/vault/accounts/%s/%s", url.PathEscape(vaultID), url.PathEscape(network.CustodyAsset))
	resp, err = c.call(ctx, http.MethodPost, path, struct{}{})
	if err != nil {
		return "", fmt.Errorf("failed to activate vault asset %s: %w", network.CustodyAsset, err)
	}

	address := gjson.GetBytes(resp, "address").String()
	if address == "" {
		return "", fmt.Errorf("vault asset response without address: %s", string(resp))
	}

	logger.InfoCtx(ctx, "Vault wallet created",
		zap.String("vault_id", vaultID),
		zap.String("asset", network.CustodyAsset),
		zap.String("address", address))

	return address, nil
}

func (c *Client) call(ctx context.Context, method string, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	token, err := c.signRequest(path, body)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("X-API-Key", c.cfg.APIKey)
	header.Set("Authorization", "Bearer "+token)

	return c.httpClient.Do(ctx, adapter.Request{
		Method: method,
		URL:    strings.TrimSuffix(c.cfg.APIURL, "/") + path,
		Header: header,
		Body:   body,
	})
}

// signRequest issues the RS256 token binding one request path and body
func (c *Client) signRequest(path string, body []byte) (string, error) {
	now := c.clock.Now()
	sum := sha256.Sum256(body)

	claims := requestClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.cfg.APIKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		URI:      path,
		Nonce:    uuid.NewString(),
		BodyHash: hex.EncodeToString(sum[:]),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign custody request: %w", err)
	}
	return token, nil
}
