package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
)

// ErrSubmissionReverted is returned when a submitted transaction was mined but reverted
var ErrSubmissionReverted = chain.ErrSubmissionReverted

// Config holds the configuration of the direct contract call client
type Config struct {
	// SignerKeys are hex private keys of contract owners
	SignerKeys  []string
	DialTimeout time.Duration
}

// Client submits mints and burns as signed contract calls and follows contract logs.
// One connection is dialed lazily per network.
type Client struct {
	dialer      adapter.EthClientDialer
	signers     map[common.Address]*ecdsa.PrivateKey
	dialTimeout time.Duration

	mu    sync.Mutex
	conns map[string]adapter.EthClient
	abis  map[string]abi.ABI
}

var _ chain.Client = (*Client)(nil)

// NewClient parses the signer keys and returns a client that dials on first use
func NewClient(cfg Config, dialer adapter.EthClientDialer) (*Client, error) {
	signers := make(map[common.Address]*ecdsa.PrivateKey, len(cfg.SignerKeys))
	for i, k := range cfg.SignerKeys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(k), "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid signer key at index %d: %w", i, err)
		}
		signers[crypto.PubkeyToAddress(key.PublicKey)] = key
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 15 * time.Second
	}

	return &Client{
		dialer:      dialer,
		signers:     signers,
		dialTimeout: dialTimeout,
		conns:       make(map[string]adapter.EthClient),
		abis:        make(map[string]abi.ABI),
	}, nil
}

func (c *Client) Kind() domain.ClientKind {
	return domain.ClientKindDefault
}

// SubmitMint calls mintToken(to, templateShortID, amount) signed by the contract owner
func (c *Client) SubmitMint(ctx context.Context, call chain.MintCall) (*chain.Submission, error) {
	if !common.IsHexAddress(call.To) {
		return nil, fmt.Errorf("invalid holder address %q", call.To)
	}

	tx, err := c.transact(ctx, call.Network, call.Contract, methodMint,
		common.HexToAddress(call.To),
		new(big.Int).SetUint64(call.TemplateShortID),
		new(big.Int).SetUint64(call.Amount),
	)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Mint transaction submitted",
		zap.String("network", call.Network.Name),
		zap.String("contract", call.Contract.Address),
		zap.String("tx_hash", tx.Hash().Hex()))

	return &chain.Submission{Ref: tx.Hash().Hex()}, nil
}

// SubmitBurn calls burnToken for one id and burnBatchToken for several
func (c *Client) SubmitBurn(ctx context.Context, call chain.BurnCall) (*chain.Submission, error) {
	if len(call.TokenIDs) == 0 {
		return nil, fmt.Errorf("no token ids to burn")
	}

	ids := make([]*big.Int, 0, len(call.TokenIDs))
	for _, id := range call.TokenIDs {
		n, ok := new(big.Int).SetString(id, 0)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("invalid token id %q", id)
		}
		ids = append(ids, n)
	}

	var (
		tx  *types.Transaction
		err error
	)
	if len(ids) == 1 {
		tx, err = c.transact(ctx, call.Network, call.Contract, methodBurn, ids[0])
	} else {
		tx, err = c.transact(ctx, call.Network, call.Contract, methodBurnBatch, ids)
	}
	if err != nil {
		return nil, err
	}

	return &chain.Submission{Ref: tx.Hash().Hex()}, nil
}

// SubscribeEvents follows the logs of one contract event. The stream fails on the first
// subscription error and is not restarted here.
func (c *Client) SubscribeEvents(ctx context.Context, network domain.Network, contract string, kind domain.EventKind, handler chain.EventHandler) (chain.Subscription, error) {
	topic, err := eventTopic(kind)
	if err != nil {
		return nil, err
	}

	conn, err := c.conn(ctx, network)
	if err != nil {
		return nil, err
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{common.HexToAddress(contract)},
		Topics:    [][]common.Hash{{topic}},
	}

	logs := make(chan types.Log, 64)
	sub, err := conn.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to filter logs: %w", err)
	}

	s := &logSubscription{
		sub:   sub,
		errCh: make(chan error, 1),
		done:  make(chan struct{}),
	}
	go s.run(network.Name, logs, handler)

	return s, nil
}

// LookupSubmission reads the receipt of a submission and decodes its first matching event
func (c *Client) LookupSubmission(ctx context.Context, network domain.Network, contract string, kind domain.EventKind, ref string) (*domain.ChainEvent, error) {
	topic, err := eventTopic(kind)
	if err != nil {
		return nil, err
	}

	conn, err := c.conn(ctx, network)
	if err != nil {
		return nil, err
	}

	receipt, err := conn.TransactionReceipt(ctx, common.HexToHash(ref))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionReverted, ref)
	}

	address := common.HexToAddress(contract)
	for _, l := range receipt.Logs {
		if l == nil || l.Address != address || len(l.Topics) == 0 || l.Topics[0] != topic {
			continue
		}
		return ParseTransferLog(*l)
	}

	return nil, nil
}

// Close closes every dialed connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, conn := range c.conns {
		conn.Close()
		delete(c.conns, name)
	}
}

func (c *Client) transact(ctx context.Context, network domain.Network, contract domain.Contract, method string, params ...interface{}) (*types.Transaction, error) {
	key, ok := c.signers[common.HexToAddress(contract.Owner)]
	if !ok {
		return nil, fmt.Errorf("%w: owner %s of %s", domain.ErrSignerNotConfigured, contract.Owner, contract.Address)
	}

	parsed, err := c.parseABI(contract.ABI)
	if err != nil {
		return nil, err
	}

	conn, err := c.conn(ctx, network)
	if err != nil {
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(network.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	bound := bind.NewBoundContract(common.HexToAddress(contract.Address), parsed, conn, conn, conn)
	tx, err := bound.Transact(opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s transaction: %w", method, err)
	}

	return tx, nil
}

func (c *Client) parseABI(raw string) (abi.ABI, error) {
	if strings.TrimSpace(raw) == "" {
		raw = defaultContractABI
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if parsed, ok := c.abis[raw]; ok {
		return parsed, nil
	}

	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	c.abis[raw] = parsed
	return parsed, nil
}

func (c *Client) conn(ctx context.Context, network domain.Network) (adapter.EthClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if conn, ok := c.conns[network.Name]; ok {
		return conn, nil
	}

	endpoint := network.WebSocketURL
	if endpoint == "" {
		endpoint = network.RPCURL
	}
	if endpoint == "" {
		return nil, fmt.Errorf("network %q has no endpoint", network.Name)
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	conn, err := c.dialer.Dial(dialCtx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", network.Name, err)
	}

	c.conns[network.Name] = conn
	return conn, nil
}

func eventTopic(kind domain.EventKind) (common.Hash, error) {
	switch kind {
	case domain.EventKindTransfer:
		return transferEventSignature, nil
	default:
		return common.Hash{}, fmt.Errorf("unsupported event kind %q", kind)
	}
}

// ParseTransferLog decodes an ERC721 Transfer log. ERC20-style logs without an indexed
// token id decode with an empty TokenID.
func ParseTransferLog(vLog types.Log) (*domain.ChainEvent, error) {
	if len(vLog.Topics) == 0 || vLog.Topics[0] != transferEventSignature {
		return nil, fmt.Errorf("not a Transfer event")
	}
	if len(vLog.Topics) != 3 && len(vLog.Topics) != 4 {
		return nil, fmt.Errorf("invalid Transfer event: expected 3 or 4 topics, got %d", len(vLog.Topics))
	}

	from := common.BytesToAddress(vLog.Topics[1].Bytes()).Hex()
	to := common.BytesToAddress(vLog.Topics[2].Bytes()).Hex()

	event := &domain.ChainEvent{
		Contract:      domain.NormalizeAddress(vLog.Address.Hex()),
		Kind:          domain.EventKindTransfer,
		SubmissionRef: vLog.TxHash.Hex(),
		BlockRef:      vLog.BlockNumber,
		From:          from,
		To:            to,
		Args: map[string]string{
			"from": from,
			"to":   to,
		},
	}

	if len(vLog.Topics) == 4 {
		event.TokenID = new(big.Int).SetBytes(vLog.Topics[3].Bytes()).String()
		event.Args["tokenId"] = event.TokenID
	}

	return event, nil
}
