package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
)

// AssetMinted is published once per finalized mint
type AssetMinted struct {
	AssetID       uint64    `json:"asset_id"`
	TemplateID    uint64    `json:"template_id"`
	Scope         string    `json:"scope"`
	Network       string    `json:"network"`
	Contract      string    `json:"contract"`
	TokenID       string    `json:"token_id"`
	Amount        uint64    `json:"amount"`
	Holder        string    `json:"holder"`
	SubmissionRef string    `json:"submission_ref,omitempty"`
	MarketURL     string    `json:"market_url,omitempty"`
	MetadataURL   string    `json:"metadata_url,omitempty"`
	MintedAt      time.Time `json:"minted_at"`
}

// PaymentSettled is published once per payment request reaching a terminal status
type PaymentSettled struct {
	PaymentID  string               `json:"payment_id"`
	QuoteID    string               `json:"quote_id"`
	Status     domain.PaymentStatus `json:"status"`
	TemplateID uint64               `json:"template_id"`
	HolderID   uint64               `json:"holder_id"`
	SettledAt  time.Time            `json:"settled_at"`
}

// Notifier publishes reconciliation outcomes to downstream consumers
//
//go:generate mockgen -source=notifier.go -destination=../mocks/notifier.go -package=mocks -mock_names=Notifier=MockNotifier
type Notifier interface {
	AssetMinted(ctx context.Context, event AssetMinted) error
	PaymentSettled(ctx context.Context, event PaymentSettled) error
	Close()
}

// Config holds the configuration for the NATS JetStream connection
type Config struct {
	URL            string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type jetStreamNotifier struct {
	nc     adapter.NatsConn
	js     adapter.JetStream
	prefix string
}

// NewJetStreamNotifier connects to NATS and publishes to JetStream subjects under the configured prefix
func NewJetStreamNotifier(cfg Config, natsJS adapter.NatsJetStream) (Notifier, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &jetStreamNotifier{
		nc:     nc,
		js:     js,
		prefix: cfg.SubjectPrefix,
	}, nil
}

func (n *jetStreamNotifier) AssetMinted(ctx context.Context, event AssetMinted) error {
	// Format: {prefix}.asset.minted
	return n.publish(ctx, fmt.Sprintf("%s.asset.minted", n.prefix), event)
}

func (n *jetStreamNotifier) PaymentSettled(ctx context.Context, event PaymentSettled) error {
	// Format: {prefix}.payment.{status}, e.g. minter.payment.payment_simplexcc_approved
	return n.publish(ctx, fmt.Sprintf("%s.payment.%s", n.prefix, event.Status), event)
}

func (n *jetStreamNotifier) publish(ctx context.Context, subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logger.DebugCtx(ctx, "Publishing NATS event", zap.String("subject", subject))

	if _, err := n.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", subject, err)
	}
	return nil
}

func (n *jetStreamNotifier) Close() {
	if n.nc == nil {
		return
	}
	n.nc.Close()
}

type nopNotifier struct{}

// NewNop returns a notifier that drops every event, used when no NATS URL is configured
func NewNop() Notifier {
	return nopNotifier{}
}

func (nopNotifier) AssetMinted(context.Context, AssetMinted) error { return nil }

func (nopNotifier) PaymentSettled(context.Context, PaymentSettled) error { return nil }

func (nopNotifier) Close() {}
