package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/minting"
	"github.com/feral-file/ff-minter/internal/notifier"
	"github.com/feral-file/ff-minter/internal/poller"
	"github.com/feral-file/ff-minter/internal/providers/simplex"
	"github.com/feral-file/ff-minter/internal/store"
	"github.com/feral-file/ff-minter/internal/store/schema"
)

// Processor prices and submits card payments
//
//go:generate mockgen -source=service.go -destination=../mocks/payment.go -package=mocks -mock_names=Processor=MockProcessor,Minter=MockMinter
type Processor interface {
	Quote(ctx context.Context, req simplex.QuoteRequest) (*simplex.Quote, error)
	SubmitPayment(ctx context.Context, req simplex.PaymentRequest) (json.RawMessage, error)
}

// Minter mints the asset an approved payment paid for
type Minter interface {
	RequestMint(ctx context.Context, in minting.MintInput) (*minting.MintResult, error)
}

// QuoteInput asks for the price of one unit of a template
type QuoteInput struct {
	Scope      string
	TemplateID uint64
	HolderID   uint64
	ClientIP   string
}

// QuoteResult is the processor quote and the raw response for the checkout widget
type QuoteResult struct {
	QuoteID     string
	Price       decimal.Decimal
	TotalAmount decimal.Decimal
	Raw         json.RawMessage
}

// PaymentInput submits the checkout of a quote
type PaymentInput struct {
	QuoteID     string
	HolderID    uint64
	Email       string
	ClientIP    string
	ReferrerURL string
	SignupAt    time.Time
}

// PaymentResult carries the ids assigned to a submitted payment
type PaymentResult struct {
	PaymentID string
	OrderID   string
	Raw       json.RawMessage
}

// Service runs payment requests from quote to the mint an approval pays for
type Service struct {
	store     store.Store
	processor Processor
	poller    *poller.Poller
	minter    Minter
	notifier  notifier.Notifier
	clock     adapter.Clock
}

// NewService creates the payment service
func NewService(st store.Store, processor Processor, p *poller.Poller, minter Minter, notif notifier.Notifier, clock adapter.Clock) *Service {
	return &Service{
		store:     st,
		processor: processor,
		poller:    p,
		minter:    minter,
		notifier:  notif,
		clock:     clock,
	}
}

// RequestQuote prices one unit of an in-game template and records the quote
func (s *Service) RequestQuote(ctx context.Context, in QuoteInput) (*QuoteResult, error) {
	template, err := s.store.GetTemplate(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("template %d: %w", in.TemplateID, domain.ErrTemplateNotFound)
	}
	if template.Scope != in.Scope {
		return nil, fmt.Errorf("template %d: %w", in.TemplateID, domain.ErrTemplateScopeMismatch)
	}
	if template.SaleType != domain.SaleTypeInGame {
		return nil, fmt.Errorf("template %d has sale type %s: %w", template.ID, template.SaleType, domain.ErrTemplateNotForSale)
	}
	if template.Status == domain.TemplateStatusExhausted || template.Remaining() < domain.PaymentMintAmount {
		return nil, fmt.Errorf("template %d: %w", template.ID, domain.ErrCapExceeded)
	}
	if template.Status != domain.TemplateStatusActive {
		return nil, fmt.Errorf("template %d is %s: %w", template.ID, template.Status, domain.ErrTemplateNotActive)
	}

	holder, err := s.loadHolder(ctx, in.Scope, in.HolderID)
	if err != nil {
		return nil, err
	}

	quote, err := s.processor.Quote(ctx, simplex.QuoteRequest{
		EndUserID: endUserID(holder),
		Amount:    template.SalePrice,
		ClientIP:  in.ClientIP,
	})
	if err != nil {
		return nil, domain.Upstream("request quote", err)
	}

	request := &schema.PaymentRequest{
		QuoteID:      quote.QuoteID,
		Scope:        template.Scope,
		TemplateID:   template.ID,
		HolderID:     holder.ID,
		UserID:       quote.UserID,
		Amount:       domain.PaymentMintAmount,
		Price:        quote.Price,
		TotalAmount:  quote.TotalAmount,
		FiatCurrency: template.SaleCurrency,
		Meta:         datatypes.JSON(quote.Raw),
		Status:       domain.PaymentStatusQuoteRequested,
	}
	if err := s.store.CreatePaymentRequest(ctx, request); err != nil {
		return nil, err
	}

	s.audit(ctx, request.ID, domain.AuditEvent{
		Actor:  strconv.FormatUint(holder.ID, 10),
		Action: domain.ActionQuoteRequested,
		Meta: map[string]any{
			"quote_id":    quote.QuoteID,
			"template_id": template.ID,
			"price":       quote.Price.String(),
		},
	})

	logger.InfoCtx(ctx, "Payment quote requested",
		zap.String("quote_id", quote.QuoteID),
		zap.Uint64("template_id", template.ID),
		zap.Uint64("holder_id", holder.ID))

	return &QuoteResult{
		QuoteID:     quote.QuoteID,
		Price:       quote.Price,
		TotalAmount: quote.TotalAmount,
		Raw:         quote.Raw,
	}, nil
}

// RequestPayment submits the checkout of a quote and starts waiting for its outcome
func (s *Service) RequestPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	request, err := s.store.GetPaymentRequestByQuoteID(ctx, in.QuoteID)
	if err != nil {
		return nil, err
	}
	if request == nil || request.HolderID != in.HolderID {
		return nil, fmt.Errorf("quote %s: %w", in.QuoteID, domain.ErrPaymentNotFound)
	}
	if request.Status != domain.PaymentStatusQuoteRequested {
		return nil, fmt.Errorf("quote %s is %s: %w", in.QuoteID, request.Status, domain.ErrInvalidPaymentState)
	}

	holder, err := s.loadHolder(ctx, request.Scope, request.HolderID)
	if err != nil {
		return nil, err
	}

	email := in.Email
	if email == "" {
		email = holder.Email
	}
	signupAt := in.SignupAt
	if signupAt.IsZero() {
		signupAt = holder.CreatedAt
	}

	paymentID := uuid.NewString()
	orderID := uuid.NewString()

	raw, err := s.processor.SubmitPayment(ctx, simplex.PaymentRequest{
		QuoteID:     request.QuoteID,
		PaymentID:   paymentID,
		OrderID:     orderID,
		EndUserID:   endUserID(holder),
		Email:       email,
		ClientIP:    in.ClientIP,
		ReferrerURL: in.ReferrerURL,
		SignupAt:    signupAt,
	})
	if err != nil {
		return nil, domain.Upstream("submit payment", err)
	}

	if err := s.store.MarkPaymentSubmitted(ctx, request.QuoteID, paymentID, orderID); err != nil {
		return nil, err
	}

	s.audit(ctx, request.ID, domain.AuditEvent{
		Actor:  strconv.FormatUint(holder.ID, 10),
		Action: domain.ActionPaymentSubmitted,
		Meta:   map[string]any{"payment_id": paymentID, "order_id": orderID},
	})

	s.poller.Subscribe(paymentID, s.HandleCompletion)

	return &PaymentResult{PaymentID: paymentID, OrderID: orderID, Raw: raw}, nil
}

// SubscribePayment registers the completion handler for a submitted payment
func (s *Service) SubscribePayment(ctx context.Context, paymentID string) error {
	request, err := s.store.GetPaymentRequestByPaymentID(ctx, paymentID)
	if err != nil {
		return err
	}
	if request == nil {
		return fmt.Errorf("payment %s: %w", paymentID, domain.ErrPaymentNotFound)
	}
	if request.Status.IsTerminal() {
		return fmt.Errorf("payment %s: %w", paymentID, domain.ErrPaymentAlreadySettled)
	}
	if request.Status != domain.PaymentStatusSubmitted {
		return fmt.Errorf("payment %s is %s: %w", paymentID, request.Status, domain.ErrInvalidPaymentState)
	}

	s.poller.Subscribe(paymentID, s.HandleCompletion)
	return nil
}

// HandleCompletion applies a terminal processor event to its payment request. The status moves
// once; a repeated event for a settled request is a no-op. Only an approval mints.
func (s *Service) HandleCompletion(ctx context.Context, event domain.PaymentEvent) error {
	if !event.IsTerminal() {
		return fmt.Errorf("event %s is %s: %w", event.EventID, event.Name, domain.ErrInvalidPaymentState)
	}

	request, err := s.store.GetPaymentRequestByPaymentID(ctx, event.PaymentID)
	if err != nil {
		return err
	}
	if request == nil {
		return fmt.Errorf("payment %s: %w", event.PaymentID, domain.ErrPaymentNotFound)
	}

	if err := s.store.SettlePayment(ctx, event.PaymentID, event.Name); err != nil {
		if errors.Is(err, domain.ErrPaymentAlreadySettled) {
			logger.InfoCtx(ctx, "Payment already settled", zap.String("payment_id", event.PaymentID))
			return nil
		}
		return err
	}

	logger.InfoCtx(ctx, "Payment settled",
		zap.String("payment_id", event.PaymentID),
		zap.String("status", string(event.Name)),
		zap.Uint64("template_id", request.TemplateID))

	s.audit(ctx, request.ID, domain.AuditEvent{
		Actor:  domain.ActorSystem,
		Action: domain.ActionPaymentSettled,
		Meta:   map[string]any{"payment_id": event.PaymentID, "status": string(event.Name), "event_id": event.EventID},
	})

	var mintErr error
	if event.Name == domain.PaymentStatusApproved {
		mintErr = s.mint(ctx, request, event.PaymentID)
	}

	if err := s.notifier.PaymentSettled(ctx, notifier.PaymentSettled{
		PaymentID:  event.PaymentID,
		QuoteID:    request.QuoteID,
		Status:     event.Name,
		TemplateID: request.TemplateID,
		HolderID:   request.HolderID,
		SettledAt:  s.clock.Now(),
	}); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to publish payment settlement: %w", err), zap.String("payment_id", event.PaymentID))
	}

	return mintErr
}

// mint requests the asset an approved payment paid for. The request is already settled,
// so a failure is left for manual reconciliation rather than retried.
func (s *Service) mint(ctx context.Context, request *schema.PaymentRequest, paymentID string) error {
	result, err := s.minter.RequestMint(ctx, minting.MintInput{
		Scope:      request.Scope,
		TemplateID: request.TemplateID,
		Holder:     minting.HolderRef{HolderID: request.HolderID},
		Amount:     request.Amount,
		Actor:      "payment:" + paymentID,
	})
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to mint approved payment: %w", err),
			zap.String("payment_id", paymentID),
			zap.Uint64("template_id", request.TemplateID),
			zap.Uint64("holder_id", request.HolderID))
		return err
	}

	if err := s.store.LinkPaymentAsset(ctx, paymentID, result.AssetID); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("payment_id", paymentID), zap.Uint64("asset_id", result.AssetID))
	}

	return nil
}

// Recover re-subscribes every submitted payment so a restart does not lose in-flight payments
func (s *Service) Recover(ctx context.Context) (int, error) {
	count, err := s.poller.SubscribeAll(ctx, s.submittedPaymentIDs, s.HandleCompletion)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.InfoCtx(ctx, "Re-subscribed submitted payments", zap.Int("count", count))
	}

	return count, nil
}

func (s *Service) submittedPaymentIDs(ctx context.Context) ([]string, error) {
	requests, err := s.store.ListPaymentRequestsByStatus(ctx, domain.PaymentStatusSubmitted)
	if err != nil {
		return nil, err
	}

	var paymentIDs []string
	for _, request := range requests {
		if request.PaymentID != nil {
			paymentIDs = append(paymentIDs, *request.PaymentID)
		}
	}
	return paymentIDs, nil
}

func (s *Service) loadHolder(ctx context.Context, scope string, holderID uint64) (*schema.Holder, error) {
	holder, err := s.store.GetHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}
	if holder == nil || holder.Scope != scope {
		return nil, fmt.Errorf("holder %d: %w", holderID, domain.ErrHolderNotFound)
	}
	return holder, nil
}

func (s *Service) audit(ctx context.Context, requestID uint64, event domain.AuditEvent) {
	event.Timestamp = s.clock.Now()
	if err := s.store.AppendAuditEvent(ctx, domain.SubjectPayment, requestID, event); err != nil {
		logger.ErrorCtx(ctx, err, zap.Uint64("payment_request_id", requestID))
	}
}

// endUserID is the processor-side id of a holder
func endUserID(holder *schema.Holder) string {
	if holder.ExternalID != "" {
		return holder.ExternalID
	}
	return strconv.FormatUint(holder.ID, 10)
}
