package payment_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/minting"
	"github.com/feral-file/ff-minter/internal/mocks"
	"github.com/feral-file/ff-minter/internal/notifier"
	"github.com/feral-file/ff-minter/internal/payment"
	"github.com/feral-file/ff-minter/internal/poller"
	"github.com/feral-file/ff-minter/internal/providers/simplex"
	"github.com/feral-file/ff-minter/internal/store"
	"github.com/feral-file/ff-minter/internal/store/schema"
	"github.com/feral-file/ff-minter/internal/store/storetest"
)

const testScope = "game-1"

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testPaymentMocks struct {
	ctrl      *gomock.Controller
	store     store.Store
	processor *mocks.MockProcessor
	source    *mocks.MockEventSource
	minter    *mocks.MockMinter
	notifier  *mocks.MockNotifier
	poller    *poller.Poller
	service   *payment.Service
}

func setupTestPayment(t *testing.T) *testPaymentMocks {
	ctrl := gomock.NewController(t)
	tm := &testPaymentMocks{
		ctrl:      ctrl,
		store:     storetest.NewStore(t),
		processor: mocks.NewMockProcessor(ctrl),
		source:    mocks.NewMockEventSource(ctrl),
		minter:    mocks.NewMockMinter(ctrl),
		notifier:  mocks.NewMockNotifier(ctrl),
	}

	// the timer never fires; tests drive ticks through Poll
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().After(gomock.Any()).Return((<-chan time.Time)(make(chan time.Time))).AnyTimes()

	tm.poller = poller.New(poller.Config{}, tm.source, clock)
	t.Cleanup(func() {
		_ = tm.poller.Stop(context.Background())
	})

	tm.service = payment.NewService(tm.store, tm.processor, tm.poller, tm.minter, tm.notifier, adapter.NewClock())
	return tm
}

func (tm *testPaymentMocks) seedTemplate(t *testing.T, saleType domain.SaleType) *schema.Template {
	template := &schema.Template{
		Scope:        testScope,
		ShortID:      3,
		Name:         "Sword",
		Network:      "polygon",
		Cap:          10,
		SaleType:     saleType,
		SalePrice:    decimal.NewFromInt(10),
		SaleCurrency: "USD",
		Status:       domain.TemplateStatusActive,
	}
	require.NoError(t, tm.store.CreateTemplate(context.Background(), template))
	return template
}

func (tm *testPaymentMocks) seedHolder(t *testing.T) *schema.Holder {
	holder := &schema.Holder{Scope: testScope, Email: "player@example.com", ExternalID: "player-1"}
	require.NoError(t, tm.store.CreateHolder(context.Background(), holder))
	return holder
}

// seedSubmitted stores a payment request that already reached the processor
func (tm *testPaymentMocks) seedSubmitted(t *testing.T, template *schema.Template, holder *schema.Holder, quoteID string, paymentID string) *schema.PaymentRequest {
	ctx := context.Background()
	request := &schema.PaymentRequest{
		QuoteID:    quoteID,
		Scope:      testScope,
		TemplateID: template.ID,
		HolderID:   holder.ID,
		Amount:     domain.PaymentMintAmount,
		Price:      decimal.NewFromInt(10),
		Status:     domain.PaymentStatusQuoteRequested,
	}
	require.NoError(t, tm.store.CreatePaymentRequest(ctx, request))
	require.NoError(t, tm.store.MarkPaymentSubmitted(ctx, quoteID, paymentID, "order-"+paymentID))
	return request
}

func (tm *testPaymentMocks) request(t *testing.T, paymentID string) *schema.PaymentRequest {
	request, err := tm.store.GetPaymentRequestByPaymentID(context.Background(), paymentID)
	require.NoError(t, err)
	require.NotNil(t, request)
	return request
}

func TestService_DeclinedPaymentMintsNothing(t *testing.T) {
	tm := setupTestPayment(t)
	ctx := context.Background()
	template := tm.seedTemplate(t, domain.SaleTypeInGame)
	holder := tm.seedHolder(t)

	tm.processor.EXPECT().Quote(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req simplex.QuoteRequest) (*simplex.Quote, error) {
		assert.True(t, req.Amount.Equal(decimal.NewFromInt(10)), "quoted %s", req.Amount)
		assert.Equal(t, "player-1", req.EndUserID)
		return &simplex.Quote{
			QuoteID:     "q-1",
			UserID:      "u-1",
			Price:       decimal.NewFromInt(10),
			TotalAmount: decimal.RequireFromString("10.89"),
			Raw:         json.RawMessage(`{"quote_id":"q-1"}`),
		}, nil
	})

	quote, err := tm.service.RequestQuote(ctx, payment.QuoteInput{
		Scope:      testScope,
		TemplateID: template.ID,
		HolderID:   holder.ID,
		ClientIP:   "203.0.113.7",
	})
	require.NoError(t, err)
	assert.Equal(t, "q-1", quote.QuoteID)

	var submitted simplex.PaymentRequest
	tm.processor.EXPECT().SubmitPayment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req simplex.PaymentRequest) (json.RawMessage, error) {
		submitted = req
		return json.RawMessage(`{"is_kyc_update_required":false}`), nil
	})

	result, err := tm.service.RequestPayment(ctx, payment.PaymentInput{QuoteID: "q-1", HolderID: holder.ID, ClientIP: "203.0.113.7"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PaymentID)
	assert.NotEqual(t, result.PaymentID, result.OrderID)
	assert.Equal(t, result.PaymentID, submitted.PaymentID)
	assert.Equal(t, "player@example.com", submitted.Email)
	assert.Equal(t, domain.PaymentStatusSubmitted, tm.request(t, result.PaymentID).Status)
	assert.Equal(t, 1, tm.poller.Pending())

	tm.source.EXPECT().ListEvents(gomock.Any()).Return([]domain.PaymentEvent{
		{EventID: "e-1", PaymentID: result.PaymentID, Name: domain.PaymentStatusSubmitted},
		{EventID: "e-2", PaymentID: result.PaymentID, Name: domain.PaymentStatusDeclined},
	}, nil)
	tm.source.EXPECT().DeleteEvent(gomock.Any(), "e-1").Return(nil)
	tm.source.EXPECT().DeleteEvent(gomock.Any(), "e-2").Return(nil)
	tm.notifier.EXPECT().PaymentSettled(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, event notifier.PaymentSettled) error {
		assert.Equal(t, domain.PaymentStatusDeclined, event.Status)
		assert.Equal(t, "q-1", event.QuoteID)
		return nil
	})

	assert.Equal(t, 1, tm.poller.Poll(ctx))

	settled := tm.request(t, result.PaymentID)
	assert.Equal(t, domain.PaymentStatusDeclined, settled.Status)
	assert.Nil(t, settled.MintedAssetID)
	assert.Equal(t, 0, tm.poller.Pending())

	assets, err := tm.store.ListUnconfirmedMintedAssets(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, assets)

	trail, err := tm.store.ListAuditEvents(ctx, domain.SubjectPayment, settled.ID)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, domain.ActionQuoteRequested, trail[0].Action)
	assert.Equal(t, domain.ActionPaymentSubmitted, trail[1].Action)
	assert.Equal(t, domain.ActionPaymentSettled, trail[2].Action)
}

func TestService_HandleCompletion_ApprovedMintsOnce(t *testing.T) {
	tm := setupTestPayment(t)
	ctx := context.Background()
	template := tm.seedTemplate(t, domain.SaleTypeInGame)
	holder := tm.seedHolder(t)
	tm.seedSubmitted(t, template, holder, "q-1", "p-1")

	tm.minter.EXPECT().RequestMint(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in minting.MintInput) (*minting.MintResult, error) {
		assert.Equal(t, testScope, in.Scope)
		assert.Equal(t, template.ID, in.TemplateID)
		assert.Equal(t, holder.ID, in.Holder.HolderID)
		assert.Equal(t, uint64(1), in.Amount)
		return &minting.MintResult{AssetID: 5, Status: domain.AssetStatusPending}, nil
	}).Times(1)
	tm.notifier.EXPECT().PaymentSettled(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	approved := domain.PaymentEvent{EventID: "e-1", PaymentID: "p-1", Name: domain.PaymentStatusApproved}
	require.NoError(t, tm.service.HandleCompletion(ctx, approved))

	settled := tm.request(t, "p-1")
	assert.Equal(t, domain.PaymentStatusApproved, settled.Status)
	require.NotNil(t, settled.MintedAssetID)
	assert.Equal(t, uint64(5), *settled.MintedAssetID)

	// a repeated event short-circuits
	require.NoError(t, tm.service.HandleCompletion(ctx, approved))
	require.NoError(t, tm.service.HandleCompletion(ctx, domain.PaymentEvent{EventID: "e-2", PaymentID: "p-1", Name: domain.PaymentStatusDeclined}))
	assert.Equal(t, domain.PaymentStatusApproved, tm.request(t, "p-1").Status)
}

func TestService_HandleCompletion_MintFailure(t *testing.T) {
	tm := setupTestPayment(t)
	ctx := context.Background()
	template := tm.seedTemplate(t, domain.SaleTypeInGame)
	holder := tm.seedHolder(t)
	tm.seedSubmitted(t, template, holder, "q-1", "p-1")

	tm.minter.EXPECT().RequestMint(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCapExceeded)
	tm.notifier.EXPECT().PaymentSettled(gomock.Any(), gomock.Any()).Return(errors.New("nats: timeout"))

	err := tm.service.HandleCompletion(ctx, domain.PaymentEvent{EventID: "e-1", PaymentID: "p-1", Name: domain.PaymentStatusApproved})
	assert.ErrorIs(t, err, domain.ErrCapExceeded)

	settled := tm.request(t, "p-1")
	assert.Equal(t, domain.PaymentStatusApproved, settled.Status)
	assert.Nil(t, settled.MintedAssetID)
}

func TestService_HandleCompletion_Rejects(t *testing.T) {
	tm := setupTestPayment(t)
	ctx := context.Background()

	err := tm.service.HandleCompletion(ctx, domain.PaymentEvent{EventID: "e-1", PaymentID: "unknown", Name: domain.PaymentStatusApproved})
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	err = tm.service.HandleCompletion(ctx, domain.PaymentEvent{EventID: "e-2", PaymentID: "unknown", Name: domain.PaymentStatusSubmitted})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentState)
}

func TestService_RequestQuote_Validation(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, tm *testPaymentMocks) payment.QuoteInput
		wantErr error
	}{
		{
			name: "not for sale",
			prepare: func(t *testing.T, tm *testPaymentMocks) payment.QuoteInput {
				template := tm.seedTemplate(t, domain.SaleTypeNone)
				return payment.QuoteInput{Scope: testScope, TemplateID: template.ID, HolderID: tm.seedHolder(t).ID}
			},
			wantErr: domain.ErrTemplateNotForSale,
		},
		{
			name: "exhausted",
			prepare: func(t *testing.T, tm *testPaymentMocks) payment.QuoteInput {
				template := tm.seedTemplate(t, domain.SaleTypeInGame)
				require.NoError(t, tm.store.ReserveCapacity(context.Background(), template.ID, template.Cap))
				return payment.QuoteInput{Scope: testScope, TemplateID: template.ID, HolderID: tm.seedHolder(t).ID}
			},
			wantErr: domain.ErrCapExceeded,
		},
		{
			name: "other scope",
			prepare: func(t *testing.T, tm *testPaymentMocks) payment.QuoteInput {
				template := tm.seedTemplate(t, domain.SaleTypeInGame)
				return payment.QuoteInput{Scope: "game-2", TemplateID: template.ID, HolderID: tm.seedHolder(t).ID}
			},
			wantErr: domain.ErrTemplateScopeMismatch,
		},
		{
			name: "unknown holder",
			prepare: func(t *testing.T, tm *testPaymentMocks) payment.QuoteInput {
				template := tm.seedTemplate(t, domain.SaleTypeInGame)
				return payment.QuoteInput{Scope: testScope, TemplateID: template.ID, HolderID: 42}
			},
			wantErr: domain.ErrHolderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestPayment(t)
			in := tt.prepare(t, tm)

			_, err := tm.service.RequestQuote(context.Background(), in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsClientError(err))
		})
	}
}

func TestService_RequestPayment_Failures(t *testing.T) {
	tm := setupTestPayment(t)
	ctx := context.Background()
	template := tm.seedTemplate(t, domain.SaleTypeInGame)
	holder := tm.seedHolder(t)
	require.NoError(t, tm.store.CreatePaymentRequest(ctx, &schema.PaymentRequest{
		QuoteID:    "q-1",
		Scope:      testScope,
		TemplateID: template.ID,
		HolderID:   holder.ID,
		Amount:     1,
	}))

	_, err := tm.service.RequestPayment(ctx, payment.PaymentInput{QuoteID: "q-1", HolderID: holder.ID + 1})
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	tm.processor.EXPECT().SubmitPayment(gomock.Any(), gomock.Any()).Return(nil, errors.New("401 unauthorized"))
	_, err = tm.service.RequestPayment(ctx, payment.PaymentInput{QuoteID: "q-1", HolderID: holder.ID})
	assert.Equal(t, domain.KindUpstream, domain.KindOf(err))

	request, err := tm.store.GetPaymentRequestByQuoteID(ctx, "q-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusQuoteRequested, request.Status)
	assert.Equal(t, 0, tm.poller.Pending())
}

func TestService_SubscribePayment(t *testing.T) {
	tm := setupTestPayment(t)
	ctx := context.Background()
	template := tm.seedTemplate(t, domain.SaleTypeInGame)
	holder := tm.seedHolder(t)
	tm.seedSubmitted(t, template, holder, "q-1", "p-1")
	tm.seedSubmitted(t, template, holder, "q-2", "p-2")
	require.NoError(t, tm.store.SettlePayment(ctx, "p-2", domain.PaymentStatusDeclined))

	require.NoError(t, tm.service.SubscribePayment(ctx, "p-1"))
	assert.Equal(t, 1, tm.poller.Pending())

	assert.ErrorIs(t, tm.service.SubscribePayment(ctx, "p-2"), domain.ErrPaymentAlreadySettled)
	assert.ErrorIs(t, tm.service.SubscribePayment(ctx, "p-3"), domain.ErrPaymentNotFound)
}

func TestService_Recover(t *testing.T) {
	tm := setupTestPayment(t)
	ctx := context.Background()
	template := tm.seedTemplate(t, domain.SaleTypeInGame)
	holder := tm.seedHolder(t)
	tm.seedSubmitted(t, template, holder, "q-1", "p-1")
	tm.seedSubmitted(t, template, holder, "q-2", "p-2")
	require.NoError(t, tm.store.CreatePaymentRequest(ctx, &schema.PaymentRequest{
		QuoteID:    "q-3",
		Scope:      testScope,
		TemplateID: template.ID,
		HolderID:   holder.ID,
		Amount:     1,
	}))

	count, err := tm.service.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, tm.poller.Pending())
	assert.True(t, tm.poller.Running())
}

// tickingStore runs a poller tick while the submitted payments are being listed
type tickingStore struct {
	store.Store
	poller *poller.Poller
	ticked chan int
}

func (s *tickingStore) ListPaymentRequestsByStatus(ctx context.Context, status domain.PaymentStatus) ([]schema.PaymentRequest, error) {
	requests, err := s.Store.ListPaymentRequestsByStatus(ctx, status)
	go func() { s.ticked <- s.poller.Poll(context.Background()) }()
	time.Sleep(30 * time.Millisecond)
	return requests, err
}

func TestService_Recover_ConcurrentTickSettles(t *testing.T) {
	tm := setupTestPayment(t)
	ctx := context.Background()
	template := tm.seedTemplate(t, domain.SaleTypeInGame)
	holder := tm.seedHolder(t)
	tm.seedSubmitted(t, template, holder, "q-1", "p-1")

	ts := &tickingStore{Store: tm.store, poller: tm.poller, ticked: make(chan int, 1)}
	service := payment.NewService(ts, tm.processor, tm.poller, tm.minter, tm.notifier, adapter.NewClock())
	tm.poller.Subscribe("p-1", service.HandleCompletion)

	tm.source.EXPECT().ListEvents(gomock.Any()).Return([]domain.PaymentEvent{
		{EventID: "e-1", PaymentID: "p-1", Name: domain.PaymentStatusDeclined},
	}, nil).Times(1)
	tm.source.EXPECT().DeleteEvent(gomock.Any(), "e-1").Return(nil).Times(1)
	tm.notifier.EXPECT().PaymentSettled(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	count, err := service.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, <-ts.ticked)

	assert.Equal(t, domain.PaymentStatusDeclined, tm.request(t, "p-1").Status)
	assert.Equal(t, 0, tm.poller.Pending())
}
