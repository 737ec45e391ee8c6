package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func buildTestTemplate(limit uint64) *schema.Template {
	return &schema.Template{
		Scope:     "game-1",
		ShortID:   3,
		Name:      "Sword",
		Network:   "polygon",
		Cap:       limit,
		SaleType:  domain.SaleTypeInGame,
		SalePrice: decimal.NewFromInt(10),
		Status:    domain.TemplateStatusActive,
	}
}

func buildTestAsset(templateID uint64, ref string) *schema.MintedAsset {
	return &schema.MintedAsset{
		TemplateID:      templateID,
		Scope:           "game-1",
		Network:         "polygon",
		ContractAddress: "0xcontract",
		TokenID:         "1",
		HolderAddress:   "0xholder",
		SourceAddress:   domain.ZeroAddress,
		SubmissionRef:   ref,
		Amount:          1,
		Status:          domain.AssetStatusPending,
	}
}

// =============================================================================
// Tests
// =============================================================================

func testReserveCapacity(t *testing.T, store Store) {
	ctx := context.Background()
	template := buildTestTemplate(2)
	require.NoError(t, store.CreateTemplate(ctx, template))

	require.NoError(t, store.ReserveCapacity(ctx, template.ID, 1))
	require.NoError(t, store.ReserveCapacity(ctx, template.ID, 1))
	assert.ErrorIs(t, store.ReserveCapacity(ctx, template.ID, 1), domain.ErrCapExceeded)

	require.NoError(t, store.ReleaseCapacity(ctx, template.ID, 1))
	require.NoError(t, store.ReserveCapacity(ctx, template.ID, 1))

	got, err := store.GetTemplate(ctx, template.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Reserved)
	assert.Equal(t, uint64(0), got.Minted)
	assert.Equal(t, uint64(0), got.Remaining())

	assert.ErrorIs(t, store.ReserveCapacity(ctx, template.ID+1000, 1), domain.ErrTemplateNotFound)
	assert.Error(t, store.ReleaseCapacity(ctx, template.ID, 5))
}

func testFinalizeMint(t *testing.T, store Store) {
	ctx := context.Background()
	template := buildTestTemplate(2)
	require.NoError(t, store.CreateTemplate(ctx, template))
	require.NoError(t, store.ReserveCapacity(ctx, template.ID, 1))

	asset := buildTestAsset(template.ID, "0xref1")
	require.NoError(t, store.CreateMintedAsset(ctx, asset))

	input := FinalizeMintInput{
		AssetID:    asset.ID,
		TemplateID: template.ID,
		Amount:     1,
		TokenID:    "7",
		BlockRef:   42,
		Name:       "Sword #7",
		MarketURL:  "https://opensea.io/assets/matic/0xcontract/7",
		MintedAt:   time.Now(),
	}
	updated, err := store.FinalizeMint(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), updated.Minted)
	assert.Equal(t, uint64(0), updated.Reserved)
	assert.Equal(t, domain.TemplateStatusActive, updated.Status)

	got, err := store.GetMintedAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusMinted, got.Status)
	assert.Equal(t, "7", got.TokenID)
	assert.Equal(t, uint64(42), got.BlockRef)
	assert.Equal(t, "Sword #7", got.Name)
	assert.NotNil(t, got.MintedAt)

	// A duplicate confirmation changes nothing
	_, err = store.FinalizeMint(ctx, input)
	assert.ErrorIs(t, err, domain.ErrAssetNotPending)
	again, err := store.GetTemplate(ctx, template.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), again.Minted)
}

func testFinalizeMintExhaustsTemplate(t *testing.T, store Store) {
	ctx := context.Background()
	template := buildTestTemplate(1)
	require.NoError(t, store.CreateTemplate(ctx, template))
	require.NoError(t, store.ReserveCapacity(ctx, template.ID, 1))

	asset := buildTestAsset(template.ID, "0xref2")
	require.NoError(t, store.CreateMintedAsset(ctx, asset))

	updated, err := store.FinalizeMint(ctx, FinalizeMintInput{
		AssetID:    asset.ID,
		TemplateID: template.ID,
		Amount:     1,
		TokenID:    "1",
		MintedAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), updated.Minted)
	assert.Equal(t, domain.TemplateStatusExhausted, updated.Status)
	assert.ErrorIs(t, store.ReserveCapacity(ctx, template.ID, 1), domain.ErrCapExceeded)
}

func testFinalizeMintWithoutReservation(t *testing.T, store Store) {
	ctx := context.Background()
	template := buildTestTemplate(1)
	require.NoError(t, store.CreateTemplate(ctx, template))

	asset := buildTestAsset(template.ID, "0xref3")
	require.NoError(t, store.CreateMintedAsset(ctx, asset))

	_, err := store.FinalizeMint(ctx, FinalizeMintInput{
		AssetID:    asset.ID,
		TemplateID: template.ID,
		Amount:     1,
		MintedAt:   time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrCapExceeded)

	// The asset update rolled back with the template update
	got, err := store.GetMintedAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusPending, got.Status)
}

func testFailMint(t *testing.T, store Store) {
	ctx := context.Background()
	template := buildTestTemplate(1)
	require.NoError(t, store.CreateTemplate(ctx, template))
	require.NoError(t, store.ReserveCapacity(ctx, template.ID, 1))

	asset := buildTestAsset(template.ID, "0xdead")
	require.NoError(t, store.CreateMintedAsset(ctx, asset))

	require.NoError(t, store.FailMint(ctx, asset.ID))

	failed, err := store.GetMintedAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssetStatusFailed, failed.Status)

	updated, err := store.GetTemplate(ctx, template.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), updated.Reserved)
	assert.Equal(t, uint64(0), updated.Minted)

	// a second failure and a late confirmation both leave the counters alone
	assert.ErrorIs(t, store.FailMint(ctx, asset.ID), domain.ErrAssetNotPending)
	_, err = store.FinalizeMint(ctx, FinalizeMintInput{AssetID: asset.ID, TemplateID: template.ID, Amount: 1, TokenID: "1"})
	assert.ErrorIs(t, err, domain.ErrAssetNotPending)

	unconfirmed, err := store.ListUnconfirmedMintedAssets(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, unconfirmed)

	// the released unit can be reserved again
	require.NoError(t, store.ReserveCapacity(ctx, template.ID, 1))

	assert.ErrorIs(t, store.FailMint(ctx, asset.ID+100), domain.ErrAssetNotFound)
}

func testConcurrentReservations(t *testing.T, store Store) {
	ctx := context.Background()
	const requests = 8
	template := buildTestTemplate(requests - 1)
	require.NoError(t, store.CreateTemplate(ctx, template))

	var wg sync.WaitGroup
	errs := make(chan error, requests)
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.ReserveCapacity(ctx, template.ID, 1)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, exceeded int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrCapExceeded)
		exceeded++
	}
	assert.Equal(t, requests-1, ok)
	assert.Equal(t, 1, exceeded)
}

func testUnconfirmedAssets(t *testing.T, store Store) {
	ctx := context.Background()
	template := buildTestTemplate(10)
	require.NoError(t, store.CreateTemplate(ctx, template))

	first := buildTestAsset(template.ID, "0xaaa")
	second := buildTestAsset(template.ID, "0xbbb")
	require.NoError(t, store.CreateMintedAsset(ctx, first))
	require.NoError(t, store.CreateMintedAsset(ctx, second))

	ids, err := store.MarkAssetsNeedReconciliation(ctx, "0xCONTRACT", []string{"0xaaa", "0xmissing"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{first.ID}, ids)

	ids, err = store.MarkAssetsNeedReconciliation(ctx, "0xcontract", []string{"0xaaa"})
	require.NoError(t, err)
	assert.Empty(t, ids)

	assets, err := store.ListUnconfirmedMintedAssets(ctx, 0)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, domain.AssetStatusNeedsReconciliation, assets[0].Status)
	assert.Equal(t, domain.AssetStatusPending, assets[1].Status)

	latest, err := store.GetLatestMintedAsset(ctx, "0xContract")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)

	unassigned := buildTestAsset(template.ID, "0xccc")
	unassigned.TokenID = ""
	require.NoError(t, store.CreateMintedAsset(ctx, unassigned))

	latest, err = store.GetLatestMintedAsset(ctx, "0xcontract")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func testHolders(t *testing.T, store Store) {
	ctx := context.Background()
	holder := &schema.Holder{Scope: "game-1", Email: "player@example.com", ExternalID: "ext-1"}
	require.NoError(t, store.CreateHolder(ctx, holder))

	found, err := store.FindHolder(ctx, "game-1", HolderLookup{Email: "player@example.com"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, holder.ID, found.ID)

	found, err = store.FindHolder(ctx, "game-1", HolderLookup{ExternalID: "ext-1"})
	require.NoError(t, err)
	require.NotNil(t, found)

	found, err = store.FindHolder(ctx, "game-2", HolderLookup{Email: "player@example.com"})
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = store.FindHolder(ctx, "game-1", HolderLookup{})
	require.NoError(t, err)
	assert.Nil(t, found)

	wallet, err := store.GetHolderWallet(ctx, holder.ID, "polygon")
	require.NoError(t, err)
	assert.Nil(t, wallet)

	saved, err := store.SaveHolderWallet(ctx, &schema.HolderWallet{HolderID: holder.ID, Network: "polygon", Address: "0xfirst", IsExternal: true})
	require.NoError(t, err)
	assert.Equal(t, "0xfirst", saved.Address)

	// The first stored wallet wins
	saved, err = store.SaveHolderWallet(ctx, &schema.HolderWallet{HolderID: holder.ID, Network: "polygon", Address: "0xsecond"})
	require.NoError(t, err)
	assert.Equal(t, "0xfirst", saved.Address)
	assert.True(t, saved.IsExternal)
}

func testContracts(t *testing.T, store Store) {
	ctx := context.Background()
	require.NoError(t, store.CreateContract(ctx, &schema.Contract{
		Scope: "game-1", Network: "polygon", Address: "0xold", Owner: "0xowner", Status: domain.ContractStatusInactive,
	}))
	require.NoError(t, store.CreateContract(ctx, &schema.Contract{
		Scope: "game-1", Network: "polygon", Address: "0xnew", Owner: "0xowner", Status: domain.ContractStatusActive,
	}))

	contract, err := store.GetActiveContract(ctx, "game-1", "polygon")
	require.NoError(t, err)
	require.NotNil(t, contract)
	assert.Equal(t, "0xnew", contract.Address)

	contract, err = store.GetActiveContract(ctx, "game-1", "immutable")
	require.NoError(t, err)
	assert.Nil(t, contract)
}

func testPaymentRequests(t *testing.T, store Store) {
	ctx := context.Background()
	template := buildTestTemplate(5)
	require.NoError(t, store.CreateTemplate(ctx, template))

	request := &schema.PaymentRequest{
		QuoteID:    "quote-1",
		Scope:      "game-1",
		TemplateID: template.ID,
		HolderID:   9,
		Amount:     1,
		Price:      decimal.RequireFromString("10.5"),
	}
	require.NoError(t, store.CreatePaymentRequest(ctx, request))
	assert.Equal(t, domain.PaymentStatusQuoteRequested, request.Status)

	// Only submitted requests can settle
	assert.ErrorIs(t, store.SettlePayment(ctx, "pay-1", domain.PaymentStatusApproved), domain.ErrPaymentNotFound)

	require.NoError(t, store.MarkPaymentSubmitted(ctx, "quote-1", "pay-1", "order-1"))
	assert.ErrorIs(t, store.MarkPaymentSubmitted(ctx, "quote-1", "pay-2", "order-2"), domain.ErrInvalidPaymentState)
	assert.ErrorIs(t, store.MarkPaymentSubmitted(ctx, "quote-x", "pay-2", "order-2"), domain.ErrPaymentNotFound)

	submitted, err := store.ListPaymentRequestsByStatus(ctx, domain.PaymentStatusSubmitted)
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	assert.True(t, submitted[0].Price.Equal(decimal.RequireFromString("10.5")))

	assert.ErrorIs(t, store.SettlePayment(ctx, "pay-1", domain.PaymentStatusSubmitted), domain.ErrInvalidPaymentState)
	require.NoError(t, store.SettlePayment(ctx, "pay-1", domain.PaymentStatusDeclined))
	assert.ErrorIs(t, store.SettlePayment(ctx, "pay-1", domain.PaymentStatusApproved), domain.ErrPaymentAlreadySettled)

	got, err := store.GetPaymentRequestByPaymentID(ctx, "pay-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.PaymentStatusDeclined, got.Status)
	require.NotNil(t, got.OrderID)
	assert.Equal(t, "order-1", *got.OrderID)
}

func testAuditEvents(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.AppendAuditEvent(ctx, domain.SubjectAsset, 1, domain.AuditEvent{
		Actor: "issuer", Action: domain.ActionMintSubmitted, Message: "submitted", Timestamp: base,
		Meta: map[string]any{"ref": "0xabc"},
	}))
	require.NoError(t, store.AppendAuditEvent(ctx, domain.SubjectAsset, 1, domain.AuditEvent{
		Actor: domain.ActorSystem, Action: domain.ActionMintFinalized, Timestamp: base.Add(time.Second),
	}))
	require.NoError(t, store.AppendAuditEvent(ctx, domain.SubjectAsset, 2, domain.AuditEvent{
		Actor: domain.ActorSystem, Action: domain.ActionMintExpired, Timestamp: base,
	}))

	events, err := store.ListAuditEvents(ctx, domain.SubjectAsset, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.ActionMintSubmitted, events[0].Action)
	assert.JSONEq(t, `{"ref":"0xabc"}`, string(events[0].Meta))
	assert.Equal(t, domain.ActionMintFinalized, events[1].Action)
}

// RunStoreTests runs all store tests against a store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store Store)
	}{
		{"ReserveCapacity", testReserveCapacity},
		{"FinalizeMint", testFinalizeMint},
		{"FinalizeMintExhaustsTemplate", testFinalizeMintExhaustsTemplate},
		{"FinalizeMintWithoutReservation", testFinalizeMintWithoutReservation},
		{"FailMint", testFailMint},
		{"UnconfirmedAssets", testUnconfirmedAssets},
		{"Holders", testHolders},
		{"Contracts", testContracts},
		{"PaymentRequests", testPaymentRequests},
		{"AuditEvents", testAuditEvents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, initDB(t))
		})
	}
}
