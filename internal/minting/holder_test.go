package minting_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/minting"
	"github.com/feral-file/ff-minter/internal/mocks"
	"github.com/feral-file/ff-minter/internal/store/schema"
	"github.com/feral-file/ff-minter/internal/store/storetest"
)

func TestHolderResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewStore(t)
	custody := mocks.NewMockCustodyClient(gomock.NewController(t))
	resolver := minting.NewHolderResolver(st, adapter.NewClock())

	target := &chain.Target{
		Network: domain.Network{Name: "polygon", ClientKind: domain.ClientKindDefault},
		Custody: custody,
	}

	known := &schema.Holder{Scope: testScope, Email: "known@example.com"}
	require.NoError(t, st.CreateHolder(ctx, known))
	_, err := st.SaveHolderWallet(ctx, &schema.HolderWallet{HolderID: known.ID, Network: "polygon", Address: testHolder})
	require.NoError(t, err)

	foreign := &schema.Holder{Scope: "game-2", ExternalID: "ext-9"}
	require.NoError(t, st.CreateHolder(ctx, foreign))

	t.Run("explicit address", func(t *testing.T) {
		resolved, err := resolver.Resolve(ctx, testScope, target, minting.HolderRef{Address: testHolder, HolderID: known.ID})
		require.NoError(t, err)
		assert.Equal(t, testHolder, resolved.Address)
		assert.Nil(t, resolved.HolderID)
	})

	t.Run("stored wallet by id", func(t *testing.T) {
		resolved, err := resolver.Resolve(ctx, testScope, target, minting.HolderRef{HolderID: known.ID})
		require.NoError(t, err)
		assert.Equal(t, testHolder, resolved.Address)
		require.NotNil(t, resolved.HolderID)
		assert.Equal(t, known.ID, *resolved.HolderID)
		assert.Equal(t, "known@example.com", resolved.Email)
	})

	t.Run("stored wallet by email", func(t *testing.T) {
		resolved, err := resolver.Resolve(ctx, testScope, target, minting.HolderRef{Email: "known@example.com"})
		require.NoError(t, err)
		assert.Equal(t, testHolder, resolved.Address)
	})

	t.Run("holder of another scope", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, testScope, target, minting.HolderRef{HolderID: foreign.ID})
		assert.ErrorIs(t, err, domain.ErrHolderUnresolvable)
		assert.ErrorIs(t, err, domain.ErrHolderNotFound)
	})

	t.Run("unknown external id", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, testScope, target, minting.HolderRef{ExternalID: "nobody"})
		assert.ErrorIs(t, err, domain.ErrHolderNotFound)
	})

	t.Run("custody failure", func(t *testing.T) {
		fresh := &schema.Holder{Scope: testScope, ExternalID: "ext-2"}
		require.NoError(t, st.CreateHolder(ctx, fresh))
		custody.EXPECT().CreateWallet(gomock.Any(), fmt.Sprintf("holder-%d", fresh.ID), "ext-2", target.Network).Return("", errors.New("vault unavailable"))

		_, err := resolver.Resolve(ctx, testScope, target, minting.HolderRef{ExternalID: "ext-2"})
		require.Error(t, err)
		assert.Equal(t, domain.KindUpstream, domain.KindOf(err))

		wallet, err := st.GetHolderWallet(ctx, fresh.ID, "polygon")
		require.NoError(t, err)
		assert.Nil(t, wallet)
	})
}
