package minting

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/store"
	"github.com/feral-file/ff-minter/internal/store/schema"
)

// HolderRef names the receiver of a mint. An explicit address wins; otherwise the holder is
// looked up by id, then by email or external id.
type HolderRef struct {
	Address    string
	HolderID   uint64
	Email      string
	ExternalID string
}

// ResolvedHolder is the address a mint is sent to and the holder it belongs to, if known
type ResolvedHolder struct {
	HolderID *uint64
	Email    string
	Address  string
}

// HolderResolver derives holder addresses, opening custody wallets for holders without one
type HolderResolver struct {
	store store.Store
	clock adapter.Clock
}

// NewHolderResolver creates a holder resolver
func NewHolderResolver(st store.Store, clock adapter.Clock) *HolderResolver {
	return &HolderResolver{store: st, clock: clock}
}

// Resolve returns the address ref receives mints at on the target network
func (r *HolderResolver) Resolve(ctx context.Context, scope string, target *chain.Target, ref HolderRef) (*ResolvedHolder, error) {
	if ref.Address != "" {
		if target.Network.ClientKind == domain.ClientKindDefault && !common.IsHexAddress(ref.Address) {
			return nil, fmt.Errorf("%w: invalid address %q", domain.ErrHolderUnresolvable, ref.Address)
		}
		return &ResolvedHolder{Address: ref.Address}, nil
	}

	holder, err := r.findHolder(ctx, scope, ref)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedHolder{HolderID: &holder.ID, Email: holder.Email}

	wallet, err := r.store.GetHolderWallet(ctx, holder.ID, target.Network.Name)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		resolved.Address = wallet.Address
		return resolved, nil
	}

	address, err := r.createWallet(ctx, holder, target)
	if err != nil {
		return nil, err
	}
	resolved.Address = address

	return resolved, nil
}

func (r *HolderResolver) findHolder(ctx context.Context, scope string, ref HolderRef) (*schema.Holder, error) {
	var holder *schema.Holder
	var err error

	switch {
	case ref.HolderID != 0:
		holder, err = r.store.GetHolder(ctx, ref.HolderID)
	case ref.Email != "" || ref.ExternalID != "":
		holder, err = r.store.FindHolder(ctx, scope, store.HolderLookup{Email: ref.Email, ExternalID: ref.ExternalID})
	default:
		return nil, fmt.Errorf("%w: no address, holder id, email or external id", domain.ErrHolderUnresolvable)
	}
	if err != nil {
		return nil, err
	}

	if holder == nil || holder.Scope != scope {
		return nil, fmt.Errorf("%w: %w", domain.ErrHolderUnresolvable, domain.ErrHolderNotFound)
	}

	return holder, nil
}

// createWallet opens a custody wallet and stores it. A wallet stored concurrently for the same
// holder and network wins over the new one.
func (r *HolderResolver) createWallet(ctx context.Context, holder *schema.Holder, target *chain.Target) (string, error) {
	account := holder.Email
	if account == "" {
		account = fmt.Sprintf("holder-%d", holder.ID)
	}
	refID := holder.ExternalID
	if refID == "" {
		refID = strconv.FormatUint(holder.ID, 10)
	}

	address, err := target.Custody.CreateWallet(ctx, account, refID, target.Network)
	if err != nil {
		return "", domain.Upstream("create wallet", err)
	}

	stored, err := r.store.SaveHolderWallet(ctx, &schema.HolderWallet{
		HolderID:   holder.ID,
		Network:    target.Network.Name,
		Address:    address,
		IsExternal: true,
	})
	if err != nil {
		return "", err
	}

	logger.InfoCtx(ctx, "Created custody wallet",
		zap.Uint64("holder_id", holder.ID),
		zap.String("network", target.Network.Name),
		zap.String("address", stored.Address))

	if err := r.store.AppendAuditEvent(ctx, domain.SubjectHolder, holder.ID, domain.AuditEvent{
		Actor:     domain.ActorSystem,
		Action:    domain.ActionWalletCreated,
		Meta:      map[string]any{"network": target.Network.Name, "address": stored.Address},
		Timestamp: r.clock.Now(),
	}); err != nil {
		logger.ErrorCtx(ctx, err, zap.Uint64("holder_id", holder.ID))
	}

	return stored.Address, nil
}
