package minting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/blob"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/correlator"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/notifier"
	"github.com/feral-file/ff-minter/internal/store"
	"github.com/feral-file/ff-minter/internal/store/schema"
)

// MintInput is a validated mint request of the web layer
type MintInput struct {
	Scope      string
	TemplateID uint64
	Holder     HolderRef
	Amount     uint64
	// ImageURL overrides the template image in the metadata document
	ImageURL   string
	Attributes map[string]string
	Actor      string
}

// MintResult describes an accepted mint. Status is pending until the confirmation is applied.
type MintResult struct {
	AssetID       uint64
	Status        domain.AssetStatus
	SubmissionRef string
	TokenID       string
	HolderAddress string
}

// BurnInput is a validated burn request of the web layer
type BurnInput struct {
	Scope      string
	TemplateID uint64
	From       string
	TokenIDs   []string
	Amount     uint64
	Actor      string
}

// BurnResult describes an accepted burn. Acceptance is final; no confirmation is awaited.
type BurnResult struct {
	SubmissionRef string
	ExternalID    string
}

// Service runs mints from capacity reservation to finalized asset record
type Service struct {
	store      store.Store
	registry   *chain.Registry
	correlator *correlator.Correlator
	uploader   blob.Uploader
	notifier   notifier.Notifier
	holders    *HolderResolver
	clock      adapter.Clock
}

// NewService creates the mint/burn service
func NewService(
	st store.Store,
	registry *chain.Registry,
	corr *correlator.Correlator,
	uploader blob.Uploader,
	notif notifier.Notifier,
	clock adapter.Clock,
) *Service {
	return &Service{
		store:      st,
		registry:   registry,
		correlator: corr,
		uploader:   uploader,
		notifier:   notif,
		holders:    NewHolderResolver(st, clock),
		clock:      clock,
	}
}

// RequestMint reserves capacity, submits the mint and records it as pending. The record is finalized
// when the confirmation event arrives, or before returning for back-ends that confirm synchronously.
func (s *Service) RequestMint(ctx context.Context, in MintInput) (*MintResult, error) {
	if in.Amount == 0 {
		return nil, domain.Validation("request mint", domain.ErrInvalidAmount)
	}

	template, err := s.loadTemplate(ctx, in.Scope, in.TemplateID)
	if err != nil {
		return nil, err
	}
	switch template.Status {
	case domain.TemplateStatusActive:
	case domain.TemplateStatusExhausted:
		return nil, fmt.Errorf("template %d: %w", template.ID, domain.ErrCapExceeded)
	default:
		return nil, fmt.Errorf("template %d is %s: %w", template.ID, template.Status, domain.ErrTemplateNotActive)
	}
	if template.Remaining() < in.Amount {
		return nil, fmt.Errorf("template %d has %d units left: %w", template.ID, template.Remaining(), domain.ErrCapExceeded)
	}

	target, contract, err := s.resolveContract(ctx, template)
	if err != nil {
		return nil, err
	}

	holder, err := s.holders.Resolve(ctx, in.Scope, target, in.Holder)
	if err != nil {
		return nil, err
	}

	if err := s.store.ReserveCapacity(ctx, template.ID, in.Amount); err != nil {
		return nil, err
	}

	src := correlator.Source{Network: target.Network, Client: target.Client}
	if err := s.correlator.Watch(ctx, src, contract.Address, domain.EventKindTransfer); err != nil &&
		!errors.Is(err, domain.ErrEventStreamUnsupported) {
		s.release(ctx, template.ID, in.Amount)
		return nil, err
	}

	submission, err := target.Client.SubmitMint(ctx, chain.MintCall{
		Network:         target.Network,
		Contract:        contract.ToDomain(),
		Scope:           template.Scope,
		TemplateShortID: template.ShortID,
		To:              holder.Address,
		Amount:          in.Amount,
	})
	if err != nil {
		s.release(ctx, template.ID, in.Amount)
		if errors.Is(err, domain.ErrInvalidAmount) || errors.Is(err, domain.ErrSignerNotConfigured) {
			return nil, domain.Validation("submit mint", err)
		}
		return nil, domain.Upstream("submit mint", err)
	}

	asset, err := s.createPendingAsset(ctx, template, contract, holder, submission, in)
	if err != nil {
		// the chain accepted the call, so the reservation stays until the record is reconciled
		logger.ErrorCtx(ctx, fmt.Errorf("failed to persist accepted mint: %w", err),
			zap.Uint64("template_id", template.ID),
			zap.String("submission_ref", submission.Ref),
			zap.String("token_id", submission.TokenID))
		return nil, err
	}

	result := &MintResult{
		AssetID:       asset.ID,
		Status:        domain.AssetStatusPending,
		SubmissionRef: submission.Ref,
		TokenID:       submission.TokenID,
		HolderAddress: holder.Address,
	}

	if err := s.correlator.On(ctx, src, contract.Address, domain.EventKindTransfer, submission.Ref, s.confirmation(asset.ID)); err != nil {
		logger.WarnCtx(ctx, "Failed to register confirmation listener, record left for recovery",
			zap.Uint64("asset_id", asset.ID),
			zap.String("submission_ref", submission.Ref),
			zap.Error(err))
		return result, nil
	}

	if submission.Ref == "" {
		// the listener ran synchronously
		stored, err := s.store.GetMintedAsset(ctx, asset.ID)
		if err == nil && stored != nil {
			result.Status = stored.Status
			result.TokenID = stored.TokenID
		}
	}

	return result, nil
}

// RequestBurn submits a burn. A single id is burned directly, several in one batch call.
func (s *Service) RequestBurn(ctx context.Context, in BurnInput) (*BurnResult, error) {
	if len(in.TokenIDs) == 0 {
		return nil, domain.Validation("request burn", errors.New("no token ids"))
	}
	if in.Amount == 0 {
		in.Amount = 1
	}

	template, err := s.loadTemplate(ctx, in.Scope, in.TemplateID)
	if err != nil {
		return nil, err
	}

	target, contract, err := s.resolveContract(ctx, template)
	if err != nil {
		return nil, err
	}

	submission, err := target.Client.SubmitBurn(ctx, chain.BurnCall{
		Network:  target.Network,
		Contract: contract.ToDomain(),
		From:     in.From,
		TokenIDs: in.TokenIDs,
		Amount:   in.Amount,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSignerNotConfigured) || errors.Is(err, domain.ErrUnsupportedOperation) {
			return nil, domain.Validation("submit burn", err)
		}
		return nil, domain.Upstream("submit burn", err)
	}

	logger.InfoCtx(ctx, "Burn submitted",
		zap.Uint64("template_id", template.ID),
		zap.Strings("token_ids", in.TokenIDs),
		zap.String("submission_ref", submission.Ref))

	s.audit(ctx, domain.SubjectTemplate, template.ID, domain.AuditEvent{
		Actor:  actorOrSystem(in.Actor),
		Action: domain.ActionBurnSubmitted,
		Meta: map[string]any{
			"token_ids":      in.TokenIDs,
			"from":           in.From,
			"submission_ref": submission.Ref,
			"external_id":    submission.ExternalID,
		},
	})

	return &BurnResult{SubmissionRef: submission.Ref, ExternalID: submission.ExternalID}, nil
}

// confirmation returns the correlator listener that finalizes an asset record
func (s *Service) confirmation(assetID uint64) correlator.Listener {
	return func(ctx context.Context, event *domain.ChainEvent) error {
		return s.finalize(ctx, assetID, event)
	}
}

// finalize applies a confirmation to an unconfirmed asset record. It publishes the metadata document,
// moves the record to minted together with the template counters, and announces the mint.
// A record that is already minted is left untouched.
func (s *Service) finalize(ctx context.Context, assetID uint64, event *domain.ChainEvent) error {
	asset, err := s.store.GetMintedAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return fmt.Errorf("asset %d: %w", assetID, domain.ErrAssetNotFound)
	}
	if asset.Status == domain.AssetStatusMinted {
		return nil
	}

	template, err := s.store.GetTemplate(ctx, asset.TemplateID)
	if err != nil {
		return err
	}
	if template == nil {
		return fmt.Errorf("template %d: %w", asset.TemplateID, domain.ErrTemplateNotFound)
	}

	target, err := s.registry.Resolve(asset.Network)
	if err != nil {
		return err
	}

	tokenID := asset.TokenID
	var blockRef uint64
	if event != nil {
		if event.TokenID != "" {
			tokenID = event.TokenID
		}
		blockRef = event.BlockRef
	}
	if tokenID == "" {
		return fmt.Errorf("asset %d: confirmation carries no token id", assetID)
	}

	name := fmt.Sprintf("%s #%s", template.Name, tokenID)
	marketURL := target.Marketplace.AssetURL(target.Network, asset.ContractAddress, tokenID)
	metadataURL := s.publishMetadata(ctx, target, template, asset, name, tokenID)

	updated, err := s.store.FinalizeMint(ctx, store.FinalizeMintInput{
		AssetID:     asset.ID,
		TemplateID:  template.ID,
		Amount:      asset.Amount,
		TokenID:     tokenID,
		BlockRef:    blockRef,
		Name:        name,
		MarketURL:   marketURL,
		MetadataURL: metadataURL,
		MintedAt:    s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotPending) {
			logger.InfoCtx(ctx, "Asset already finalized", zap.Uint64("asset_id", asset.ID))
			return nil
		}
		return fmt.Errorf("failed to finalize asset %d: %w", asset.ID, err)
	}

	logger.InfoCtx(ctx, "Mint finalized",
		zap.Uint64("asset_id", asset.ID),
		zap.String("token_id", tokenID),
		zap.String("market_url", marketURL),
		zap.Uint64("minted", updated.Minted),
		zap.Uint64("cap", updated.Cap))

	s.audit(ctx, domain.SubjectAsset, asset.ID, domain.AuditEvent{
		Actor:  domain.ActorSystem,
		Action: domain.ActionMintFinalized,
		Meta:   map[string]any{"token_id": tokenID, "block_ref": blockRef, "market_url": marketURL},
	})
	if updated.Status == domain.TemplateStatusExhausted {
		s.audit(ctx, domain.SubjectTemplate, template.ID, domain.AuditEvent{
			Actor:   domain.ActorSystem,
			Action:  domain.ActionMintFinalized,
			Message: "cap reached",
			Meta:    map[string]any{"minted": updated.Minted, "cap": updated.Cap},
		})
	}

	if err := s.notifier.AssetMinted(ctx, notifier.AssetMinted{
		AssetID:       asset.ID,
		TemplateID:    template.ID,
		Scope:         asset.Scope,
		Network:       asset.Network,
		Contract:      asset.ContractAddress,
		TokenID:       tokenID,
		Amount:        asset.Amount,
		Holder:        asset.HolderAddress,
		SubmissionRef: asset.SubmissionRef,
		MarketURL:     marketURL,
		MetadataURL:   metadataURL,
		MintedAt:      s.clock.Now(),
	}); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to publish minted asset: %w", err), zap.Uint64("asset_id", asset.ID))
	}

	return nil
}

// publishMetadata uploads the metadata document and returns its URL. Upload failures are logged
// and leave the URL empty; the counters are applied regardless.
func (s *Service) publishMetadata(ctx context.Context, target *chain.Target, template *schema.Template, asset *schema.MintedAsset, name string, tokenID string) string {
	var attrSchema domain.AttributeSchema
	if len(template.Attributes) > 0 {
		if err := json.Unmarshal(template.Attributes, &attrSchema); err != nil {
			logger.WarnCtx(ctx, "Invalid template attribute schema", zap.Uint64("template_id", template.ID), zap.Error(err))
		}
	}

	var attributes map[string]string
	if len(asset.Attributes) > 0 {
		if err := json.Unmarshal(asset.Attributes, &attributes); err != nil {
			logger.WarnCtx(ctx, "Invalid asset attributes", zap.Uint64("asset_id", asset.ID), zap.Error(err))
		}
	}

	key, err := chain.MetadataKey(target.Network.ClientKind, asset.Scope, template.ShortID, tokenID)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.Uint64("asset_id", asset.ID))
		return ""
	}

	document := target.Marketplace.Metadata(name, asset.ImageURL, attrSchema, attributes)
	data, err := json.Marshal(document)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to marshal metadata: %w", err), zap.Uint64("asset_id", asset.ID))
		return ""
	}

	url, err := s.uploader.Upload(ctx, key, data, domain.MetadataContentType)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to upload metadata: %w", err),
			zap.Uint64("asset_id", asset.ID),
			zap.String("key", key))
		return ""
	}

	return url
}

func (s *Service) createPendingAsset(ctx context.Context, template *schema.Template, contract *schema.Contract, holder *ResolvedHolder, submission *chain.Submission, in MintInput) (*schema.MintedAsset, error) {
	var attributes datatypes.JSON
	if len(in.Attributes) > 0 {
		data, err := json.Marshal(in.Attributes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attributes: %w", err)
		}
		attributes = datatypes.JSON(data)
	}

	imageURL := in.ImageURL
	if imageURL == "" {
		imageURL = template.ImageURL
	}

	asset := &schema.MintedAsset{
		TemplateID:      template.ID,
		Scope:           template.Scope,
		Network:         template.Network,
		ContractAddress: domain.NormalizeAddress(contract.Address),
		TokenID:         submission.TokenID,
		HolderID:        holder.HolderID,
		HolderEmail:     holder.Email,
		HolderAddress:   holder.Address,
		SourceAddress:   domain.ZeroAddress,
		SubmissionRef:   submission.Ref,
		Amount:          in.Amount,
		Name:            template.Name,
		ImageURL:        imageURL,
		Attributes:      attributes,
		Status:          domain.AssetStatusPending,
	}
	if err := s.store.CreateMintedAsset(ctx, asset); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.SubjectAsset, asset.ID, domain.AuditEvent{
		Actor:  actorOrSystem(in.Actor),
		Action: domain.ActionMintSubmitted,
		Meta: map[string]any{
			"submission_ref": submission.Ref,
			"external_id":    submission.ExternalID,
			"amount":         in.Amount,
			"holder":         holder.Address,
		},
	})

	return asset, nil
}

func (s *Service) loadTemplate(ctx context.Context, scope string, templateID uint64) (*schema.Template, error) {
	template, err := s.store.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("template %d: %w", templateID, domain.ErrTemplateNotFound)
	}
	if template.Scope != scope {
		return nil, fmt.Errorf("template %d: %w", templateID, domain.ErrTemplateScopeMismatch)
	}
	return template, nil
}

func (s *Service) resolveContract(ctx context.Context, template *schema.Template) (*chain.Target, *schema.Contract, error) {
	target, err := s.registry.Resolve(template.Network)
	if err != nil {
		return nil, nil, err
	}

	contract, err := s.store.GetActiveContract(ctx, template.Scope, template.Network)
	if err != nil {
		return nil, nil, err
	}
	if contract == nil {
		return nil, nil, fmt.Errorf("scope %s on %s: %w", template.Scope, template.Network, domain.ErrContractNotFound)
	}

	return target, contract, nil
}

func (s *Service) release(ctx context.Context, templateID uint64, amount uint64) {
	if err := s.store.ReleaseCapacity(ctx, templateID, amount); err != nil {
		logger.ErrorCtx(ctx, err, zap.Uint64("template_id", templateID), zap.Uint64("amount", amount))
	}
}

// audit appends to a trail; failures are logged and never fail the operation
func (s *Service) audit(ctx context.Context, subjectType string, subjectID uint64, event domain.AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	if err := s.store.AppendAuditEvent(ctx, subjectType, subjectID, event); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("subject_type", subjectType), zap.Uint64("subject_id", subjectID))
	}
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return domain.ActorSystem
	}
	return actor
}
