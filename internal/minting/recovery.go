package minting

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/correlator"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
	"github.com/feral-file/ff-minter/internal/store/schema"
)

// RecoveryReport counts what Recover did with the unconfirmed records
type RecoveryReport struct {
	Finalized int
	Rebound   int
	// Reverted records had their submission fail on chain and released their units
	Reverted int
	// Unresolved records are still waiting and were left for the next pass
	Unresolved int
	Failed     int
}

// Recover re-attaches unconfirmed asset records after a restart. Records whose confirmation is
// already on chain are finalized, reverted ones are failed; the others get a new listener.
func (s *Service) Recover(ctx context.Context) (*RecoveryReport, error) {
	assets, err := s.store.ListUnconfirmedMintedAssets(ctx, 0)
	if err != nil {
		return nil, err
	}

	report := s.recoverAssets(ctx, assets, true)
	logger.InfoCtx(ctx, "Recovered unconfirmed mints",
		zap.Int("total", len(assets)),
		zap.Int("finalized", report.Finalized),
		zap.Int("rebound", report.Rebound),
		zap.Int("reverted", report.Reverted),
		zap.Int("failed", report.Failed))

	return report, nil
}

// ReconcileExpired re-checks the records whose listener expired. A confirmation that landed after
// the expiry finalizes the record and a reverted submission fails it; the rest stay flagged.
func (s *Service) ReconcileExpired(ctx context.Context) (*RecoveryReport, error) {
	assets, err := s.store.ListUnconfirmedMintedAssets(ctx, 0)
	if err != nil {
		return nil, err
	}

	var expired []schema.MintedAsset
	for _, asset := range assets {
		if asset.Status == domain.AssetStatusNeedsReconciliation {
			expired = append(expired, asset)
		}
	}
	if len(expired) == 0 {
		return &RecoveryReport{}, nil
	}

	report := s.recoverAssets(ctx, expired, false)
	if report.Finalized+report.Reverted > 0 {
		logger.InfoCtx(ctx, "Reconciled expired mints",
			zap.Int("finalized", report.Finalized),
			zap.Int("reverted", report.Reverted),
			zap.Int("unresolved", report.Unresolved))
	}

	return report, nil
}

func (s *Service) recoverAssets(ctx context.Context, assets []schema.MintedAsset, rebind bool) *RecoveryReport {
	report := &RecoveryReport{}
	for i := range assets {
		asset := &assets[i]
		if err := s.recoverAsset(ctx, asset, rebind, report); err != nil {
			report.Failed++
			logger.ErrorCtx(ctx, fmt.Errorf("failed to recover asset %d: %w", asset.ID, err),
				zap.String("submission_ref", asset.SubmissionRef))
		}
	}
	return report
}

func (s *Service) recoverAsset(ctx context.Context, asset *schema.MintedAsset, rebind bool, report *RecoveryReport) error {
	// back-ends without a reference confirmed at submission; only the finalize step is missing
	if asset.SubmissionRef == "" {
		if err := s.finalize(ctx, asset.ID, nil); err != nil {
			return err
		}
		report.Finalized++
		return nil
	}

	target, err := s.registry.Resolve(asset.Network)
	if err != nil {
		return err
	}

	event, err := target.Client.LookupSubmission(ctx, target.Network, asset.ContractAddress, domain.EventKindTransfer, asset.SubmissionRef)
	if errors.Is(err, chain.ErrSubmissionReverted) {
		if err := s.fail(ctx, asset, err); err != nil {
			return err
		}
		report.Reverted++
		return nil
	}
	if err != nil {
		return domain.Upstream("lookup submission", err)
	}
	if event != nil {
		if err := s.finalize(ctx, asset.ID, event); err != nil {
			return err
		}
		report.Finalized++
		return nil
	}

	if !rebind {
		report.Unresolved++
		return nil
	}

	src := correlator.Source{Network: target.Network, Client: target.Client}
	if err := s.correlator.On(ctx, src, asset.ContractAddress, domain.EventKindTransfer, asset.SubmissionRef, s.confirmation(asset.ID)); err != nil {
		return err
	}
	report.Rebound++
	return nil
}

// fail gives the units of a reverted submission back to its template
func (s *Service) fail(ctx context.Context, asset *schema.MintedAsset, cause error) error {
	if err := s.store.FailMint(ctx, asset.ID); err != nil {
		return err
	}

	s.audit(ctx, domain.SubjectAsset, asset.ID, domain.AuditEvent{
		Actor:   domain.ActorSystem,
		Action:  domain.ActionMintReverted,
		Message: cause.Error(),
	})
	logger.WarnCtx(ctx, "Mint submission reverted, capacity released",
		zap.Uint64("asset_id", asset.ID),
		zap.Uint64("template_id", asset.TemplateID),
		zap.Uint64("amount", asset.Amount),
		zap.String("submission_ref", asset.SubmissionRef))
	return nil
}

// SweepExpired drops the listeners that waited longer than the correlator TTL and flags their
// records for manual reconciliation. It returns the ids of the flagged records.
func (s *Service) SweepExpired(ctx context.Context) ([]uint64, error) {
	keys := s.correlator.Expire(ctx)
	if len(keys) == 0 {
		return nil, nil
	}

	refsByContract := make(map[string][]string)
	var contracts []string
	for _, key := range keys {
		if _, ok := refsByContract[key.Contract]; !ok {
			contracts = append(contracts, key.Contract)
		}
		refsByContract[key.Contract] = append(refsByContract[key.Contract], key.Ref)
	}

	var flagged []uint64
	for _, contract := range contracts {
		refs := refsByContract[contract]
		ids, err := s.store.MarkAssetsNeedReconciliation(ctx, contract, refs)
		if err != nil {
			return flagged, err
		}

		for _, id := range ids {
			s.audit(ctx, domain.SubjectAsset, id, domain.AuditEvent{
				Actor:   domain.ActorSystem,
				Action:  domain.ActionMintExpired,
				Message: domain.ErrCorrelationTimeout.Error(),
			})
		}
		flagged = append(flagged, ids...)
	}

	if len(flagged) > 0 {
		logger.WarnCtx(ctx, "Mints need reconciliation", zap.Int("count", len(flagged)), zap.Any("asset_ids", flagged))
	}

	return flagged, nil
}
