package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new store over a gorm connection. The queries are portable across
// PostgreSQL and SQLite; nothing relies on row locks.
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates every table from the schema models. Production databases are
// initialized from db/init_pg_db.sql; Migrate serves tests and local development.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.Template{},
		&schema.Contract{},
		&schema.Holder{},
		&schema.HolderWallet{},
		&schema.MintedAsset{},
		&schema.PaymentRequest{},
		&schema.AuditEvent{},
	)
}

// ConfigureConnectionPool configures the pool of the underlying *sql.DB. Zero values fall back
// to 20 open connections, 5 idle, a 5 minute lifetime and a 10 minute idle time.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// first loads one row into dest and reports whether it exists
func first(query *gorm.DB, dest interface{}) (bool, error) {
	err := query.First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// =============================================================================
// Templates
// =============================================================================

func (s *pgStore) CreateTemplate(ctx context.Context, template *schema.Template) error {
	if err := s.db.WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (s *pgStore) GetTemplate(ctx context.Context, id uint64) (*schema.Template, error) {
	var template schema.Template
	found, err := first(s.db.WithContext(ctx).Where("id = ?", id), &template)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &template, nil
}

func (s *pgStore) ReserveCapacity(ctx context.Context, templateID uint64, amount uint64) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Template{}).
		Where("id = ? AND minted + reserved + ? <= cap", templateID, amount).
		Update("reserved", gorm.Expr("reserved + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve capacity: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		template, err := s.GetTemplate(ctx, templateID)
		if err != nil {
			return err
		}
		if template == nil {
			return domain.ErrTemplateNotFound
		}
		return domain.ErrCapExceeded
	}

	return nil
}

func (s *pgStore) ReleaseCapacity(ctx context.Context, templateID uint64, amount uint64) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Template{}).
		Where("id = ? AND reserved >= ?", templateID, amount).
		Update("reserved", gorm.Expr("reserved - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to release capacity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to release capacity: template %d holds fewer than %d reserved units", templateID, amount)
	}
	return nil
}

// =============================================================================
// Contracts
// =============================================================================

func (s *pgStore) CreateContract(ctx context.Context, contract *schema.Contract) error {
	if err := s.db.WithContext(ctx).Create(contract).Error; err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

func (s *pgStore) GetActiveContract(ctx context.Context, scope string, network string) (*schema.Contract, error) {
	var contract schema.Contract
	found, err := first(s.db.WithContext(ctx).
		Where("scope = ? AND network = ? AND status = ?", scope, network, domain.ContractStatusActive).
		Order("id DESC"), &contract)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &contract, nil
}

// =============================================================================
// Holders
// =============================================================================

func (s *pgStore) CreateHolder(ctx context.Context, holder *schema.Holder) error {
	if err := s.db.WithContext(ctx).Create(holder).Error; err != nil {
		return fmt.Errorf("failed to create holder: %w", err)
	}
	return nil
}

func (s *pgStore) GetHolder(ctx context.Context, id uint64) (*schema.Holder, error) {
	var holder schema.Holder
	found, err := first(s.db.WithContext(ctx).Where("id = ?", id), &holder)
	if err != nil {
		return nil, fmt.Errorf("failed to get holder: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &holder, nil
}

func (s *pgStore) FindHolder(ctx context.Context, scope string, lookup HolderLookup) (*schema.Holder, error) {
	if lookup.Email == "" && lookup.ExternalID == "" {
		return nil, nil
	}

	query := s.db.WithContext(ctx).Where("scope = ?", scope)
	switch {
	case lookup.Email != "" && lookup.ExternalID != "":
		query = query.Where("email = ? OR external_id = ?", lookup.Email, lookup.ExternalID)
	case lookup.Email != "":
		query = query.Where("email = ?", lookup.Email)
	default:
		query = query.Where("external_id = ?", lookup.ExternalID)
	}

	var holder schema.Holder
	found, err := first(query.Order("id ASC"), &holder)
	if err != nil {
		return nil, fmt.Errorf("failed to find holder: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &holder, nil
}

func (s *pgStore) GetHolderWallet(ctx context.Context, holderID uint64, network string) (*schema.HolderWallet, error) {
	var wallet schema.HolderWallet
	found, err := first(s.db.WithContext(ctx).Where("holder_id = ? AND network = ?", holderID, network), &wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to get holder wallet: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &wallet, nil
}

func (s *pgStore) SaveHolderWallet(ctx context.Context, wallet *schema.HolderWallet) (*schema.HolderWallet, error) {
	var stored schema.HolderWallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "holder_id"}, {Name: "network"}},
			DoNothing: true,
		}).Create(wallet).Error; err != nil {
			return err
		}

		// A concurrent resolver may have won the insert; return whichever row is stored
		return tx.Where("holder_id = ? AND network = ?", wallet.HolderID, wallet.Network).First(&stored).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save holder wallet: %w", err)
	}
	return &stored, nil
}

// =============================================================================
// Minted assets
// =============================================================================

func (s *pgStore) CreateMintedAsset(ctx context.Context, asset *schema.MintedAsset) error {
	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create minted asset: %w", err)
	}
	return nil
}

func (s *pgStore) GetMintedAsset(ctx context.Context, id uint64) (*schema.MintedAsset, error) {
	var asset schema.MintedAsset
	found, err := first(s.db.WithContext(ctx).Where("id = ?", id), &asset)
	if err != nil {
		return nil, fmt.Errorf("failed to get minted asset: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &asset, nil
}

func (s *pgStore) GetLatestMintedAsset(ctx context.Context, contractAddress string) (*schema.MintedAsset, error) {
	var asset schema.MintedAsset
	found, err := first(s.db.WithContext(ctx).
		Where("contract_address = ? AND token_id <> ''", domain.NormalizeAddress(contractAddress)).
		Order("id DESC"), &asset)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest minted asset: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &asset, nil
}

func (s *pgStore) ListUnconfirmedMintedAssets(ctx context.Context, limit int) ([]schema.MintedAsset, error) {
	var assets []schema.MintedAsset
	query := s.db.WithContext(ctx).
		Where("status IN ?", []domain.AssetStatus{domain.AssetStatusPending, domain.AssetStatusNeedsReconciliation}).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list unconfirmed minted assets: %w", err)
	}
	return assets, nil
}

func (s *pgStore) FinalizeMint(ctx context.Context, input FinalizeMintInput) (*schema.Template, error) {
	var template schema.Template

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mintedAt := input.MintedAt
		result := tx.Model(&schema.MintedAsset{}).
			Where("id = ? AND status IN ?", input.AssetID,
				[]domain.AssetStatus{domain.AssetStatusPending, domain.AssetStatusNeedsReconciliation}).
			Updates(map[string]interface{}{
				"status":       domain.AssetStatusMinted,
				"token_id":     input.TokenID,
				"block_ref":    input.BlockRef,
				"name":         input.Name,
				"market_url":   input.MarketURL,
				"metadata_url": input.MetadataURL,
				"minted_at":    &mintedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update minted asset: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrAssetNotPending
		}

		// Reserved units move to minted in the same statement that flips exhaustion;
		// SET expressions read the pre-update row
		result = tx.Model(&schema.Template{}).
			Where("id = ? AND reserved >= ? AND minted + ? <= cap", input.TemplateID, input.Amount, input.Amount).
			Updates(map[string]interface{}{
				"minted":   gorm.Expr("minted + ?", input.Amount),
				"reserved": gorm.Expr("reserved - ?", input.Amount),
				"status": gorm.Expr("CASE WHEN minted + ? >= cap THEN ? ELSE status END",
					input.Amount, string(domain.TemplateStatusExhausted)),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update template counters: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("template %d has no reservation for %d units: %w",
				input.TemplateID, input.Amount, domain.ErrCapExceeded)
		}

		return tx.Where("id = ?", input.TemplateID).First(&template).Error
	})
	if err != nil {
		return nil, err
	}

	return &template, nil
}

func (s *pgStore) FailMint(ctx context.Context, assetID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset schema.MintedAsset
		if err := tx.Where("id = ?", assetID).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("asset %d: %w", assetID, domain.ErrAssetNotFound)
			}
			return fmt.Errorf("failed to get minted asset: %w", err)
		}

		result := tx.Model(&schema.MintedAsset{}).
			Where("id = ? AND status IN ?", assetID,
				[]domain.AssetStatus{domain.AssetStatusPending, domain.AssetStatusNeedsReconciliation}).
			Update("status", domain.AssetStatusFailed)
		if result.Error != nil {
			return fmt.Errorf("failed to update minted asset: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrAssetNotPending
		}

		result = tx.Model(&schema.Template{}).
			Where("id = ? AND reserved >= ?", asset.TemplateID, asset.Amount).
			Update("reserved", gorm.Expr("reserved - ?", asset.Amount))
		if result.Error != nil {
			return fmt.Errorf("failed to release capacity: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("failed to release capacity: template %d holds fewer than %d reserved units",
				asset.TemplateID, asset.Amount)
		}
		return nil
	})
}

func (s *pgStore) MarkAssetsNeedReconciliation(ctx context.Context, contractAddress string, refs []string) ([]uint64, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	var ids []uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&schema.MintedAsset{}).
			Where("contract_address = ? AND LOWER(submission_ref) IN ? AND status = ?",
				domain.NormalizeAddress(contractAddress), refs, domain.AssetStatusPending)
		if err := query.Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		return tx.Model(&schema.MintedAsset{}).
			Where("id IN ? AND status = ?", ids, domain.AssetStatusPending).
			Update("status", domain.AssetStatusNeedsReconciliation).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark minted assets: %w", err)
	}

	return ids, nil
}

// =============================================================================
// Payment requests
// =============================================================================

func (s *pgStore) CreatePaymentRequest(ctx context.Context, request *schema.PaymentRequest) error {
	if request.Status == "" {
		request.Status = domain.PaymentStatusQuoteRequested
	}
	if err := s.db.WithContext(ctx).Create(request).Error; err != nil {
		return fmt.Errorf("failed to create payment request: %w", err)
	}
	return nil
}

func (s *pgStore) GetPaymentRequestByQuoteID(ctx context.Context, quoteID string) (*schema.PaymentRequest, error) {
	var request schema.PaymentRequest
	found, err := first(s.db.WithContext(ctx).Where("quote_id = ?", quoteID), &request)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment request: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &request, nil
}

func (s *pgStore) GetPaymentRequestByPaymentID(ctx context.Context, paymentID string) (*schema.PaymentRequest, error) {
	var request schema.PaymentRequest
	found, err := first(s.db.WithContext(ctx).Where("payment_id = ?", paymentID), &request)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment request: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &request, nil
}

func (s *pgStore) MarkPaymentSubmitted(ctx context.Context, quoteID string, paymentID string, orderID string) error {
	result := s.db.WithContext(ctx).
		Model(&schema.PaymentRequest{}).
		Where("quote_id = ? AND status = ?", quoteID, domain.PaymentStatusQuoteRequested).
		Updates(map[string]interface{}{
			"payment_id": paymentID,
			"order_id":   orderID,
			"status":     domain.PaymentStatusSubmitted,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark payment submitted: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		request, err := s.GetPaymentRequestByQuoteID(ctx, quoteID)
		if err != nil {
			return err
		}
		if request == nil {
			return domain.ErrPaymentNotFound
		}
		return fmt.Errorf("%w: quote %s is %s", domain.ErrInvalidPaymentState, quoteID, request.Status)
	}

	return nil
}

func (s *pgStore) SettlePayment(ctx context.Context, paymentID string, status domain.PaymentStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %s is not a terminal status", domain.ErrInvalidPaymentState, status)
	}

	result := s.db.WithContext(ctx).
		Model(&schema.PaymentRequest{}).
		Where("payment_id = ? AND status = ?", paymentID, domain.PaymentStatusSubmitted).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to settle payment: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		request, err := s.GetPaymentRequestByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}
		if request == nil {
			return domain.ErrPaymentNotFound
		}
		if request.Status.IsTerminal() {
			return domain.ErrPaymentAlreadySettled
		}
		return fmt.Errorf("%w: payment %s is %s", domain.ErrInvalidPaymentState, paymentID, request.Status)
	}

	return nil
}

func (s *pgStore) LinkPaymentAsset(ctx context.Context, paymentID string, assetID uint64) error {
	err := s.db.WithContext(ctx).
		Model(&schema.PaymentRequest{}).
		Where("payment_id = ?", paymentID).
		Update("minted_asset_id", assetID).Error
	if err != nil {
		return fmt.Errorf("failed to link payment asset: %w", err)
	}
	return nil
}

func (s *pgStore) ListPaymentRequestsByStatus(ctx context.Context, status domain.PaymentStatus) ([]schema.PaymentRequest, error) {
	var requests []schema.PaymentRequest
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("id ASC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment requests: %w", err)
	}
	return requests, nil
}

// =============================================================================
// Audit trail
// =============================================================================

func (s *pgStore) AppendAuditEvent(ctx context.Context, subjectType string, subjectID uint64, event domain.AuditEvent) error {
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var meta datatypes.JSON
	if len(event.Meta) > 0 {
		data, err := json.Marshal(event.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal audit meta: %w", err)
		}
		meta = datatypes.JSON(data)
	}

	row := schema.AuditEvent{
		ID:          ulid.MustNewDefault(timestamp).String(),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Actor:       event.Actor,
		Action:      event.Action,
		Message:     event.Message,
		Meta:        meta,
		CreatedAt:   timestamp,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

func (s *pgStore) ListAuditEvents(ctx context.Context, subjectType string, subjectID uint64) ([]schema.AuditEvent, error) {
	var events []schema.AuditEvent
	err := s.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return events, nil
}
