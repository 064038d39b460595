package repository

import (
	"context"

	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type MintRequestRepository interface {
	UpsertPending(ctx context.Context, mint *entity.MintRequest) error
	// UpsertConfirmed backfills a confirmed row from ledger facts. Used by
	// the reconciler when the local write never happened.
	UpsertConfirmed(ctx context.Context, mint *entity.MintRequest) error
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.MintRequest, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.MintRequest, error)
	GetAllSubmitted(ctx context.Context) ([]entity.MintRequest, error)
	GetSubmittedByUserID(ctx context.Context, userID string) ([]entity.MintRequest, error)
	MarkSubmitted(ctx context.Context, id, txHash string) error
	MarkFinal(ctx context.Context, id string, data *entity.MintRequest) error
}

type mintRequestRepository struct{}

func NewMintRequestRepository() *mintRequestRepository {
	return &mintRequestRepository{}
}

func (r *mintRequestRepository) UpsertPending(ctx context.Context, mint *entity.MintRequest) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(mint).Error
}

func (r *mintRequestRepository) UpsertConfirmed(ctx context.Context, mint *entity.MintRequest) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "idempotency_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "token_id", "tx_hash", "block_number", "confirmed_at", "updated_at",
		}),
	}).Create(mint).Error
}

func (r *mintRequestRepository) GetByIdempotencyKey(
	ctx context.Context, key string,
) (*entity.MintRequest, error) {
	var result entity.MintRequest
	if err := xcontext.DB(ctx).Take(&result, "idempotency_key = ?", key).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *mintRequestRepository) GetByUserID(
	ctx context.Context, userID string,
) ([]entity.MintRequest, error) {
	var result []entity.MintRequest
	err := xcontext.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *mintRequestRepository) GetAllSubmitted(ctx context.Context) ([]entity.MintRequest, error) {
	var result []entity.MintRequest
	err := xcontext.DB(ctx).
		Find(&result, "status = ?", entity.SettlementSubmitted).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *mintRequestRepository) GetSubmittedByUserID(
	ctx context.Context, userID string,
) ([]entity.MintRequest, error) {
	var result []entity.MintRequest
	err := xcontext.DB(ctx).
		Find(&result, "user_id = ? AND status = ?", userID, entity.SettlementSubmitted).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *mintRequestRepository) MarkSubmitted(ctx context.Context, id, txHash string) error {
	return xcontext.DB(ctx).
		Model(&entity.MintRequest{}).
		Where("id = ? AND status <> ?", id, entity.SettlementConfirmed).
		Updates(map[string]any{
			"status":  entity.SettlementSubmitted,
			"tx_hash": txHash,
		}).Error
}

func (r *mintRequestRepository) MarkFinal(
	ctx context.Context, id string, data *entity.MintRequest,
) error {
	return xcontext.DB(ctx).
		Model(&entity.MintRequest{}).
		Where("id = ? AND status <> ?", id, entity.SettlementConfirmed).
		Updates(data).Error
}
