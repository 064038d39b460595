package repository

import (
	"context"
	"fmt"

	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type RewardClaimRepository interface {
	// UpsertPending creates the claim row or, when a row with the same
	// idempotency key exists, leaves it untouched. Re-running the same
	// logical request always converges to one row.
	UpsertPending(ctx context.Context, claim *entity.RewardClaim) error
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.RewardClaim, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.RewardClaim, error)
	// GetConfirmedByQuestID returns a confirmed claim of this owner whose
	// quest set contains the given quest id, if any.
	GetConfirmedByQuestID(ctx context.Context, userID, questID string) (*entity.RewardClaim, error)
	GetLastConfirmed(ctx context.Context, userID string) (*entity.RewardClaim, error)
	GetAllSubmitted(ctx context.Context) ([]entity.RewardClaim, error)
	GetSubmittedByUserID(ctx context.Context, userID string) ([]entity.RewardClaim, error)
	MarkSubmitted(ctx context.Context, id, txHash string) error
	MarkFinal(ctx context.Context, id string, data *entity.RewardClaim) error
}

type rewardClaimRepository struct{}

func NewRewardClaimRepository() *rewardClaimRepository {
	return &rewardClaimRepository{}
}

func (r *rewardClaimRepository) UpsertPending(ctx context.Context, claim *entity.RewardClaim) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(claim).Error
}

func (r *rewardClaimRepository) GetByIdempotencyKey(
	ctx context.Context, key string,
) (*entity.RewardClaim, error) {
	var result entity.RewardClaim
	if err := xcontext.DB(ctx).Take(&result, "idempotency_key = ?", key).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardClaimRepository) GetByUserID(
	ctx context.Context, userID string,
) ([]entity.RewardClaim, error) {
	var result []entity.RewardClaim
	err := xcontext.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardClaimRepository) GetConfirmedByQuestID(
	ctx context.Context, userID, questID string,
) (*entity.RewardClaim, error) {
	// QuestIDs is stored as a JSON array of strings, so membership reduces
	// to matching the quoted id.
	pattern := fmt.Sprintf("%%%q%%", questID)

	var result entity.RewardClaim
	err := xcontext.DB(ctx).
		Where("user_id = ? AND status = ?", userID, entity.SettlementConfirmed).
		Where("quest_ids LIKE ?", pattern).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardClaimRepository) GetLastConfirmed(
	ctx context.Context, userID string,
) (*entity.RewardClaim, error) {
	var result entity.RewardClaim
	err := xcontext.DB(ctx).
		Where("user_id = ? AND status = ?", userID, entity.SettlementConfirmed).
		Order("confirmed_at desc").
		Last(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardClaimRepository) GetAllSubmitted(ctx context.Context) ([]entity.RewardClaim, error) {
	var result []entity.RewardClaim
	err := xcontext.DB(ctx).
		Find(&result, "status = ?", entity.SettlementSubmitted).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardClaimRepository) GetSubmittedByUserID(
	ctx context.Context, userID string,
) ([]entity.RewardClaim, error) {
	var result []entity.RewardClaim
	err := xcontext.DB(ctx).
		Find(&result, "user_id = ? AND status = ?", userID, entity.SettlementSubmitted).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardClaimRepository) MarkSubmitted(ctx context.Context, id, txHash string) error {
	return xcontext.DB(ctx).
		Model(&entity.RewardClaim{}).
		Where("id = ? AND status <> ?", id, entity.SettlementConfirmed).
		Updates(map[string]any{
			"status":  entity.SettlementSubmitted,
			"tx_hash": txHash,
		}).Error
}

// MarkFinal applies a terminal status together with ledger fields. A
// confirmed row is never written again; status downgrades are refused at
// the query level so racing writers converge instead of conflicting.
func (r *rewardClaimRepository) MarkFinal(
	ctx context.Context, id string, data *entity.RewardClaim,
) error {
	return xcontext.DB(ctx).
		Model(&entity.RewardClaim{}).
		Where("id = ? AND status <> ?", id, entity.SettlementConfirmed).
		Updates(data).Error
}
