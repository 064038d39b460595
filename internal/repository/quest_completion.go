package repository

import (
	"context"

	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type QuestCompletionRepository interface {
	Upsert(ctx context.Context, completion *entity.QuestCompletion) error
	Get(ctx context.Context, userID, questID string) (*entity.QuestCompletion, error)
	GetVerifiedUnclaimed(ctx context.Context, userID string, questIDs []string) ([]entity.QuestCompletion, error)
	GetVerifiedByUserID(ctx context.Context, userID string) ([]entity.QuestCompletion, error)
	MarkRewardClaimed(ctx context.Context, userID string, questIDs []string) error
}

type questCompletionRepository struct{}

func NewQuestCompletionRepository() *questCompletionRepository {
	return &questCompletionRepository{}
}

func (r *questCompletionRepository) Upsert(ctx context.Context, completion *entity.QuestCompletion) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "quest_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "verified_at", "updated_at",
		}),
	}).Create(completion).Error
}

func (r *questCompletionRepository) Get(
	ctx context.Context, userID, questID string,
) (*entity.QuestCompletion, error) {
	var result entity.QuestCompletion
	err := xcontext.DB(ctx).
		Take(&result, "user_id = ? AND quest_id = ?", userID, questID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questCompletionRepository) GetVerifiedUnclaimed(
	ctx context.Context, userID string, questIDs []string,
) ([]entity.QuestCompletion, error) {
	var result []entity.QuestCompletion
	err := xcontext.DB(ctx).
		Where("user_id = ? AND quest_id IN (?)", userID, questIDs).
		Where("status = ? AND reward_claimed = ?", entity.CompletionVerified, false).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questCompletionRepository) GetVerifiedByUserID(
	ctx context.Context, userID string,
) ([]entity.QuestCompletion, error) {
	var result []entity.QuestCompletion
	err := xcontext.DB(ctx).
		Where("user_id = ? AND status = ?", userID, entity.CompletionVerified).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questCompletionRepository) MarkRewardClaimed(
	ctx context.Context, userID string, questIDs []string,
) error {
	return xcontext.DB(ctx).
		Model(&entity.QuestCompletion{}).
		Where("user_id = ? AND quest_id IN (?)", userID, questIDs).
		Update("reward_claimed", true).Error
}
