package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/internal/model"
	"github.com/wanderquest-labs/backend/internal/repository"
	"github.com/wanderquest-labs/backend/pkg/errorx"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type QuestDomain interface {
	GetQuests(ctx context.Context, req *model.GetQuestsRequest) (*model.GetQuestsResponse, error)
	VerifyCompletion(ctx context.Context, req *model.VerifyCompletionRequest) (*model.VerifyCompletionResponse, error)
}

type questDomain struct {
	questRepo           repository.QuestRepository
	questCompletionRepo repository.QuestCompletionRepository
	userRepo            repository.UserRepository
}

func NewQuestDomain(
	questRepo repository.QuestRepository,
	questCompletionRepo repository.QuestCompletionRepository,
	userRepo repository.UserRepository,
) *questDomain {
	return &questDomain{
		questRepo:           questRepo,
		questCompletionRepo: questCompletionRepo,
		userRepo:            userRepo,
	}
}

func (d *questDomain) GetQuests(
	ctx context.Context, req *model.GetQuestsRequest,
) (*model.GetQuestsResponse, error) {
	quests, err := d.questRepo.GetActive(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active quests: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetQuestsResponse{Quests: []model.Quest{}}
	for i := range quests {
		resp.Quests = append(resp.Quests, model.ConvertQuest(&quests[i]))
	}

	return resp, nil
}

// VerifyCompletion records the verifier's decision for one (user, quest)
// pair. Re-delivery of the same decision converges on the same row.
func (d *questDomain) VerifyCompletion(
	ctx context.Context, req *model.VerifyCompletionRequest,
) (*model.VerifyCompletionResponse, error) {
	if req.UserID == "" || req.QuestID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require both user and quest")
	}

	if _, err := d.questRepo.GetByID(ctx, req.QuestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest %s", req.QuestID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user %s", req.UserID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	completion := &entity.QuestCompletion{
		Base:    entity.Base{ID: uuid.NewString()},
		QuestID: req.QuestID,
		UserID:  req.UserID,
		Status:  entity.CompletionRejected,
	}

	if req.Verified {
		completion.Status = entity.CompletionVerified
		completion.VerifiedAt = time.Now()
	}

	if err := d.questCompletionRepo.Upsert(ctx, completion); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert completion: %v", err)
		return nil, errorx.Unknown
	}

	return &model.VerifyCompletionResponse{}, nil
}
