package testutil

import (
	"context"
	"time"

	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/internal/repository"
)

const (
	Wallet1 = "0xAAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa"
	Wallet2 = "0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBbBb"
)

func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertQuests(ctx)
	InsertCompletions(ctx)
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()

	err := userRepo.Create(ctx, &entity.User{
		Base:          entity.Base{ID: "user1"},
		Name:          "user1",
		WalletAddress: Wallet1,
	})
	if err != nil {
		panic(err)
	}

	err = userRepo.Create(ctx, &entity.User{
		Base:          entity.Base{ID: "user2"},
		Name:          "user2",
		WalletAddress: Wallet2,
	})
	if err != nil {
		panic(err)
	}
}

func InsertQuests(ctx context.Context) {
	questRepo := repository.NewQuestRepository()

	quests := []*entity.Quest{
		{
			Base:         entity.Base{ID: "quest1"},
			Title:        "Visit the old town",
			RewardAmount: 50,
			Status:       entity.QuestActive,
		},
		{
			Base:         entity.Base{ID: "quest2"},
			Title:        "Hike the coastal trail",
			RewardAmount: 30,
			Status:       entity.QuestActive,
		},
		{
			Base:         entity.Base{ID: "quest3"},
			Title:        "Unreleased quest",
			RewardAmount: 10,
			Status:       entity.QuestDraft,
		},
	}

	for _, quest := range quests {
		if err := questRepo.Create(ctx, quest); err != nil {
			panic(err)
		}
	}
}

func InsertCompletions(ctx context.Context) {
	completionRepo := repository.NewQuestCompletionRepository()

	completions := []*entity.QuestCompletion{
		{
			Base:       entity.Base{ID: "completion1"},
			QuestID:    "quest1",
			UserID:     "user1",
			Status:     entity.CompletionVerified,
			VerifiedAt: time.Now(),
		},
		{
			Base:       entity.Base{ID: "completion2"},
			QuestID:    "quest2",
			UserID:     "user1",
			Status:     entity.CompletionVerified,
			VerifiedAt: time.Now(),
		},
		{
			Base:    entity.Base{ID: "completion3"},
			QuestID: "quest1",
			UserID:  "user2",
			Status:  entity.CompletionPending,
		},
	}

	for _, completion := range completions {
		if err := completionRepo.Upsert(ctx, completion); err != nil {
			panic(err)
		}
	}
}
