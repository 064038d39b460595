package entity

import (
	"context"

	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Quest{},
		&QuestCompletion{},
		&RewardClaim{},
		&MintRequest{},
		&Blockchain{},
		&BlockchainConnection{},
	)
}
