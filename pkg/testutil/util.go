package testutil

import (
	"context"
	"time"

	"github.com/wanderquest-labs/backend/config"
	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/pkg/logger"
	"github.com/wanderquest-labs/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
		},
		Ledger: config.LedgerConfigs{
			Chain:              "wanderchain-testnet",
			ChainID:            97,
			SecretKey:          "treasury-secret",
			TokenAddress:       "0x1111111111111111111111111111111111111111",
			PassportAddress:    "0x2222222222222222222222222222222222222222",
			AchievementAddress: "0x3333333333333333333333333333333333333333",
			ClaimCooldown:      time.Minute,
			ConfirmMaxAttempts: 3,
			ConfirmInterval:    time.Millisecond,
			IndexerPageSize:    10,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
