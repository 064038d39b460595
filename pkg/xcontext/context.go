package xcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/wanderquest-labs/backend/config"
	"github.com/wanderquest-labs/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey   struct{}
	loggerKey    struct{}
	dbKey        struct{}
	dbTxKey      struct{}
	userIDKey    struct{}
	snowflakeKey struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Configs{}
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.SILENCE)
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current database handle. Inside a transactional scope
// opened by WithDBTransaction, it returns the transaction instead.
func DB(ctx context.Context) *gorm.DB {
	if state, ok := ctx.Value(dbTxKey{}).(*txState); ok && !state.done {
		return state.tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db
}

type txState struct {
	tx   *gorm.DB
	done bool
}

// WithDBTransaction begins a database transaction and stores it in the
// returned context. Pair it with a deferred WithRollbackDBTransaction and
// an explicit WithCommitDBTransaction at the end of the happy path.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, dbTxKey{}, &txState{tx: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) {
	if state, ok := ctx.Value(dbTxKey{}).(*txState); ok && !state.done {
		state.tx.Commit()
		state.done = true
	}
}

func WithRollbackDBTransaction(ctx context.Context) {
	if state, ok := ctx.Value(dbTxKey{}).(*txState); ok && !state.done {
		state.tx.Rollback()
		state.done = true
	}
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, ok := ctx.Value(userIDKey{}).(string)
	if !ok {
		return ""
	}

	return id
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowflakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	node, ok := ctx.Value(snowflakeKey{}).(*snowflake.Node)
	if !ok {
		node, err := snowflake.NewNode(0)
		if err != nil {
			panic(err)
		}

		return node
	}

	return node
}
