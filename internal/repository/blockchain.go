package repository

import (
	"context"

	"github.com/wanderquest-labs/backend/internal/entity"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type BlockChainRepository interface {
	Upsert(ctx context.Context, chain *entity.Blockchain) error
	GetConnectionsByChain(ctx context.Context, chain string) ([]entity.BlockchainConnection, error)
}

type blockChainRepository struct{}

func NewBlockChainRepository() *blockChainRepository {
	return &blockChainRepository{}
}

func (r *blockChainRepository) Upsert(ctx context.Context, chain *entity.Blockchain) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"use_eip1559", "block_time"}),
	}).Create(chain).Error
}

func (r *blockChainRepository) GetConnectionsByChain(
	ctx context.Context, chain string,
) ([]entity.BlockchainConnection, error) {
	var result []entity.BlockchainConnection
	if err := xcontext.DB(ctx).Find(&result, "chain = ?", chain).Error; err != nil {
		return nil, err
	}

	return result, nil
}
