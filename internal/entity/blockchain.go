package entity

import "github.com/wanderquest-labs/backend/pkg/enum"

type BlockchainConnectionType string

var (
	BlockchainConnectionRPC = enum.New(BlockchainConnectionType("rpc"))
)

type Blockchain struct {
	Name       string `gorm:"primaryKey"`
	ID         int64  `gorm:"unique"`
	UseEip1559 bool
	BlockTime  int

	BlockchainConnections []BlockchainConnection `gorm:"foreignKey:Chain;references:Name"`
}

type BlockchainConnection struct {
	Chain string `gorm:"primaryKey"`
	URL   string `gorm:"primaryKey"`

	Type BlockchainConnectionType
}
