package entity

import (
	"database/sql"
)

// RewardClaim is the durable record of one request to transfer WANDER
// tokens for a set of verified quest completions. It doubles as the
// idempotency key space for claims: all writes are upserts keyed on
// IdempotencyKey, so retries converge to a single row.
type RewardClaim struct {
	Base

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	WalletAddress string
	Amount        float64
	QuestIDs      Array[string]

	IdempotencyKey string `gorm:"index:idx_reward_claim_idempotency_key,unique"`

	Status SettlementStatus

	TxHash      sql.NullString
	BlockNumber sql.NullInt64
	ConfirmedAt sql.NullTime
}
