package entity

import (
	"database/sql"
	"hash/fnv"

	"github.com/wanderquest-labs/backend/pkg/enum"
)

type MintKind string

var (
	MintPassport    = enum.New(MintKind("passport"))
	MintAchievement = enum.New(MintKind("achievement"))
)

type PassportTier string

var (
	TierBronze = enum.New(PassportTier("bronze"))
	TierSilver = enum.New(PassportTier("silver"))
	TierGold   = enum.New(PassportTier("gold"))
)

// MintRequest is the durable record of one request to mint a passport or
// achievement collectible. At most one confirmed passport exists per owner
// and at most one confirmed achievement per (owner, quest).
type MintRequest struct {
	Base

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	WalletAddress string

	Kind    MintKind
	QuestID sql.NullString
	Tier    PassportTier

	IdempotencyKey string `gorm:"index:idx_mint_request_idempotency_key,unique"`

	Status SettlementStatus

	TokenID     sql.NullInt64
	TxHash      sql.NullString
	BlockNumber sql.NullInt64
	ConfirmedAt sql.NullTime
}

var passportTierTokenIDs = map[PassportTier]int64{
	TierBronze: 1,
	TierSilver: 2,
	TierGold:   3,
}

// PassportTokenID returns the ledger token id reserved for a passport tier.
// Passport ids are fixed so that ownership can be re-derived from the ledger
// without any local state.
func PassportTokenID(tier PassportTier) int64 {
	return passportTierTokenIDs[tier]
}

func PassportTokenIDs() map[PassportTier]int64 {
	return passportTierTokenIDs
}

// AchievementTokenID derives the ledger token id of the achievement
// collectible for a quest. The id is a stable function of the quest id, so
// local and ledger state can always be compared. Ids below 1024 are
// reserved for passports.
func AchievementTokenID(questID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(questID))

	id := int64(h.Sum64() & 0x7fffffffffffffff)
	if id < 1024 {
		id += 1024
	}

	return id
}
