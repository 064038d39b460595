package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClaimIdempotencyKey(t *testing.T) {
	key1 := ClaimIdempotencyKey("user1", []string{"quest2", "quest1"})
	key2 := ClaimIdempotencyKey("user1", []string{"quest1", "quest2"})
	require.Equal(t, key1, key2)

	require.NotEqual(t, key1, ClaimIdempotencyKey("user2", []string{"quest1", "quest2"}))
	require.NotEqual(t, key1, ClaimIdempotencyKey("user1", []string{"quest1"}))
}

func TestMintIdempotencyKey(t *testing.T) {
	// The passport key ignores the tier: one passport per owner.
	require.Equal(t,
		MintIdempotencyKey("user1", MintPassport, ""),
		MintIdempotencyKey("user1", MintPassport, "quest1"))

	require.NotEqual(t,
		MintIdempotencyKey("user1", MintAchievement, "quest1"),
		MintIdempotencyKey("user1", MintAchievement, "quest2"))
}

func TestPassportTokenID(t *testing.T) {
	require.Equal(t, int64(1), PassportTokenID(TierBronze))
	require.Equal(t, int64(2), PassportTokenID(TierSilver))
	require.Equal(t, int64(3), PassportTokenID(TierGold))
}

func TestAchievementTokenID(t *testing.T) {
	id := AchievementTokenID("quest1")
	require.Equal(t, id, AchievementTokenID("quest1"))
	require.NotEqual(t, id, AchievementTokenID("quest2"))

	// Ids below 1024 are reserved for passports.
	require.GreaterOrEqual(t, id, int64(1024))
	require.GreaterOrEqual(t, AchievementTokenID(""), int64(1024))
}
