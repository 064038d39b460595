package entity

import (
	"fmt"
	"strings"

	"github.com/wanderquest-labs/backend/pkg/enum"
	"golang.org/x/exp/slices"
)

type SettlementStatus string

var (
	SettlementPending   = enum.New(SettlementStatus("pending"))
	SettlementSubmitted = enum.New(SettlementStatus("submitted"))
	SettlementConfirmed = enum.New(SettlementStatus("confirmed"))
	SettlementFailed    = enum.New(SettlementStatus("failed"))
)

// ClaimIdempotencyKey collapses every logical claim of the same quest set by
// the same owner into one durable row. Quest ids are sorted so that request
// ordering never produces a second key.
func ClaimIdempotencyKey(userID string, questIDs []string) string {
	sorted := make([]string, len(questIDs))
	copy(sorted, questIDs)
	slices.Sort(sorted)

	return fmt.Sprintf("claim:%s:%s", userID, strings.Join(sorted, ","))
}

func MintIdempotencyKey(userID string, kind MintKind, questID string) string {
	if kind == MintPassport {
		return fmt.Sprintf("mint:%s:%s", userID, MintPassport)
	}

	return fmt.Sprintf("mint:%s:%s:%s", userID, MintAchievement, questID)
}
