package model

import (
	"time"

	"github.com/wanderquest-labs/backend/internal/entity"
)

func ConvertRewardClaim(claim *entity.RewardClaim) RewardClaim {
	result := RewardClaim{
		ID:            claim.ID,
		CreatedAt:     claim.CreatedAt.Format(time.RFC3339Nano),
		WalletAddress: claim.WalletAddress,
		Amount:        claim.Amount,
		QuestIDs:      claim.QuestIDs,
		Status:        string(claim.Status),
	}

	if claim.TxHash.Valid {
		result.TxHash = claim.TxHash.String
	}

	if claim.BlockNumber.Valid {
		result.BlockNumber = claim.BlockNumber.Int64
	}

	if claim.ConfirmedAt.Valid {
		result.ConfirmedAt = claim.ConfirmedAt.Time.Format(time.RFC3339Nano)
	}

	return result
}

func ConvertMintRequest(mint *entity.MintRequest) MintRequest {
	result := MintRequest{
		ID:            mint.ID,
		CreatedAt:     mint.CreatedAt.Format(time.RFC3339Nano),
		WalletAddress: mint.WalletAddress,
		Kind:          string(mint.Kind),
		Tier:          string(mint.Tier),
		Status:        string(mint.Status),
	}

	if mint.QuestID.Valid {
		result.QuestID = mint.QuestID.String
	}

	if mint.TokenID.Valid {
		result.TokenID = mint.TokenID.Int64
	}

	if mint.TxHash.Valid {
		result.TxHash = mint.TxHash.String
	}

	if mint.ConfirmedAt.Valid {
		result.ConfirmedAt = mint.ConfirmedAt.Time.Format(time.RFC3339Nano)
	}

	return result
}

func ConvertUser(user *entity.User) User {
	return User{
		ID:            user.ID,
		Name:          user.Name,
		WalletAddress: user.WalletAddress,
	}
}

func ConvertQuest(quest *entity.Quest) Quest {
	return Quest{
		ID:           quest.ID,
		Title:        quest.Title,
		Description:  quest.Description,
		RewardAmount: quest.RewardAmount,
		Status:       string(quest.Status),
	}
}
