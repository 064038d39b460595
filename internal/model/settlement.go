package model

type SubmitClaimRequest struct {
	WalletAddress string   `json:"wallet_address"`
	QuestIDs      []string `json:"quest_ids"`
}

type SubmitClaimResponse struct {
	RewardClaim
}

type SubmitMintRequest struct {
	WalletAddress string `json:"wallet_address"`
	Kind          string `json:"kind"`
	QuestID       string `json:"quest_id"`
	Tier          string `json:"tier"`
}

type SubmitMintResponse struct {
	MintRequest
}

type RewardClaim struct {
	ID            string   `json:"id"`
	CreatedAt     string   `json:"created_at"`
	WalletAddress string   `json:"wallet_address"`
	Amount        float64  `json:"amount"`
	QuestIDs      []string `json:"quest_ids"`
	Status        string   `json:"status"`
	TxHash        string   `json:"tx_hash,omitempty"`
	BlockNumber   int64    `json:"block_number,omitempty"`
	ConfirmedAt   string   `json:"confirmed_at,omitempty"`
}

type MintRequest struct {
	ID            string `json:"id"`
	CreatedAt     string `json:"created_at"`
	WalletAddress string `json:"wallet_address"`
	Kind          string `json:"kind"`
	QuestID       string `json:"quest_id,omitempty"`
	Tier          string `json:"tier,omitempty"`
	Status        string `json:"status"`
	TokenID       int64  `json:"token_id,omitempty"`
	TxHash        string `json:"tx_hash,omitempty"`
	ConfirmedAt   string `json:"confirmed_at,omitempty"`
}

type GetMySettlementsRequest struct{}

type GetMySettlementsResponse struct {
	Claims []RewardClaim `json:"claims"`
	Mints  []MintRequest `json:"mints"`
}

type ReconcileRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type ReconcileResponse struct {
	ConfirmedClaims int `json:"confirmed_claims"`
	ConfirmedMints  int `json:"confirmed_mints"`
	BackfilledMints int `json:"backfilled_mints"`
}
