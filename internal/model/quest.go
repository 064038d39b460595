package model

type Quest struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	RewardAmount float64 `json:"reward_amount"`
	Status       string  `json:"status"`
}

type GetQuestsRequest struct{}

type GetQuestsResponse struct {
	Quests []Quest `json:"quests"`
}

// VerifyCompletionRequest carries the outcome of the external verifier for
// one (user, quest) pair.
type VerifyCompletionRequest struct {
	UserID   string `json:"user_id"`
	QuestID  string `json:"quest_id"`
	Verified bool   `json:"verified"`
}

type VerifyCompletionResponse struct{}
