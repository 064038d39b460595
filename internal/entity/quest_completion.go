package entity

import (
	"time"

	"github.com/wanderquest-labs/backend/pkg/enum"
)

type CompletionStatus string

var (
	CompletionPending  = enum.New(CompletionStatus("pending"))
	CompletionVerified = enum.New(CompletionStatus("verified"))
	CompletionRejected = enum.New(CompletionStatus("rejected"))
)

// QuestCompletion records the outcome of the external verifier for one
// (user, quest) pair. The settlement pipeline consumes it as a fact; only
// the RewardClaimed flag is written back here, and only together with a
// confirmed claim.
type QuestCompletion struct {
	Base

	QuestID string `gorm:"index:idx_quest_completion_quest_user,unique"`
	Quest   Quest  `gorm:"foreignKey:QuestID"`

	UserID string `gorm:"index:idx_quest_completion_quest_user,unique"`
	User   User   `gorm:"foreignKey:UserID"`

	Status     CompletionStatus
	VerifiedAt time.Time

	RewardClaimed bool
}
