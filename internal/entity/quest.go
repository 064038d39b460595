package entity

import (
	"github.com/wanderquest-labs/backend/pkg/enum"
)

type QuestStatus string

var (
	QuestDraft    = enum.New(QuestStatus("draft"))
	QuestActive   = enum.New(QuestStatus("active"))
	QuestArchived = enum.New(QuestStatus("archived"))
)

type Quest struct {
	Base

	Title       string
	Description string

	// RewardAmount is the number of WANDER units paid out when a verified
	// completion of this quest is claimed.
	RewardAmount float64

	Status QuestStatus
}
