package dto

import "time"

type CreateBetRequest struct {
	Description  string     `json:"description"`
	StakeCents   int64      `json:"stake_cents"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Visibility   string     `json:"visibility,omitempty"` // "public" | "private"
	RecipientIDs []string   `json:"recipient_ids"`
}

type DeclareOutcomeRequest struct {
	Outcome string `json:"outcome"` // "won" | "lost"
}

type AddFriendRequest struct {
	FriendID string `json:"friend_id"`
}
