package dto

import "time"

type CreateBetResponse struct {
	BetID  string `json:"betId"`
	Status string `json:"status"` // "pending"
}

type BetResponse struct {
	BetID       string     `json:"betId"`
	Description string     `json:"description"`
	StakeCents  int64      `json:"stake_cents"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Visibility  string     `json:"visibility"`
	Status      string     `json:"status"`
	CreatorID   string     `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

type RecipientResponse struct {
	ID               string     `json:"id"`
	BetID            string     `json:"betId"`
	RecipientID      string     `json:"recipient_id"`
	Status           string     `json:"status"`
	PendingOutcome   bool       `json:"pending_outcome"`
	OutcomeClaimedBy string     `json:"outcome_claimed_by,omitempty"`
	OutcomeClaimedAt *time.Time `json:"outcome_claimed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type FriendResponse struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Since       time.Time `json:"since"`
}
