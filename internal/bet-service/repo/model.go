package repo

import (
	"database/sql"
	"time"
)

// Status possíveis de uma aposta
const (
	BetStatusPending    = "pending"
	BetStatusInProgress = "in_progress"
	BetStatusCompleted  = "completed"
	BetStatusCancelled  = "cancelled"
)

// Status possíveis de um convidado (linha de bet_recipients)
const (
	RecipientStatusPending    = "pending"
	RecipientStatusInProgress = "in_progress"
	RecipientStatusWon        = "won"
	RecipientStatusLost       = "lost"
	RecipientStatusRejected   = "rejected"
)

// Visibilidade de uma aposta
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID          string
	Description string
	StakeCents  int64
	DueDate     sql.NullTime
	Visibility  string
	Status      string
	CreatorID   string
	CreatedAt   time.Time
}

// BetRecipient é uma linha de participação: um convite por (aposta, convidado).
// BetCreatorID é cópia de bets.creator_id, gravada no insert; as políticas de
// acesso leem este campo pra não voltar a consultar bets.
type BetRecipient struct {
	ID               string
	BetID            string
	RecipientID      string
	BetCreatorID     string
	Status           string
	PendingOutcome   bool
	OutcomeClaimedBy sql.NullString
	OutcomeClaimedAt sql.NullTime
	CreatedAt        time.Time
}

// Friend é um amigo do usuário, com os dados de exibição já resolvidos.
type Friend struct {
	UserID      string
	Username    string
	DisplayName sql.NullString
	Since       time.Time
}
