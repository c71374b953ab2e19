package repo

import (
	"context"
	"database/sql"
	"time"
)

// Notification é uma linha do feed denormalizado de atividade de apostas.
// Type diz o papel do usuário na aposta; DisplayName é o nome da outra parte.
type Notification struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	BetID            string     `json:"bet_id"`
	RecipientID      string     `json:"recipient_id"`
	PendingOutcome   bool       `json:"pending_outcome"`
	OutcomeClaimedBy *string    `json:"outcome_claimed_by,omitempty"`
	OutcomeClaimedAt *time.Time `json:"outcome_claimed_at,omitempty"`
	Type             string     `json:"type"` // "creator" | "recipient"
	DisplayName      string     `json:"display_name"`
	BetDescription   string     `json:"bet_description"`
	BetStakeCents    int64      `json:"bet_stake_cents"`
	BetCreatorID     string     `json:"bet_creator_id"`
}

// ReadRepo executa a projeção de notificações: leitura pura, nenhuma escrita
type ReadRepo struct {
	DB *sql.DB
}

// ListForUser monta o feed do usuário: uma linha por convite do qual ele
// participa, como convidado ou como criador da aposta dona, mais recentes
// primeiro. O nome exibido é sempre o da outra parte, resolvido por
// display_name -> username -> email.
func (r *ReadRepo) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	const q = `
		SELECT br.id, br.status, br.created_at, br.bet_id, br.recipient_id,
		       br.pending_outcome, br.outcome_claimed_by, br.outcome_claimed_at,
		       CASE WHEN b.creator_id = $1 THEN 'creator' ELSE 'recipient' END AS type,
		       CASE WHEN b.creator_id = $1
		            THEN COALESCE(ru.display_name, ru.username, ru.email)
		            ELSE COALESCE(cu.display_name, cu.username, cu.email)
		       END AS display_name,
		       b.description, b.stake_cents, b.creator_id
		FROM bet_recipients br
		JOIN bets b ON b.id = br.bet_id
		JOIN users ru ON ru.id = br.recipient_id
		JOIN users cu ON cu.id = b.creator_id
		WHERE br.recipient_id = $1 OR b.creator_id = $1
		ORDER BY br.created_at DESC;
	`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var claimedBy sql.NullString
		var claimedAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.Status, &n.CreatedAt, &n.BetID, &n.RecipientID,
			&n.PendingOutcome, &claimedBy, &claimedAt,
			&n.Type, &n.DisplayName,
			&n.BetDescription, &n.BetStakeCents, &n.BetCreatorID); err != nil {
			return nil, err
		}
		if claimedBy.Valid {
			n.OutcomeClaimedBy = &claimedBy.String
		}
		if claimedAt.Valid {
			t := claimedAt.Time
			n.OutcomeClaimedAt = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
