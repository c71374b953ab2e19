package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa o acesso direto (não privilegiado) às tabelas de apostas.
// Toda consulta espelha os predicados do pacote policy na cláusula WHERE: linha
// fora da visibilidade do chamador simplesmente não existe pra ele.
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	// ErrNotFound cobre tanto linha inexistente quanto linha fora da
	// visibilidade do chamador, pra não vazar existência.
	ErrNotFound = errors.New("not found")

	ErrNotAuthorized = errors.New("not authorized")
	ErrSelfInvite    = errors.New("creator cannot be a recipient")
	ErrNoRecipients  = errors.New("at least one recipient required")
)

// CreateBet insere a aposta e uma linha de convite por destinatário, em uma
// transação só. Grava bet_creator_id redundante em cada convite (ver policy).
func (p *Postgres) CreateBet(ctx context.Context, callerID string, b *Bet, recipientIDs []string) (string, error) {
	if b.CreatorID != callerID {
		return "", ErrNotAuthorized
	}
	if len(recipientIDs) == 0 {
		return "", ErrNoRecipients
	}
	for _, rid := range recipientIDs {
		if rid == callerID {
			return "", ErrSelfInvite
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	betID := uuid.NewString()
	visibility := b.Visibility
	if visibility == "" {
		visibility = VisibilityPrivate
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bets (id, description, stake_cents, due_date, visibility, status, creator_id)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)`,
		betID, b.Description, b.StakeCents, b.DueDate, visibility, b.CreatorID,
	); err != nil {
		return "", err
	}

	for _, rid := range recipientIDs {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bet_recipients (id, bet_id, recipient_id, bet_creator_id, status)
			VALUES ($1, $2, $3, $4, 'pending')`,
			uuid.NewString(), betID, rid, b.CreatorID,
		); err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return betID, nil
}

// GetBet retorna a aposta se o chamador for o criador ou um dos convidados
func (p *Postgres) GetBet(ctx context.Context, callerID, betID string) (*Bet, error) {
	var b Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT id, description, stake_cents, due_date, visibility, status, creator_id, created_at
		FROM bets
		WHERE id = $1
		  AND (creator_id = $2 OR EXISTS (
			SELECT 1 FROM bet_recipients WHERE bet_id = bets.id AND recipient_id = $2))`,
		betID, callerID,
	).Scan(&b.ID, &b.Description, &b.StakeCents, &b.DueDate, &b.Visibility, &b.Status, &b.CreatorID, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBets retorna as apostas visíveis pro chamador, mais recentes primeiro
func (p *Postgres) ListBets(ctx context.Context, callerID string) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, description, stake_cents, due_date, visibility, status, creator_id, created_at
		FROM bets
		WHERE creator_id = $1 OR EXISTS (
			SELECT 1 FROM bet_recipients WHERE bet_id = bets.id AND recipient_id = $1)
		ORDER BY created_at DESC`,
		callerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.Description, &b.StakeCents, &b.DueDate, &b.Visibility, &b.Status, &b.CreatorID, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListBetRecipients retorna as linhas de convite de uma aposta visíveis pro chamador.
// Usa bet_creator_id da própria linha, sem join em bets (ver policy).
func (p *Postgres) ListBetRecipients(ctx context.Context, callerID, betID string) ([]BetRecipient, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, bet_id, recipient_id, bet_creator_id, status,
		       pending_outcome, outcome_claimed_by, outcome_claimed_at, created_at
		FROM bet_recipients
		WHERE bet_id = $1 AND (recipient_id = $2 OR bet_creator_id = $2)
		ORDER BY created_at`,
		betID, callerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BetRecipient
	for rows.Next() {
		var r BetRecipient
		if err := rows.Scan(&r.ID, &r.BetID, &r.RecipientID, &r.BetCreatorID, &r.Status,
			&r.PendingOutcome, &r.OutcomeClaimedBy, &r.OutcomeClaimedAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CancelBet marca a aposta como cancelada; só o criador, e nunca depois de
// completed/cancelled (status não regride)
func (p *Postgres) CancelBet(ctx context.Context, callerID, betID string) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status = 'cancelled'
		WHERE id = $1 AND creator_id = $2 AND status IN ('pending', 'in_progress')`,
		betID, callerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBet remove a aposta do criador; convites somem por cascade
func (p *Postgres) DeleteBet(ctx context.Context, callerID, betID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id = $1 AND creator_id = $2`,
		betID, callerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
