// Package engine concentra as transições de estado do ciclo de vida das
// apostas. É o único caminho de mutação entre linhas: roda com acesso pleno às
// tabelas (sem os filtros do pacote policy), mas revalida a identidade do
// chamador dentro da própria transação antes de alterar qualquer linha.
package engine

import (
	"context"
	"database/sql"

	"github.com/radieske/p2p-wager-backend/internal/bet-service/policy"
	"github.com/radieske/p2p-wager-backend/internal/bet-service/repo"
)

type Engine struct{ db *sql.DB }

func New(db *sql.DB) *Engine { return &Engine{db: db} }

// Mensagem única pra linha inexistente e linha de outro usuário:
// não vaza existência pra quem não tem acesso.
const msgNotAuthorized = "recipient row not found or not owned by caller"

// recipientRow é o estado travado (FOR UPDATE) da linha de convite.
// BetCreatorID vem do campo redundante da própria linha, sem join em bets.
type recipientRow struct {
	BetID        string
	RecipientID  string
	BetCreatorID string
	Status       string
}

// AcceptBet aceita o convite: linha do convidado vai pra in_progress e a aposta
// acompanha. O status da aposta nunca regride de completed/cancelled.
func (e *Engine) AcceptBet(ctx context.Context, callerID, recipientRowID string) Result {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return failure(err.Error())
	}
	defer tx.Rollback()

	row, res := lockRecipientRow(ctx, tx, callerID, recipientRowID)
	if res != nil {
		return *res
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE bet_recipients SET status = 'in_progress' WHERE id = $1`,
		recipientRowID); err != nil {
		return failure(err.Error())
	}
	if _, err = tx.ExecContext(ctx, `
		UPDATE bets SET status = 'in_progress'
		WHERE id = $1 AND status IN ('pending', 'in_progress')`,
		row.BetID); err != nil {
		return failure(err.Error())
	}

	if err = tx.Commit(); err != nil {
		return failure(err.Error())
	}
	return Result{
		Success:      true,
		BetID:        row.BetID,
		RecipientID:  row.RecipientID,
		BetCreatorID: row.BetCreatorID,
		Message:      "bet accepted",
	}
}

// RejectBet recusa o convite: só a linha do convidado muda. O status da aposta
// fica como está, de propósito: outros convidados podem seguir ativos.
func (e *Engine) RejectBet(ctx context.Context, callerID, recipientRowID string) Result {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return failure(err.Error())
	}
	defer tx.Rollback()

	row, res := lockRecipientRow(ctx, tx, callerID, recipientRowID)
	if res != nil {
		return *res
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE bet_recipients SET status = 'rejected' WHERE id = $1`,
		recipientRowID); err != nil {
		return failure(err.Error())
	}

	if err = tx.Commit(); err != nil {
		return failure(err.Error())
	}
	return Result{
		Success:      true,
		BetID:        row.BetID,
		RecipientID:  row.RecipientID,
		BetCreatorID: row.BetCreatorID,
		Message:      "bet rejected",
	}
}

// DeclareOutcome registra o desfecho declarado pelo convidado e reconcilia a
// aposta inteira: a linha declarante recebe o desfecho, todas as demais linhas
// da aposta recebem o complemento (declarante perdeu => oponentes ganharam, e
// vice-versa) e a aposta vai pra completed. Com mais de um oponente, todos
// recebem o mesmo complemento; liquidação por par não é modelada.
func (e *Engine) DeclareOutcome(ctx context.Context, callerID, recipientRowID, outcome string) Result {
	if outcome != repo.RecipientStatusWon && outcome != repo.RecipientStatusLost {
		return failure("invalid outcome: must be 'won' or 'lost'")
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return failure(err.Error())
	}
	defer tx.Rollback()

	row, res := lockRecipientRow(ctx, tx, callerID, recipientRowID)
	if res != nil {
		return *res
	}
	if row.Status != repo.RecipientStatusInProgress {
		return failure("cannot declare outcome: recipient status is '" + row.Status + "', expected 'in_progress'")
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE bet_recipients
		SET status = $1, pending_outcome = FALSE, outcome_claimed_by = $2, outcome_claimed_at = NOW()
		WHERE id = $3`,
		outcome, callerID, recipientRowID); err != nil {
		return failure(err.Error())
	}

	complement := repo.RecipientStatusWon
	if outcome == repo.RecipientStatusWon {
		complement = repo.RecipientStatusLost
	}

	rows, err := tx.QueryContext(ctx, `
		UPDATE bet_recipients
		SET status = $1, pending_outcome = FALSE, outcome_claimed_by = $2, outcome_claimed_at = NOW()
		WHERE bet_id = $3 AND id <> $4
		RETURNING recipient_id`,
		complement, callerID, row.BetID, recipientRowID)
	if err != nil {
		return failure(err.Error())
	}
	var opponents []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return failure(err.Error())
		}
		opponents = append(opponents, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return failure(err.Error())
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE bets SET status = 'completed' WHERE id = $1`, row.BetID); err != nil {
		return failure(err.Error())
	}

	if err = tx.Commit(); err != nil {
		return failure(err.Error())
	}
	return Result{
		Success:      true,
		BetID:        row.BetID,
		RecipientID:  row.RecipientID,
		BetCreatorID: row.BetCreatorID,
		Message:      "outcome '" + outcome + "' declared",
		OpponentIDs:  opponents,
	}
}

// lockRecipientRow trava a linha do convidado (FOR UPDATE) e revalida que o
// chamador é o dono. Linha inexistente e linha alheia retornam o mesmo failure.
func lockRecipientRow(ctx context.Context, tx *sql.Tx, callerID, recipientRowID string) (recipientRow, *Result) {
	var row recipientRow
	err := tx.QueryRowContext(ctx, `
		SELECT bet_id, recipient_id, bet_creator_id, status FROM bet_recipients
		WHERE id = $1
		FOR UPDATE`,
		recipientRowID,
	).Scan(&row.BetID, &row.RecipientID, &row.BetCreatorID, &row.Status)
	if err == sql.ErrNoRows {
		r := failure(msgNotAuthorized)
		return recipientRow{}, &r
	}
	if err != nil {
		r := failure(err.Error())
		return recipientRow{}, &r
	}
	if !policy.RecipientUpdate(callerID, row.RecipientID) {
		r := failure(msgNotAuthorized)
		return recipientRow{}, &r
	}
	return row, nil
}
