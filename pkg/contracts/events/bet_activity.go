package events

// Ações possíveis de um evento de atividade de aposta
const (
	ActionInvited         = "invited"
	ActionAccepted        = "accepted"
	ActionRejected        = "rejected"
	ActionOutcomeDeclared = "outcome_declared"
	ActionCancelled       = "cancelled"
)

// Evento publicado no tópico "bet_activity" após cada transição confirmada
// AffectedUserIDs: todos os usuários cujo feed de notificações deve ser atualizado
type BetActivity struct {
	Action          string   `json:"action"`
	BetID           string   `json:"bet_id"`
	RecipientRowID  string   `json:"recipient_row_id,omitempty"`
	ActorID         string   `json:"actor_id"`
	Outcome         string   `json:"outcome,omitempty"` // "won" | "lost" (apenas outcome_declared)
	AffectedUserIDs []string `json:"affected_user_ids"`
	TsUnixMs        int64    `json:"ts_unix_ms"`
}
