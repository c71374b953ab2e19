package engine

// Result é o envelope uniforme de retorno de todas as operações do engine.
// Todo caminho de saída, inclusive erro de transação, devolve este formato:
// quem chama decide só pelo campo Success, sem tratar tipos de erro distintos.
type Result struct {
	Success      bool     `json:"success"`
	BetID        string   `json:"bet_id,omitempty"`
	RecipientID  string   `json:"recipient_id,omitempty"`
	BetCreatorID string   `json:"bet_creator_id,omitempty"`
	Message      string   `json:"message,omitempty"`
	Error        string   `json:"error,omitempty"`
	OpponentIDs  []string `json:"opponent_ids,omitempty"` // usuários com desfecho ajustado pela reconciliação
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}
