package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// UserID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type   string `json:"type"`   // subscribe | unsubscribe | ping
	UserID string `json:"userId"` // requerido em subscribe/unsubscribe
}

// ActivityUpdate representa uma atividade de aposta enviada aos clientes WebSocket
// UserID identifica o dono do feed que deve receber a atualização
type ActivityUpdate struct {
	UserID  string      `json:"userId"`
	Payload interface{} `json:"payload"`
}
