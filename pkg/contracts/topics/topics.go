package topics

const (
	// Atividade do ciclo de vida das apostas (criação, aceite, recusa, desfecho)
	BetActivity = "bet_activity"

	// DLQ
	BetActivityDLQ = "bet_activity_dlq"
)
