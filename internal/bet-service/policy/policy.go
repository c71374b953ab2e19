// Package policy define as regras de acesso por linha das tabelas do domínio.
//
// Cada predicado decide select/insert/update de uma linha a partir da identidade
// do chamador e dos campos da própria linha. Nenhum predicado consulta outra
// tabela: a visibilidade de bet_recipients usa o campo redundante bet_creator_id
// gravado na própria linha, pra avaliação nunca ser circular (a política de bets
// depende de bet_recipients; se a de bet_recipients dependesse de bets, fecharia
// o ciclo).
//
// O repositório espelha estes predicados nas cláusulas WHERE das consultas
// diretas; o engine de ciclo de vida roda com privilégio elevado e revalida a
// identidade por conta própria.
package policy

// BetSelect: visível se o chamador é o criador ou convidado da aposta.
// callerIsRecipient vem de uma consulta a bet_recipients (bet_id + recipient_id).
func BetSelect(callerID, creatorID string, callerIsRecipient bool) bool {
	return callerID == creatorID || callerIsRecipient
}

// BetInsert: só pode inserir aposta em nome próprio.
func BetInsert(callerID, creatorID string) bool {
	return callerID == creatorID
}

// BetUpdate: só o criador altera a própria aposta diretamente.
func BetUpdate(callerID, creatorID string) bool {
	return callerID == creatorID
}

// BetDelete: só o criador remove a aposta (cascateia pros convidados).
func BetDelete(callerID, creatorID string) bool {
	return callerID == creatorID
}

// RecipientSelect: visível pro próprio convidado ou pro criador da aposta,
// resolvido pelo campo redundante da linha (nunca via join em bets).
func RecipientSelect(callerID, recipientID, betCreatorID string) bool {
	return callerID == recipientID || callerID == betCreatorID
}

// RecipientInsert: só o criador da aposta convida; convidar a si mesmo é inválido.
func RecipientInsert(callerID, recipientID, betCreatorID string) bool {
	return callerID == betCreatorID && recipientID != betCreatorID
}

// RecipientUpdate: só o próprio convidado altera a própria linha diretamente.
// Efeitos em outras linhas passam pelo engine, nunca por update direto.
func RecipientUpdate(callerID, recipientID string) bool {
	return callerID == recipientID
}
