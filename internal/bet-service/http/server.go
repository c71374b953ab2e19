package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/p2p-wager-backend/internal/bet-service/dto"
	"github.com/radieske/p2p-wager-backend/internal/bet-service/engine"
	"github.com/radieske/p2p-wager-backend/internal/bet-service/repo"
	"github.com/radieske/p2p-wager-backend/pkg/contracts/events"
)

// Lifecycle define as operações do engine usadas pelo handler HTTP.
// Toda operação devolve o envelope uniforme; o handler não trata erros soltos.
type Lifecycle interface {
	AcceptBet(ctx context.Context, callerID, recipientRowID string) engine.Result
	RejectBet(ctx context.Context, callerID, recipientRowID string) engine.Result
	DeclareOutcome(ctx context.Context, callerID, recipientRowID, outcome string) engine.Result
}

// BetRepo define o acesso direto (filtrado por política) usado pelo handler
type BetRepo interface {
	CreateBet(ctx context.Context, callerID string, b *repo.Bet, recipientIDs []string) (string, error)
	GetBet(ctx context.Context, callerID, betID string) (*repo.Bet, error)
	ListBets(ctx context.Context, callerID string) ([]repo.Bet, error)
	ListBetRecipients(ctx context.Context, callerID, betID string) ([]repo.BetRecipient, error)
	CancelBet(ctx context.Context, callerID, betID string) error
	DeleteBet(ctx context.Context, callerID, betID string) error
}

// FriendRepo define a fonte de amizades usada na escolha de convidados
type FriendRepo interface {
	List(ctx context.Context, userID string) ([]repo.Friend, error)
	Add(ctx context.Context, userID, friendID string) error
}

// Publisher publica eventos de atividade pro pipeline de notificações
type Publisher interface {
	PublishBetActivity(ctx context.Context, e events.BetActivity) error
}

// Server expõe a API HTTP de apostas entre amigos
type Server struct {
	log     *zap.Logger
	engine  Lifecycle
	repo    BetRepo
	friends FriendRepo
	publ    Publisher
}

func NewServer(log *zap.Logger, eng Lifecycle, r BetRepo, f FriendRepo, p Publisher) *Server {
	return &Server{log: log, engine: eng, repo: r, friends: f, publ: p}
}

// Router retorna o roteador HTTP com as rotas da API
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/v1/bets", s.createBet)
	r.Get("/v1/bets", s.listBets)
	r.Get("/v1/bets/{id}", s.getBet)
	r.Get("/v1/bets/{id}/recipients", s.listRecipients)
	r.Post("/v1/bets/{id}/cancel", s.cancelBet)
	r.Delete("/v1/bets/{id}", s.deleteBet)

	// Operações de ciclo de vida: sempre respondem 200 com o envelope
	// {success, ...}; o cliente decide pelo campo success
	r.Post("/v1/recipients/{id}/accept", s.acceptBet)
	r.Post("/v1/recipients/{id}/reject", s.rejectBet)
	r.Post("/v1/recipients/{id}/outcome", s.declareOutcome)

	r.Get("/v1/friends", s.listFriends)
	r.Post("/v1/friends", s.addFriend)

	return r
}

// callerID extrai a identidade confiável do chamador, injetada pelo gateway
// de autenticação no header X-User-ID. Autenticação em si é externa ao serviço.
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	var req dto.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Description == "" || req.StakeCents <= 0 || len(req.RecipientIDs) == 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	b := &repo.Bet{
		Description: req.Description,
		StakeCents:  req.StakeCents,
		Visibility:  req.Visibility,
		CreatorID:   caller,
	}
	if req.DueDate != nil {
		b.DueDate = sql.NullTime{Time: *req.DueDate, Valid: true}
	}

	betID, err := s.repo.CreateBet(r.Context(), caller, b, req.RecipientIDs)
	if err != nil {
		if errors.Is(err, repo.ErrSelfInvite) || errors.Is(err, repo.ErrNoRecipients) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.publish(r.Context(), events.BetActivity{
		Action:          events.ActionInvited,
		BetID:           betID,
		ActorID:         caller,
		AffectedUserIDs: append([]string{caller}, req.RecipientIDs...),
	})

	writeJSON(w, http.StatusCreated, dto.CreateBetResponse{BetID: betID, Status: repo.BetStatusPending})
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	bets, err := s.repo.ListBets(r.Context(), caller)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, betResponse(&b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	b, err := s.repo.GetBet(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, betResponse(b))
}

func (s *Server) listRecipients(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	recs, err := s.repo.ListBetRecipients(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.RecipientResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recipientResponse(&rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	betID := chi.URLParam(r, "id")
	if err := s.repo.CancelBet(r.Context(), caller, betID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.publish(r.Context(), events.BetActivity{
		Action:          events.ActionCancelled,
		BetID:           betID,
		ActorID:         caller,
		AffectedUserIDs: s.betParticipants(r.Context(), caller, betID),
	})

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"cancelled"}`))
}

func (s *Server) deleteBet(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	if err := s.repo.DeleteBet(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) acceptBet(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, events.ActionAccepted, func(ctx context.Context, caller, rowID string) engine.Result {
		return s.engine.AcceptBet(ctx, caller, rowID)
	})
}

func (s *Server) rejectBet(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, events.ActionRejected, func(ctx context.Context, caller, rowID string) engine.Result {
		return s.engine.RejectBet(ctx, caller, rowID)
	})
}

func (s *Server) declareOutcome(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	var req dto.DeclareOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	rowID := chi.URLParam(r, "id")
	res := s.engine.DeclareOutcome(r.Context(), caller, rowID, req.Outcome)
	if res.Success {
		s.publish(r.Context(), events.BetActivity{
			Action:          events.ActionOutcomeDeclared,
			BetID:           res.BetID,
			RecipientRowID:  rowID,
			ActorID:         caller,
			Outcome:         req.Outcome,
			AffectedUserIDs: append([]string{caller, res.BetCreatorID}, res.OpponentIDs...),
		})
	}
	writeJSON(w, http.StatusOK, res)
}

// lifecycle executa accept/reject e publica o evento quando a transição commitou
func (s *Server) lifecycle(w http.ResponseWriter, r *http.Request, action string,
	op func(ctx context.Context, caller, rowID string) engine.Result) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	rowID := chi.URLParam(r, "id")
	res := op(r.Context(), caller, rowID)
	if res.Success {
		s.publish(r.Context(), events.BetActivity{
			Action:          action,
			BetID:           res.BetID,
			RecipientRowID:  rowID,
			ActorID:         caller,
			AffectedUserIDs: []string{caller, res.BetCreatorID},
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listFriends(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	list, err := s.friends.List(r.Context(), caller)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.FriendResponse, 0, len(list))
	for _, fr := range list {
		out = append(out, dto.FriendResponse{
			UserID:      fr.UserID,
			Username:    fr.Username,
			DisplayName: fr.DisplayName.String,
			Since:       fr.Since,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addFriend(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}
	var req dto.AddFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.FriendID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.friends.Add(r.Context(), caller, req.FriendID); err != nil {
		if errors.Is(err, repo.ErrSelfInvite) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(`{"status":"added"}`))
}

// publish envia o evento de atividade; falha de publicação não derruba a
// requisição, a transição já commitou no banco
func (s *Server) publish(ctx context.Context, e events.BetActivity) {
	if err := s.publ.PublishBetActivity(ctx, e); err != nil {
		s.log.Warn("bet activity publish failed",
			zap.String("action", e.Action), zap.String("betId", e.BetID), zap.Error(err))
	}
}

// betParticipants resolve os usuários de uma aposta pro fan-out do evento;
// melhor esforço, o chamador sempre entra na lista
func (s *Server) betParticipants(ctx context.Context, caller, betID string) []string {
	out := []string{caller}
	recs, err := s.repo.ListBetRecipients(ctx, caller, betID)
	if err != nil {
		return out
	}
	for _, rec := range recs {
		out = append(out, rec.RecipientID)
	}
	return out
}

func betResponse(b *repo.Bet) dto.BetResponse {
	resp := dto.BetResponse{
		BetID:       b.ID,
		Description: b.Description,
		StakeCents:  b.StakeCents,
		Visibility:  b.Visibility,
		Status:      b.Status,
		CreatorID:   b.CreatorID,
		CreatedAt:   b.CreatedAt,
	}
	if b.DueDate.Valid {
		t := b.DueDate.Time
		resp.DueDate = &t
	}
	return resp
}

func recipientResponse(r *repo.BetRecipient) dto.RecipientResponse {
	resp := dto.RecipientResponse{
		ID:             r.ID,
		BetID:          r.BetID,
		RecipientID:    r.RecipientID,
		Status:         r.Status,
		PendingOutcome: r.PendingOutcome,
		CreatedAt:      r.CreatedAt,
	}
	if r.OutcomeClaimedBy.Valid {
		resp.OutcomeClaimedBy = r.OutcomeClaimedBy.String
	}
	if r.OutcomeClaimedAt.Valid {
		t := r.OutcomeClaimedAt.Time
		resp.OutcomeClaimedAt = &t
	}
	return resp
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
