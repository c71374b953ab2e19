package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/p2p-wager-backend/internal/notification/cache"
	"github.com/radieske/p2p-wager-backend/internal/notification/repo"
)

// API expõe o endpoint REST de consulta do feed de notificações
// Leitura pura: preferencialmente do cache, senão da projeção no Postgres
type API struct {
	ReadRepo *repo.ReadRepo   // projeção no banco de dados
	Cache    *cache.Cache     // feed montado por usuário
	WS       http.HandlerFunc // opcional: handler WebSocket do hub
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/notifications", a.getNotifications) // Feed do usuário, mais recentes primeiro
	if a.WS != nil {
		r.Get("/ws", a.WS) // Entrega em tempo real via WebSocket
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// getNotifications retorna o feed do chamador, preferencialmente do cache
func (a *API) getNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var fromCache []repo.Notification
	if ok, _ := a.Cache.GetFeed(r.Context(), userID, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	feed, err := a.ReadRepo.ListForUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if feed == nil {
		feed = []repo.Notification{}
	}

	_ = a.Cache.SetFeed(r.Context(), userID, feed)
	writeJSON(w, http.StatusOK, feed)
}
