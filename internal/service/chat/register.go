package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oduya/pendo/internal/app"
	"github.com/oduya/pendo/internal/db"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/server"
)

// Registrar ties the Chat service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Chat service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Chat service handlers to the router
func (reg *Registrar) Register(r chi.Router) {
	s := NewChatService(reg.appCtx)

	r.Get("/credits", s.handleBalance)
	r.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/messages", s.handleListMessages)
		r.Post("/messages", s.handleSend)
		r.Get("/ws", s.handleSubscribe)
	})
}

func (s *Service) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.ListMessages(r.Context(), server.UserID(r.Context()), chi.URLParam(r, "matchID"))
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	if messages == nil {
		messages = []db.Message{}
	}
	svcErr.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

type sendRequest struct {
	Content string `json:"content"`
}

type sendResponse struct {
	Message *db.Message `json:"message"`
	Balance int64       `json:"balance"`
}

func (s *Service) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.WriteError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	msg, balance, err := s.Send(r.Context(), server.UserID(r.Context()), chi.URLParam(r, "matchID"), req.Content)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusCreated, sendResponse{Message: msg, Balance: balance})
}

func (s *Service) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.Balance(r.Context(), server.UserID(r.Context()))
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}
