package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oduya/pendo/internal/app"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/server"
)

// Registrar ties the Admin service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Admin service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Admin service handlers to the router
func (reg *Registrar) Register(r chi.Router) {
	s := NewAdminService(reg.appCtx)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
		r.Get("/users", s.handleListUsers)
		r.Post("/credits", s.handleTopUp)
	})
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.GetStats(r.Context(), server.UserID(r.Context()))
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, stats)
}

func (s *Service) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.ListUsers(r.Context(), server.UserID(r.Context()))
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

type topUpRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

func (s *Service) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		svcErr.WriteError(w, svcErr.InvalidArgument("user_id and amount are required"))
		return
	}

	credit, err := s.TopUp(r.Context(), server.UserID(r.Context()), req.UserID, req.Amount)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, credit)
}
