package match

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oduya/pendo/internal/app"
	"github.com/oduya/pendo/internal/db"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/server"
)

// Registrar ties the Match service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Match service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Match service handlers to the router
func (reg *Registrar) Register(r chi.Router) {
	s := NewMatchService(reg.appCtx)

	r.Post("/matches", s.handleRecordInterest)
	r.Get("/matches", s.handleList)
}

type recordInterestRequest struct {
	ProfileID string `json:"profile_id"`
}

func (s *Service) handleRecordInterest(w http.ResponseWriter, r *http.Request) {
	var req recordInterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProfileID == "" {
		svcErr.WriteError(w, svcErr.InvalidArgument("profile_id is required"))
		return
	}

	m, created, err := s.RecordInterest(r.Context(), server.UserID(r.Context()), req.ProfileID)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	svcErr.WriteJSON(w, status, m)
}

type listResponse struct {
	Matches             []db.Match `json:"matches"`
	NextPaginationToken *string    `json:"next_pagination_token,omitempty"`
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	var token *string
	if t := r.URL.Query().Get("page_token"); t != "" {
		token = &t
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	matches, nextToken, err := s.List(r.Context(), server.UserID(r.Context()), token, limit)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}

	if matches == nil {
		matches = []db.Match{}
	}
	svcErr.WriteJSON(w, http.StatusOK, listResponse{
		Matches:             matches,
		NextPaginationToken: nextToken,
	})
}
