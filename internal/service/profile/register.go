package profile

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oduya/pendo/internal/app"
	svcErr "github.com/oduya/pendo/internal/errors"
	"github.com/oduya/pendo/internal/server"
)

// Registrar ties the Profile service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Profile service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Profile service handlers to the router
func (reg *Registrar) Register(r chi.Router) {
	s := NewProfileService(reg.appCtx)

	r.Put("/profile", s.handleUpsert)
	r.Get("/profile", s.handleGet)
	r.Get("/discover", s.handleDiscover)
}

func (s *Service) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var in UpsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		svcErr.WriteError(w, svcErr.InvalidArgument("invalid request body"))
		return
	}

	profile, err := s.Upsert(r.Context(), server.UserID(r.Context()), in)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, profile)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := s.Get(r.Context(), server.UserID(r.Context()))
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, profile)
}

func (s *Service) handleDiscover(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	candidates, err := s.Discover(r.Context(), server.UserID(r.Context()), limit)
	if err != nil {
		svcErr.WriteError(w, err)
		return
	}
	svcErr.WriteJSON(w, http.StatusOK, map[string]interface{}{"profiles": candidates})
}
