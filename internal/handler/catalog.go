package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/catalog"
	"github.com/sakif/robotics-league/internal/model"
)

// CatalogReader is the read side of the team and tournament catalog.
type CatalogReader interface {
	catalog.Store
	Rankings() []model.Team
	TournamentsByStatus(status model.TournamentStatus) []model.Tournament
}

// compile-time check that *catalog.Catalog satisfies CatalogReader
var _ CatalogReader = (*catalog.Catalog)(nil)

// CatalogHandler serves the public, read-only league pages.
type CatalogHandler struct {
	catalog CatalogReader
	logger  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(c CatalogReader, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, logger: logger}
}

// HandleListTeams returns every team in catalog order.
//
// HTTP: GET /api/teams
func (h *CatalogHandler) HandleListTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.AllTeams())
}

// HandleGetTeam returns one team.
//
// HTTP: GET /api/teams/{id}
func (h *CatalogHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	// A malformed id is just another team that does not exist.
	id, _ := intParam(r, "id")
	team, ok := h.catalog.Team(id)
	if !ok {
		writeError(w, apperror.NotFound("team", chiParam(r, "id")))
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleRankings returns teams ordered by ranking, first place first.
//
// HTTP: GET /api/rankings
func (h *CatalogHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Rankings())
}

// HandleListTournaments returns tournaments, optionally filtered by
// ?status=upcoming|ongoing|completed.
//
// HTTP: GET /api/tournaments
func (h *CatalogHandler) HandleListTournaments(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		writeJSON(w, http.StatusOK, h.catalog.AllTournaments())
		return
	}
	status := model.TournamentStatus(raw)
	if !status.Valid() {
		writeError(w, apperror.ValidationFailed("status", "status must be upcoming, ongoing or completed"))
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.TournamentsByStatus(status))
}

// HandleGetTournament returns one tournament.
//
// HTTP: GET /api/tournaments/{id}
func (h *CatalogHandler) HandleGetTournament(w http.ResponseWriter, r *http.Request) {
	id, _ := intParam(r, "id")
	t, ok := h.catalog.Tournament(id)
	if !ok {
		writeError(w, apperror.NotFound("tournament", chiParam(r, "id")))
		return
	}
	writeJSON(w, http.StatusOK, t)
}
