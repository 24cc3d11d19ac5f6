package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/robotics-league/internal/handler"
	"github.com/sakif/robotics-league/internal/model"
)

func TestCatalogHandler_Teams(t *testing.T) {
	f := newFixture(t)

	t.Run("list", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/teams", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		teams := decode[[]model.Team](t, rr)
		assert.Len(t, teams, 8)
	})

	t.Run("by id", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/teams/3", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 3, decode[model.Team](t, rr).ID)
	})

	for _, path := range []string{"/api/teams/99", "/api/teams/abc", "/api/teams/0"} {
		t.Run("not found "+path, func(t *testing.T) {
			rr := f.do(t, http.MethodGet, path, "", nil)
			require.Equal(t, http.StatusNotFound, rr.Code)
			assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rr).Error)
		})
	}

	t.Run("rankings", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/rankings", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		teams := decode[[]model.Team](t, rr)
		require.Len(t, teams, 8)
		for i, team := range teams {
			assert.Equal(t, i+1, team.Ranking)
		}
	})
}

func TestCatalogHandler_Tournaments(t *testing.T) {
	f := newFixture(t)

	t.Run("list", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/tournaments", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode[[]model.Tournament](t, rr), 6)
	})

	t.Run("filter by status", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/tournaments?status=upcoming", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		list := decode[[]model.Tournament](t, rr)
		require.Len(t, list, 3)
		for _, tr := range list {
			assert.Equal(t, model.TournamentUpcoming, tr.Status)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/tournaments?status=cancelled", "", nil)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "status", body.Field)
	})

	t.Run("by id", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/tournaments/4", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 4, decode[model.Tournament](t, rr).ID)
	})

	t.Run("not found", func(t *testing.T) {
		rr := f.do(t, http.MethodGet, "/api/tournaments/42", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
