package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	census "censusdesk/internal/census/models"
	profilemw "censusdesk/internal/profile/middleware"
	"censusdesk/internal/profile/models"
	"censusdesk/internal/profile/service"
	"censusdesk/internal/profile/store"
	"censusdesk/pkg/platform/httputil"
	"censusdesk/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router *chi.Mux
	store  *store.InMemoryStore
	admin  *models.Profile
	exec   *models.Profile
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewInMemory()
	svc := service.NewService(s.store, nil, logger)

	s.admin = testutil.NewAdminBuilder().Build()
	s.exec = testutil.NewExecutiveBuilder().Build()
	s.Require().NoError(s.store.Insert(context.Background(), s.admin))
	s.Require().NoError(s.store.Insert(context.Background(), s.exec))

	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router)
}

func (s *HandlerSuite) do(actor *models.Profile, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if actor != nil {
		req = req.WithContext(profilemw.WithProfile(req.Context(), actor))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) TestGetMe() {
	w := s.do(s.exec, http.MethodGet, "/profiles/me", "")
	s.Equal(http.StatusOK, w.Code)

	var resp models.ProfileResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(s.exec.ID.String(), resp.ID)
	s.Equal(models.RoleExecutive, resp.Role)
	s.Equal(string(census.TerritoryNorth), resp.Territory)
}

func (s *HandlerSuite) TestMissingProfileIsInternal() {
	w := s.do(nil, http.MethodGet, "/profiles/me", "")
	s.Equal(http.StatusInternalServerError, w.Code)
}

func (s *HandlerSuite) TestUpdateMe() {
	w := s.do(s.exec, http.MethodPut, "/profiles/me", `{"name":"Asha Rao","region":"West Zone"}`)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp models.ProfileResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal("Asha Rao", resp.Name)
	s.Equal(string(census.TerritoryWest), resp.Territory)

	s.Run("invalid region", func() {
		w := s.do(s.exec, http.MethodPut, "/profiles/me", `{"name":"Asha Rao","region":"Atlantis"}`)
		s.Equal(http.StatusBadRequest, w.Code)
		var errResp httputil.ErrorResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&errResp))
		s.Equal("Invalid region selected.", errResp.Description)
	})

	s.Run("unknown fields are rejected", func() {
		w := s.do(s.exec, http.MethodPut, "/profiles/me", `{"name":"Asha Rao","role":"admin"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestRegisterExecutive() {
	body := `{"name":"Vikram Singh","email":"vikram@example.com","region":"East Zone"}`

	s.Run("admin", func() {
		w := s.do(s.admin, http.MethodPost, "/admin/executives", body)
		s.Require().Equal(http.StatusCreated, w.Code)
		var resp models.ProfileResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
		s.Equal("vikram@example.com", resp.Email)
		s.Equal(string(census.TerritoryEast), resp.Territory)
	})

	s.Run("duplicate email", func() {
		w := s.do(s.admin, http.MethodPost, "/admin/executives", body)
		s.Equal(http.StatusConflict, w.Code)
		var errResp httputil.ErrorResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&errResp))
		s.Equal(service.MsgEmailTaken, errResp.Description)
	})

	s.Run("executive is forbidden", func() {
		w := s.do(s.exec, http.MethodPost, "/admin/executives", body)
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("validation lists every field", func() {
		w := s.do(s.admin, http.MethodPost, "/admin/executives", `{"name":"V","email":"nope","region":"Atlantis"}`)
		s.Equal(http.StatusBadRequest, w.Code)
		var errResp httputil.ErrorResponse
		s.Require().NoError(json.NewDecoder(w.Body).Decode(&errResp))
		s.Len(errResp.Fields, 3)
	})
}

func (s *HandlerSuite) TestListExecutives() {
	w := s.do(s.admin, http.MethodGet, "/admin/executives", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp models.ExecutiveListResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(1, resp.Total)
	s.Equal(s.exec.Email, resp.Executives[0].Email)

	w = s.do(s.exec, http.MethodGet, "/admin/executives", "")
	s.Equal(http.StatusForbidden, w.Code)
}
