package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	censushandler "censusdesk/internal/census/handler"
	censusservice "censusdesk/internal/census/service"
	censusstore "censusdesk/internal/census/store"
	jwttoken "censusdesk/internal/jwt_token"
	"censusdesk/internal/platform/health"
	"censusdesk/internal/platform/metrics"
	profilehandler "censusdesk/internal/profile/handler"
	"censusdesk/internal/profile/models"
	profileservice "censusdesk/internal/profile/service"
	profilestore "censusdesk/internal/profile/store"
	"censusdesk/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	router http.Handler
	tokens *jwttoken.JWTService
	admin  *models.Profile
	exec   *models.Profile
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	profiles := profilestore.NewInMemory()
	s.admin = testutil.NewAdminBuilder().Build()
	s.exec = testutil.NewExecutiveBuilder().Build()
	s.Require().NoError(profiles.Insert(ctx, s.admin))
	s.Require().NoError(profiles.Insert(ctx, s.exec))

	profileSvc := profileservice.NewService(profiles, nil, logger)
	censusSvc := censusservice.NewService(censusstore.NewInMemory(), nil, logger,
		censusservice.WithExecutiveDirectory(profileSvc),
	)
	s.tokens = jwttoken.NewJWTService("router-test-key", "censusdesk", "censusdesk-api", time.Hour)

	reg := prometheus.NewRegistry()
	metrics.New(reg, "test", "test")

	s.router = NewRouter(RouterConfig{
		Logger:         logger,
		Tokens:         s.tokens.Validator(),
		Profiles:       profileSvc,
		Public:         []Registrar{health.New("test")},
		API:            []Registrar{profilehandler.New(profileSvc, logger), censushandler.New(censusSvc, logger)},
		Metrics:        metrics.Handler(reg),
		RequestTimeout: 5 * time.Second,
		MaxBodyBytes:   1 << 16,
	})
}

func (s *RouterSuite) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) tokenFor(p *models.Profile) string {
	token, err := s.tokens.IssueToken(context.Background(), p.ID, p.Email)
	s.Require().NoError(err)
	return token
}

func (s *RouterSuite) TestPublicRoutesSkipAuth() {
	w := s.do(http.MethodGet, "/health/live", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-ID"))

	w = s.do(http.MethodGet, "/metrics", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "censusdesk_build_info")
}

func (s *RouterSuite) TestAPIRequiresToken() {
	w := s.do(http.MethodGet, "/census/records", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/census/records", "not-a-jwt", "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestTokenWithoutProfileIsRejected() {
	stranger := testutil.NewExecutiveBuilder().Build()
	w := s.do(http.MethodGet, "/census/records", s.tokenFor(stranger), "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestExecutiveCreatesAndAdminSeesRecord() {
	body := `{"family_head_name":"Asha Verma","number_of_dependents":2,"number_of_educated_members":1,
		"number_of_non_educated_members":1,"identity_proof_type":"Aadhaar Card",
		"identity_number":"123456789012","territory":"North Zone"}`
	w := s.do(http.MethodPost, "/census/records", s.tokenFor(s.exec), body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/census/records", s.tokenFor(s.admin), "")
	s.Require().Equal(http.StatusOK, w.Code)
	var list censushandler.RecordListResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Equal(1, list.Total)
	s.Equal("Asha Verma", list.Records[0].FamilyHeadName)

	w = s.do(http.MethodGet, "/census/dashboard", s.tokenFor(s.admin), "")
	s.Require().Equal(http.StatusOK, w.Code)
	var dash censushandler.DashboardResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &dash))
	s.Require().NotNil(dash.ActiveExecutives)
	s.Equal(1, *dash.ActiveExecutives)
}

func (s *RouterSuite) TestRejectsNonJSONBodies() {
	req := httptest.NewRequest(http.MethodPost, "/census/records", strings.NewReader("x=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.tokenFor(s.exec))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnsupportedMediaType, w.Code)
}
