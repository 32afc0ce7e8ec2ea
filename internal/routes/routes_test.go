package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/dto"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
	"cmms-system/pkg/service"
	"cmms-system/pkg/types"
	"cmms-system/pkg/validation"
	appwebsocket "cmms-system/pkg/websocket"
)

type stubAssets struct {
	services.AssetServiceInterface
}

func (stubAssets) GetAssets(context.Context, types.Filter) ([]dto.AssetDTO, uint64, error) {
	return []dto.AssetDTO{{ID: 1, Code: "PMP-01"}}, 1, nil
}

type stubTickets struct {
	services.TicketServiceInterface
	lastStatus string
}

func (s *stubTickets) ChangeStatus(_ context.Context, id uint64, payload dto.ChangeTicketStatusDTO) (*dto.TicketDTO, error) {
	s.lastStatus = payload.Status
	return &dto.TicketDTO{ID: id, Status: payload.Status}, nil
}

type stubAuth struct {
	services.AuthServiceInterface
}

func (stubAuth) Login(_ context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	return &dto.AuthResponseDTO{AccessToken: "a", RefreshToken: "r", User: dto.UserPublicDTO{Email: payload.Email}}, nil
}

type routerFixture struct {
	e       *echo.Echo
	jwt     service.JWTService
	tickets *stubTickets
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger := zap.NewNop()

	e := echo.New()
	e.Validator = validation.New()

	jwtSvc := service.NewJWTService("test-secret", time.Hour, 24*time.Hour, logger)
	tickets := &stubTickets{}
	svc := &Services{
		Assets:  stubAssets{},
		Tickets: tickets,
		Auth:    stubAuth{},
	}
	wsCtrl := controllers.NewWebSocketController(appwebsocket.NewHub(logger), jwtSvc, logger)
	dedup := controllers.NewRequestDeduplicator(logger)
	mountRoutes(e.Group("/api"), middleware.NewAuthMiddleware(jwtSvc, logger), dedup, svc, jwtSvc, wsCtrl, logger)

	return &routerFixture{e: e, jwt: jwtSvc, tickets: tickets}
}

func (f *routerFixture) token(t *testing.T, role string, refresh bool) string {
	t.Helper()
	access, refreshToken, err := f.jwt.GenerateTokens(7, role)
	require.NoError(t, err)
	if refresh {
		return refreshToken
	}
	return access
}

func (f *routerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_RequireToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/assets", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/assets", f.token(t, middleware.RoleTechnician, true), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_ReadAllowedForEveryRole(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/assets?withPagination=true", f.token(t, middleware.RoleTechnician, false), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status bool `json:"status"`
		Body   struct {
			List       []dto.AssetDTO   `json:"list"`
			Pagination types.Pagination `json:"pagination"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Status)
	assert.Len(t, resp.Body.List, 1)
	assert.EqualValues(t, 1, resp.Body.Pagination.TotalCount)
}

func TestRoutes_MutationsNeedManager(t *testing.T) {
	f := newRouterFixture(t)
	tech := f.token(t, middleware.RoleTechnician, false)

	rec := f.do(http.MethodPost, "/api/assets", tech, `{}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPost, "/api/tickets", tech, `{}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/api/purchasing/requisitions", tech, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutes_TechnicianMayChangeTicketStatus(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodPut, "/api/tickets/5/status", f.token(t, middleware.RoleTechnician, false), `{"status":"in_progress"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "in_progress", f.tickets.lastStatus)
}

func TestRoutes_TicketStatusValidated(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodPut, "/api/tickets/5/status", f.token(t, middleware.RoleManager, false), `{"status":"done"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.tickets.lastStatus)
}

func TestRoutes_UserManagementAdminOnly(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/users", f.token(t, middleware.RoleManager, false), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutes_LoginIsPublic(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/login", "", `{"email":"admin@cmms.local","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "refreshToken", cookies[0].Name)
	assert.Equal(t, "r", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRoutes_WebSocketRejectsMissingToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/ws/twin", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
