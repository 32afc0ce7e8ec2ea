package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "cmms-system/pkg/errors"
)

func TestParseFilterFromQuery(t *testing.T) {
	values, err := url.ParseQuery("search=pump&sort[created_at]=desc&sort[name]=sideways&filter[status]=operational&filter[status]=stopped&limit=10&page=3")
	require.NoError(t, err)

	f := ParseFilterFromQuery(values)

	assert.Equal(t, "pump", f.Search)
	assert.Equal(t, map[string]string{"created_at": "desc"}, f.Sort)
	assert.Equal(t, "operational,stopped", f.Filter["status"])
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 20, f.Offset)
	assert.True(t, f.WithPagination)
}

func TestParseFilterFromQuery_LimitCapped(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{"limit": {"100000"}, "withPagination": {"false"}})

	assert.Equal(t, MaxLimit, f.Limit)
	assert.False(t, f.WithPagination)
	assert.Equal(t, 0, f.Offset)
}

func doError(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, ErrorResponse(c, err, zap.NewNop()))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorResponse_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("asset 5: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{apperrors.ErrInsufficientStock, http.StatusConflict},
		{apperrors.ErrInvalidTransition, http.StatusConflict},
		{apperrors.ErrAIUnavailable, http.StatusServiceUnavailable},
		{apperrors.NewInvalidInputError("плохое поле %s", "x"), http.StatusBadRequest},
		{apperrors.NewHttpError(http.StatusTeapot, "чай", nil, nil), http.StatusTeapot},
		{fmt.Errorf("что-то пошло не так"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, body := doError(t, tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.Equal(t, false, body["status"])
	}
}

func TestErrorResponse_InternalMessageHidden(t *testing.T) {
	_, body := doError(t, fmt.Errorf("pq: password authentication failed"))
	assert.Equal(t, "Внутренняя ошибка сервера", body["message"])
}

func TestErrorResponse_ValidationErrors(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	err := validator.New().Struct(payload{})
	require.Error(t, err)

	code, body := doError(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "Name")
}

func TestSuccessResponse_WithPagination(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?withPagination=true&limit=2", nil), rec)

	require.NoError(t, SuccessResponse(c, []int{1, 2}, "ok", http.StatusOK, 5))

	var body struct {
		Status bool `json:"status"`
		Body   struct {
			List       []int `json:"list"`
			Pagination struct {
				TotalCount uint64 `json:"total_count"`
				TotalPages int    `json:"total_pages"`
			} `json:"pagination"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Status)
	assert.Equal(t, []int{1, 2}, body.Body.List)
	assert.Equal(t, uint64(5), body.Body.Pagination.TotalCount)
	assert.Equal(t, 3, body.Body.Pagination.TotalPages)
}
