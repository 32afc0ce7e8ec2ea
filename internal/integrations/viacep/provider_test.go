package viacep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "cmms-system/pkg/errors"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/01310100/json/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo","uf":"sp"}`))
	})
	mux.HandleFunc("/99999999/json/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"erro": true}`))
	})
	mux.HandleFunc("/88888888/json/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"erro": "true"}`))
	})
	mux.HandleFunc("/77777777/json/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/66666666/json/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLookupPostalCode(t *testing.T) {
	srv := newServer(t)
	p := New(srv.URL+"/", 0, zap.NewNop())

	addr, err := p.LookupPostalCode(context.Background(), "01310100")
	require.NoError(t, err)
	assert.Equal(t, "01310-100", addr.PostalCode)
	assert.Equal(t, "Avenida Paulista", addr.Street)
	assert.Equal(t, "Bela Vista", addr.District)
	assert.Equal(t, "São Paulo", addr.City)
	assert.Equal(t, "SP", addr.State)
	assert.Equal(t, "viacep", addr.Source)
}

func TestLookupPostalCode_Errors(t *testing.T) {
	srv := newServer(t)
	p := New(srv.URL, 0, zap.NewNop())

	cases := map[string]error{
		"99999999": apperrors.ErrPostalCodeNotFound,
		"88888888": apperrors.ErrPostalCodeNotFound,
		"12345678": apperrors.ErrPostalCodeNotFound,
		"77777777": apperrors.ErrPostalLookupFailed,
		"66666666": apperrors.ErrPostalLookupFailed,
	}
	for cep, want := range cases {
		_, err := p.LookupPostalCode(context.Background(), cep)
		assert.ErrorIs(t, err, want, cep)
	}
}
