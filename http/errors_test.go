package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laropanostra/shopapp"
	shophttp "github.com/laropanostra/shopapp/http"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
		wantMsg  string
	}{
		{
			name:     "invalid input",
			err:      fmt.Errorf("params from query: %w", shopapp.ErrInvalidInput),
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_input",
			wantMsg:  "Invalid request parameters",
		},
		{
			name:     "validation message",
			err:      shopapp.Invalid(shopapp.ErrPathRequired, "El parámetro 'path' es requerido"),
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_input",
			wantMsg:  "El parámetro 'path' es requerido",
		},
		{
			name:     "not found",
			err:      errors.Join(errors.New("context"), shopapp.ErrNotFound),
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
			wantMsg:  "Resource not found",
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("execute x: %w", context.DeadlineExceeded),
			wantCode: http.StatusGatewayTimeout,
			wantErr:  "timeout",
			wantMsg:  "Database did not answer in time",
		},
		{
			name:     "internal",
			err:      errors.New("login failed for user 'sa'"),
			wantCode: http.StatusInternalServerError,
			wantErr:  "internal_error",
			wantMsg:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)

			shophttp.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body shophttp.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantErr, body.Error)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestHandleError_InternalDetailsNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)

	shophttp.HandleError(rec, req, errors.New("mssql: password expired"))

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()

	shophttp.WriteError(rec, http.StatusTeapot, "teapot", "short and stout")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"teapot","message":"short and stout"}`, rec.Body.String())
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := shophttp.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestFileResponse_OmitsNilData(t *testing.T) {
	b, err := json.Marshal(shophttp.FileResponse{Success: true, Message: "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"ok"}`, string(b))

	b, err = json.Marshal(shophttp.FileResponse{Message: "Ruta no encontrada", Data: []shopapp.DirEntry{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Ruta no encontrada","data":[]}`, string(b))
}
