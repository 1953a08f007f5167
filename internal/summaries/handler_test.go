package summaries_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/summaries"
	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/routes"
)

func setupMux(f fixture) *http.ServeMux {
	mux := http.NewServeMux()
	if err := routes.Register(mux, f.sys.Handler().Routes()); err != nil {
		panic(err)
	}
	return mux
}

func TestHandlerMetrics(t *testing.T) {
	f := newFixture(t, time.Second)
	mux := setupMux(f)

	req := httptest.NewRequest("GET", "/summaries/INS-7/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var m summaries.Metrics
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, summaries.Hold, m.Disposition)
}

func TestHandlerCompleteConflict(t *testing.T) {
	f := newFixture(t, time.Second)
	expectGuard(f.mock, true)
	mux := setupMux(f)

	req := httptest.NewRequest("POST", "/summaries/INS-7/complete", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, summaries.ErrAlreadyCompleted.Error(), body.Error)
}

func TestHandlerExport(t *testing.T) {
	f := newFixture(t, time.Second)
	f.mock.ExpectQuery(`FROM public.inspection_summaries`).WillReturnRows(sqlmock.NewRows(summaryColumns))
	mux := setupMux(f)

	req := httptest.NewRequest("GET", "/summaries/export", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), `attachment; filename="inspection-summaries-`))
	assert.NotZero(t, rec.Body.Len())
}

func TestHandlerEmailBadBody(t *testing.T) {
	f := newFixture(t, time.Second)
	mux := setupMux(f)

	req := httptest.NewRequest("POST", "/summaries/INS-7/email", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
