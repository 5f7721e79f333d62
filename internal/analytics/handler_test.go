package analytics

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian-crm/internal/sales"
	"github.com/meridian-crm/meridian-crm/internal/schedule"
)

func newHandlerRouter(source *stubSource) chi.Router {
	svc := NewService(source, &stubDirectory{names: map[int64]string{}})
	svc.WithNow(func() time.Time {
		return time.Date(2024, time.February, 20, 12, 0, 0, 0, time.Local)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, svc)

	r := chi.NewRouter()
	r.Route("/api/analytics", h.MountRoutes)
	return r
}

func TestHandlerCollect(t *testing.T) {
	router := newHandlerRouter(&stubSource{sales: []sales.Sale{
		{
			ID: 1,
			PaymentSchedule: []schedule.Entry{
				{PaymentNumber: 1, PlannedDate: "10.02.2024", PlannedAmount: amount(300)},
			},
		},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/?month=2&year=2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var data Data
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 2, data.Month)
	assert.Equal(t, 2024, data.Year)
	assert.Equal(t, 300.0, data.TotalPlanned)
}

func TestHandlerCollectDefaultsPeriod(t *testing.T) {
	router := newHandlerRouter(&stubSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var data Data
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, 2, data.Month)
	assert.Equal(t, 2024, data.Year)
}

func TestHandlerCollectRejectsOutOfRangeParams(t *testing.T) {
	router := newHandlerRouter(&stubSource{})

	for _, query := range []string{"?month=13", "?month=abc", "?year=99"} {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/"+query, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}
