package sales

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
)

func newTestRouter(t *testing.T, repo *mockRepository) chi.Router {
	t.Helper()
	svc := NewService(repo)
	svc.WithNow(func() time.Time {
		return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, svc)

	r := chi.NewRouter()
	r.Route("/api/sales", h.MountRoutes)
	return r
}

func doRequest(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validCreate() CreateSaleRequest {
	return CreateSaleRequest{
		SaleID:       100,
		LeadID:       5,
		ClientPhone:  "+79001112233",
		TotalCost:    5000,
		PurchaseDate: "2024-01-15",
	}
}

func TestHandlerCreateAndGet(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(t, repo)

	rec := doRequest(t, router, http.MethodPost, "/api/sales/", validCreate())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(100), created.SaleID)
	assert.Equal(t, StatusActive, created.Status)

	rec = doRequest(t, router, http.MethodGet, "/api/sales/"+strconv.FormatInt(created.ID, 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerCreateValidation(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodPost, "/api/sales/", CreateSaleRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "Validation Failed", problem.Title)
	assert.Contains(t, problem.Fields, "SaleID")
	assert.Contains(t, problem.Fields, "ClientPhone")
}

func TestHandlerCreateMalformedJSON(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	req := httptest.NewRequest(http.MethodPost, "/api/sales/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreateDuplicate(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodPost, "/api/sales/", validCreate())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/sales/", validCreate())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerCreateInvalidPurchaseDate(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	body := validCreate()
	body.PurchaseDate = "2024/01/15"
	rec := doRequest(t, router, http.MethodPost, "/api/sales/", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGetNotFound(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodGet, "/api/sales/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerGetInvalidID(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodGet, "/api/sales/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUpdate(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(t, repo)

	rec := doRequest(t, router, http.MethodPost, "/api/sales/", validCreate())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	comments := "called the client"
	rec = doRequest(t, router, http.MethodPatch, "/api/sales/"+strconv.FormatInt(created.ID, 10), UpdateSaleRequest{Comments: &comments})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.Comments)
	assert.Equal(t, comments, *updated.Comments)
}

func TestHandlerUpdateNotFound(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	comments := "hi"
	rec := doRequest(t, router, http.MethodPatch, "/api/sales/321", UpdateSaleRequest{Comments: &comments})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodPost, "/api/sales/", validCreate())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := "/api/sales/" + strconv.FormatInt(created.ID, 10)

	rec = doRequest(t, router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = doRequest(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerListFilterValidation(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodGet, "/api/sales/?status=bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Contains(t, problem.Fields, "status")

	rec = doRequest(t, router, http.MethodGet, "/api/sales/?purchaseDateFrom=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/sales/?isFrozen=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerListEmptyIsArray(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodGet, "/api/sales/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHandlerRegenerateWithoutSchedule(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	rec := doRequest(t, router, http.MethodPost, "/api/sales/", validCreate())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doRequest(t, router, http.MethodPost, "/api/sales/"+strconv.FormatInt(created.ID, 10)+"/schedule/regenerate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "nothing to regenerate", resp["message"])
}
