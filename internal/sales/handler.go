package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-crm/meridian-crm/internal/platform/httpx"
	"github.com/meridian-crm/meridian-crm/internal/schedule"
)

// Handler wires the sale CRUD endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers sale routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/schedule/regenerate", h.Regenerate)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := parseListFilters(r)
	if err != nil {
		var vErr fieldError
		if errors.As(err, &vErr) {
			httpx.ValidationProblem(w, map[string]string{vErr.field: vErr.reason})
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	sales, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list sales failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if sales == nil {
		sales = []Sale{}
	}
	httpx.JSON(w, http.StatusOK, sales)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.saleID(w, r)
	if !ok {
		return
	}

	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get sale", err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := h.validateStruct(req); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}

	sale, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create sale", err, 0)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.saleID(w, r)
	if !ok {
		return
	}

	var req UpdateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := h.validateStruct(req); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}

	sale, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update sale", err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.saleID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondError(w, "delete sale", err, id)
		return
	}
	if !deleted {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "sale not found")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.saleID(w, r)
	if !ok {
		return
	}

	sale, regenerated, err := h.service.RegenerateSchedule(r.Context(), id)
	if err != nil {
		h.respondError(w, "regenerate schedule", err, id)
		return
	}

	resp := map[string]any{"sale": sale}
	if !regenerated {
		resp["message"] = "nothing to regenerate"
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) saleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return 0, false
	}
	return id, true
}

func (h *Handler) validateStruct(v any) map[string]string {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	fields := map[string]string{}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			fields[fieldErr.Field()] = fieldErr.Error()
		}
	} else {
		fields["_"] = err.Error()
	}
	return fields
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error, id int64) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "sale not found")
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "sale with this sale_id already exists")
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op+" failed", "error", err, "id", id)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

type fieldError struct {
	field  string
	reason string
}

func (e fieldError) Error() string {
	return e.field + ": " + e.reason
}

func parseListFilters(r *http.Request) (ListFilters, error) {
	q := r.URL.Query()
	filters := ListFilters{
		Search:     strings.TrimSpace(q.Get("search")),
		ClientName: strings.TrimSpace(q.Get("clientName")),
		MasterName: strings.TrimSpace(q.Get("masterName")),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
	}

	if raw := q.Get("status"); raw != "" {
		status := Status(raw)
		if !ValidStatus(status) {
			return ListFilters{}, fieldError{field: "status", reason: "unknown status"}
		}
		filters.Status = &status
	}
	if raw := q.Get("companyId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFilters{}, fieldError{field: "companyId", reason: "must be numeric"}
		}
		filters.CompanyID = &id
	}

	var err error
	if filters.PurchaseDateFrom, err = parseDateParam(q.Get("purchaseDateFrom"), "purchaseDateFrom"); err != nil {
		return ListFilters{}, err
	}
	if filters.PurchaseDateTo, err = parseDateParam(q.Get("purchaseDateTo"), "purchaseDateTo"); err != nil {
		return ListFilters{}, err
	}
	if filters.NextPaymentDateFrom, err = parseDateParam(q.Get("nextPaymentDateFrom"), "nextPaymentDateFrom"); err != nil {
		return ListFilters{}, err
	}
	if filters.NextPaymentDateTo, err = parseDateParam(q.Get("nextPaymentDateTo"), "nextPaymentDateTo"); err != nil {
		return ListFilters{}, err
	}

	if filters.IsFrozen, err = parseBoolParam(q.Get("isFrozen"), "isFrozen"); err != nil {
		return ListFilters{}, err
	}
	if filters.IsRefund, err = parseBoolParam(q.Get("isRefund"), "isRefund"); err != nil {
		return ListFilters{}, err
	}
	if filters.IsBooked, err = parseBoolParam(q.Get("isBooked"), "isBooked"); err != nil {
		return ListFilters{}, err
	}

	return filters, nil
}

func parseDateParam(raw, param string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, ok := schedule.ParseDate(raw)
	if !ok {
		return nil, fieldError{field: param, reason: "unrecognized date format"}
	}
	return &d, nil
}

func parseBoolParam(raw, param string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fieldError{field: param, reason: "must be boolean"}
	}
	return &v, nil
}
