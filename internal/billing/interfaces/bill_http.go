package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"greenergy-billing/internal/audit"
	"greenergy-billing/internal/auth"
	billingapp "greenergy-billing/internal/billing/application"
	billing "greenergy-billing/internal/billing/domain"
	customer "greenergy-billing/internal/customer/domain"
	"greenergy-billing/internal/observability/metrics"
)

// BillHandler handles the meter reading ledger APIs.
type BillHandler struct {
	service     *billingapp.BillingService
	directory   billingapp.CustomerDirectory
	auditLogger audit.Logger
}

// NewBillHandler constructs a handler.
func NewBillHandler(service *billingapp.BillingService, directory billingapp.CustomerDirectory, auditLogger audit.Logger) (*BillHandler, error) {
	if service == nil {
		return nil, errors.New("bill handler: nil service")
	}
	if directory == nil {
		return nil, errors.New("bill handler: nil customer directory")
	}
	return &BillHandler{service: service, directory: directory, auditLogger: auditLogger}, nil
}

type readingRequest struct {
	Username  string          `json:"username"`
	BillYear  int             `json:"bill_year"`
	BillMonth int             `json:"bill_month"`
	Index     decimal.Decimal `json:"index"`
	Confirmed bool            `json:"confirmed"`
}

// ServeHTTP handles bill routes under /api/v1/bills.
func (h *BillHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/bills/preview" && r.Method == http.MethodPost {
		h.handlePreview(w, r)
		return
	}
	if path == "/api/v1/bills" && r.Method == http.MethodPost {
		h.handleCreate(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/v1/bills/") {
		rest := strings.TrimPrefix(path, "/api/v1/bills/")
		h.handleByKey(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *BillHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := auth.EnsureSelfOrAdmin(r.Context(), req.Username); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	preview, err := h.service.PreviewConsumption(r.Context(), req.Username, req.BillYear, req.BillMonth, req.Index)
	if err != nil {
		if errors.Is(err, billing.ErrNegativeConsumption) {
			metrics.IncPreviewRejection("negative_consumption")
		}
		respondBillError(w, err)
		return
	}
	resp := map[string]any{
		"username":       preview.Username,
		"bill_year":      preview.BillYear,
		"bill_month":     preview.BillMonth,
		"new_index":      preview.NewIndex,
		"previous_index": preview.PreviousIndex,
		"has_previous":   preview.HasPrevious,
		"consumption":    preview.Quantities.Consumption,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *BillHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := auth.EnsureSelfOrAdmin(r.Context(), req.Username); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if !req.Confirmed {
		http.Error(w, "reading not confirmed", http.StatusPreconditionRequired)
		return
	}
	record, err := h.service.CreateBillRecord(r.Context(), req.Username, req.BillYear, req.BillMonth, req.Index)
	if err != nil {
		respondBillError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(billResponse(record))
	h.logAudit(r, record, "bill.create", map[string]any{
		"index": record.IndexValue.String(),
	})
}

func (h *BillHandler) handleByKey(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	if len(parts) < 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	username := parts[0]
	year, err := strconv.Atoi(parts[1])
	if err != nil || username == "" {
		http.Error(w, "invalid bill key", http.StatusBadRequest)
		return
	}
	if err := auth.EnsureSelfOrAdmin(r.Context(), username); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if len(parts) == 3 && parts[2] == "export.xlsx" && r.Method == http.MethodGet {
		h.handleYearExport(w, r, username, year)
		return
	}
	if len(parts) < 3 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	month, err := strconv.Atoi(parts[2])
	if err != nil {
		http.Error(w, "invalid bill key", http.StatusBadRequest)
		return
	}

	if len(parts) == 3 {
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, username, year, month)
			return
		case http.MethodPut:
			h.handleAmend(w, r, username, year, month)
			return
		}
	}
	if len(parts) == 4 && r.Method == http.MethodGet {
		switch parts[3] {
		case "export.pdf":
			h.handleInvoiceExport(w, r, username, year, month, "pdf")
			return
		case "export.xlsx":
			h.handleInvoiceExport(w, r, username, year, month, "xlsx")
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *BillHandler) handleGet(w http.ResponseWriter, r *http.Request, username string, year, month int) {
	record, err := h.service.GetBillRecord(r.Context(), username, year, month)
	if err != nil {
		respondBillError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(billResponse(record))
}

func (h *BillHandler) handleAmend(w http.ResponseWriter, r *http.Request, username string, year, month int) {
	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !req.Confirmed {
		http.Error(w, "reading not confirmed", http.StatusPreconditionRequired)
		return
	}
	record, err := h.service.AmendBillRecord(r.Context(), username, year, month, req.Index)
	if err != nil {
		respondBillError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(billResponse(record))
	h.logAudit(r, record, "bill.amend", map[string]any{
		"index": record.IndexValue.String(),
	})
}

func (h *BillHandler) handleInvoiceExport(w http.ResponseWriter, r *http.Request, username string, year, month int, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoiceExport(format, result, time.Since(start))
	}()

	record, err := h.service.GetBillRecord(r.Context(), username, year, month)
	if err != nil {
		result = metrics.ResultError
		respondBillError(w, err)
		return
	}
	account, err := h.directory.GetByUsername(r.Context(), username)
	if err != nil {
		result = metrics.ResultError
		respondBillError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = BuildInvoicePDF(record, account)
		contentType = "application/pdf"
	case "xlsx":
		data, err = BuildInvoiceXLSX(record, account)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, record, "bill.export", map[string]any{"format": format})
}

func (h *BillHandler) handleYearExport(w http.ResponseWriter, r *http.Request, username string, year int) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveInvoiceExport("xlsx_year", result, time.Since(start))
	}()

	records, err := h.service.ListYear(r.Context(), username, year)
	if err != nil {
		result = metrics.ResultError
		respondBillError(w, err)
		return
	}
	account, err := h.directory.GetByUsername(r.Context(), username)
	if err != nil {
		result = metrics.ResultError
		respondBillError(w, err)
		return
	}
	data, err := BuildYearlyConsumptionXLSX(account, year, records)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	if h.auditLogger != nil {
		payload, _ := json.Marshal(map[string]any{"format": "xlsx", "year": year})
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "bill.export_year",
			ResourceType: "bill",
			ResourceID:   username,
			Metadata:     payload,
			IP:           audit.ClientIP(r),
			UserAgent:    r.UserAgent(),
		})
	}
}

func billResponse(record *billing.BillRecord) map[string]any {
	return map[string]any{
		"username":         record.Username,
		"bill_year":        record.BillYear,
		"bill_month":       record.BillMonth,
		"bill_serial":      record.Serial,
		"bill_number":      record.Number,
		"generated_date":   record.Generated.Format("2006-01-02"),
		"due_date":         record.Due.Format("2006-01-02"),
		"start_date":       record.Start.Format("2006-01-02"),
		"end_date":         record.End.Format("2006-01-02"),
		"index":            record.IndexValue,
		"energy_kwh":       record.EnergyQty,
		"total_before_vat": record.TotalPreVAT,
		"total_vat":        record.TotalVAT,
		"total":            record.GrandTotal,
	}
}

func (h *BillHandler) logAudit(r *http.Request, record *billing.BillRecord, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "bill",
		ResourceID:   record.Number,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondBillError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, billing.ErrRecordNotFound), errors.Is(err, customer.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, billing.ErrDuplicateRecord), errors.Is(err, billing.ErrNotLatestRecord):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, billing.ErrNegativeConsumption):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, billing.ErrInvalidPeriod), errors.Is(err, billing.ErrUnknownCounty):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
