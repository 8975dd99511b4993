package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"greenergy-billing/internal/audit"
	"greenergy-billing/internal/auth"
	customerapp "greenergy-billing/internal/customer/application"
	customer "greenergy-billing/internal/customer/domain"
)

// CustomerHandler handles customer account APIs.
type CustomerHandler struct {
	service     *customerapp.Service
	auditLogger audit.Logger
}

// NewCustomerHandler constructs a handler.
func NewCustomerHandler(service *customerapp.Service, auditLogger audit.Logger) (*CustomerHandler, error) {
	if service == nil {
		return nil, errors.New("customer handler: nil service")
	}
	return &CustomerHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles customer routes under /api/v1/customers.
func (h *CustomerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/customers" && r.Method == http.MethodPost {
		h.handleCreate(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/v1/customers/") {
		username := strings.TrimPrefix(path, "/api/v1/customers/")
		if username == "" || strings.Contains(username, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, username)
			return
		case http.MethodPut:
			h.handleUpdateAddress(w, r, username)
			return
		case http.MethodDelete:
			h.handleDelete(w, r, username)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *CustomerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Street   string `json:"street"`
		City     string `json:"city"`
		County   string `json:"county"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	account, err := h.service.Create(r.Context(), customerapp.CreateInput{
		Name:     req.Name,
		Street:   req.Street,
		City:     req.City,
		County:   req.County,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		respondCustomerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(customerResponse(account))
	h.logAudit(r, account.Username, "customer.create", map[string]any{
		"role": string(account.Role),
	})
}

func (h *CustomerHandler) handleGet(w http.ResponseWriter, r *http.Request, username string) {
	if err := auth.EnsureSelfOrAdmin(r.Context(), username); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	account, err := h.service.Get(r.Context(), username)
	if err != nil {
		respondCustomerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(customerResponse(account))
}

func (h *CustomerHandler) handleUpdateAddress(w http.ResponseWriter, r *http.Request, username string) {
	var req struct {
		Street  string `json:"street"`
		Zipcode string `json:"zipcode"`
		City    string `json:"city"`
		County  string `json:"county"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	addr := customer.Address{Street: req.Street, Zipcode: req.Zipcode, City: req.City, County: req.County}
	if err := h.service.UpdateAddress(r.Context(), username, addr); err != nil {
		respondCustomerError(w, err)
		return
	}
	account, err := h.service.Get(r.Context(), username)
	if err != nil {
		respondCustomerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(customerResponse(account))
	h.logAudit(r, username, "customer.update_address", map[string]any{
		"city":   req.City,
		"county": req.County,
	})
}

func (h *CustomerHandler) handleDelete(w http.ResponseWriter, r *http.Request, username string) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.service.Delete(r.Context(), username, confirmed); err != nil {
		respondCustomerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, username, "customer.delete", nil)
}

func customerResponse(account *customer.Customer) map[string]any {
	return map[string]any{
		"id":       account.ID,
		"name":     account.Name,
		"street":   account.Street,
		"zipcode":  account.Zipcode,
		"city":     account.City,
		"county":   account.County,
		"username": account.Username,
		"role":     string(account.Role),
	}
}

func (h *CustomerHandler) logAudit(r *http.Request, username, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "customer",
		ResourceID:   username,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondCustomerError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, customer.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, customer.ErrDuplicateUsername):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, customer.ErrNotConfirmed):
		http.Error(w, err.Error(), http.StatusPreconditionRequired)
	case errors.Is(err, customer.ErrInvalidName),
		errors.Is(err, customer.ErrInvalidRole),
		errors.Is(err, customer.ErrUnknownLocality):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
