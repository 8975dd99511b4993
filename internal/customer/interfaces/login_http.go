package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"greenergy-billing/internal/auth"
	customerapp "greenergy-billing/internal/customer/application"
)

// LoginHandler issues JWTs for username/password logins.
type LoginHandler struct {
	service *customerapp.Service
	secret  []byte
	ttl     time.Duration
}

// NewLoginHandler constructs a handler.
func NewLoginHandler(service *customerapp.Service, secret []byte, ttl time.Duration) (*LoginHandler, error) {
	if service == nil {
		return nil, errors.New("login handler: nil service")
	}
	if len(secret) == 0 {
		return nil, errors.New("login handler: empty secret")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LoginHandler{service: service, secret: secret, ttl: ttl}, nil
}

// ServeHTTP handles POST /api/v1/auth/login.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	account, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, customerapp.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	token, err := auth.SignJWT(account.Username, auth.Role(account.Role), h.secret, h.ttl)
	if err != nil {
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	resp := map[string]any{
		"token":      token,
		"role":       string(account.Role),
		"expires_in": int64(h.ttl.Seconds()),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
