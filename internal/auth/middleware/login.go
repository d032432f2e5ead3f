package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-progression/internal/validate"
)

type loginReq struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Role        string `json:"role"`
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService, users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid data", "fields": validate.Fields(err)})
			return
		}

		c, err := users.Credentials(r.Context(), req.Username)
		if err != nil {
			if !errors.Is(err, ErrUserNotFound) {
				log.Printf("auth: login %q: %v", req.Username, err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if c.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		tok, err := a.IssueJWT(c.UserID, c.Role)
		if err != nil {
			log.Printf("auth: issue token: %v", err)
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResp{
			AccessToken: tok,
			TokenType:   "Bearer",
			ExpiresIn:   int64(a.TTL().Seconds()),
			Role:        c.Role,
		})
	}
}
