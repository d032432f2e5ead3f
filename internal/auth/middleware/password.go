package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-progression/internal/validate"
)

const passwordCost = 12

type changePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,nefield=OldPassword"`
}

// POST /users/change-password  { "old_password": "...", "new_password": "..." }
func ChangePasswordHandler(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid data", "fields": validate.Fields(err)})
			return
		}

		stored, err := users.PasswordHash(r.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			log.Printf("auth: change password %q: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if stored == "" || bcrypt.CompareHashAndPassword([]byte(stored), []byte(req.OldPassword)) != nil {
			http.Error(w, "incorrect old password", http.StatusForbidden)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), passwordCost)
		if err != nil {
			log.Printf("auth: hash password: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if err := users.SetPasswordHash(r.Context(), userID, string(hash)); err != nil {
			log.Printf("auth: store password %q: %v", userID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
