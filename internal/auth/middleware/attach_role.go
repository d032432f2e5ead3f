package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/mind-engage/mindengage-progression/internal/rbac"
)

// AttachRoleFromDB replaces the token's role claim with the user's stored
// role, so demotions take effect before the token expires. With
// allowClaimFallback (dev/offline) an unknown user keeps the claimed role;
// otherwise the request is refused.
func AttachRoleFromDB(users UserStore, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx)

			role, err := users.Role(ctx, sub)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case allowClaimFallback && claimRole != "" && (err == nil || errors.Is(err, ErrUserNotFound)):
				next.ServeHTTP(w, r)
			default:
				if err != nil && !errors.Is(err, ErrUserNotFound) {
					log.Printf("auth: role lookup %q: %v", sub, err)
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
