package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/models"
)

// deny writes the same {"detail": ...} envelope the handlers use, so
// clients parse auth failures and business errors the same way.
func deny(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func JWTAuth(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				deny(w, http.StatusUnauthorized, "Token ausente")
				return
			}
			raw := strings.TrimPrefix(h, "Bearer ")
			claims, err := Verify(raw)
			if err != nil {
				deny(w, http.StatusUnauthorized, "Token inválido")
				return
			}
			var sess models.Session
			if claims.JWTID == "" || db.First(&sess, "jti = ?", claims.JWTID).Error != nil {
				deny(w, http.StatusUnauthorized, "Sessão não encontrada")
				return
			}
			if sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
				deny(w, http.StatusUnauthorized, "Sessão expirada ou revogada")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).Admin {
				deny(w, http.StatusForbidden, "Acesso restrito a administradores")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
