package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/auth"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/models"
)

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Login(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		var u models.User
		if err := db.First(&u, "email = ?", strings.ToLower(strings.TrimSpace(req.Email))).Error; err != nil {
			respondError(w, http.StatusUnauthorized, "Email ou senha incorretos")
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			respondError(w, http.StatusUnauthorized, "Email ou senha incorretos")
			return
		}
		if !u.IsActive {
			respondError(w, http.StatusUnauthorized, "Usuário desativado")
			return
		}
		jti := uuid.NewString()
		sess := models.Session{JTI: jti, UserID: u.ID, ExpiresAt: time.Now().Add(auth.TokenTTL()), CreatedAt: time.Now()}
		if err := db.Create(&sess).Error; err != nil {
			respondError(w, http.StatusInternalServerError, "erro ao criar sessão")
			return
		}
		tok, err := auth.Sign(u.ID, u.IsAdmin, jti)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "erro ao assinar token")
			return
		}
		lg.Infow("login", "user_id", u.ID, "admin", u.IsAdmin)
		respondJSON(w, map[string]any{"access_token": tok, "token_type": "bearer"})
	}
}

func Logout(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		now := time.Now()
		_ = db.Model(&models.Session{}).Where("jti = ?", claims.JWTID).Update("revoked_at", &now).Error
		respondJSON(w, map[string]any{"ok": true})
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := db.First(&u, "id = ?", auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		respondJSON(w, u)
	}
}

type setupAdminReq struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	FullName    string  `json:"full_name" validate:"required,min=3,max=255"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
}

// SetupFirstAdmin creates the initial administrator. It refuses to run once
// any admin exists.
func SetupFirstAdmin(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setupAdminReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		var count int64
		db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count)
		if count > 0 {
			respondError(w, http.StatusForbidden, "Já existe um administrador no sistema. Use o login normal.")
			return
		}
		if err := auth.ValidatePasswordStrength(req.Password); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "erro ao gerar hash")
			return
		}
		u := models.User{
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: hash,
			FullName:     strings.TrimSpace(req.FullName),
			CompanyName:  req.CompanyName,
			IsAdmin:      true,
			IsActive:     true,
		}
		if err := db.Create(&u).Error; err != nil {
			respondError(w, http.StatusBadRequest, "Email já cadastrado")
			return
		}
		lg.Infow("first admin created", "user_id", u.ID)
		respondJSONStatus(w, http.StatusCreated, u)
	}
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

func ChangePassword(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		uid := auth.UserID(r.Context())
		var u models.User
		if err := db.First(&u, "id = ?", uid).Error; err != nil {
			respondError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
			respondError(w, http.StatusBadRequest, "Senha atual incorreta")
			return
		}
		if err := auth.ValidatePasswordStrength(req.NewPassword); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "erro ao gerar hash")
			return
		}
		u.PasswordHash = hash
		u.UpdatedAt = time.Now()
		if err := db.Save(&u).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, map[string]any{"message": "Senha alterada com sucesso"})
	}
}
