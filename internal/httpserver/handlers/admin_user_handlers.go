package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/auth"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/models"
)

func ListUsers(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var users []models.User
		if err := db.Order("created_at desc").Find(&users).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, users)
	}
}

type createUserReq struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required"`
	FullName    string  `json:"full_name" validate:"required,min=3,max=255"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	IsAdmin     bool    `json:"is_admin"`
}

func CreateUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
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
			IsAdmin:      req.IsAdmin,
			IsActive:     true,
		}
		if err := db.Create(&u).Error; err != nil {
			respondError(w, http.StatusBadRequest, "Email já cadastrado")
			return
		}
		lg.Infow("user created", "user_id", u.ID, "by", auth.UserID(r.Context()))
		respondJSONStatus(w, http.StatusCreated, u)
	}
}

type updateUserReq struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=3,max=255"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password"`
}

func UpdateUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req updateUserReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		if req.FullName != nil {
			u.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.CompanyName != nil {
			u.CompanyName = req.CompanyName
		}
		if req.IsActive != nil {
			u.IsActive = *req.IsActive
		}
		if req.Password != nil && *req.Password != "" {
			if err := auth.ValidatePasswordStrength(*req.Password); err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "erro ao gerar hash")
				return
			}
			u.PasswordHash = hash
		}
		u.UpdatedAt = time.Now()
		if err := db.Save(&u).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, u)
	}
}

func DeleteUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		if u.ID == auth.UserID(r.Context()) {
			respondError(w, http.StatusBadRequest, "Não é possível excluir a própria conta")
			return
		}
		if err := db.Select("Companies", "XMLUploads", "Reports").Delete(&u).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		lg.Infow("user deleted", "user_id", u.ID, "by", auth.UserID(r.Context()))
		respondJSON(w, map[string]any{"deleted": true})
	}
}
