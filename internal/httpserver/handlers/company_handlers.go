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

type companyReq struct {
	CompanyName      string `json:"company_name" validate:"required,min=1,max=500"`
	MapaRegistration string `json:"mapa_registration" validate:"required,min=1,max=100"`
}

func CreateCompany(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req companyReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		c := models.Company{
			UserID:           auth.UserID(r.Context()),
			CompanyName:      strings.TrimSpace(req.CompanyName),
			MapaRegistration: strings.TrimSpace(req.MapaRegistration),
		}
		if err := db.Create(&c).Error; err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSONStatus(w, http.StatusCreated, c)
	}
}

func ListCompanies(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cs []models.Company
		if err := db.Where("user_id = ?", auth.UserID(r.Context())).
			Order("company_name asc").Find(&cs).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, cs)
	}
}

type companyUpdateReq struct {
	CompanyName      *string `json:"company_name" validate:"omitempty,min=1,max=500"`
	MapaRegistration *string `json:"mapa_registration" validate:"omitempty,min=1,max=100"`
}

func UpdateCompany(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req companyUpdateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		var c models.Company
		if err := db.First(&c, "id = ? AND user_id = ?", chi.URLParam(r, "id"), auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "Empresa não encontrada")
			return
		}
		if req.CompanyName != nil {
			c.CompanyName = strings.TrimSpace(*req.CompanyName)
		}
		if req.MapaRegistration != nil {
			c.MapaRegistration = strings.TrimSpace(*req.MapaRegistration)
		}
		c.UpdatedAt = time.Now()
		if err := db.Save(&c).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, c)
	}
}

func DeleteCompany(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c models.Company
		if err := db.First(&c, "id = ? AND user_id = ?", chi.URLParam(r, "id"), auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "Empresa não encontrada")
			return
		}
		// products go with the company
		if err := db.Select("Products").Delete(&c).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
