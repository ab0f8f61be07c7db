package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/auth"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/models"
)

func GetProfile(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := db.First(&u, "id = ?", auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		respondJSON(w, u)
	}
}

type updateProfileReq struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=3,max=255"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
}

// UpdateProfile is the self-service edit path: full name and company name only.
func UpdateProfile(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateProfileReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		if req.FullName != nil {
			u.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.CompanyName != nil {
			u.CompanyName = req.CompanyName
		}
		u.UpdatedAt = time.Now()
		if err := db.Save(&u).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, u)
	}
}

// Stats powers the user dashboard cards.
func Stats(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.UserID(r.Context())
		var companies, products, uploads, processed, reports int64
		db.Model(&models.Company{}).Where("user_id = ?", uid).Count(&companies)
		db.Model(&models.Product{}).
			Joins("JOIN companies ON companies.id = products.company_id").
			Where("companies.user_id = ?", uid).Count(&products)
		db.Model(&models.XMLUpload{}).Where("user_id = ?", uid).Count(&uploads)
		db.Model(&models.XMLUpload{}).Where("user_id = ? AND status = ?", uid, models.UploadStatusProcessed).Count(&processed)
		db.Model(&models.Report{}).Where("user_id = ?", uid).Count(&reports)
		respondJSON(w, map[string]any{
			"total_companies":   companies,
			"total_products":    products,
			"total_uploads":     uploads,
			"processed_uploads": processed,
			"total_reports":     reports,
		})
	}
}
