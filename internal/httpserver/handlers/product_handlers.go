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

type productReq struct {
	CompanyID        uint    `json:"company_id" validate:"required"`
	ProductName      string  `json:"product_name" validate:"required,min=1,max=500"`
	MapaRegistration string  `json:"mapa_registration" validate:"required,min=1,max=100"`
	ProductReference *string `json:"product_reference" validate:"omitempty,max=500"`
}

func CreateProduct(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		// company must belong to the caller
		var c models.Company
		if err := db.First(&c, "id = ? AND user_id = ?", req.CompanyID, auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusBadRequest, "Empresa não encontrada")
			return
		}
		p := models.Product{
			CompanyID:        c.ID,
			ProductName:      strings.TrimSpace(req.ProductName),
			MapaRegistration: strings.TrimSpace(req.MapaRegistration),
			ProductReference: req.ProductReference,
		}
		if err := db.Create(&p).Error; err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSONStatus(w, http.StatusCreated, p)
	}
}

func ListProducts(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ps []models.Product
		q := db.Joins("JOIN companies ON companies.id = products.company_id").
			Where("companies.user_id = ?", auth.UserID(r.Context()))
		if companyID := r.URL.Query().Get("company_id"); companyID != "" {
			q = q.Where("products.company_id = ?", companyID)
		}
		if err := q.Order("products.product_name asc").Find(&ps).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, ps)
	}
}

type productUpdateReq struct {
	ProductName      *string `json:"product_name" validate:"omitempty,min=1,max=500"`
	MapaRegistration *string `json:"mapa_registration" validate:"omitempty,min=1,max=100"`
	ProductReference *string `json:"product_reference" validate:"omitempty,max=500"`
}

func UpdateProduct(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productUpdateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		p, ok := findUserProduct(db, w, r)
		if !ok {
			return
		}
		if req.ProductName != nil {
			p.ProductName = strings.TrimSpace(*req.ProductName)
		}
		if req.MapaRegistration != nil {
			p.MapaRegistration = strings.TrimSpace(*req.MapaRegistration)
		}
		if req.ProductReference != nil {
			p.ProductReference = req.ProductReference
		}
		p.UpdatedAt = time.Now()
		if err := db.Save(p).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, p)
	}
}

func DeleteProduct(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := findUserProduct(db, w, r)
		if !ok {
			return
		}
		if err := db.Delete(p).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func findUserProduct(db *gorm.DB, w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	var p models.Product
	err := db.Joins("JOIN companies ON companies.id = products.company_id").
		Where("products.id = ? AND companies.user_id = ?", chi.URLParam(r, "id"), auth.UserID(r.Context())).
		First(&p).Error
	if err != nil {
		respondError(w, http.StatusNotFound, "Produto não encontrado")
		return nil, false
	}
	return &p, true
}

// Catalog returns the user's companies with nested products, plus totals.
func Catalog(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cs []models.Company
		if err := db.Preload("Products").Where("user_id = ?", auth.UserID(r.Context())).
			Order("company_name asc").Find(&cs).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		totalProducts := 0
		for i := range cs {
			totalProducts += len(cs[i].Products)
		}
		respondJSON(w, map[string]any{
			"total_companies": len(cs),
			"total_products":  totalProducts,
			"companies":       cs,
		})
	}
}
