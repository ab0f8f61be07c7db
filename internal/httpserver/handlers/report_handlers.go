package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/auth"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/models"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/nfe"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/report"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/storage"
)

type noDataError struct{ period string }

func (e *noDataError) Error() string {
	return fmt.Sprintf("Nenhum dado encontrado para o período %s. Faça o upload das notas fiscais primeiro.", e.period)
}

// buildPeriodReport is the single aggregation path shared by the generate
// and download endpoints, so both classify the same inputs identically.
func buildPeriodReport(ctx context.Context, db *gorm.DB, store storage.ObjectStore, uid uint, period string) (*report.Result, error) {
	var uploads []models.XMLUpload
	if err := db.Where("user_id = ? AND status = ? AND period = ?", uid, models.UploadStatusProcessed, period).
		Order("upload_date asc").Find(&uploads).Error; err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, &noDataError{period: period}
	}

	invoices := make([]*nfe.Invoice, 0, len(uploads))
	for _, up := range uploads {
		rc, err := store.Get(ctx, up.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("ler arquivo %s: %w", up.Filename, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("ler arquivo %s: %w", up.Filename, err)
		}
		inv, err := nfe.ParseBytes(data)
		if err != nil {
			// the upload was processed once before; a parse failure here
			// means the stored object went bad, not the user's data
			return nil, fmt.Errorf("processar %s: %w", up.Filename, err)
		}
		invoices = append(invoices, inv)
	}

	proc, err := report.NewProcessor(db, uid)
	if err != nil {
		return nil, err
	}
	return proc.Process(invoices)
}

func respondReportError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	var noData *noDataError
	if errors.As(err, &noData) {
		respondError(w, http.StatusBadRequest, noData.Error())
		return
	}
	var catErr *report.CatalogError
	if errors.As(err, &catErr) {
		respondError(w, http.StatusBadRequest, catErr.Error(),
			map[string]interface{}{"unregistered_entries": catErr.Entries})
		return
	}
	lg.Errorw("report build failed", "error", err)
	respondError(w, http.StatusInternalServerError, fmt.Sprintf("Erro ao processar relatório: %v", err))
}

type generateReportReq struct {
	Period string `json:"period" validate:"required,quarter"`
}

func GenerateReport(db *gorm.DB, store storage.ObjectStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateReportReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		uid := auth.UserID(r.Context())

		result, err := buildPeriodReport(r.Context(), db, store, uid, req.Period)
		if err != nil {
			respondReportError(w, lg, err)
			return
		}

		rowsJSON, _ := json.Marshal(result.Rows)
		rec := models.Report{
			UserID:       uid,
			ReportPeriod: req.Period,
			TotalNFEs:    result.TotalNFEs,
			Rows:         models.JSONB(rowsJSON),
		}
		if err := db.Create(&rec).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		md, _ := json.Marshal(map[string]any{"report_id": rec.ID, "period": req.Period, "total_nfes": result.TotalNFEs})
		_ = db.Create(&models.AuditLog{UserID: &uid, Action: "REPORT_GENERATE", Metadata: models.JSONB(md)}).Error

		respondJSON(w, map[string]any{
			"success":    true,
			"message":    "Relatório processado com sucesso",
			"period":     req.Period,
			"total_nfes": result.TotalNFEs,
			"rows":       result.Rows,
		})
	}
}

func ListReports(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reports []models.Report
		if err := db.Where("user_id = ?", auth.UserID(r.Context())).
			Order("generated_at desc").Find(&reports).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, reports)
	}
}

func DeleteReport(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec models.Report
		if err := db.First(&rec, "id = ? AND user_id = ?", chi.URLParam(r, "id"), auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "Relatório não encontrado")
			return
		}
		if err := db.Delete(&rec).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, map[string]any{"message": "Relatório deletado com sucesso"})
	}
}

// DownloadReport re-aggregates the period and streams the result as PDF.
func DownloadReport(db *gorm.DB, store storage.ObjectStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := chi.URLParam(r, "period")
		if !report.ValidPeriod(period) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("período inválido: %q (esperado Q1-2025)", period))
			return
		}
		uid := auth.UserID(r.Context())

		result, err := buildPeriodReport(r.Context(), db, store, uid, period)
		if err != nil {
			respondReportError(w, lg, err)
			return
		}

		var u models.User
		if err := db.First(&u, "id = ?", uid).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		info := report.UserInfo{FullName: u.FullName, Email: u.Email}
		if u.CompanyName != nil {
			info.CompanyName = *u.CompanyName
		}

		pdfBytes, err := report.RenderPDF(period, result.Rows, info, result.TotalNFEs)
		if err != nil {
			lg.Errorw("render pdf", "error", err)
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("Erro interno ao gerar download: %v", err))
			return
		}

		md, _ := json.Marshal(map[string]any{"period": period, "total_nfes": result.TotalNFEs})
		_ = db.Create(&models.AuditLog{UserID: &uid, Action: "REPORT_DOWNLOAD", Metadata: models.JSONB(md)}).Error

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=relatorio_mapa_%s.pdf", period))
		_, _ = w.Write(pdfBytes)
	}
}
