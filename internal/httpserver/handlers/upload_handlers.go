package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/auth"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/models"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/nfe"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/storage"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/upload"
)

// UploadXML receives one NF-e file (multipart field "file"), stores the raw
// bytes and processes it inline. Processing failures do not fail the request:
// the upload record carries status "error" and the message.
func UploadXML(db *gorm.DB, store storage.ObjectStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.UserID(r.Context())
		if err := r.ParseMultipartForm(upload.MaxFileSize + 1<<20); err != nil {
			respondError(w, http.StatusBadRequest, "multipart inválido")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "arquivo obrigatório (campo 'file')")
			return
		}
		defer file.Close()

		content, err := io.ReadAll(io.LimitReader(file, upload.MaxFileSize+1))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "erro ao ler arquivo")
			return
		}
		info, err := upload.Validate(header.Filename, content, upload.MaxFileSize)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		key := fmt.Sprintf("user_%d/%s_%s", uid, uuid.NewString(), info.Filename)
		if err := store.Put(r.Context(), key, bytes.NewReader(content), int64(len(content)), "application/xml"); err != nil {
			lg.Errorw("store upload", "key", key, "error", err)
			respondError(w, http.StatusInternalServerError, "erro ao salvar arquivo")
			return
		}

		rec := models.XMLUpload{
			UserID:     uid,
			Filename:   info.Filename,
			StorageKey: key,
			Status:     models.UploadStatusPending,
		}
		if err := db.Create(&rec).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		processUpload(db, &rec, content)
		_ = db.Save(&rec).Error

		md, _ := json.Marshal(map[string]any{"upload_id": rec.ID, "filename": rec.Filename, "status": rec.Status})
		_ = db.Create(&models.AuditLog{UserID: &uid, Action: "UPLOAD_XML", Metadata: models.JSONB(md)}).Error

		respondJSONStatus(w, http.StatusCreated, rec)
	}
}

// processUpload parses the NF-e and fills status, period and access key.
func processUpload(db *gorm.DB, rec *models.XMLUpload, content []byte) {
	inv, err := nfe.ParseBytes(content)
	if err != nil {
		msg := err.Error()
		rec.Status = models.UploadStatusError
		rec.ErrorMessage = &msg
		return
	}
	if inv.AccessKey != "" {
		var dup int64
		db.Model(&models.XMLUpload{}).
			Where("user_id = ? AND nfe_key = ? AND id <> ?", rec.UserID, inv.AccessKey, rec.ID).
			Count(&dup)
		if dup > 0 {
			msg := fmt.Sprintf("NF-e duplicada: a chave %s já foi enviada", inv.AccessKey)
			rec.Status = models.UploadStatusError
			rec.ErrorMessage = &msg
			return
		}
	}
	rec.Status = models.UploadStatusProcessed
	rec.Period = inv.Period()
	rec.NFEKey = inv.AccessKey
	rec.ErrorMessage = nil
}

func ListUploads(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var uploads []models.XMLUpload
		if err := db.Where("user_id = ?", auth.UserID(r.Context())).
			Order("upload_date desc").Find(&uploads).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, uploads)
	}
}

func DeleteUpload(db *gorm.DB, store storage.ObjectStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec models.XMLUpload
		if err := db.First(&rec, "id = ? AND user_id = ?", chi.URLParam(r, "id"), auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "Upload não encontrado")
			return
		}
		if err := store.Delete(r.Context(), rec.StorageKey); err != nil {
			lg.Warnw("delete stored file", "key", rec.StorageKey, "error", err)
		}
		if err := db.Delete(&rec).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type updateUploadReq struct {
	Period string `json:"period" validate:"required,quarter"`
}

// UpdateUploadPeriod reassigns an upload to a different quarter, for invoices
// whose emission date landed in the wrong reporting window.
func UpdateUploadPeriod(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateUploadReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !checkValid(w, &req) {
			return
		}
		var rec models.XMLUpload
		if err := db.First(&rec, "id = ? AND user_id = ?", chi.URLParam(r, "id"), auth.UserID(r.Context())).Error; err != nil {
			respondError(w, http.StatusNotFound, "Upload não encontrado")
			return
		}
		rec.Period = req.Period
		if err := db.Save(&rec).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, rec)
	}
}
