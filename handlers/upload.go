// handlers/upload.go
package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/claims/config"
	"p9e.in/claims/middleware"
	"p9e.in/claims/models"
	"p9e.in/claims/pkg/wizard"
)

// uploadMeta is one entry of the `meta` form field, parallel to `files`.
type uploadMeta struct {
	DocumentTypeID string `json:"document_type_id"`
	Slot           string `json:"slot"`
}

type uploadedDocOut struct {
	DocumentID uuid.UUID `json:"documentId"`
	URL        string    `json:"url"`
	FileName   string    `json:"file_name"`
	Slot       string    `json:"slot"`
}

// UploadDocuments accepts one or more files for a user's claim. Multipart
// fields: `files` (repeated) and `meta`, a JSON array parallel to files
// carrying document_type_id and slot. A document only counts for step
// validation once this handler has returned its URL.
func UploadDocuments(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	pathUserID := mux.Vars(r)["userId"]
	if pathUserID != claims.UserID {
		http.Error(w, "cannot upload documents for another user", http.StatusForbidden)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	// Parse the multipart form (max 50MB)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "missing files field", http.StatusBadRequest)
		return
	}

	var metas []uploadMeta
	if metaStr := r.FormValue("meta"); metaStr != "" {
		if err := json.Unmarshal([]byte(metaStr), &metas); err != nil {
			http.Error(w, "invalid meta: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if len(metas) != 0 && len(metas) != len(files) {
		http.Error(w, "meta must have one entry per file", http.StatusBadRequest)
		return
	}

	out := make([]uploadedDocOut, 0, len(files))
	for i, header := range files {
		meta := uploadMeta{}
		if i < len(metas) {
			meta = metas[i]
		}
		doc, err := storeClaimDocument(r, userID, header, meta)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out = append(out, uploadedDocOut{
			DocumentID: doc.ID,
			URL:        doc.URL,
			FileName:   doc.FileName,
			Slot:       doc.Slot,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"documents": out})
}

// hashUpload computes the file's sha256 and rewinds it for storage. A
// rewind failure would persist a truncated object behind a success URL,
// so it aborts the upload.
func hashUpload(file io.ReadSeeker) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func storeClaimDocument(r *http.Request, userID uuid.UUID, header *multipart.FileHeader, meta uploadMeta) (*models.ClaimDocument, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fileHash, err := hashUpload(file)
	if err != nil {
		return nil, err
	}

	var path, url string
	if useGCS() {
		path, url, err = storeFileGCS(r.Context(), file, header)
	} else {
		path, url, err = storeFileLocal(file, header)
	}
	if err != nil {
		return nil, err
	}

	doc := models.ClaimDocument{
		UploadedByID: userID,
		Slot:         meta.Slot,
		FileName:     filepath.Base(header.Filename),
		FilePath:     path,
		URL:          url,
		FileSize:     header.Size,
		FileType:     header.Header.Get("Content-Type"),
		FileHash:     fileHash,
	}

	// Resolve the document type: explicit id wins, otherwise the slot's
	// catalog entry.
	if meta.DocumentTypeID != "" {
		if id, err := uuid.Parse(meta.DocumentTypeID); err == nil {
			doc.DocumentTypeID = id
		}
	}
	if doc.DocumentTypeID == uuid.Nil && meta.Slot != "" {
		var dt models.DocumentType
		if err := config.DB.Where("slot = ?", meta.Slot).First(&dt).Error; err == nil {
			doc.DocumentTypeID = dt.ID
		}
	}
	if doc.DocumentTypeID == uuid.Nil {
		var dt models.DocumentType
		if err := config.DB.Where("slot = ?", wizard.SlotOther).First(&dt).Error; err == nil {
			doc.DocumentTypeID = dt.ID
		}
	}

	if err := config.DB.Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocument returns one uploaded document record.
func GetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var doc models.ClaimDocument
	if err := config.DB.Preload("DocumentType").First(&doc, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			http.Error(w, "document not found", http.StatusNotFound)
		} else {
			http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

type patchDocumentReq struct {
	Slot           string `json:"slot"`
	DocumentTypeID string `json:"document_type_id"`
}

// PatchDocument re-labels an uploaded document (slot or type).
func PatchDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := middleware.GetClaims(r)

	var req patchDocumentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var doc models.ClaimDocument
	if err := config.DB.First(&doc, "id = ?", id).Error; err != nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	if doc.UploadedByID.String() != claims.UserID && claims.Role != models.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if req.Slot != "" {
		if wizard.SlotStep(req.Slot) < 0 {
			http.Error(w, "unknown document slot", http.StatusBadRequest)
			return
		}
		doc.Slot = req.Slot
	}
	if req.DocumentTypeID != "" {
		typeID, err := uuid.Parse(req.DocumentTypeID)
		if err != nil {
			http.Error(w, "invalid document type ID", http.StatusBadRequest)
			return
		}
		doc.DocumentTypeID = typeID
	}
	if err := config.DB.Save(&doc).Error; err != nil {
		http.Error(w, "failed to update document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// DeleteDocument soft deletes an uploaded document (slot cleared client
// side).
func DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := middleware.GetClaims(r)

	var doc models.ClaimDocument
	if err := config.DB.First(&doc, "id = ?", id).Error; err != nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	if doc.UploadedByID.String() != claims.UserID && claims.Role != models.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if err := config.DB.Delete(&doc).Error; err != nil {
		http.Error(w, "failed to delete document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDocumentTypes lists the document slot catalog.
func GetDocumentTypes(w http.ResponseWriter, r *http.Request) {
	var types []models.DocumentType
	if err := config.DB.Where("is_active = ?", true).Order("step, slot").Find(&types).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(types)
}
