package v1

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"storefront/internal/auth"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// ImageUploader stores a processed image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, shopID string, data []byte, contentType string) (string, error)
}

type UploadHandler struct {
	storage       ImageUploader
	maxUploadSize int64
}

func NewUploadHandler(s ImageUploader, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{
		storage:       s,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// POST /api/v1/shop/uploads
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("Upload: ParseMultipartForm failed")
		utils.WriteError(w, http.StatusBadRequest, "File too large or invalid format")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !utils.IsImage(contentType) {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file type. Allowed: JPEG, PNG, WebP, GIF")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		utils.WriteError(w, http.StatusBadRequest, "Invalid file extension")
		return
	}

	data, newContentType, err := utils.ProcessImage(file, utils.MaxImageWidth)
	if err != nil {
		log.Warn().Err(err).Str("filename", header.Filename).Msg("Image processing failed")
		utils.WriteError(w, http.StatusBadRequest, "Could not read image")
		return
	}

	shopID := r.FormValue("shopId")
	if shopID == "" {
		shopID = auth.FromContext(r.Context()).UserID
	}

	url, err := h.storage.UploadImage(r.Context(), shopID, data, newContentType)
	if err != nil {
		log.Error().Err(err).Msg("Image upload failed")
		utils.WriteError(w, http.StatusBadGateway, "Failed to upload file")
		return
	}

	log.Info().Str("url", url).Int("bytes", len(data)).Msg("Image uploaded")
	utils.WriteJSON(w, http.StatusCreated, map[string]string{"url": url})
}
