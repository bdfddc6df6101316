package rest

import (
	"errors"
	"mime/multipart"
	"net/http"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/contracts"
	"marketplace-service/internal/core/domain"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/port/usecases_port"
)

type PropertyHandlers struct {
	createUC       usecases_port.CreatePropertyUseCasePort
	updateUC       usecases_port.UpdatePropertyUseCasePort
	statusUC       usecases_port.UpdatePropertyStatusUseCasePort
	deleteUC       usecases_port.DeletePropertyUseCasePort
	uploadImagesUC usecases_port.UploadPropertyImagesUseCasePort
	uploadLogoUC   usecases_port.UploadLogoUseCasePort
	maxUploadBytes int64
}

func NewPropertyHandlers(
	createUC usecases_port.CreatePropertyUseCasePort,
	updateUC usecases_port.UpdatePropertyUseCasePort,
	statusUC usecases_port.UpdatePropertyStatusUseCasePort,
	deleteUC usecases_port.DeletePropertyUseCasePort,
	uploadImagesUC usecases_port.UploadPropertyImagesUseCasePort,
	uploadLogoUC usecases_port.UploadLogoUseCasePort,
	maxUploadBytes int64,
) *PropertyHandlers {
	return &PropertyHandlers{
		createUC:       createUC,
		updateUC:       updateUC,
		statusUC:       statusUC,
		deleteUC:       deleteUC,
		uploadImagesUC: uploadImagesUC,
		uploadLogoUC:   uploadLogoUC,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateProperty обрабатывает POST /api/v1/properties
func (h *PropertyHandlers) CreateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateProperty"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	var req PropertyRequest
	if err := decodeJSON(r, contracts.PropertyRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid property request", err)
		return
	}

	property, err := h.createUC.Execute(r.Context(), caller.UserID, req.toInput())
	if err != nil {
		writeUseCaseError(w, logger, "Create property failed", err)
		return
	}

	logger.Info("Property created", port.Fields{"property_id": property.ID})
	RespondWithJSON(w, http.StatusCreated, toPropertyResponse(*property))
}

// UpdateProperty обрабатывает PUT /api/v1/properties/{id}
func (h *PropertyHandlers) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdateProperty"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}
	propertyID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid property id", err)
		return
	}

	var req PropertyRequest
	if err := decodeJSON(r, contracts.PropertyRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid property request", err)
		return
	}
	if req.hasCreateOnlyFields() {
		writeUseCaseError(w, logger, "Invalid property request",
			domain.NewValidationError("status and agent_id are accepted only on creation"))
		return
	}

	property, err := h.updateUC.Execute(r.Context(), caller.UserID, propertyID, req.toInput())
	if err != nil {
		writeUseCaseError(w, logger, "Update property failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*property))
}

// UpdateStatus обрабатывает PATCH /api/v1/properties/{id}/status
func (h *PropertyHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdatePropertyStatus"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}
	propertyID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid property id", err)
		return
	}

	var req PropertyStatusRequest
	if err := decodeJSON(r, contracts.PropertyStatusRequest, &req); err != nil {
		writeUseCaseError(w, logger, "Invalid status request", err)
		return
	}
	status, err := domain.ParsePropertyStatus(req.Status)
	if err != nil {
		writeUseCaseError(w, logger, "Invalid status", err)
		return
	}

	if err := h.statusUC.Execute(r.Context(), caller.UserID, propertyID, status); err != nil {
		writeUseCaseError(w, logger, "Update property status failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProperty обрабатывает DELETE /api/v1/properties/{id}
func (h *PropertyHandlers) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteProperty"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}
	propertyID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid property id", err)
		return
	}

	if err := h.deleteUC.Execute(r.Context(), caller.UserID, propertyID); err != nil {
		writeUseCaseError(w, logger, "Delete property failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseMultipart ограничивает размер тела и разбирает форму.
func (h *PropertyHandlers) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.NewValidationError("upload exceeds %d bytes", h.maxUploadBytes)
		}
		return domain.NewValidationError("invalid multipart form: %v", err)
	}
	return nil
}

// openUploads открывает файлы формы. Вызывающий обязан вызвать closeAll.
func openUploads(headers []*multipart.FileHeader) ([]domain.UploadFile, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]domain.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, domain.NewValidationError("cannot read uploaded file %q", fh.Filename)
		}
		opened = append(opened, f)
		files = append(files, domain.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return files, closeAll, nil
}

// UploadImages обрабатывает POST /api/v1/properties/{id}/images (поле формы "files").
func (h *PropertyHandlers) UploadImages(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UploadPropertyImages"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}
	propertyID, err := uuidParam(r, "id")
	if err != nil {
		writeUseCaseError(w, logger, "Invalid property id", err)
		return
	}

	if err := h.parseMultipart(w, r); err != nil {
		writeUseCaseError(w, logger, "Invalid upload", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "no files provided")
		return
	}
	files, closeAll, err := openUploads(headers)
	if err != nil {
		writeUseCaseError(w, logger, "Invalid upload", err)
		return
	}
	defer closeAll()

	report, err := h.uploadImagesUC.Execute(r.Context(), caller.UserID, propertyID, files)
	if err != nil {
		writeUseCaseError(w, logger, "Upload images failed", err)
		return
	}

	resp := UploadReportResponse{URLs: report.URLs, Skipped: report.Skipped}
	if resp.URLs == nil {
		resp.URLs = []string{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []string{}
	}
	RespondWithJSON(w, http.StatusCreated, resp)
}

// UploadLogo обрабатывает POST /api/v1/uploads/logo (поле формы "file").
func (h *PropertyHandlers) UploadLogo(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UploadLogo"})
	caller, ok := callerOrUnauthorized(w, r, logger)
	if !ok {
		return
	}

	if err := h.parseMultipart(w, r); err != nil {
		writeUseCaseError(w, logger, "Invalid upload", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["file"]
	if len(headers) != 1 {
		WriteJSONError(w, http.StatusBadRequest, "exactly one file is required")
		return
	}
	files, closeAll, err := openUploads(headers)
	if err != nil {
		writeUseCaseError(w, logger, "Invalid upload", err)
		return
	}
	defer closeAll()

	url, err := h.uploadLogoUC.Execute(r.Context(), caller.UserID, files[0])
	if err != nil {
		writeUseCaseError(w, logger, "Upload logo failed", err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, LogoUploadResponse{URL: url})
}
