package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/docs"
	"github.com/markreg/caseflow/internal/export"
)

// UploadHandler stores uploaded files and renders case exports
type UploadHandler struct {
	storage   port.FileStorage
	validator *docs.Validator
	register  *export.RegisterWriter
	logger    Logger
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(storage port.FileStorage, validator *docs.Validator, register *export.RegisterWriter, logger Logger) *UploadHandler {
	return &UploadHandler{
		storage:   storage,
		validator: validator,
		register:  register,
		logger:    logger,
	}
}

// UploadResponse is the result of a document upload
type UploadResponse struct {
	FileRef  string `json:"fileRef"`
	FileName string `json:"fileName"`
	Size     int    `json:"size"`
}

// UploadDocument handles POST /api/v1/documents (multipart form, field "file")
func (h *Handlers) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file field is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "unreadable upload")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondBadRequest(c, "unreadable upload")
		return
	}

	if err := h.uploads.validator.Validate(fileHeader.Filename, content); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	ref, err := h.uploads.storage.Store(c.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		h.logger.Error("Failed to store upload", "file", fileHeader.Filename, "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: UploadResponse{
		FileRef:  ref,
		FileName: fileHeader.Filename,
		Size:     len(content),
	}})
}

// ExportCases handles GET /api/v1/cases/export
func (h *Handlers) ExportCases(c *gin.Context) {
	filter, err := parseCaseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	cases, err := h.caseService.ListCases(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	workbook, err := h.uploads.register.Write(cases)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="cases.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
