package contracts

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/analysis"
	"contract-backend/internal/pipeline"
	"contract-backend/internal/shared/server/middleware"
	"contract-backend/internal/shared/server/respond"
)

// DefaultMaxUploadBytes caps multipart bodies when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

const pdfContentType = "application/pdf"

var errNotPDF = errors.New("only PDF files are allowed")

// Handler wires HTTP handlers to the contracts service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches contract routes to the router group. Extra middleware runs
// before the upload routes only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, uploadMiddleware ...gin.HandlerFunc) {
	rg.POST("/contracts/detect-type", chain(uploadMiddleware, h.detectType)...)
	rg.POST("/contracts/analyze", chain(uploadMiddleware, h.analyze)...)
	rg.GET("/contracts", h.listContracts)
	rg.GET("/contracts/:id", h.getContract)
}

func chain(mw []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, handler)
}

func (h *Handler) detectType(c *gin.Context) {
	file, ok := h.readUpload(c)
	if !ok {
		return
	}
	userID := middleware.UserIDFromContext(c)

	detected, err := h.Svc.DetectType(c.Request.Context(), userID, file)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	c.Set(middleware.ContractTypeKey, detected)
	respond.OK(c, gin.H{"detectedType": detected})
}

func (h *Handler) analyze(c *gin.Context) {
	file, ok := h.readUpload(c)
	if !ok {
		return
	}
	userID := middleware.UserIDFromContext(c)
	contractType := c.PostForm("contractType")
	tier := analysis.TierFor(middleware.PremiumFromContext(c))
	c.Set(middleware.ContractTypeKey, contractType)

	record, err := h.Svc.Analyze(c.Request.Context(), userID, file, contractType, tier)
	if err != nil {
		writePipelineError(c, err)
		return
	}
	c.Set(middleware.AnalysisIDKey, record.ID)
	respond.JSON(c, http.StatusCreated, record)
}

func (h *Handler) getContract(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	record, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidID):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid contract id", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "contract not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch contract", nil)
		}
		return
	}
	respond.OK(c, record)
}

func (h *Handler) listContracts(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := defaultListLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	limit = clampListLimit(limit)
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list contracts", nil)
		return
	}
	respond.OK(c, gin.H{
		"items":  records,
		"limit":  limit,
		"offset": offset,
	})
}

// readUpload writes the error response itself and reports false when the upload is unusable.
func (h *Handler) readUpload(c *gin.Context) ([]byte, bool) {
	maxBytes := h.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if c.Request.ContentLength > maxBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil)
		return nil, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	fileHeader, err := c.FormFile("contract")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil)
			return nil, false
		}
		respond.Error(c, http.StatusBadRequest, "no_file", "No file uploaded", nil)
		return nil, false
	}

	data, err := readFile(fileHeader)
	if err != nil {
		if errors.Is(err, errNotPDF) {
			respond.Error(c, http.StatusBadRequest, "invalid_file_type", err.Error(), nil)
			return nil, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return nil, false
	}
	return data, true
}

func readFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if !isPDF(fileHeader.Header.Get("Content-Type"), data) {
		return nil, errNotPDF
	}
	return data, nil
}

// isPDF trusts a declared PDF type and otherwise sniffs the content. Empty files pass so
// the pipeline can report them as missing input.
func isPDF(declared string, data []byte) bool {
	if len(data) == 0 {
		return true
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if mediaType == pdfContentType {
		return true
	}
	return http.DetectContentType(data) == pdfContentType
}

func writePipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNoInputFile):
		respond.Error(c, http.StatusBadRequest, "no_file", "No file uploaded", nil)
	case errors.Is(err, pipeline.ErrNoContractType):
		respond.Error(c, http.StatusBadRequest, "no_contract_type", "No contract type provided", nil)
	case errors.Is(err, pipeline.ErrInvalidStagedData):
		respond.Error(c, http.StatusBadRequest, "invalid_file_data", "Invalid file data", nil)
	case errors.Is(err, pipeline.ErrClassificationFailure):
		respond.Error(c, http.StatusInternalServerError, "detection_failed", "Error detecting contract type", nil)
	case errors.Is(err, pipeline.ErrAnalysisFailure):
		respond.Error(c, http.StatusInternalServerError, "analysis_failed", "Error analyzing contract", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process contract", nil)
	}
}
