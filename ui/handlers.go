package ui

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridxml/app"
	"gridxml/domain/convert"
	"gridxml/internal/errors"
	"gridxml/models"
)

var validExtensions = []string{".xlsx", ".xlsm", ".csv"}

// handleConvert accepts a spreadsheet upload, runs the conversion pipeline,
// and returns the summary with a download id.
func (s *Server) handleConvert(c *gin.Context) {
	log.Printf("[handleConvert] Starting conversion request")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		log.Printf("[handleConvert] FAILED - No file uploaded: %v", err)
		s.respondError(c, errors.InvalidInput("no file uploaded"))
		return
	}
	defer file.Close()

	maxFileSize := s.config.Upload.MaxUploadMB * 1024 * 1024
	if header.Size > maxFileSize {
		log.Printf("[handleConvert] FAILED - File too large: %d bytes", header.Size)
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("file size (%.1f MB) exceeds the %dMB limit",
			float64(header.Size)/(1024*1024), s.config.Upload.MaxUploadMB)))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !hasValidExtension(ext) {
		log.Printf("[handleConvert] FAILED - Invalid file extension: %s", header.Filename)
		s.respondError(c, errors.InvalidInput("only .xlsx, .xlsm and .csv files are allowed"))
		return
	}

	headerFields, err := parseHeaderFields(c.PostForm("header_fields"))
	if err != nil {
		log.Printf("[handleConvert] FAILED - Bad header_fields: %v", err)
		s.respondError(c, err)
		return
	}

	encrypt := false
	if raw := c.PostForm("encrypt"); raw != "" {
		encrypt, err = strconv.ParseBool(raw)
		if err != nil {
			s.respondError(c, errors.InvalidInput("encrypt must be a boolean"))
			return
		}
	}

	// Unique paths per conversion keep concurrent requests isolated.
	id := uuid.New().String()
	inputPath := filepath.Join(s.config.Paths.UploadDir, id+ext)
	outputPath := filepath.Join(s.config.Paths.OutputDir, id+".xml")

	if err := c.SaveUploadedFile(header, inputPath); err != nil {
		log.Printf("[handleConvert] FAILED - Could not store upload: %v", err)
		s.respondError(c, errors.Wrap(err, "failed to store uploaded file"))
		return
	}
	// The upload is a temp artifact owned by this request.
	defer os.Remove(inputPath)

	summary, err := s.service.Run(c.Request.Context(), app.ConversionRequest{
		InputPath:    inputPath,
		OutputPath:   outputPath,
		SheetName:    c.PostForm("sheet_name"),
		HeaderFields: headerFields,
		Encrypt:      encrypt,
		Actor:        actorFrom(c),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.storeResult(id, conversionResult{OutputPath: summary.OutputPath, Encrypted: summary.Encrypted})

	c.JSON(http.StatusOK, models.ConvertResponse{
		ID:               id,
		RowsProcessed:    summary.RowsProcessed,
		ConversionTimeMs: summary.ConversionTimeMs,
		OutputFile:       filepath.Base(summary.OutputPath),
		Encrypted:        summary.Encrypted,
	})
}

// handleDownload streams a finished conversion's output file
func (s *Server) handleDownload(c *gin.Context) {
	id := c.Param("id")
	result, ok := s.lookupResult(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Code: errors.CodeFileNotFound, Error: "unknown conversion id"})
		return
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Code: errors.CodeFileNotFound, Error: "output file no longer available"})
		return
	}
	c.FileAttachment(result.OutputPath, filepath.Base(result.OutputPath))
}

func (s *Server) respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(statusForCode(code), models.ErrorResponse{Code: code, Error: err.Error()})
}

// statusForCode maps error kinds to HTTP statuses. The core only defines
// kinds and messages; the mapping lives here.
func statusForCode(code string) int {
	switch code {
	case errors.CodeInvalidInput, errors.CodeInvalidHeaderField:
		return http.StatusBadRequest
	case errors.CodeFileNotFound, errors.CodeSheetNotFound:
		return http.StatusNotFound
	case errors.CodeWorkbookRead, errors.CodeEmptyData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func hasValidExtension(ext string) bool {
	for _, valid := range validExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}

func parseHeaderFields(raw string) ([]convert.HeaderField, error) {
	if raw == "" {
		return nil, nil
	}
	var requested []models.HeaderFieldRequest
	if err := json.Unmarshal([]byte(raw), &requested); err != nil {
		return nil, errors.InvalidInput("header_fields must be a JSON array of {name, value} pairs")
	}
	fields := make([]convert.HeaderField, 0, len(requested))
	for _, field := range requested {
		if field.Name == "" {
			return nil, errors.InvalidInput("header_fields entries require a name")
		}
		fields = append(fields, convert.HeaderField{Name: field.Name, Value: field.Value})
	}
	return fields, nil
}

func actorFrom(c *gin.Context) string {
	if actor := c.GetHeader("X-Actor"); actor != "" {
		return actor
	}
	return "anonymous"
}
