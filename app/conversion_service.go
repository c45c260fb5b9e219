package app

import (
	"context"
	"log"
	"os"
	"time"

	"gridxml/adapters/excel"
	"gridxml/domain/convert"
	"gridxml/internal/errors"
	"gridxml/ports"
)

// ConversionRequest describes one spreadsheet-to-XML conversion. The caller
// is responsible for unique input/output paths; concurrent conversions are
// isolated at the filesystem-path level.
type ConversionRequest struct {
	InputPath    string
	OutputPath   string
	SheetName    string // empty selects the workbook's first sheet
	HeaderFields []convert.HeaderField
	Encrypt      bool
	Actor        string
}

// ConversionSummary reports the outcome of a finished conversion
type ConversionSummary struct {
	RowsProcessed    int
	ConversionTimeMs int64
	OutputPath       string
	Encrypted        bool
}

// ConversionService sequences one conversion: load workbook, select sheet,
// extract records, assemble XML, serialize, optionally encrypt. It is the
// only component with externally visible side effects, and it owns the
// intermediate plaintext file on every exit path.
type ConversionService struct {
	cipher       ports.FileCipher
	audit        ports.AuditSink
	assembleOpts convert.AssembleOptions
}

// NewConversionService creates a conversion orchestrator
func NewConversionService(cipher ports.FileCipher, audit ports.AuditSink) *ConversionService {
	return &ConversionService{
		cipher:       cipher,
		audit:        audit,
		assembleOpts: convert.DefaultAssembleOptions(),
	}
}

// Run executes one conversion end to end. Exactly one audit record is
// emitted per terminal state, and no partial output survives a failure.
func (s *ConversionService) Run(ctx context.Context, req ConversionRequest) (*ConversionSummary, error) {
	startTime := time.Now()
	actor := req.Actor
	if actor == "" {
		actor = "anonymous"
	}

	fail := func(err error) (*ConversionSummary, error) {
		s.audit.Failure("convert", actor, err, map[string]any{
			"input": req.InputPath,
			"sheet": req.SheetName,
		})
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return fail(errors.Wrap(err, "conversion aborted before start"))
	}

	workbook, err := excel.OpenWorkbook(req.InputPath)
	if err != nil {
		return fail(err)
	}
	defer workbook.Close()

	sheet, err := workbook.SelectSheet(req.SheetName)
	if err != nil {
		return fail(err)
	}

	data, err := workbook.Extract(sheet)
	if err != nil {
		return fail(err)
	}

	root, err := convert.Assemble(data, req.HeaderFields, s.assembleOpts)
	if err != nil {
		return fail(err)
	}

	document, err := convert.SerializeDocument(root)
	if err != nil {
		return fail(err)
	}

	if err := os.WriteFile(req.OutputPath, document, 0o644); err != nil {
		os.Remove(req.OutputPath)
		return fail(errors.Wrap(err, "failed to write output document"))
	}

	finalPath := req.OutputPath
	if req.Encrypt {
		encryptedPath := req.OutputPath + ".enc"
		if err := s.cipher.EncryptFile(req.OutputPath, encryptedPath); err != nil {
			// The plaintext file is never promoted on failure.
			os.Remove(req.OutputPath)
			os.Remove(encryptedPath)
			return fail(err)
		}
		if err := os.Remove(req.OutputPath); err != nil {
			log.Printf("[ConversionService] WARNING - failed to remove plaintext %s: %v", req.OutputPath, err)
		}
		finalPath = encryptedPath
	}

	summary := &ConversionSummary{
		RowsProcessed:    len(data.Rows),
		ConversionTimeMs: time.Since(startTime).Milliseconds(),
		OutputPath:       finalPath,
		Encrypted:        req.Encrypt,
	}

	s.audit.Success("convert", actor, map[string]any{
		"input":   req.InputPath,
		"sheet":   sheet,
		"rows":    summary.RowsProcessed,
		"output":  summary.OutputPath,
		"time_ms": summary.ConversionTimeMs,
	})

	return summary, nil
}
