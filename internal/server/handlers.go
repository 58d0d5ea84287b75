package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-genie/internal/extraction"
	"github.com/jonathan/resume-genie/internal/ingestion"
	"github.com/jonathan/resume-genie/internal/logging"
	"github.com/jonathan/resume-genie/internal/optimize"
	"github.com/jonathan/resume-genie/internal/rendering"
	"github.com/jonathan/resume-genie/internal/schemas"
	"github.com/jonathan/resume-genie/internal/types"
)

// exportBodyLimit bounds the JSON body of export requests
const exportBodyLimit = 2 << 20

// UploadResponse is the body of a successful upload
type UploadResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    UploadData `json:"data"`
}

// UploadData describes the processed upload
type UploadData struct {
	InputMethod       string                    `json:"inputMethod"`
	ResumeData        *types.OptimizationResult `json:"resumeData"`
	HasJobDescription bool                      `json:"hasJobDescription"`
	File              *UploadedFile             `json:"file,omitempty"`
}

// UploadedFile identifies the uploaded document
type UploadedFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MIMEType     string `json:"mimeType"`
}

// ExtractResponse is the body of a successful heuristic extraction
type ExtractResponse struct {
	Success      bool        `json:"success"`
	DocumentType string      `json:"documentType"`
	Data         types.Draft `json:"data"`
}

// handleWelcome greets API clients
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, r, http.StatusOK, map[string]string{"message": "Welcome to Resume Genie API"})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, r, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, r, http.StatusNotFound, "Not found")
}

// handleUpload reads a resume file or LinkedIn URL and returns the AI-optimized resume
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	const failure = "Upload failed"

	if err := s.parseForm(w, r); err != nil {
		s.failureResponse(w, r, failure, err)
		return
	}

	form := uploadForm{
		LinkedInURL:    strings.TrimSpace(r.FormValue("linkedinUrl")),
		JobDescription: r.FormValue("jobDescription"),
	}
	if err := s.validate.Struct(form); err != nil {
		s.failureResponse(w, r, failure, validationError(err))
		return
	}

	file, err := s.readResumeFile(r, ingestion.UploadTypes)
	var unsupported *ingestion.UnsupportedTypeError
	if errors.As(err, &unsupported) {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("rejected upload")
		s.jsonResponse(w, r, http.StatusUnsupportedMediaType, map[string]string{
			"error":   failure,
			"message": "Invalid file type. Only PDF, DOC, and DOCX are allowed.",
		})
		return
	}
	if err != nil {
		s.failureResponse(w, r, failure, err)
		return
	}

	if file == nil && form.LinkedInURL == "" {
		s.errorResponse(w, r, http.StatusBadRequest, "Please provide either a resume file or LinkedIn URL")
		return
	}

	input := optimize.Input{
		LinkedInURL:    form.LinkedInURL,
		JobDescription: form.JobDescription,
	}
	if file != nil {
		text, err := ingestion.ExtractText(file.Data, file.Type)
		if err != nil {
			s.failureResponse(w, r, failure, err)
			return
		}
		input.Draft = extraction.ExtractDraft(ingestion.CleanText(text))
	}

	ctx := r.Context()
	if timeout := s.config.RequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := s.optimizer.Optimize(ctx, input)
	if err != nil {
		s.failureResponse(w, r, failure, err)
		return
	}

	data := UploadData{
		InputMethod:       "linkedin",
		ResumeData:        result,
		HasJobDescription: strings.TrimSpace(form.JobDescription) != "",
	}
	if file != nil {
		data.InputMethod = "upload"
		data.File = &UploadedFile{
			Filename:     resumeField + "-" + uuid.NewString() + strings.ToLower(filepath.Ext(file.Name)),
			OriginalName: file.Name,
			Size:         file.Size,
			MIMEType:     string(file.Type),
		}
	}

	logging.FromContext(r.Context()).Info().
		Str("input_method", data.InputMethod).
		Bool("has_job_description", data.HasJobDescription).
		Float64("ats_score", result.ATSScore.Overall).
		Msg("resume optimized")

	s.jsonResponse(w, r, http.StatusOK, UploadResponse{
		Success: true,
		Message: "Resume processed successfully",
		Data:    data,
	})
}

// handleExtract runs the heuristic extractor only, on an uploaded file or posted text
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	const failure = "Extraction failed"

	var (
		text    string
		docType ingestion.DocumentType
	)
	if isMultipart(r) {
		if err := s.parseForm(w, r); err != nil {
			s.failureResponse(w, r, failure, err)
			return
		}
		allowed := append([]ingestion.DocumentType{ingestion.TypeText}, ingestion.UploadTypes...)
		file, err := s.readResumeFile(r, allowed)
		if err != nil {
			s.failureResponse(w, r, failure, err)
			return
		}
		if file == nil {
			s.failureResponse(w, r, failure, &ErrValidation{Field: resumeField, Message: "is required"})
			return
		}
		raw, err := ingestion.ExtractText(file.Data, file.Type)
		if err != nil {
			s.failureResponse(w, r, failure, err)
			return
		}
		text, docType = raw, file.Type
	} else {
		var req extractRequest
		if err := s.decodeJSON(w, r, s.config.UploadLimit(), &req); err != nil {
			s.failureResponse(w, r, failure, err)
			return
		}
		text, docType = req.Text, ingestion.TypeText
	}

	s.jsonResponse(w, r, http.StatusOK, ExtractResponse{
		Success:      true,
		DocumentType: string(docType),
		Data:         extraction.ExtractDraft(ingestion.CleanText(text)),
	})
}

// handleExportLatex renders the posted resume as a timestamped LaTeX attachment
func (s *Server) handleExportLatex(w http.ResponseWriter, r *http.Request) {
	const failure = "LaTeX generation failed"

	req, record, ok := s.readExport(w, r, failure)
	if !ok {
		return
	}
	s.writeLatex(w, r, failure, record, int(req.SelectedTemplate), true)
}

// handleExportDownload renders LaTeX for format latex or tex and otherwise defers to the client
func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	const failure = "Export failed"

	req, record, ok := s.readExport(w, r, failure)
	if !ok {
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Format)) {
	case "latex", "tex":
		s.writeLatex(w, r, failure, record, int(req.SelectedTemplate), false)
	default:
		s.jsonResponse(w, r, http.StatusOK, map[string]any{
			"success": true,
			"message": "Use client-side print or download LaTeX file",
		})
	}
}

// readExport decodes and validates an export request, writing the error response itself on failure
func (s *Server) readExport(w http.ResponseWriter, r *http.Request, failure string) (exportRequest, types.ResumeRecord, bool) {
	var req exportRequest
	if err := s.decodeJSON(w, r, exportBodyLimit, &req); err != nil {
		s.failureResponse(w, r, failure, err)
		return req, types.ResumeRecord{}, false
	}
	if isJSONNull(req.ResumeData) {
		s.errorResponse(w, r, http.StatusBadRequest, "Resume data is required")
		return req, types.ResumeRecord{}, false
	}

	record, err := schemas.DecodeResumeRecord(req.ResumeData)
	if err != nil {
		s.failureResponse(w, r, failure, err)
		return req, types.ResumeRecord{}, false
	}
	return req, record, true
}

// writeLatex renders record and sends it as a .tex attachment
func (s *Server) writeLatex(w http.ResponseWriter, r *http.Request, failure string, record types.ResumeRecord, templateID int, withTimestamp bool) {
	source, err := rendering.Render(record, templateID)
	if err != nil {
		s.failureResponse(w, r, failure, err)
		return
	}

	filename := rendering.TemplateFilename(templateID, s.now(), withTimestamp)
	logging.FromContext(r.Context()).Debug().
		Str("layout", rendering.LayoutName(templateID)).
		Str("filename", filename).
		Int("bytes", len(source)).
		Msg("resume exported")

	w.Header().Set("Content-Type", "application/x-latex")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(source)); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("failed to write export")
	}
}
