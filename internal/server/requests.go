package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/resume-genie/internal/ingestion"
)

const (
	resumeField = "resume"
	// multipartMemory is how much of a multipart body is held in memory before spilling to disk
	multipartMemory = 1 << 20
	// formOverhead covers multipart boundaries and the text fields sent next to the file
	formOverhead = 1 << 20
)

// uploadForm holds the text fields of an upload request
type uploadForm struct {
	LinkedInURL    string `json:"linkedinUrl" validate:"omitempty,max=2048"`
	JobDescription string `json:"jobDescription" validate:"max=100000"`
}

// extractRequest is the JSON form of an extract request
type extractRequest struct {
	Text string `json:"text" validate:"required,max=500000"`
}

// exportRequest is the body of both export endpoints
type exportRequest struct {
	ResumeData       json.RawMessage `json:"resumeData"`
	SelectedTemplate templateNumber  `json:"selectedTemplate"`
	Format           string          `json:"format" validate:"max=32"`
}

// templateNumber accepts a template variant sent as a number or a numeric string
type templateNumber int

func (n *templateNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if s, err := strconv.Unquote(string(data)); err == nil {
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*n = 0
			return nil
		}
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("selectedTemplate must be a number: %w", err)
	}
	*n = templateNumber(v)
	return nil
}

// resumeFile is an uploaded resume document
type resumeFile struct {
	Name string
	Size int64
	Type ingestion.DocumentType
	Data []byte
}

// readResumeFile returns the resume part of a multipart request, or nil when none was sent.
// The request form must already be parsed.
func (s *Server) readResumeFile(r *http.Request, allowed []ingestion.DocumentType) (*resumeFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(resumeField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &ErrValidation{Field: resumeField, Message: err.Error()}
	}
	defer file.Close()

	if header.Size > s.config.UploadLimit() {
		return nil, &http.MaxBytesError{Limit: s.config.UploadLimit()}
	}

	data, err := io.ReadAll(io.LimitReader(file, s.config.UploadLimit()+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > s.config.UploadLimit() {
		return nil, &http.MaxBytesError{Limit: s.config.UploadLimit()}
	}

	docType, err := ingestion.DetectType(data, header.Filename)
	if err != nil {
		return nil, err
	}
	if !ingestion.Allowed(docType, allowed) {
		return nil, &ingestion.UnsupportedTypeError{MIME: string(docType), Filename: header.Filename}
	}

	return &resumeFile{Name: header.Filename, Size: int64(len(data)), Type: docType, Data: data}, nil
}

// parseForm parses a multipart or urlencoded body within the upload limit
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.UploadLimit()+formOverhead)
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// decodeJSON decodes a JSON body of at most limit bytes into dst and validates it
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// isMultipart reports whether r carries a multipart or urlencoded form
func isMultipart(r *http.Request) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(ct, "multipart/form-data") || strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}

// isJSONNull reports whether raw is absent or the JSON null literal
func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
