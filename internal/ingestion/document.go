// Package ingestion turns uploaded resume files and job postings into plain text.
package ingestion

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// DocumentType is a supported resume file format
type DocumentType string

const (
	// TypePDF is a PDF document
	TypePDF DocumentType = "application/pdf"
	// TypeDOCX is an Office Open XML word processing document
	TypeDOCX DocumentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	// TypeDOC is a legacy binary Word document
	TypeDOC DocumentType = "application/msword"
	// TypeText is plain UTF-8 text
	TypeText DocumentType = "text/plain"
)

// LegacyDocPlaceholder is returned as the text of legacy .doc uploads, which are accepted but not parsed
const LegacyDocPlaceholder = "DOC parsing not yet implemented. Please upload PDF or use AI to extract."

// UploadTypes are the formats accepted from the upload endpoint
var UploadTypes = []DocumentType{TypePDF, TypeDOC, TypeDOCX}

var (
	xmlParagraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	xmlTab          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag          = regexp.MustCompile(`<[^>]+>`)
)

// DetectType sniffs the content of data and falls back to the file extension
// for container formats the sniffer cannot tell apart.
func DetectType(data []byte, filename string) (DocumentType, error) {
	detected := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(filename))

	for m := detected; m != nil; m = m.Parent() {
		switch {
		case m.Is(string(TypePDF)):
			return TypePDF, nil
		case m.Is(string(TypeDOCX)):
			return TypeDOCX, nil
		case m.Is(string(TypeDOC)):
			return TypeDOC, nil
		case m.Is("application/zip") && ext == ".docx":
			return TypeDOCX, nil
		case m.Is("application/x-ole-storage") && ext == ".doc":
			return TypeDOC, nil
		case m.Is(string(TypeText)):
			return TypeText, nil
		}
	}

	return "", &UnsupportedTypeError{MIME: detected.String(), Filename: filename}
}

// Allowed reports whether t is one of allowed
func Allowed(t DocumentType, allowed []DocumentType) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

// ExtractText returns the plain text of a document of the given type
func ExtractText(data []byte, docType DocumentType) (string, error) {
	switch docType {
	case TypePDF:
		text, err := extractPDFText(data)
		if err != nil {
			return "", &ExtractionError{Type: docType, Cause: err}
		}
		return text, nil
	case TypeDOCX:
		text, err := extractDocxText(data)
		if err != nil {
			return "", &ExtractionError{Type: docType, Cause: err}
		}
		return text, nil
	case TypeDOC:
		return LegacyDocPlaceholder, nil
	case TypeText:
		return string(data), nil
	default:
		return "", &UnsupportedTypeError{MIME: string(docType)}
	}
}

// ExtractFile detects the type of data and extracts its cleaned text
func ExtractFile(data []byte, filename string) (string, DocumentType, error) {
	docType, err := DetectType(data, filename)
	if err != nil {
		return "", "", err
	}
	text, err := ExtractText(data, docType)
	if err != nil {
		return "", docType, err
	}
	return CleanText(text), docType, nil
}

func extractPDFText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return docxXMLToText(doc.Editable().GetContent()), nil
}

// docxXMLToText flattens WordprocessingML to text, one paragraph per line
func docxXMLToText(content string) string {
	content = xmlParagraphEnd.ReplaceAllString(content, "\n")
	content = xmlTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}
