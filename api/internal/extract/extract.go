package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/util"
)

const DefaultMaxUploadBytes int64 = 20 << 20

const pdfMagic = "%PDF-"

// Extractor turns a document into UTF-8 text.
type Extractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

// IsPDF accepts a .pdf name or an application/pdf type; when head is given it must carry the PDF magic.
func IsPDF(filename, contentType string, head []byte) bool {
	named := strings.EqualFold(filepath.Ext(strings.TrimSpace(filename)), ".pdf")
	typed := util.PickMIME(contentType, nil) == "application/pdf"
	if !named && !typed {
		return false
	}
	if len(head) == 0 {
		return true
	}
	return bytes.HasPrefix(bytes.TrimLeft(head, "\x00\t\r\n "), []byte(pdfMagic))
}

// CheckPDF is IsPDF as a validation error on field "file".
func CheckPDF(filename, contentType string, head []byte) error {
	if !IsPDF(filename, contentType, head) {
		return quiz.NewValidationError("file", "only PDF files are supported")
	}
	return nil
}

type PDF struct{}

// Extract concatenates the plain text of every page in page order.
// A document without any text is an ExtractionError.
func (PDF) Extract(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	if size <= 0 {
		return "", &quiz.ExtractionError{Err: errors.New("empty document")}
	}
	// the pdf reader panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", &quiz.ExtractionError{Err: fmt.Errorf("malformed pdf: %v", rec)}
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", &quiz.ExtractionError{Err: err}
	}
	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", &quiz.ExtractionError{Err: err}
		}
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			return "", &quiz.ExtractionError{Err: fmt.Errorf("page %d: %w", i, err)}
		}
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t)
	}
	if b.Len() == 0 {
		return "", &quiz.ExtractionError{Err: errors.New("no extractable text (scanned document?)")}
	}
	return b.String(), nil
}

// Bytes is a convenience over Extract for in-memory documents.
func Bytes(ctx context.Context, e Extractor, data []byte) (string, error) {
	return e.Extract(ctx, bytes.NewReader(data), int64(len(data)))
}
