package extract

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz/api/internal/quiz"
)

// buildPDF writes a minimal document with one Helvetica text line per page.
func buildPDF(pages ...string) []byte {
	n := len(pages)
	var objs []string
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestPDFExtractPagesInOrder(t *testing.T) {
	doc := buildPDF("Goroutines are lightweight", "Channels connect goroutines")

	text, err := Bytes(context.Background(), PDF{}, doc)
	require.NoError(t, err)
	first := bytes.Index([]byte(text), []byte("Goroutines are"))
	second := bytes.Index([]byte(text), []byte("Channels connect"))
	require.GreaterOrEqual(t, first, 0, text)
	require.Greater(t, second, first, text)
}

func TestPDFExtractRejectsGarbage(t *testing.T) {
	_, err := Bytes(context.Background(), PDF{}, []byte("this is not a pdf at all"))
	var ee *quiz.ExtractionError
	require.ErrorAs(t, err, &ee)
}

func TestPDFExtractEmpty(t *testing.T) {
	_, err := Bytes(context.Background(), PDF{}, nil)
	var ee *quiz.ExtractionError
	require.ErrorAs(t, err, &ee)
}

func TestPDFExtractNoText(t *testing.T) {
	_, err := Bytes(context.Background(), PDF{}, buildPDF(""))
	var ee *quiz.ExtractionError
	require.ErrorAs(t, err, &ee)
}

func TestPDFExtractHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Bytes(ctx, PDF{}, buildPDF("x"))
	assert.ErrorIs(t, err, context.Canceled)
	var ee *quiz.ExtractionError
	assert.ErrorAs(t, err, &ee, "cancellation stays inside the extraction taxonomy")
}

func TestIsPDF(t *testing.T) {
	head := []byte("%PDF-1.7\n")
	assert.True(t, IsPDF("notes.pdf", "", nil))
	assert.True(t, IsPDF("NOTES.PDF", "", head))
	assert.True(t, IsPDF("upload", "application/pdf", head))
	assert.True(t, IsPDF("upload", "application/pdf; charset=binary", nil))
	assert.False(t, IsPDF("notes.docx", "application/vnd.openxmlformats", head))
	assert.False(t, IsPDF("notes.pdf", "", []byte("PK\x03\x04")))
	assert.False(t, IsPDF("", "", head))
}

func TestCheckPDF(t *testing.T) {
	var ve *quiz.ValidationError
	require.ErrorAs(t, CheckPDF("a.txt", "text/plain", nil), &ve)
	assert.Equal(t, "file", ve.Field)
	assert.NoError(t, CheckPDF("a.pdf", "", []byte("%PDF-1.4")))
}
