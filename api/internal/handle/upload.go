package handle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"lecture-quiz/api/internal/extract"
	"lecture-quiz/api/internal/generate"
	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/util"
)

type UploadResponse struct {
	Success  bool     `json:"success"`
	Filename string   `json:"filename"`
	QuizID   string   `json:"quiz_id"`
	Quiz     quiz.Set `json:"quiz"`
}

// Upload takes a multipart PDF and returns a freshly generated quiz.
func (h *Handle) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.writeError(w, r, quiz.NewValidationError("file", "file is too large"))
			return
		}
		h.writeError(w, r, quiz.NewValidationError("file", "no file uploaded"))
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, quiz.NewValidationError("file", "no file uploaded"))
		return
	}
	defer file.Close()
	if strings.TrimSpace(hdr.Filename) == "" {
		h.writeError(w, r, quiz.NewValidationError("file", "no file selected"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.opts.MaxUploadBytes+1))
	if err != nil {
		h.writeError(w, r, &quiz.ExtractionError{Err: err})
		return
	}
	if int64(len(data)) > h.opts.MaxUploadBytes {
		h.writeError(w, r, quiz.NewValidationError("file", "file is too large"))
		return
	}
	if len(data) == 0 {
		h.writeError(w, r, quiz.NewValidationError("file", "uploaded file is empty"))
		return
	}
	if err := extract.CheckPDF(hdr.Filename, hdr.Header.Get("Content-Type"), data); err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := h.uploadRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.GenerationTimeout)
	defer cancel()

	text, err := extract.Bytes(ctx, h.extractor, data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Text = text
	req.SourceName = hdr.Filename
	h.log.Info("pdf extracted", "file", hdr.Filename, "bytes", len(data), "sha256", util.SHA256Hex(data), "chars", utf8.RuneCountInString(text))

	set, err := h.gen.Generate(ctx, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Success: true, Filename: hdr.Filename, QuizID: set.ID, Quiz: set})
}

func (h *Handle) uploadRequest(r *http.Request) (generate.Request, error) {
	req := generate.Request{NumQuestions: h.opts.DefaultQuestions, LLMName: strings.TrimSpace(r.FormValue("llm_name"))}

	if v := strings.TrimSpace(r.FormValue("num_questions")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, quiz.NewValidationError("num_questions", "number of questions must be an integer")
		}
		req.NumQuestions = n
	}

	c := h.gen.Catalog()
	var raw []string
	if r.MultipartForm != nil {
		raw = r.MultipartForm.Value["kinds"]
	}
	if len(raw) == 0 {
		req.Kinds = c.Kinds()
		return req, nil
	}
	req.Kinds = []quiz.Kind{}
	for _, v := range raw {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			k, ok := c.Lookup(name)
			if !ok {
				return req, quiz.NewValidationError("kinds", fmt.Sprintf("unsupported question type %q", name))
			}
			req.Kinds = append(req.Kinds, k)
		}
	}
	return req, nil
}
