package handle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lecture-quiz/api/internal/export"
	"lecture-quiz/api/internal/quiz"
)

type GradeRequest struct {
	Answers map[string]any `json:"answers"`
}

type GradeResponse struct {
	quiz.Result
	Tier    quiz.Tier `json:"tier"`
	Message string    `json:"message"`
}

func (h *Handle) GetQuiz(w http.ResponseWriter, r *http.Request) {
	set, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// LatestQuiz returns the newest stored set for ?request_key, optionally no older than ?max_age.
func (h *Handle) LatestQuiz(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.URL.Query().Get("request_key"))
	if key == "" {
		h.writeError(w, r, quiz.NewValidationError("request_key", "request_key is required"))
		return
	}
	var maxAge time.Duration
	if v := r.URL.Query().Get("max_age"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			h.writeError(w, r, quiz.NewValidationError("max_age", "max_age must be a duration like 1h"))
			return
		}
		maxAge = d
	}
	set, err := h.repo.FindLatestByKey(r.Context(), key, maxAge)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handle) GradeQuiz(w http.ResponseWriter, r *http.Request) {
	set, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	answers, err := decodeAnswers(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.grader.Grade(set, answers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tier := res.Tier()
	writeJSON(w, http.StatusOK, GradeResponse{Result: res, Tier: tier, Message: tier.Message()})
}

// ExportQuiz downloads the set as xlsx; a POST body with answers adds the result sheet.
func (h *Handle) ExportQuiz(w http.ResponseWriter, r *http.Request) {
	set, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var res *quiz.Result
	if r.Method == http.MethodPost {
		answers, err := decodeAnswers(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		graded, err := h.grader.Grade(set, answers)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		res = &graded
	}
	b, err := export.Workbook(set, res)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(set)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func decodeAnswers(r *http.Request) (quiz.Answers, error) {
	var req GradeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, quiz.NewValidationError("answers", "bad json: "+err.Error())
	}
	return quiz.AnswersFromAny(req.Answers), nil
}
