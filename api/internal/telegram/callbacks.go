package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lecture-quiz/api/internal/export"
	"lecture-quiz/api/internal/generate"
	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/session"
	"lecture-quiz/api/internal/util"
)

const (
	cbKind      = "kind:"
	cbCountDown = "count:-"
	cbCountUp   = "count:+"
	cbNoop      = "noop"
	cbGenerate  = "gen"
	cbAnswer    = "ans:"
	cbType      = "type:"
	cbGrade     = "grade"
	cbExport    = "export"
)

const staleQuiz = "This quiz is no longer active."

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbKind):
		r.answerCallback(cb.ID, "")
		s := r.load(ctx, cid)
		k, ok := r.Gen.Catalog().Lookup(strings.TrimPrefix(data, cbKind))
		if !ok {
			return
		}
		s.ToggleKind(k, r.Gen.Catalog().Kinds())
		r.save(ctx, cid, s)
		r.editSettings(cid, cb.Message.MessageID, s)
	case data == cbCountDown || data == cbCountUp:
		r.answerCallback(cb.ID, "")
		s := r.load(ctx, cid)
		n := s.NumQuestions - 1
		if data == cbCountUp {
			n = s.NumQuestions + 1
		}
		s.SetCount(n, r.Limits)
		r.save(ctx, cid, s)
		r.editSettings(cid, cb.Message.MessageID, s)
	case data == cbGenerate:
		r.answerCallback(cb.ID, "")
		r.onGenerate(ctx, cid)
	case strings.HasPrefix(data, cbAnswer):
		r.onChoice(ctx, cb)
	case strings.HasPrefix(data, cbType):
		r.answerCallback(cb.ID, "")
		r.onTypeRequest(ctx, cid, strings.TrimPrefix(data, cbType))
	case data == cbGrade:
		r.answerCallback(cb.ID, "")
		r.onGrade(ctx, cid)
	case data == cbExport:
		r.answerCallback(cb.ID, "")
		r.onExport(ctx, cid)
	default:
		r.answerCallback(cb.ID, "")
	}
}

func (r *Router) answerCallback(id, text string) {
	if _, err := r.Bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		r.log().Debug("callback answer failed", "error", err)
	}
}

func (r *Router) onGenerate(ctx context.Context, chatID int64) {
	if _, busy := r.generating.LoadOrStore(chatID, struct{}{}); busy {
		r.send(chatID, "⏳ A quiz is already being generated, please wait.")
		return
	}
	defer r.generating.Delete(chatID)

	s := r.load(ctx, chatID)
	if s.SourceText == "" {
		r.send(chatID, "Send a PDF with your lecture notes first.")
		return
	}
	if len(s.Kinds) == 0 {
		r.send(chatID, "Select at least one question type.")
		return
	}
	r.send(chatID, "⏳ Generating the quiz…")

	gctx := ctx
	if r.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, r.GenerationTimeout)
		defer cancel()
	}
	start := time.Now()
	set, err := r.Gen.Generate(gctx, generate.Request{
		Text:         s.SourceText,
		NumQuestions: s.NumQuestions,
		Kinds:        s.Kinds,
		SourceName:   s.SourceName,
		LLMName:      s.LLMName,
	})
	if err != nil {
		r.log().Warn("quiz generation failed", "chat_id", chatID, "error", err, "duration", time.Since(start))
		r.sendError(chatID, err)
		return
	}
	r.log().Info("quiz generated", "chat_id", chatID, "quiz_id", set.ID, "items", set.Len(), "duration", time.Since(start))
	s.Replace(set)
	r.save(ctx, chatID, s)
	r.renderQuiz(chatID, s)
}

// activeItem resolves "<tag>:<item>" against the session's current set.
func activeItem(s *session.Session, tag, raw string) (int, bool) {
	if !s.HasQuiz() || tag != quizTag(s.Set.ID) {
		return 0, false
	}
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= s.Set.Len() {
		return 0, false
	}
	return i, true
}

// onChoice records a button answer: "ans:<tag>:<item>:<option index>" or "ans:<tag>:<item>:O|X".
func (r *Router) onChoice(ctx context.Context, cb tgbotapi.CallbackQuery) {
	cid := cb.Message.Chat.ID
	parts := strings.SplitN(strings.TrimPrefix(cb.Data, cbAnswer), ":", 3)
	if len(parts) != 3 {
		r.answerCallback(cb.ID, staleQuiz)
		return
	}
	s := r.load(ctx, cid)
	i, ok := activeItem(s, parts[0], parts[1])
	if !ok {
		r.answerCallback(cb.ID, staleQuiz)
		return
	}
	it := s.Set.Items[i]
	answer := parts[2]
	if it.Kind == quiz.MultipleChoice {
		j, err := strconv.Atoi(answer)
		if err != nil || j < 0 || j >= len(it.Options) {
			r.answerCallback(cb.ID, "")
			return
		}
		answer = it.Options[j]
	}
	s.Answer(i, answer)
	r.save(ctx, cid, s)
	r.answerCallback(cb.ID, "Q"+strconv.Itoa(i+1)+": "+util.Ellipsize(answer, 150))
}

func (r *Router) onTypeRequest(ctx context.Context, chatID int64, data string) {
	s := r.load(ctx, chatID)
	tag, raw, _ := strings.Cut(data, ":")
	i, ok := activeItem(s, tag, raw)
	if !ok {
		r.send(chatID, staleQuiz)
		return
	}
	s.Awaiting = i + 1
	r.save(ctx, chatID, s)
	text := "✍️ Type your answer for Q" + strconv.Itoa(i+1) + "."
	if it := s.Set.Items[i]; it.Kind == quiz.Matching {
		text += "\nFormat: " + matchingExample(len(it.Pairs))
	}
	r.send(chatID, text)
}

func (r *Router) onGrade(ctx context.Context, chatID int64) {
	s := r.load(ctx, chatID)
	res, err := s.Grade(quiz.NewGrader(r.Gen.Catalog()))
	if err != nil {
		r.sendError(chatID, err)
		return
	}
	r.save(ctx, chatID, s)
	for _, part := range splitMessage(resultText(res), maxMessageRunes) {
		r.send(chatID, part)
	}
}

func (r *Router) onExport(ctx context.Context, chatID int64) {
	s := r.load(ctx, chatID)
	if !s.HasQuiz() {
		r.sendError(chatID, quiz.ErrNoQuiz)
		return
	}
	var res *quiz.Result
	if s.ShowResults {
		if graded, err := quiz.NewGrader(r.Gen.Catalog()).Grade(*s.Set, s.Answers); err == nil {
			res = &graded
		}
	}
	data, err := export.Workbook(*s.Set, res)
	if err != nil {
		r.sendError(chatID, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: export.Filename(*s.Set), Bytes: data})
	if _, err := r.Bot.Send(doc); err != nil {
		r.log().Warn("telegram send document failed", "chat_id", chatID, "error", err)
	}
}
