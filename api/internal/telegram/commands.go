package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Send me lecture notes as a PDF and I will build a quiz from them.

1. Upload a PDF document.
2. Pick question types and the number of questions, then press Generate.
3. Answer with the buttons, or press "Answer" and type for short answer and matching questions.
4. Press Grade to see your score.

Commands:
/settings - question types and count
/quiz - show the current quiz again
/grade - grade your answers
/engine [gemini|gpt] - choose the model`

func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "settings":
		s := r.load(ctx, cid)
		r.sendSettings(cid, s)
	case "quiz":
		s := r.load(ctx, cid)
		if !s.HasQuiz() {
			r.send(cid, "No quiz yet. Upload a PDF and press Generate.")
			return
		}
		r.renderQuiz(cid, s)
	case "grade":
		r.onGrade(ctx, cid)
	case "engine":
		r.handleEngineCommand(ctx, cid, msg.CommandArguments())
	default:
		r.send(cid, "Unknown command. Try /help")
	}
}

func (r *Router) handleEngineCommand(ctx context.Context, chatID int64, args string) {
	s := r.load(ctx, chatID)
	name := strings.ToLower(strings.TrimSpace(args))
	if r.Engines == nil {
		r.send(chatID, "Model selection is not available.")
		return
	}
	if name == "" {
		cur, err := r.Engines.GetEngine(s.LLMName)
		if err != nil {
			r.send(chatID, "Current model is not configured. Available: "+strings.Join(r.Engines.Names(), ", "))
			return
		}
		r.send(chatID, "Current model: "+cur.Name()+" ("+cur.GetModel()+")\nUsage: /engine gemini | /engine gpt")
		return
	}
	eng, err := r.Engines.GetEngine(name)
	if err != nil {
		r.send(chatID, "❌ "+err.Error())
		return
	}
	s.LLMName = eng.Name()
	r.save(ctx, chatID, s)
	r.send(chatID, "✅ Model: "+eng.Name()+" ("+eng.GetModel()+")")
}
