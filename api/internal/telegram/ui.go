package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/session"
)

func makeSettingsKeyboard(c *quiz.Catalog, s *session.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, k := range c.Kinds() {
		mark := "▫️ "
		if s.HasKind(k) {
			mark = "✅ "
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark+c.Label(k), cbKind+string(k)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➖", cbCountDown),
		tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d questions", s.NumQuestions), cbNoop),
		tgbotapi.NewInlineKeyboardButtonData("➕", cbCountUp),
	))
	if s.SourceText != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Generate quiz", cbGenerate),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func settingsText(c *quiz.Catalog, s *session.Session) string {
	var b strings.Builder
	b.WriteString("⚙️ Quiz settings\n")
	if s.SourceName != "" {
		fmt.Fprintf(&b, "Source: %s (%d characters)\n", s.SourceName, len([]rune(s.SourceText)))
	} else {
		b.WriteString("Source: none, send a PDF first\n")
	}
	fmt.Fprintf(&b, "Questions: %d\n", s.NumQuestions)
	labels := make([]string, 0, len(s.Kinds))
	for _, k := range s.Kinds {
		labels = append(labels, c.Label(k))
	}
	if len(labels) == 0 {
		b.WriteString("Types: none selected")
	} else {
		b.WriteString("Types: " + strings.Join(labels, ", "))
	}
	return b.String()
}

func (r *Router) sendSettings(chatID int64, s *session.Session) {
	msg := tgbotapi.NewMessage(chatID, settingsText(r.Gen.Catalog(), s))
	msg.ReplyMarkup = makeSettingsKeyboard(r.Gen.Catalog(), s)
	r.sendMsg(msg)
}

func (r *Router) editSettings(chatID int64, messageID int, s *session.Session) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		settingsText(r.Gen.Catalog(), s), makeSettingsKeyboard(r.Gen.Catalog(), s))
	if _, err := r.Bot.Request(edit); err != nil {
		r.log().Debug("settings edit failed", "chat_id", chatID, "error", err)
	}
}

func itemText(c *quiz.Catalog, i int, it quiz.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Q%d. [%s]\n%s", i+1, c.Label(it.Kind), it.Question)
	switch it.Kind {
	case quiz.MultipleChoice:
		b.WriteString("\n")
		for j, o := range it.Options {
			fmt.Fprintf(&b, "\n%d) %s", j+1, o)
		}
	case quiz.Matching:
		b.WriteString("\n")
		for j, p := range it.Pairs {
			fmt.Fprintf(&b, "\n%d. %s", j+1, p.Left)
		}
		b.WriteString("\n")
		for j, d := range sortedRights(it) {
			fmt.Fprintf(&b, "\n%s. %s", quiz.Letter(j), d)
		}
		b.WriteString("\n\nAnswer like: " + matchingExample(len(it.Pairs)))
	}
	return b.String()
}

func matchingExample(n int) string {
	if n > 3 {
		n = 3
	}
	parts := make([]string, 0, n)
	for j := 0; j < n; j++ {
		parts = append(parts, strconv.Itoa(j+1)+"-"+quiz.Letter(j))
	}
	return strings.Join(parts, ", ")
}

// quizTag names the set a button belongs to; buttons of a replaced set no longer match it.
func quizTag(setID string) string {
	if len(setID) > 8 {
		return setID[:8]
	}
	return setID
}

func itemKeyboard(tag string, i int, it quiz.Item) tgbotapi.InlineKeyboardMarkup {
	idx := tag + ":" + strconv.Itoa(i)
	switch it.Kind {
	case quiz.MultipleChoice:
		var rows [][]tgbotapi.InlineKeyboardButton
		var row []tgbotapi.InlineKeyboardButton
		for j := range it.Options {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(j+1), cbAnswer+idx+":"+strconv.Itoa(j)))
			if len(row) == 4 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)
	case quiz.TrueFalse:
		return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⭕ O", cbAnswer+idx+":O"),
			tgbotapi.NewInlineKeyboardButtonData("❌ X", cbAnswer+idx+":X"),
		))
	default:
		return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Answer", cbType+idx),
		))
	}
}

func (r *Router) renderQuiz(chatID int64, s *session.Session) {
	c := r.Gen.Catalog()
	tag := quizTag(s.Set.ID)
	for i, it := range s.Set.Items {
		msg := tgbotapi.NewMessage(chatID, itemText(c, i, it))
		msg.ReplyMarkup = itemKeyboard(tag, i, it)
		r.sendMsg(msg)
	}
	done := tgbotapi.NewMessage(chatID, fmt.Sprintf("%d questions. Answer them, then press Grade.", s.Set.Len()))
	done.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📊 Grade", cbGrade),
		tgbotapi.NewInlineKeyboardButtonData("📄 Export", cbExport),
	))
	r.sendMsg(done)
}

func resultText(res quiz.Result) string {
	var b strings.Builder
	for _, ir := range res.Items {
		mark := "❌"
		if ir.IsCorrect {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s Q%d. %s\n", mark, ir.Index+1, ir.Question)
		fmt.Fprintf(&b, "Your answer: %s\n", ir.Submitted)
		fmt.Fprintf(&b, "Correct answer: %s\n", ir.Answer)
		if ir.Explanation != "" {
			fmt.Fprintf(&b, "Explanation: %s\n", ir.Explanation)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Score: %.1f%% (%d/%d)\n", res.Percentage, res.Correct, res.Total)
	b.WriteString(res.Tier().Message())
	return b.String()
}
