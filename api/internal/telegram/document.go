package telegram

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lecture-quiz/api/internal/extract"
	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/util"
)

const maxMessageRunes = 4000

func (r *Router) acceptDocument(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	doc := msg.Document
	if !extract.IsPDF(doc.FileName, doc.MimeType, nil) {
		r.send(cid, "Only PDF files are supported.")
		return
	}
	limit := r.MaxUploadBytes
	if limit <= 0 {
		limit = extract.DefaultMaxUploadBytes
	}
	if int64(doc.FileSize) > limit {
		r.send(cid, fmt.Sprintf("The file is too large (max %d MB).", limit>>20))
		return
	}

	url, err := r.Bot.GetFileDirectURL(doc.FileID)
	if err != nil {
		r.log().Warn("get file url failed", "chat_id", cid, "error", err)
		r.send(cid, "Could not download the file, please try again.")
		return
	}
	dl := r.Download
	if dl == nil {
		dl = download
	}
	data, err := dl(ctx, url)
	if err != nil {
		r.log().Warn("file download failed", "chat_id", cid, "error", err)
		r.send(cid, "Could not download the file, please try again.")
		return
	}
	if err := extract.CheckPDF(doc.FileName, doc.MimeType, data); err != nil {
		r.sendError(cid, err)
		return
	}
	text, err := extract.Bytes(ctx, r.Extractor, data)
	if err != nil {
		r.log().Warn("pdf extraction failed", "chat_id", cid, "file", doc.FileName, "error", err)
		r.sendError(cid, err)
		return
	}

	s := r.load(ctx, cid)
	s.Upload(doc.FileName, text)
	r.save(ctx, cid, s)
	r.log().Info("pdf uploaded", "chat_id", cid, "file", doc.FileName, "sha256", util.SHA256Hex(data), "chars", utf8.RuneCountInString(text))
	r.send(cid, fmt.Sprintf("📄 %s: extracted %d characters.", doc.FileName, utf8.RuneCountInString(text)))
	r.sendSettings(cid, s)
}

func (r *Router) acceptText(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	s := r.load(ctx, cid)
	if s.Awaiting <= 0 || !s.HasQuiz() || s.Awaiting > s.Set.Len() {
		r.send(cid, "Send a PDF with your lecture notes to start, or /help.")
		return
	}
	i := s.Awaiting - 1
	answer := strings.TrimSpace(msg.Text)
	if it := s.Set.Items[i]; it.Kind == quiz.Matching {
		answer = translateMatching(it, answer)
	}
	s.Answer(i, answer)
	r.save(ctx, cid, s)
	r.send(cid, "✅ Saved answer for Q"+strconv.Itoa(i+1)+".")
}

// sortedRights is the display order of matching descriptions, labelled A, B, ….
func sortedRights(it quiz.Item) []string {
	out := make([]string, 0, len(it.Pairs))
	for _, p := range it.Pairs {
		out = append(out, p.Right)
	}
	sort.Strings(out)
	return out
}

// translateMatching rewrites "1-A" tokens into "left-right" text so the
// submission compares with the key. Tokens it cannot resolve are kept as typed.
func translateMatching(it quiz.Item, text string) string {
	rights := sortedRights(it)
	var toks []string
	for _, tok := range strings.Split(text, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		l, rt, ok := strings.Cut(tok, "-")
		if !ok {
			toks = append(toks, tok)
			continue
		}
		l, rt = strings.TrimSpace(l), strings.TrimSpace(rt)
		if n, err := strconv.Atoi(l); err == nil && n >= 1 && n <= len(it.Pairs) {
			l = it.Pairs[n-1].Left
		}
		if j := letterIndex(rt, len(rights)); j >= 0 {
			rt = rights[j]
		}
		toks = append(toks, l+"-"+rt)
	}
	return strings.Join(toks, ", ")
}

func letterIndex(s string, n int) int {
	s = strings.ToUpper(s)
	for j := 0; j < n; j++ {
		if quiz.Letter(j) == s {
			return j
		}
	}
	return -1
}

// splitMessage cuts text on line boundaries into chunks of at most limit runes.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var (
		out []string
		cur strings.Builder
		n   int
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
			n = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		ln := utf8.RuneCountInString(line)
		if n+ln > limit {
			flush()
		}
		for ln > limit {
			rs := []rune(line)
			out = append(out, string(rs[:limit]))
			line = string(rs[limit:])
			ln -= limit
		}
		cur.WriteString(line)
		n += ln
	}
	flush()
	return out
}
