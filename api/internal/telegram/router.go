package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lecture-quiz/api/internal/extract"
	"lecture-quiz/api/internal/generate"
	"lecture-quiz/api/internal/llm"
	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/session"
)

type Generator interface {
	Generate(ctx context.Context, req generate.Request) (quiz.Set, error)
	Catalog() *quiz.Catalog
}

type Router struct {
	Bot       Sender
	Gen       Generator
	Extractor extract.Extractor
	Sessions  session.Store
	Engines   *llm.Engines
	Limits    session.Limits
	Log       *slog.Logger

	GenerationTimeout time.Duration
	MaxUploadBytes    int64
	// Download fetches a Telegram file URL; nil uses the package HTTP client.
	Download func(ctx context.Context, url string) ([]byte, error)

	// IdleTimeout stops a chat's worker after this long without updates; zero means one minute.
	IdleTimeout time.Duration

	mu         sync.Mutex
	workers    map[int64]*chatWorker
	generating sync.Map // chatID -> struct{}
}

const chatQueueSize = 32

// chatWorker drains one chat's updates in arrival order.
type chatWorker struct {
	updates chan tgbotapi.Update
	pending int // guarded by Router.mu
}

func (r *Router) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// Dispatch queues upd on its chat's worker. Updates of one chat are handled
// one at a time, in the order Dispatch was called.
func (r *Router) Dispatch(ctx context.Context, upd tgbotapi.Update) {
	chatID, ok := updateChatID(upd)
	if !ok {
		return
	}
	if cb := upd.CallbackQuery; cb != nil && cb.Data == cbGenerate {
		if _, busy := r.generating.Load(chatID); busy {
			r.answerCallback(cb.ID, "A quiz is already being generated.")
			return
		}
	}
	r.mu.Lock()
	if r.workers == nil {
		r.workers = map[int64]*chatWorker{}
	}
	w, ok := r.workers[chatID]
	if !ok {
		w = &chatWorker{updates: make(chan tgbotapi.Update, chatQueueSize)}
		r.workers[chatID] = w
		go r.runWorker(ctx, chatID, w)
	}
	w.pending++
	r.mu.Unlock()

	w.updates <- upd
}

func (r *Router) runWorker(ctx context.Context, chatID int64, w *chatWorker) {
	idle := r.IdleTimeout
	if idle <= 0 {
		idle = time.Minute
	}
	t := time.NewTimer(idle)
	defer t.Stop()
	for {
		select {
		case upd := <-w.updates:
			r.HandleUpdate(ctx, upd)
			r.mu.Lock()
			w.pending--
			r.mu.Unlock()
			if !t.Stop() {
				select {
				case <-t.C:
				default:
				}
			}
			t.Reset(idle)
		case <-t.C:
			r.mu.Lock()
			if w.pending == 0 {
				delete(r.workers, chatID)
				r.mu.Unlock()
				return
			}
			r.mu.Unlock()
			t.Reset(idle)
		}
	}
}

// activeWorkers is the number of chats with a running worker.
func (r *Router) activeWorkers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}

func updateChatID(upd tgbotapi.Update) (int64, bool) {
	switch {
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		return upd.CallbackQuery.Message.Chat.ID, true
	case upd.Message != nil:
		return upd.Message.Chat.ID, true
	}
	return 0, false
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	switch {
	case msg.IsCommand():
		r.HandleCommand(ctx, msg)
	case msg.Document != nil:
		r.acceptDocument(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		r.acceptText(ctx, msg)
	}
}

func sessionID(chatID int64) string { return "tg:" + strconv.FormatInt(chatID, 10) }

func (r *Router) load(ctx context.Context, chatID int64) *session.Session {
	s, err := session.LoadOrNew(ctx, r.Sessions, sessionID(chatID), func(id string) *session.Session {
		return session.New(id, r.Gen.Catalog().Kinds(), r.Limits)
	})
	if err != nil {
		r.log().Warn("session load failed", "chat_id", chatID, "error", err)
		return session.New(sessionID(chatID), r.Gen.Catalog().Kinds(), r.Limits)
	}
	return s
}

func (r *Router) save(ctx context.Context, chatID int64, s *session.Session) {
	if err := r.Sessions.Save(ctx, s); err != nil {
		r.log().Error("session save failed", "chat_id", chatID, "error", err)
	}
}

func (r *Router) send(chatID int64, text string) {
	r.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := r.Bot.Send(msg); err != nil {
		r.log().Warn("telegram send failed", "chat_id", msg.ChatID, "error", err)
	}
}

func (r *Router) sendError(chatID int64, err error) {
	r.send(chatID, "⚠️ "+quiz.UserMessage(err))
}
