package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateSource is the long-polling side of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return time.Duration(tgErr.RetryAfter) * time.Second
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return time.Second
}

const (
	pollBaseDelay = time.Second
	pollMaxDelay  = 15 * time.Second
	pollTimeout   = 30
)

// RunPolling long-polls src until ctx is cancelled. Errors back off, never exit.
func RunPolling(ctx context.Context, src UpdateSource, log *slog.Logger, handle func(tgbotapi.Update)) {
	if log == nil {
		log = slog.Default()
	}
	offset := 0
	for {
		if ctx.Err() != nil {
			log.Info("polling stopped")
			return
		}
		u := tgbotapi.NewUpdate(offset)
		u.Timeout = pollTimeout

		updates, err := src.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelayFromError(err), pollBaseDelay), pollMaxDelay)
			log.Warn("polling error", "error", err, "retry_in", d)
			if !sleepCtx(ctx, d) {
				return
			}
			continue
		}
		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}
		if len(updates) == 0 && !sleepCtx(ctx, 200*time.Millisecond) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// WebhookPath is the secret path Telegram posts updates to.
func WebhookPath(token string) string { return "/webhook/" + shortHash(token) }

// shortHash is FNV-1a as 16 hex digits; stable for a token, not a secret by itself.
func shortHash(s string) string {
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}

// WebhookHandler decodes one update per request and hands it to handle.
func WebhookHandler(log *slog.Logger, handle func(tgbotapi.Update)) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var upd tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			log.Warn("bad webhook payload", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		handle(upd)
		w.WriteHeader(http.StatusOK)
	}
}
