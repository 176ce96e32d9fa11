package telegram

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryDelayFromError(t *testing.T) {
	tgErr := &tgbotapi.Error{Code: 429, Message: "Too Many Requests", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7}}
	assert.Equal(t, 7*time.Second, retryDelayFromError(tgErr))
	assert.Equal(t, 4*time.Second, retryDelayFromError(errors.New("Too Many Requests: retry after 4")))
	assert.Equal(t, 3*time.Second, retryDelayFromError(errors.New("too many requests")))
	assert.Equal(t, time.Second, retryDelayFromError(errors.New("bad gateway")))
	assert.Zero(t, retryDelayFromError(nil))
}

type fakeSource struct {
	calls   []tgbotapi.UpdateConfig
	batches [][]tgbotapi.Update
	cancel  context.CancelFunc
}

func (f *fakeSource) GetUpdates(c tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.calls = append(f.calls, c)
	if len(f.batches) == 0 {
		f.cancel()
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func TestRunPollingAdvancesOffset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSource{
		batches: [][]tgbotapi.Update{{{UpdateID: 10}, {UpdateID: 11}}, {{UpdateID: 12}}},
		cancel:  cancel,
	}
	var got []int
	RunPolling(ctx, src, slog.New(slog.NewTextHandler(io.Discard, nil)), func(u tgbotapi.Update) {
		got = append(got, u.UpdateID)
	})

	assert.Equal(t, []int{10, 11, 12}, got)
	require.Len(t, src.calls, 3)
	assert.Equal(t, 0, src.calls[0].Offset)
	assert.Equal(t, 12, src.calls[1].Offset)
	assert.Equal(t, 13, src.calls[2].Offset)
	assert.Equal(t, pollTimeout, src.calls[0].Timeout)
}

func TestWebhookPathIsStable(t *testing.T) {
	a := WebhookPath("123:abc")
	assert.Equal(t, a, WebhookPath("123:abc"))
	assert.NotEqual(t, a, WebhookPath("123:abd"))
	assert.Len(t, a, len("/webhook/")+16)
}

func TestWebhookHandler(t *testing.T) {
	var got []tgbotapi.Update
	h := WebhookHandler(nil, func(u tgbotapi.Update) { got = append(got, u) })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/x", bytes.NewBufferString(`{"update_id": 5}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].UpdateID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/x", bytes.NewBufferString(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, got, 1)
}
