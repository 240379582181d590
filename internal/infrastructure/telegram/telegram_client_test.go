package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfitem/ai-digest/internal/domain/model"
)

type botStub struct {
	mu       sync.Mutex
	paths    []string
	messages []sendMessageRequest
	failText string
}

func (b *botStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var msg sendMessageRequest
	_ = json.Unmarshal(data, &msg)

	b.mu.Lock()
	b.paths = append(b.paths, r.URL.Path)
	b.messages = append(b.messages, msg)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if msg.Text == b.failText {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
}

func newTestClient(t *testing.T, stub *botStub, interval time.Duration) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	c := NewClient(model.TelegramConfig{
		BotToken:     "123:abc",
		APIUrl:       srv.URL,
		SendInterval: interval,
	})
	var sleeps []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return c, &sleeps
}

func TestClient_SendMessage(t *testing.T) {
	stub := &botStub{}
	c, _ := newTestClient(t, stub, DefaultSendInterval)

	require.NoError(t, c.SendMessage(context.Background(), "-100", "*hi*"))

	require.Len(t, stub.messages, 1)
	assert.Equal(t, "/bot123:abc/sendMessage", stub.paths[0])
	assert.Equal(t, sendMessageRequest{
		ChatID:                "-100",
		Text:                  "*hi*",
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}, stub.messages[0])
}

func TestClient_SendMessage_Rejected(t *testing.T) {
	stub := &botStub{failText: "bad"}
	c, _ := newTestClient(t, stub, DefaultSendInterval)

	err := c.SendMessage(context.Background(), "-100", "bad")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse entities")
}

func TestClient_SendChunks_PacesAndKeepsOrder(t *testing.T) {
	stub := &botStub{}
	c, sleeps := newTestClient(t, stub, DefaultSendInterval)

	sent := c.SendChunks(context.Background(), "-100", []string{"one", "two", "three"})

	assert.Equal(t, 3, sent)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, *sleeps)
	require.Len(t, stub.messages, 3)
	assert.Equal(t, "one", stub.messages[0].Text)
	assert.Equal(t, "two", stub.messages[1].Text)
	assert.Equal(t, "three", stub.messages[2].Text)
}

func TestClient_SendChunks_ContinuesAfterFailure(t *testing.T) {
	stub := &botStub{failText: "two"}
	c, sleeps := newTestClient(t, stub, DefaultSendInterval)

	sent := c.SendChunks(context.Background(), "-100", []string{"one", "two", "three"})

	assert.Equal(t, 2, sent)
	assert.Len(t, stub.messages, 3)
	assert.Len(t, *sleeps, 2)
}

func TestClient_SendChunks_StopsWhenCancelled(t *testing.T) {
	stub := &botStub{}
	c, _ := newTestClient(t, stub, DefaultSendInterval)

	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	sent := c.SendChunks(ctx, "-100", []string{"one", "two"})

	assert.Equal(t, 1, sent)
	assert.Len(t, stub.messages, 1)
}

func TestClient_SendChunks_ZeroInterval(t *testing.T) {
	stub := &botStub{}
	c, sleeps := newTestClient(t, stub, 0)

	assert.Equal(t, 2, c.SendChunks(context.Background(), "-100", []string{"a", "b"}))
	assert.Empty(t, *sleeps)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
