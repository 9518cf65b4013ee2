package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fundrace/internal/infra/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent    []tgbotapi.AnimationConfig
	respond func(call int, chatID int64) error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	anim, ok := c.(tgbotapi.AnimationConfig)
	if !ok {
		return tgbotapi.Message{}, assert.AnError
	}
	f.sent = append(f.sent, anim)
	if f.respond != nil {
		if err := f.respond(len(f.sent), anim.ChatID); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func fastOptions(retries int) Options {
	return Options{
		Retry:     retry.Options{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		PerSecond: 1000,
	}
}

func gifFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "race.gif")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a"), 0o644))
	return path
}

func TestPublishGIF_AllChats(t *testing.T) {
	sender := &fakeSender{}
	p, err := New(sender, []string{"-100123", " 42 ", ""}, fastOptions(0))
	require.NoError(t, err)

	require.NoError(t, p.PublishGIF(context.Background(), gifFile(t), "Weekly race"))
	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(-100123), sender.sent[0].ChatID)
	assert.Equal(t, int64(42), sender.sent[1].ChatID)
	assert.Equal(t, "Weekly race", sender.sent[0].Caption)
}

func TestPublishGIF_RetriesRateLimit(t *testing.T) {
	sender := &fakeSender{respond: func(call int, _ int64) error {
		if call == 1 {
			return &tgbotapi.Error{Code: 429, Message: "Too Many Requests", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 1}}
		}
		return nil
	}}
	p, err := New(sender, []string{"1"}, fastOptions(2))
	require.NoError(t, err)

	require.NoError(t, p.PublishGIF(context.Background(), gifFile(t), ""))
	assert.Len(t, sender.sent, 2)
}

func TestPublishGIF_PermanentErrorContinues(t *testing.T) {
	sender := &fakeSender{respond: func(_ int, chatID int64) error {
		if chatID == 1 {
			return &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}
		}
		return nil
	}}
	p, err := New(sender, []string{"1", "2"}, fastOptions(3))
	require.NoError(t, err)

	err = p.PublishGIF(context.Background(), gifFile(t), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat 1")
	assert.NotContains(t, err.Error(), "chat 2")
	assert.Len(t, sender.sent, 2)
}

func TestPublishGIF_BreakerStopsAfterServerErrors(t *testing.T) {
	sender := &fakeSender{respond: func(int, int64) error {
		return &tgbotapi.Error{Code: 502, Message: "Bad Gateway"}
	}}
	p, err := New(sender, []string{"1", "2", "3", "4", "5"}, fastOptions(0))
	require.NoError(t, err)

	err = p.PublishGIF(context.Background(), gifFile(t), "")
	require.Error(t, err)
	assert.Len(t, sender.sent, 3)
}

func TestPublishGIF_MissingFile(t *testing.T) {
	p, err := New(&fakeSender{}, []string{"1"}, fastOptions(0))
	require.NoError(t, err)
	assert.ErrorIs(t, p.PublishGIF(context.Background(), filepath.Join(t.TempDir(), "none.gif"), ""), ErrNoAnimFile)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(&fakeSender{}, nil, Options{})
	assert.ErrorIs(t, err, ErrNoChats)

	_, err = New(&fakeSender{}, []string{"@channel"}, Options{})
	assert.ErrorIs(t, err, ErrBadChatID)

	_, err = NewBot("  ", []string{"1"}, Options{})
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	err := classify(&tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7}})
	var se *retry.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 7*time.Second, se.RetryAfter)
	assert.True(t, retry.IsRetryable(err))

	assert.Equal(t, assert.AnError, classify(assert.AnError))
}
