package publish

// Sends the rendered GIF to Telegram chats.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	logging "fundrace/internal/infra/log"
	"fundrace/internal/infra/retry"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrNoChats    = errors.New("no telegram chats configured")
	ErrNoToken    = errors.New("telegram bot token is empty")
	ErrBadChatID  = errors.New("invalid telegram chat id")
	ErrNoAnimFile = errors.New("animation file does not exist")
)

// Sender is the part of *tgbotapi.BotAPI the publisher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Options tune retries and the send rate.
type Options struct {
	Retry retry.Options
	// PerSecond limits sends across all chats.
	PerSecond float64
}

// DefaultOptions matches Telegram's limit of roughly one message per second per chat.
func DefaultOptions() Options {
	return Options{
		Retry:     retry.Options{MaxRetries: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second},
		PerSecond: 1,
	}
}

type Publisher struct {
	sender  Sender
	chats   []int64
	opts    Options
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// New builds a publisher around an existing sender.
func New(sender Sender, chatIDs []string, opts Options) (*Publisher, error) {
	chats, err := ParseChatIDs(chatIDs)
	if err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return nil, ErrNoChats
	}
	if opts.PerSecond <= 0 {
		opts.PerSecond = DefaultOptions().PerSecond
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TelegramPublish",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// a permanent per-chat error says nothing about the API itself
			return err == nil || !retry.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.LogWarn("Circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Publisher{
		sender:  sender,
		chats:   chats,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.PerSecond), 1),
		breaker: breaker,
	}, nil
}

// NewBot connects to the Bot API with token.
func NewBot(token string, chatIDs []string, opts Options) (*Publisher, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logging.LogInfo("Telegram bot authorized", zap.String("username", bot.Self.UserName))
	return New(bot, chatIDs, opts)
}

// ParseChatIDs converts chat ids, skipping blanks.
func ParseChatIDs(ids []string) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, s := range ids {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadChatID, s)
		}
		out = append(out, id)
	}
	return out, nil
}

// PublishGIF sends the animation at path to every chat. Failures for one chat
// do not stop the others unless the breaker opens.
func (p *Publisher) PublishGIF(ctx context.Context, path, caption string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrNoAnimFile, path)
	}

	var errs []error
	for _, chatID := range p.chats {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		_, err := p.breaker.Execute(func() (interface{}, error) {
			return nil, retry.Do(ctx, p.opts.Retry, func() error {
				anim := tgbotapi.NewAnimation(chatID, tgbotapi.FilePath(path))
				anim.Caption = caption
				_, err := p.sender.Send(anim)
				return classify(err)
			})
		})
		if err != nil {
			logging.LogError("Failed to send animation", zap.Int64("chatID", chatID), zap.Error(err))
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			if errors.Is(err, gobreaker.ErrOpenState) || ctx.Err() != nil {
				break
			}
			continue
		}
		logging.LogSuccess("Animation sent", zap.Int64("chatID", chatID), zap.String("path", path))
	}
	return errors.Join(errs...)
}

// classify maps Bot API errors onto retry.StatusError.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return &retry.StatusError{
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
		}
	}
	return err
}
