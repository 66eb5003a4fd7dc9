package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"challenge-stake-go/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("notification queue full")

// Sender is the part of *tgbotapi.BotAPI the sink uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UserLookup resolves the chat a user is reachable on.
type UserLookup interface {
	GetUserById(ctx context.Context, userId string) (*models.User, error)
}

// Telegram queues events and delivers them from a single worker goroutine,
// so Notify never waits on the Bot API.
type Telegram struct {
	sender   Sender
	users    UserLookup
	queue    chan Event
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

func NewTelegram(sender Sender, users UserLookup, queueSize int) *Telegram {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Telegram{
		sender:   sender,
		users:    users,
		queue:    make(chan Event, queueSize),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// NewTelegramFromToken connects to the Bot API with token.
func NewTelegramFromToken(token string, users UserLookup, queueSize int) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to connect telegram bot: %w", err)
	}
	zap.L().Info("Telegram notifier authorized", zap.String("bot", bot.Self.UserName))
	return NewTelegram(bot, users, queueSize), nil
}

func (t *Telegram) Notify(_ context.Context, event Event) error {
	select {
	case t.queue <- event:
		return nil
	default:
		return fmt.Errorf("%w: dropping %s for user %s", ErrQueueFull, event.Kind, event.UserId)
	}
}

func (t *Telegram) Start(ctx context.Context) {
	zap.L().Info("Starting telegram notifier", zap.Int("queue_size", cap(t.queue)))
	go t.run(ctx)
}

// Stop drains queued events and waits for the worker to exit.
func (t *Telegram) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
	<-t.doneChan
	zap.L().Info("Telegram notifier stopped")
}

func (t *Telegram) run(ctx context.Context) {
	defer close(t.doneChan)
	for {
		select {
		case event := <-t.queue:
			t.deliver(ctx, event)
		case <-t.stopChan:
			for {
				select {
				case event := <-t.queue:
					t.deliver(ctx, event)
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (t *Telegram) deliver(ctx context.Context, event Event) {
	user, err := t.users.GetUserById(ctx, event.UserId)
	if err != nil {
		zap.L().Warn("Unable to resolve notification recipient",
			zap.String("user_id", event.UserId),
			zap.Error(err))
		return
	}
	if user.TelegramId == 0 {
		zap.L().Debug("User has no telegram chat, skipping", zap.String("user_id", event.UserId))
		return
	}

	msg := tgbotapi.NewMessage(user.TelegramId, event.Message())
	if _, err := t.sender.Send(msg); err != nil {
		zap.L().Warn("Failed to send telegram notification",
			zap.String("user_id", event.UserId),
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
		return
	}
	zap.L().Debug("Telegram notification sent",
		zap.String("user_id", event.UserId),
		zap.String("kind", string(event.Kind)))
}
