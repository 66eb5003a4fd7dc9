package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EventKind string

const (
	EventChallengeCompleted EventKind = "challenge_completed"
	EventChallengeFailed    EventKind = "challenge_failed"
	EventChallengeExpired   EventKind = "challenge_expired"
	EventReportVerified     EventKind = "report_verified"
	EventReportFake         EventKind = "report_fake"
	EventDonationReceived   EventKind = "donation_received"
)

// Event is a post-commit fact addressed to one user.
type Event struct {
	Kind        EventKind
	UserId      string
	ChallengeId string
	ReportId    string
	Title       string
	Amount      decimal.Decimal
	RatingDelta int
}

// Message renders the human text for an event.
func (e Event) Message() string {
	switch e.Kind {
	case EventChallengeCompleted:
		return fmt.Sprintf("Challenge %q completed. Your stake of %s was returned.", e.Title, e.Amount.StringFixed(2))
	case EventChallengeFailed:
		return fmt.Sprintf("Challenge %q failed. Your stake of %s went to charity.", e.Title, e.Amount.StringFixed(2))
	case EventChallengeExpired:
		return fmt.Sprintf("Challenge %q passed its deadline and was marked failed.", e.Title)
	case EventReportVerified:
		return fmt.Sprintf("Your progress report was verified (rating %+d).", e.RatingDelta)
	case EventReportFake:
		return fmt.Sprintf("Your progress report was marked fake (rating %+d).", e.RatingDelta)
	case EventDonationReceived:
		return fmt.Sprintf("Someone donated %s to your challenge %q.", e.Amount.StringFixed(2), e.Title)
	}
	return string(e.Kind)
}

// Notifier delivers events. Implementations must not block on slow transports.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Log writes events to the global zap logger.
type Log struct{}

func (Log) Notify(_ context.Context, event Event) error {
	zap.L().Info("Notification",
		zap.String("kind", string(event.Kind)),
		zap.String("user_id", event.UserId),
		zap.String("challenge_id", event.ChallengeId),
		zap.String("report_id", event.ReportId),
		zap.String("message", event.Message()))
	return nil
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
