package notify

import (
	"encoding/json"
	"fmt"

	"bookingproxy/internal/events"
	"bookingproxy/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the subset of the bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes booking outcomes to the operator chat. Send
// failures are logged and swallowed; notifications never affect a booking.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
	logger *zerolog.Logger
}

// New connects to the Telegram bot API.
func New(botToken string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return NewWithSender(bot, chatID, logger), nil
}

// NewWithSender wires an existing sender, used by tests.
func NewWithSender(bot Sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}
}

// SubscribeTo registers the notifier for terminal booking events.
func (n *TelegramNotifier) SubscribeTo(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingConfirmed, n.handle)
	bus.Subscribe(events.EventBookingPartialFailure, n.handle)
}

func (n *TelegramNotifier) handle(e *events.Event) error {
	var p events.BookingEventPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		n.logger.Warn().Err(err).Str("event", e.Type).Msg("notify: bad event payload")
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, formatMessage(e.Type, p))
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn().Err(err).Str("payment_id", p.PaymentID).Msg("notify: telegram send failed")
	}
	return nil
}

func formatMessage(eventType string, p events.BookingEventPayload) string {
	amount := fmt.Sprintf("%d.%02d %s", p.AmountMinor/100, p.AmountMinor%100, p.Currency)

	if eventType == events.EventBookingPartialFailure {
		return fmt.Sprintf(
			"⚠️ Payment captured but reservation FAILED\nPayment: %s (%s)\nGuest: %s\nApartment: %s, %s → %s\nAmount: %s\nDetail: %s\nManual follow-up required.",
			p.PaymentID, p.Method, p.GuestName, p.ApartmentID, p.ArrivalDate, p.DepartureDate, amount, p.Detail,
		)
	}

	if p.State == models.StateSuccess {
		return fmt.Sprintf(
			"✅ New booking confirmed\nReservation: %s\nGuest: %s\nApartment: %s, %s → %s\nAmount: %s\nPaid via %s (%s)",
			p.ReservationID, p.GuestName, p.ApartmentID, p.ArrivalDate, p.DepartureDate, amount, p.Method, p.PaymentID,
		)
	}

	return fmt.Sprintf("Booking event %s for payment %s", p.State, p.PaymentID)
}
