package svcbot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramTransport is the production Transport: it owns the Telegram bot
// connection, performs the send/edit/answer I/O the dispatcher requests, and
// decodes long-poll updates into dispatcher events.
type TelegramTransport struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

// TelegramOption configures a TelegramTransport
type TelegramOption func(*TelegramTransport)

// WithTelegramLogger sets the transport's logger
func WithTelegramLogger(l *slog.Logger) TelegramOption {
	return func(t *TelegramTransport) {
		t.logger = l
	}
}

// NewTelegramTransport authenticates against the Telegram bot API.
func NewTelegramTransport(token string, opts ...TelegramOption) (*TelegramTransport, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	t := &TelegramTransport{
		bot:    bot,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// SendMessage posts a new MarkdownV2 message with an inline keyboard.
func (t *TelegramTransport) SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = toInlineKeyboard(keyboard)
	_, err := t.bot.Send(msg)
	return err
}

// EditMessage rewrites an existing message's text and keyboard in place.
func (t *TelegramTransport) EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, toInlineKeyboard(keyboard))
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := t.bot.Send(edit)
	return err
}

// AnswerCallback acknowledges a button press, as a modal alert when alert is
// true and a toast otherwise.
func (t *TelegramTransport) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	answer := tgbotapi.NewCallback(callbackID, text)
	answer.ShowAlert = alert
	_, err := t.bot.Request(answer)
	return err
}

// Listen long-polls Telegram for updates and submits each decoded event to
// the dispatcher until ctx is done. Submission blocks when the dispatcher's
// queue is full, which is the backpressure point between transport delivery
// and event processing.
func (t *TelegramTransport) Listen(ctx context.Context, d *Dispatcher) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = DefaultUpdateTimeout

	updates := t.bot.GetUpdatesChan(cfg)
	defer t.bot.StopReceivingUpdates()

	t.logger.Info("listening for updates", "bot", t.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := decodeUpdate(update)
			if !ok {
				continue
			}
			if err := d.Submit(ctx, ev); err != nil {
				return err
			}
		}
	}
}

// decodeUpdate maps a raw Telegram update onto one of the two event shapes
// the dispatcher understands. Updates that are neither a text message nor an
// inline button press are dropped.
func decodeUpdate(update tgbotapi.Update) (Event, bool) {
	if q := update.CallbackQuery; q != nil && q.Message != nil && q.Message.Chat != nil {
		var sender int64
		if q.From != nil {
			sender = q.From.ID
		}
		return ButtonCallback{
			ChatID:     q.Message.Chat.ID,
			SenderID:   sender,
			CallbackID: q.ID,
			MessageID:  q.Message.MessageID,
			Data:       q.Data,
		}, true
	}
	if m := update.Message; m != nil && m.Chat != nil && m.Text != "" {
		var sender int64
		if m.From != nil {
			sender = m.From.ID
		}
		return TextCommand{
			ChatID:   m.Chat.ID,
			SenderID: sender,
			Text:     m.Text,
		}, true
	}
	return nil, false
}

func toInlineKeyboard(keyboard Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
