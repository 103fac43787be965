package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rahul/voyage/internal/observability"
)

// maxMessageLength is the Bot API limit on message text, counted in UTF-16
// code units.
const maxMessageLength = 4096

const helpText = "Send me your trip, e.g. \"Budget 5000 Rs, Flight 2000 Rs, 3 Days in Goa\".\n" +
	"Set the route explicitly with \"Nagpur | Mumbai | 3 days, budget 4000\".\n" +
	"/status shows what I am working on."

var _ Messenger = (*TelegramGateway)(nil)

type TelegramGateway struct {
	Bot     *tgbotapi.BotAPI
	Planner Planner
}

func NewTelegramGateway(token string, planner Planner) (*TelegramGateway, error) {
	return newTelegramGateway(token, tgbotapi.APIEndpoint, planner)
}

func newTelegramGateway(token, endpoint string, planner Planner) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:     bot,
		Planner: planner,
	}, nil
}

// Start processes updates one at a time until Stop is called.
func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", senderName(update.Message), update.Message.Text)
		tg.handle(context.Background(), update.Message.Chat.ID, update.Message.Text)
	}
	return nil
}

func (tg *TelegramGateway) handle(ctx context.Context, chatID int64, text string) {
	switch strings.TrimSpace(text) {
	case "/start", "/help":
		tg.sendPlain(chatID, helpText)
		return
	case "/status":
		tg.sendPlain(chatID, observability.StatusLine())
		return
	}

	// The log is shown in one message that is edited as the pipeline
	// progresses; the itinerary arrives as a separate message.
	progressID := 0
	shown := ""

	for evt := range tg.Planner.Run(ctx, ParseRequest(text)) {
		if progress := clipProgress(evt.Log); progress != shown {
			if progressID == 0 {
				msg, err := tg.Bot.Send(tgbotapi.NewMessage(chatID, progress))
				if err != nil {
					log.Printf("Error sending progress: %v", err)
				} else {
					progressID = msg.MessageID
				}
			} else if _, err := tg.Bot.Send(tgbotapi.NewEditMessageText(chatID, progressID, progress)); err != nil {
				log.Printf("Error updating progress: %v", err)
			}
			shown = progress
		}

		if evt.Final && evt.Result != "" {
			if err := tg.Send(fmt.Sprintf("%d", chatID), evt.Result); err != nil {
				log.Printf("Error sending itinerary: %v", err)
			}
		}
	}
}

// Send delivers text as Markdown, retrying as plain text when Telegram
// rejects the markup. Text over the message limit goes out in several
// messages, split at line breaks where possible.
func (tg *TelegramGateway) Send(chatID string, text string) error {
	var id int64
	fmt.Sscanf(chatID, "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	for _, part := range splitMessage(text, maxMessageLength) {
		msg := tgbotapi.NewMessage(id, part)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := tg.Bot.Send(msg); err == nil {
			continue
		}

		msg.ParseMode = ""
		if _, err := tg.Bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (tg *TelegramGateway) sendPlain(chatID int64, text string) {
	if _, err := tg.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}

// senderName tolerates messages without a sender, such as channel posts.
func senderName(m *tgbotapi.Message) string {
	if m.From == nil {
		return "unknown"
	}
	return m.From.UserName
}

func messageLength(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

// splitMessage cuts text into parts of at most limit UTF-16 units, breaking
// after the last newline that fits.
func splitMessage(text string, limit int) []string {
	var parts []string
	for text != "" {
		cut, units, lastBreak := len(text), 0, 0
		for i, r := range text {
			units += utf16.RuneLen(r)
			if units > limit {
				cut = i
				break
			}
			if r == '\n' {
				lastBreak = i + 1
			}
		}
		if cut < len(text) && lastBreak > 0 {
			cut = lastBreak
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(text)
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	return parts
}

// clipProgress keeps the most recent end of a progress log that has
// outgrown one message.
func clipProgress(progress string) string {
	const marker = "…\n"
	if messageLength(progress) <= maxMessageLength {
		return progress
	}

	units, start := messageLength(marker), len(progress)
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(progress[:start])
		if units+utf16.RuneLen(r) > maxMessageLength {
			break
		}
		units += utf16.RuneLen(r)
		start -= size
	}
	return marker + progress[start:]
}
