package publish

import (
	"fmt"
	"html"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"goalie-chart/internal/domain/goalies"
	logging "goalie-chart/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// MaxCaption is Telegram's limit for photo captions.
const MaxCaption = 1024

// Publisher posts the rendered chart to one Telegram chat.
type Publisher struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	fs     afero.Fs
}

// NewTelegram connects the bot. apiEndpoint may be empty for the public Bot API.
func NewTelegram(token, chatID, apiEndpoint string, fsys afero.Fs) (*Publisher, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}
	if apiEndpoint == "" {
		apiEndpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, apiEndpoint, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logging.LogInfo("Telegram bot authorized", zap.String("username", bot.Self.UserName))
	return &Publisher{bot: bot, chatID: id, fs: fsys}, nil
}

// SendChart uploads the PNG at path with caption. When the photo cannot be
// sent the caption alone goes out as a message.
func (p *Publisher) SendChart(path, caption string) error {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		logging.LogError("Chart file does not exist", zap.String("path", path), zap.Error(err))
		return p.sendText(caption)
	}

	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FileBytes{Name: filepath.Base(path), Bytes: data})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	if _, err := p.bot.Send(photo); err != nil {
		logging.LogError("Failed to send chart", zap.Error(err))
		return p.sendText(caption)
	}

	logging.LogSuccess("Chart sent to Telegram", zap.Int64("chat_id", p.chatID), zap.Int("bytes", len(data)))
	return nil
}

func (p *Publisher) sendText(text string) error {
	msg := tgbotapi.NewMessage(p.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := p.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Caption lists the charted goalies in HTML, best first.
func Caption(title, subtitle string, top []goalies.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n%s\n", html.EscapeString(title), html.EscapeString(subtitle))
	for i, r := range top {
		line := fmt.Sprintf("\n%d. %s (%s) %.2f%% - %d GP",
			i+1, html.EscapeString(r.Name), html.EscapeString(r.CurrentTeam), r.SavePctPercent(), r.GamesPlayed)
		if b.Len()+len(line) > MaxCaption {
			break
		}
		b.WriteString(line)
	}
	return b.String()
}
