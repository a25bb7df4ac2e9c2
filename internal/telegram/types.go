package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
}

// Message a telegram message struct
type Message struct {
	ChatID      int64
	MessageID   int
	Text        string
	ReplyMarkup *tgbotapi.InlineKeyboardMarkup
}
