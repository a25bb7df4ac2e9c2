package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crypto-alerts-bot/internal/engine"
	"crypto-alerts-bot/internal/price"
	"crypto-alerts-bot/internal/types"
	"crypto-alerts-bot/lib/helpers"
	"crypto-alerts-bot/lib/translation"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const welcomeText = "You're now subscribed to crypto updates!\n\n" +
	"You'll receive updates every 30 minutes, " +
	"starting from the next hour or half hour mark.\n\n" +
	"✅ Updates include: BTC, ETH, SOL, ETHFI."

const helpText = "Available commands:\n\n" +
	"/start - subscribe to price updates\n" +
	"/price - current prices for all pairs\n" +
	"/sa SYMBOL PRICE [PRICE...] [u] - set alerts, trailing u makes them repeating\n" +
	"/la - list active alerts\n" +
	"/ca SYMBOL - cancel all alerts for a symbol\n" +
	"/help - this message"

// HandleUpdate processes one Telegram update and returns the reply
// text. An empty return means the handler already sent its reply.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) string {
	log.Debugf("received command: %s", u.Message.Command())

	switch u.Message.Command() {
	case "start":
		return b.handleStart(ctx, u.Message.Chat.ID)
	case "price":
		return price.Snapshot(b.feed.Fetch(ctx, types.SupportedSymbols), time.Now())
	case "sa":
		return b.handleSetAlerts(ctx, u.Message.Chat.ID, u.Message.CommandArguments())
	case "la":
		return b.handleListAlerts(ctx, u.Message.Chat.ID)
	case "ca":
		return b.handleCancelAlerts(ctx, u.Message.Chat.ID, u.Message.CommandArguments())
	default:
		return helpers.EscapeMarkdownV2(translation.Translate(helpText))
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) string {
	if err := b.store.InsertSubscriber(ctx, chatID); err != nil {
		log.Errorf("failed to register subscriber %d: %v", chatID, err)
		return helpers.EscapeMarkdownV2(translation.Translate("Something went wrong, please try again later."))
	}
	return helpers.EscapeMarkdownV2(translation.Translate(welcomeText))
}

func (b *Bot) handleSetAlerts(ctx context.Context, chatID int64, args string) string {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return helpers.EscapeMarkdownV2(translation.Translate("Usage: /sa SYMBOL PRICE [PRICE...] [u]"))
	}

	symbol := types.Symbol(strings.ToUpper(fields[0]))
	targets := fields[1:]

	repeat := false
	if targets[len(targets)-1] == "u" {
		repeat = true
		targets = targets[:len(targets)-1]
	}
	if len(targets) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("Usage: /sa SYMBOL PRICE [PRICE...] [u]"))
	}

	results, err := b.engine.CreateAlerts(ctx, chatID, symbol, targets, repeat)
	switch {
	case errors.Is(err, engine.ErrInvalidSymbol):
		return helpers.EscapeMarkdownV2(fmt.Sprintf(
			translation.Translate("Unsupported symbol: %s. Supported: %s"),
			symbol, joinSymbols()))
	case errors.Is(err, engine.ErrPriceUnavailable):
		return helpers.EscapeMarkdownV2(fmt.Sprintf(
			translation.Translate("Could not fetch the current %s price, alert not set. Try again later."),
			symbol))
	case err != nil:
		log.Errorf("failed to create alerts: %v", err)
		return helpers.EscapeMarkdownV2(translation.Translate("Something went wrong, please try again later."))
	}

	var reply strings.Builder
	for _, res := range results {
		if res.Err != nil {
			reply.WriteString(fmt.Sprintf("⚠️ %s\n",
				helpers.EscapeMarkdownV2(fmt.Sprintf(translation.Translate("invalid price value: %s"), res.Input))))
			continue
		}

		verb := translation.Translate("rises above")
		if res.Alert.Direction == types.Below {
			verb = translation.Translate("falls below")
		}
		reply.WriteString(fmt.Sprintf("✅ %s\n", helpers.EscapeMarkdownV2(fmt.Sprintf(
			translation.Translate("Alert #%d: %s %s $%s%s"),
			res.Alert.ID, res.Alert.Symbol, verb,
			helpers.FormatPriceUS(res.Alert.Target, false),
			repeatSuffix(res.Alert.Repeat)))))
	}
	return reply.String()
}

func repeatSuffix(repeat bool) string {
	if repeat {
		return " " + translation.Translate("(repeating)")
	}
	return ""
}

func joinSymbols() string {
	names := make([]string, 0, len(types.SupportedSymbols))
	for _, s := range types.SupportedSymbols {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func (b *Bot) handleListAlerts(ctx context.Context, chatID int64) string {
	alerts, err := b.engine.ListActiveAlerts(ctx, chatID)
	if err != nil {
		log.Errorf("failed to list alerts for %d: %v", chatID, err)
		return helpers.EscapeMarkdownV2(translation.Translate("Something went wrong, please try again later."))
	}

	if len(alerts) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("You have no active alerts."))
	}

	var text strings.Builder
	text.WriteString(helpers.EscapeMarkdownV2(translation.Translate("Your active alerts:")) + "\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, alert := range alerts {
		verb := translation.Translate("rises above")
		if alert.Direction == types.Below {
			verb = translation.Translate("falls below")
		}
		suffix := ""
		if alert.Repeat {
			suffix = " 🔁"
		}
		text.WriteString(helpers.EscapeMarkdownV2(fmt.Sprintf("#%d %s %s $%s%s (%s)\n",
			alert.ID, alert.Symbol, verb,
			helpers.FormatPriceUS(alert.Target, false),
			suffix, humanize.Time(alert.CreatedAt))))

		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("❌ #%d %s $%s", alert.ID, alert.Symbol, helpers.FormatPriceUS(alert.Target, false)),
				fmt.Sprintf("alert_cancel|%d", alert.ID),
			),
		))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(buttons...)
	err = b.SendMessage(Message{
		ChatID:      chatID,
		Text:        text.String(),
		ReplyMarkup: &markup,
	})
	if err != nil {
		log.Errorf("failed to send alert list: %v", err)
	}
	return ""
}

func (b *Bot) handleCancelAlerts(ctx context.Context, chatID int64, args string) string {
	symbol := types.Symbol(strings.ToUpper(strings.TrimSpace(args)))
	if symbol == "" {
		return helpers.EscapeMarkdownV2(translation.Translate("Usage: /ca SYMBOL"))
	}

	count, err := b.engine.CancelAlertsBySymbol(ctx, chatID, symbol)
	switch {
	case errors.Is(err, engine.ErrInvalidSymbol):
		return helpers.EscapeMarkdownV2(fmt.Sprintf(
			translation.Translate("Unsupported symbol: %s. Supported: %s"),
			symbol, joinSymbols()))
	case err != nil:
		log.Errorf("failed to cancel alerts: %v", err)
		return helpers.EscapeMarkdownV2(translation.Translate("Something went wrong, please try again later."))
	}

	return helpers.EscapeMarkdownV2(fmt.Sprintf(
		translation.Translate("Cancelled %d alert(s) for %s."), count, symbol))
}

// HandleCallbackQuery routes inline button presses. Cancellation by id
// deliberately skips an ownership check: the button only ever appears
// in the owner's chat.
func (b *Bot) HandleCallbackQuery(ctx context.Context, callbackQuery *tgbotapi.CallbackQuery) {
	data := callbackQuery.Data
	chatID := callbackQuery.Message.Chat.ID

	if !strings.HasPrefix(data, "alert_cancel|") {
		b.Bot.Send(tgbotapi.NewCallback(callbackQuery.ID, translation.Translate("Unknown action.")))
		return
	}

	alertID, err := strconv.ParseInt(strings.TrimPrefix(data, "alert_cancel|"), 10, 64)
	if err != nil {
		b.Bot.Send(tgbotapi.NewCallback(callbackQuery.ID, translation.Translate("Invalid alert data.")))
		return
	}

	err = b.engine.CancelAlert(ctx, alertID)
	switch {
	case errors.Is(err, engine.ErrNotFound):
		b.Bot.Send(tgbotapi.NewCallback(callbackQuery.ID, translation.Translate("Alert already gone.")))
		return
	case err != nil:
		log.Errorf("failed to cancel alert %d: %v", alertID, err)
		b.Bot.Send(tgbotapi.NewCallback(callbackQuery.ID, translation.Translate("Failed to cancel alert. Please try again later.")))
		return
	}

	b.Bot.Send(tgbotapi.NewCallback(callbackQuery.ID, translation.Translate("Alert cancelled.")))

	err = b.SendMessage(Message{
		ChatID: chatID,
		Text:   helpers.EscapeMarkdownV2(fmt.Sprintf(translation.Translate("Alert #%d cancelled."), alertID)),
	})
	if err != nil {
		log.Errorf("failed to confirm cancellation: %v", err)
	}
}
