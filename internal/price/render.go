package price

import (
	"fmt"
	"strings"
	"time"

	"crypto-alerts-bot/internal/types"
	"crypto-alerts-bot/lib/helpers"
	"crypto-alerts-bot/lib/translation"
)

func symbolEmoji(symbol types.Symbol) string {
	switch {
	case strings.HasPrefix(string(symbol), "BTC"):
		return "🟢"
	case strings.HasPrefix(string(symbol), "ETH"):
		return "🔵"
	default:
		return "🟣"
	}
}

// Snapshot renders one MarkdownV2 price update covering every
// supported symbol. A symbol whose price could not be fetched gets an
// explicit error line instead of being dropped.
func Snapshot(quotes map[types.Symbol]types.Quote, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 *%s* _%s_\n\n",
		helpers.EscapeMarkdownV2(translation.Translate("Crypto Price Update")),
		helpers.EscapeMarkdownV2(fmt.Sprintf("(%s)", now.Format("15:04"))),
	))

	for _, symbol := range types.SupportedSymbols {
		quote, ok := quotes[symbol]
		if !ok || quote.Err != nil {
			b.WriteString(fmt.Sprintf("❌ *%s*: _%s_\n",
				symbol,
				helpers.EscapeMarkdownV2(translation.Translate("Error fetching price")),
			))
			continue
		}
		b.WriteString(fmt.Sprintf("%s *%s*: `$%s`\n",
			symbolEmoji(symbol),
			symbol,
			helpers.FormatPriceUS(quote.Price, false),
		))
	}

	return b.String()
}
