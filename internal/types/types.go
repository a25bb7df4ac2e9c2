package types

import "time"

// Symbol is a trading pair identifier, e.g. BTCUSDT.
type Symbol string

// SupportedSymbols is the fixed set of trading pairs the bot watches.
var SupportedSymbols = []Symbol{"BTCUSDT", "ETHUSDT", "SOLUSDT", "ETHFIUSDT"}

// IsSupported reports whether s is one of the supported trading pairs.
func IsSupported(s Symbol) bool {
	for _, sym := range SupportedSymbols {
		if sym == s {
			return true
		}
	}
	return false
}

// Direction tells which way the price has to cross the target for an
// alert to fire. Fixed at creation time, never recomputed.
type Direction string

const (
	Above Direction = "ABOVE"
	Below Direction = "BELOW"
)

// Alert is a single price threshold watch.
type Alert struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Symbol    Symbol    `json:"symbol"`
	Target    float64   `json:"target"`
	Direction Direction `json:"direction"`
	Repeat    bool      `json:"repeat"`
	Triggered bool      `json:"triggered"`
	CreatedAt time.Time `json:"created_at"`
}

// Quote is one price reading for a symbol. Err is set when the feed
// could not supply a price this round.
type Quote struct {
	Price float64
	Err   error
}

// FireEvent describes one alert crossing, ready for notification.
type FireEvent struct {
	ChatID    int64
	Symbol    Symbol
	Direction Direction
	Target    float64
	Price     float64
}
