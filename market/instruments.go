// market/instruments.go
package market

import "strings"

// Currency codes that can appear in a six-letter forex pair. XAU/XAG cover
// the precious-metal pairs quoted against USD.
var forexCurrencies = map[string]bool{
	"EUR": true, "GBP": true, "USD": true, "JPY": true, "CHF": true,
	"AUD": true, "CAD": true, "NZD": true, "XAU": true, "XAG": true,
}

// Crypto bases seen in benchmark datasets (BTC-USD style or bare).
var cryptoBases = map[string]bool{
	"BTC": true, "ETH": true, "SOL": true, "BNB": true, "XRP": true,
	"ADA": true, "DOGE": true, "LTC": true, "DOT": true, "AVAX": true,
}

// MarketFor classifies an instrument symbol into a market ID:
//
//	600519.SH / 000001.SZ  -> cn
//	BTC-USD, ETH           -> crypto
//	EURUSD, XAUUSD         -> forex
//	anything else          -> us
func MarketFor(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))

	if strings.HasSuffix(s, ".SH") || strings.HasSuffix(s, ".SZ") {
		return "cn"
	}

	if base, _, ok := strings.Cut(s, "-"); ok {
		if cryptoBases[base] {
			return "crypto"
		}
	}
	if cryptoBases[s] {
		return "crypto"
	}

	if len(s) == 6 && forexCurrencies[s[:3]] && forexCurrencies[s[3:]] {
		return "forex"
	}

	return "us"
}

// ProfileFor returns the rule profile governing a symbol.
func ProfileFor(symbol string) Profile {
	return Markets[MarketFor(symbol)]
}
