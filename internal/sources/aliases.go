package sources

import "strings"

// aliasSeeds maps well-known tickers to names the headline matcher should
// also accept. The per-request alias set is ticker + listing name + seeds.
var aliasSeeds = map[string][]string{
	"BTC":   {"bitcoin", "xbt"},
	"ETH":   {"ethereum", "ether"},
	"BNB":   {"binance coin"},
	"SOL":   {"solana"},
	"XRP":   {"ripple"},
	"ADA":   {"cardano"},
	"DOGE":  {"dogecoin"},
	"TRX":   {"tron"},
	"DOT":   {"polkadot"},
	"MATIC": {"polygon"},
	"LTC":   {"litecoin"},
	"SHIB":  {"shiba inu"},
	"AVAX":  {"avalanche"},
	"LINK":  {"chainlink"},
	"ATOM":  {"cosmos"},
	"UNI":   {"uniswap"},
	"XLM":   {"stellar"},
	"NEAR":  {"near protocol"},
	"ALGO":  {"algorand"},
	"FIL":   {"filecoin"},
}

// spamPhrases drops low-signal promotional posts before bucketing.
var spamPhrases = []string{
	"giveaway",
	"airdrop",
	"presale",
	"pre-sale",
	"100x",
	"1000x",
	"pump signal",
	"referral",
	"bonus code",
	"sponsored",
	"whitelist spots",
	"free tokens",
}

// buildAliases assembles the lowercase alias set for one asset.
func buildAliases(ticker, name string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(ticker)
	add(name)
	for _, seed := range aliasSeeds[strings.ToUpper(ticker)] {
		add(seed)
	}
	return out
}

// matchesAlias reports whether the text mentions the asset. Short aliases
// (tickers) must appear as a standalone token to avoid substring noise;
// longer aliases match on containment.
func matchesAlias(text string, aliases []string) bool {
	text = strings.ToLower(text)
	var tokens map[string]bool
	for _, alias := range aliases {
		if len(alias) > 4 {
			if strings.Contains(text, alias) {
				return true
			}
			continue
		}
		if tokens == nil {
			tokens = tokenize(text)
		}
		if tokens[alias] || tokens["$"+alias] {
			return true
		}
	}
	return false
}

func tokenize(text string) map[string]bool {
	tokens := map[string]bool{}
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '$')
	}) {
		tokens[tok] = true
	}
	return tokens
}

// isSpam reports whether the text trips the spam-phrase denylist.
func isSpam(text string) bool {
	text = strings.ToLower(text)
	for _, phrase := range spamPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
