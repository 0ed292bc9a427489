package usecase

import (
	"strings"

	"github.com/ybc112/AetherPay/internal/domain/models"
)

// PairClassifier maps a pair string to its canonical form and pricing
// category. Pure and deterministic; membership tables are fixed at
// construction and never mutated.
type PairClassifier struct {
	aliases       map[string]string
	stablePairs   map[string]struct{}
	fiatPairs     map[string]struct{}
	cryptoSymbols map[string]struct{}
	stableSymbols map[string]struct{}
}

func NewPairClassifier() *PairClassifier {
	return &PairClassifier{
		aliases: map[string]string{
			"WBTC": "BTC",
			"WETH": "ETH",
		},
		stablePairs: toSet(
			"USDC/USDT", "USDT/USDC",
			"DAI/USDT", "USDT/DAI",
			"DAI/USDC", "USDC/DAI",
		),
		fiatPairs: toSet(
			"CNY/USD", "EUR/USD", "JPY/USD", "GBP/USD", "KRW/USD",
			"HKD/USD", "SGD/USD", "AUD/USD", "CAD/USD",
		),
		cryptoSymbols: toSet("BTC", "ETH", "SOL", "ADA", "BNB", "MATIC", "AVAX"),
		stableSymbols: toSet("USDC", "USDT", "DAI", "BUSD"),
	}
}

// Classify returns the canonical pair (uppercased, wrapped assets
// unwrapped) and its category. The caller keeps the original string for
// output; all table lookups use the canonical form.
func (c *PairClassifier) Classify(pair string) (string, models.PairCategory) {
	canonical := c.Canonical(pair)

	if _, ok := c.stablePairs[canonical]; ok {
		return canonical, models.CategoryStablecoin
	}
	if _, ok := c.fiatPairs[canonical]; ok {
		return canonical, models.CategoryFiat
	}

	base, quote, ok := splitPair(canonical)
	if ok && c.isCryptoPair(base, quote) {
		return canonical, models.CategoryCrypto
	}
	return canonical, models.CategoryOther
}

// Canonical uppercases the pair and rewrites wrapped-asset legs to
// their underlying symbol.
func (c *PairClassifier) Canonical(pair string) string {
	up := strings.ToUpper(strings.TrimSpace(pair))
	base, quote, ok := splitPair(up)
	if !ok {
		return up
	}
	if alias, found := c.aliases[base]; found {
		base = alias
	}
	if alias, found := c.aliases[quote]; found {
		quote = alias
	}
	return base + "/" + quote
}

func (c *PairClassifier) isCryptoPair(base, quote string) bool {
	if _, crypto := c.cryptoSymbols[base]; crypto {
		if _, stable := c.stableSymbols[quote]; stable {
			return true
		}
	}
	if _, crypto := c.cryptoSymbols[quote]; crypto {
		if _, stable := c.stableSymbols[base]; stable {
			return true
		}
	}
	return false
}

// ValidPair reports whether the string has the BASE/QUOTE shape with
// exactly one separator and two non-empty legs.
func ValidPair(pair string) bool {
	base, quote, ok := splitPair(strings.TrimSpace(pair))
	return ok && base != "" && quote != ""
}

func splitPair(pair string) (string, string, bool) {
	if strings.Count(pair, "/") != 1 {
		return "", "", false
	}
	i := strings.IndexByte(pair, '/')
	return pair[:i], pair[i+1:], true
}

func toSet(keys ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}
