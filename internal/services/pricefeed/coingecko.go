package pricefeed

import (
	"context"
	"strings"
	"time"

	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
)

const coingeckoBaseURL = "https://api.coingecko.com"

// Coin ids differ from ticker symbols on this venue.
var coingeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"BNB":   "binancecoin",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
}

type CoinGecko struct {
	httpBase
}

func NewCoinGecko(timeout time.Duration) *CoinGecko {
	return &CoinGecko{httpBase: newHTTPBase(coingeckoBaseURL, timeout)}
}

func NewCoinGeckoWithURL(baseURL string, timeout time.Duration) *CoinGecko {
	return &CoinGecko{httpBase: newHTTPBase(baseURL, timeout)}
}

func (s *CoinGecko) Name() string { return "coingecko" }

func (s *CoinGecko) FetchPrice(ctx context.Context, pair string) (float64, bool) {
	base, quote, ok := splitLegs(pair)
	if !ok {
		return 0, false
	}
	id, ok := coingeckoIDs[base]
	if !ok {
		return 0, false
	}
	// Stable quotes are tracked against USD here.
	vs := strings.ToLower(quote)
	if vs == "usdt" || vs == "usdc" || vs == "dai" || vs == "busd" {
		vs = "usd"
	}

	var resp map[string]map[string]float64
	err := s.getJSON(ctx, "/api/v3/simple/price",
		map[string][]string{"ids": {id}, "vs_currencies": {vs}}, &resp)
	if err != nil {
		return 0, false
	}

	price := resp[id][vs]
	return price, price > 0
}

var _ domsvc.PriceSource = (*CoinGecko)(nil)
