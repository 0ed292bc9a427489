package pricefeed

import (
	"context"
	"time"

	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
	"github.com/ybc112/AetherPay/pkg/util"
)

const binanceBaseURL = "https://api.binance.com"

type Binance struct {
	httpBase
}

func NewBinance(timeout time.Duration) *Binance {
	return &Binance{httpBase: newHTTPBase(binanceBaseURL, timeout)}
}

// NewBinanceWithURL is used by tests to point at a fake server.
func NewBinanceWithURL(baseURL string, timeout time.Duration) *Binance {
	return &Binance{httpBase: newHTTPBase(baseURL, timeout)}
}

func (s *Binance) Name() string { return "binance" }

func (s *Binance) FetchPrice(ctx context.Context, pair string) (float64, bool) {
	base, quote, ok := splitLegs(pair)
	if !ok {
		return 0, false
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	err := s.getJSON(ctx, "/api/v3/ticker/price",
		map[string][]string{"symbol": {base + quote}}, &resp)
	if err != nil {
		return 0, false
	}

	price := util.ParseFloatDefault(resp.Price, 0)
	return price, price > 0
}

var _ domsvc.PriceSource = (*Binance)(nil)
