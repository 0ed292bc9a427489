package pricefeed

import (
	"context"
	"time"

	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
	"github.com/ybc112/AetherPay/pkg/util"
)

const kucoinBaseURL = "https://api.kucoin.com"

type KuCoin struct {
	httpBase
}

func NewKuCoin(timeout time.Duration) *KuCoin {
	return &KuCoin{httpBase: newHTTPBase(kucoinBaseURL, timeout)}
}

func NewKuCoinWithURL(baseURL string, timeout time.Duration) *KuCoin {
	return &KuCoin{httpBase: newHTTPBase(baseURL, timeout)}
}

func (s *KuCoin) Name() string { return "kucoin" }

func (s *KuCoin) FetchPrice(ctx context.Context, pair string) (float64, bool) {
	base, quote, ok := splitLegs(pair)
	if !ok {
		return 0, false
	}

	var resp struct {
		Data struct {
			Price string `json:"price"`
		} `json:"data"`
	}
	err := s.getJSON(ctx, "/api/v1/market/orderbook/level1",
		map[string][]string{"symbol": {base + "-" + quote}}, &resp)
	if err != nil {
		return 0, false
	}

	price := util.ParseFloatDefault(resp.Data.Price, 0)
	return price, price > 0
}

var _ domsvc.PriceSource = (*KuCoin)(nil)
