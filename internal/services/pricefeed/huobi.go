package pricefeed

import (
	"context"
	"strings"
	"time"

	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
)

const huobiBaseURL = "https://api.huobi.pro"

type Huobi struct {
	httpBase
}

func NewHuobi(timeout time.Duration) *Huobi {
	return &Huobi{httpBase: newHTTPBase(huobiBaseURL, timeout)}
}

func NewHuobiWithURL(baseURL string, timeout time.Duration) *Huobi {
	return &Huobi{httpBase: newHTTPBase(baseURL, timeout)}
}

func (s *Huobi) Name() string { return "huobi" }

func (s *Huobi) FetchPrice(ctx context.Context, pair string) (float64, bool) {
	base, quote, ok := splitLegs(pair)
	if !ok {
		return 0, false
	}

	var resp struct {
		Status string `json:"status"`
		Tick   struct {
			Close float64 `json:"close"`
		} `json:"tick"`
	}
	err := s.getJSON(ctx, "/market/detail/merged",
		map[string][]string{"symbol": {strings.ToLower(base + quote)}}, &resp)
	if err != nil || resp.Status != "ok" {
		return 0, false
	}

	return resp.Tick.Close, resp.Tick.Close > 0
}

var _ domsvc.PriceSource = (*Huobi)(nil)
