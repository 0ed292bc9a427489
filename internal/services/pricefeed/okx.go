package pricefeed

import (
	"context"
	"time"

	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
	"github.com/ybc112/AetherPay/pkg/util"
)

const okxBaseURL = "https://www.okx.com"

type OKX struct {
	httpBase
}

func NewOKX(timeout time.Duration) *OKX {
	return &OKX{httpBase: newHTTPBase(okxBaseURL, timeout)}
}

func NewOKXWithURL(baseURL string, timeout time.Duration) *OKX {
	return &OKX{httpBase: newHTTPBase(baseURL, timeout)}
}

func (s *OKX) Name() string { return "okx" }

func (s *OKX) FetchPrice(ctx context.Context, pair string) (float64, bool) {
	base, quote, ok := splitLegs(pair)
	if !ok {
		return 0, false
	}

	var resp struct {
		Data []struct {
			Last string `json:"last"`
		} `json:"data"`
	}
	err := s.getJSON(ctx, "/api/v5/market/ticker",
		map[string][]string{"instId": {base + "-" + quote}}, &resp)
	if err != nil || len(resp.Data) == 0 {
		return 0, false
	}

	price := util.ParseFloatDefault(resp.Data[0].Last, 0)
	return price, price > 0
}

var _ domsvc.PriceSource = (*OKX)(nil)
