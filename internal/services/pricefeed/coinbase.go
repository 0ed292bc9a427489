package pricefeed

import (
	"context"
	"fmt"
	"time"

	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
	"github.com/ybc112/AetherPay/pkg/util"
)

const coinbaseBaseURL = "https://api.coinbase.com"

type Coinbase struct {
	httpBase
}

func NewCoinbase(timeout time.Duration) *Coinbase {
	return &Coinbase{httpBase: newHTTPBase(coinbaseBaseURL, timeout)}
}

func NewCoinbaseWithURL(baseURL string, timeout time.Duration) *Coinbase {
	return &Coinbase{httpBase: newHTTPBase(baseURL, timeout)}
}

func (s *Coinbase) Name() string { return "coinbase" }

func (s *Coinbase) FetchPrice(ctx context.Context, pair string) (float64, bool) {
	base, quote, ok := splitLegs(pair)
	if !ok {
		return 0, false
	}

	var resp struct {
		Data struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	path := fmt.Sprintf("/v2/prices/%s-%s/spot", base, quote)
	if err := s.getJSON(ctx, path, nil, &resp); err != nil {
		return 0, false
	}

	price := util.ParseFloatDefault(resp.Data.Amount, 0)
	return price, price > 0
}

var _ domsvc.PriceSource = (*Coinbase)(nil)
