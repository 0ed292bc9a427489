package pricefeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	domsvc "github.com/ybc112/AetherPay/internal/domain/service"
	xhttp "github.com/ybc112/AetherPay/pkg/http"
)

const defaultFetchTimeout = 3 * time.Second

// httpBase centralizes client construction and JSON GET handling for
// the exchange source clients.
type httpBase struct {
	baseURL string
	client  *xhttp.Client
}

func newHTTPBase(baseURL string, timeout time.Duration) httpBase {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return httpBase{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// getJSON fetches `path` under baseURL and decodes JSON into dest.
func (b *httpBase) getJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		QueryParams: query,
	}, dest)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}

// splitLegs breaks "BTC/USDT" into its legs. Sources format venue
// symbols from these.
func splitLegs(pair string) (string, string, bool) {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Build returns clients for the named sources. Unknown names are
// skipped; zero sources is a valid, if degraded, runtime state.
func Build(enabled []string, timeout time.Duration) []domsvc.PriceSource {
	sources := make([]domsvc.PriceSource, 0, len(enabled))
	for _, name := range enabled {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "binance":
			sources = append(sources, NewBinance(timeout))
		case "coinbase":
			sources = append(sources, NewCoinbase(timeout))
		case "okx":
			sources = append(sources, NewOKX(timeout))
		case "huobi":
			sources = append(sources, NewHuobi(timeout))
		case "kucoin":
			sources = append(sources, NewKuCoin(timeout))
		case "coingecko":
			sources = append(sources, NewCoinGecko(timeout))
		}
	}
	return sources
}
