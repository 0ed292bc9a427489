package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBinanceFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/price" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Fatalf("unexpected symbol %q", got)
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"65000.12"}`))
	}))
	defer srv.Close()

	s := NewBinanceWithURL(srv.URL, time.Second)
	price, ok := s.FetchPrice(context.Background(), "BTC/USDT")
	if !ok {
		t.Fatalf("expected ok")
	}
	if price != 65000.12 {
		t.Fatalf("price = %v, want 65000.12", price)
	}
}

func TestCoinbaseFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/prices/ETH-USDT/spot" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":{"amount":"3900.5"}}`))
	}))
	defer srv.Close()

	s := NewCoinbaseWithURL(srv.URL, time.Second)
	price, ok := s.FetchPrice(context.Background(), "ETH/USDT")
	if !ok || price != 3900.5 {
		t.Fatalf("got %v/%v, want 3900.5/true", price, ok)
	}
}

func TestOKXFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("instId"); got != "SOL-USDT" {
			t.Fatalf("unexpected instId %q", got)
		}
		w.Write([]byte(`{"data":[{"last":"250.1"}]}`))
	}))
	defer srv.Close()

	s := NewOKXWithURL(srv.URL, time.Second)
	price, ok := s.FetchPrice(context.Background(), "SOL/USDT")
	if !ok || price != 250.1 {
		t.Fatalf("got %v/%v, want 250.1/true", price, ok)
	}
}

func TestHuobiFetchPriceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","tick":{"close":100}}`))
	}))
	defer srv.Close()

	s := NewHuobiWithURL(srv.URL, time.Second)
	if _, ok := s.FetchPrice(context.Background(), "BTC/USDT"); ok {
		t.Fatalf("expected not ok on error status")
	}
}

func TestKuCoinFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"price":"0.95"}}`))
	}))
	defer srv.Close()

	s := NewKuCoinWithURL(srv.URL, time.Second)
	price, ok := s.FetchPrice(context.Background(), "ADA/USDT")
	if !ok || price != 0.95 {
		t.Fatalf("got %v/%v, want 0.95/true", price, ok)
	}
}

func TestCoinGeckoFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("ids") != "bitcoin" || q.Get("vs_currencies") != "usd" {
			t.Fatalf("unexpected query %v", q)
		}
		w.Write([]byte(`{"bitcoin":{"usd":65000}}`))
	}))
	defer srv.Close()

	s := NewCoinGeckoWithURL(srv.URL, time.Second)
	price, ok := s.FetchPrice(context.Background(), "BTC/USDT")
	if !ok || price != 65000 {
		t.Fatalf("got %v/%v, want 65000/true", price, ok)
	}
}

func TestFetchPriceSourceDown(t *testing.T) {
	// Nothing listens on this address.
	s := NewBinanceWithURL("http://127.0.0.1:1", 100*time.Millisecond)
	if _, ok := s.FetchPrice(context.Background(), "BTC/USDT"); ok {
		t.Fatalf("expected not ok when the source is unreachable")
	}
}

func TestBuildSkipsUnknown(t *testing.T) {
	sources := Build([]string{"binance", "nope", "okx", ""}, time.Second)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name() != "binance" || sources[1].Name() != "okx" {
		t.Fatalf("unexpected source order: %s, %s", sources[0].Name(), sources[1].Name())
	}
}
