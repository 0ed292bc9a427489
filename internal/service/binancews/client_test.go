package binancews

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestStreamSymbol(t *testing.T) {
	cases := map[string]string{
		"BTC/USDT": "btcusdt",
		"ETH/USDT": "ethusdt",
		"eur/usd":  "eurusd",
	}
	for pair, want := range cases {
		if got := streamSymbol(pair); got != want {
			t.Fatalf("streamSymbol(%s) = %s, want %s", pair, got, want)
		}
	}
}

func TestSubscribeRequiresConnection(t *testing.T) {
	c := New("ws://localhost:0", []string{"BTC/USDT"}, time.Millisecond, time.Minute).(*Client)
	if err := c.Subscribe(context.Background()); err == nil || !strings.Contains(err.Error(), "not connected") {
		t.Fatalf("expected not-connected error, got %v", err)
	}
}

// IsConnected is polled from the health endpoint while the collector
// goroutine closes and reopens the connection, so the two must not race.
func TestConnectionStatusConcurrentAccess(t *testing.T) {
	c := New("ws://localhost:0", []string{"BTC/USDT"}, time.Millisecond, time.Minute).(*Client)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = c.IsConnected()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = c.Close()
			}
		}()
	}
	wg.Wait()

	if c.IsConnected() {
		t.Fatalf("client must report disconnected after Close")
	}
}
