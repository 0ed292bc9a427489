package models

import (
	"testing"

	"github.com/creasty/defaults"
)

func TestQuoteRequestDefaults(t *testing.T) {
	req := &QuoteRequest{Pair: "BTC/USDT"}
	if err := defaults.Set(req); err != nil {
		t.Fatalf("set defaults: %v", err)
	}
	if req.Amount != 1000 {
		t.Fatalf("expected default amount 1000, got %v", req.Amount)
	}
	if req.Threshold != 0.85 {
		t.Fatalf("expected default threshold 0.85, got %v", req.Threshold)
	}
}

func TestPathCompareRequestDefaults(t *testing.T) {
	req := &PathCompareRequest{Pair: "ETH/USDT"}
	if err := defaults.Set(req); err != nil {
		t.Fatalf("set defaults: %v", err)
	}
	if req.Amount != 1000 {
		t.Fatalf("expected default amount 1000, got %v", req.Amount)
	}
	if req.Confidence != 0.9 {
		t.Fatalf("expected default confidence 0.9, got %v", req.Confidence)
	}
}
