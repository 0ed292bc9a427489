package usecase

import (
	"testing"

	"github.com/ybc112/AetherPay/internal/domain/models"
)

func TestClassifyCategories(t *testing.T) {
	c := NewPairClassifier()

	cases := []struct {
		pair      string
		canonical string
		category  models.PairCategory
	}{
		{"USDC/USDT", "USDC/USDT", models.CategoryStablecoin},
		{"DAI/USDC", "DAI/USDC", models.CategoryStablecoin},
		{"EUR/USD", "EUR/USD", models.CategoryFiat},
		{"CNY/USD", "CNY/USD", models.CategoryFiat},
		{"BTC/USDT", "BTC/USDT", models.CategoryCrypto},
		{"SOL/USDC", "SOL/USDC", models.CategoryCrypto},
		{"USDT/ETH", "USDT/ETH", models.CategoryCrypto},
		{"XYZ/ABC", "XYZ/ABC", models.CategoryOther},
		{"btc/usdt", "BTC/USDT", models.CategoryCrypto},
	}
	for _, tc := range cases {
		canonical, category := c.Classify(tc.pair)
		if canonical != tc.canonical {
			t.Fatalf("Classify(%q) canonical = %q, want %q", tc.pair, canonical, tc.canonical)
		}
		if category != tc.category {
			t.Fatalf("Classify(%q) category = %q, want %q", tc.pair, category, tc.category)
		}
	}
}

func TestClassifyUnwrapsAliases(t *testing.T) {
	c := NewPairClassifier()

	canonical, category := c.Classify("WBTC/USDT")
	if canonical != "BTC/USDT" {
		t.Fatalf("expected WBTC to unwrap to BTC, got %q", canonical)
	}
	if category != models.CategoryCrypto {
		t.Fatalf("expected crypto, got %q", category)
	}

	canonical, _ = c.Classify("WETH/USDC")
	if canonical != "ETH/USDC" {
		t.Fatalf("expected WETH to unwrap to ETH, got %q", canonical)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := NewPairClassifier()

	canonical, category := c.Classify("WBTC/USDT")
	again, categoryAgain := c.Classify(canonical)
	if again != canonical || categoryAgain != category {
		t.Fatalf("reclassifying canonical pair changed result: %q/%q vs %q/%q",
			canonical, category, again, categoryAgain)
	}
}

func TestValidPair(t *testing.T) {
	cases := []struct {
		pair string
		want bool
	}{
		{"BTC/USDT", true},
		{"EUR/USD", true},
		{"BTCUSDT", false},
		{"BTC/USD/T", false},
		{"/USDT", false},
		{"BTC/", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidPair(tc.pair); got != tc.want {
			t.Fatalf("ValidPair(%q) = %v, want %v", tc.pair, got, tc.want)
		}
	}
}
