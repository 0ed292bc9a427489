package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["pair"] != "BTC/USDT" || req["horizon"] != "30s" {
			t.Fatalf("unexpected request %v", req)
		}
		w.Write([]byte(`{"predicted_price":66000,"confidence":0.9,"model_version":"v3","available":true}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, "30s")
	inf, err := p.Predict(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !inf.Available {
		t.Fatalf("expected available inference")
	}
	if inf.PredictedPrice != 66000 || inf.Confidence != 0.9 {
		t.Fatalf("unexpected inference %+v", inf)
	}
	if inf.ModelVersion != "v3" {
		t.Fatalf("expected model version passthrough, got %q", inf.ModelVersion)
	}
}

func TestPredictUnavailableFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"available":false}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, "30s")
	inf, err := p.Predict(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("explicit unavailable must not be an error: %v", err)
	}
	if inf.Available {
		t.Fatalf("expected unavailable inference")
	}
}

func TestPredictServiceDown(t *testing.T) {
	p := NewHTTPPredictor("http://127.0.0.1:1", 100*time.Millisecond, "30s")
	if _, err := p.Predict(context.Background(), "BTC/USDT"); err == nil {
		t.Fatalf("expected error when service is unreachable")
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, "30s")
	if err := p.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestHealthDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"loading"}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, "30s")
	if err := p.Health(context.Background()); err == nil {
		t.Fatalf("expected error for non-ok status")
	}
}
