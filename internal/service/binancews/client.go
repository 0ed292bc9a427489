package binancews

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ybc112/AetherPay/internal/domain/models"
	drepo "github.com/ybc112/AetherPay/internal/domain/repository"
	"github.com/ybc112/AetherPay/pkg/util"

	"github.com/gorilla/websocket"
)

// Client implements a RateStream backed by the Binance trade WebSocket.
type Client struct {
	websocketURL   string
	pairs          []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	// stream symbol ("btcusdt") back to pair ("BTC/USDT")
	symbolToPair map[string]string

	// mu guards conn and connected; IsConnected is read from the
	// health endpoint while the collector goroutine reconnects.
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new Binance RateStream for the given pairs.
func New(websocketURL string, pairs []string, reconnectDelay, pingInterval time.Duration) drepo.RateStream {
	c := &Client{
		websocketURL:   websocketURL,
		pairs:          pairs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		symbolToPair:   make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		c.symbolToPair[streamSymbol(p)] = p
	}
	return c
}

// streamSymbol turns "BTC/USDT" into "btcusdt".
func streamSymbol(pair string) string {
	return strings.ToLower(strings.ReplaceAll(pair, "/", ""))
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	log.Printf("binancews: connected")
	return nil
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Subscribe subscribes to trade streams for the configured pairs.
func (c *Client) Subscribe(ctx context.Context) error {
	conn := c.current()
	if conn == nil || !c.IsConnected() {
		return fmt.Errorf("binance not connected")
	}
	params := make([]string, 0, len(c.pairs))
	for _, p := range c.pairs {
		params = append(params, streamSymbol(p)+"@trade")
	}
	msg := map[string]interface{}{"method": "SUBSCRIBE", "params": params, "id": 1}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	log.Printf("binancews: subscribed %v", params)
	return nil
}

type wsTrade struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Price  string `json:"p"`
	Qty    string `json:"q"`
	T      int64  `json:"T"` // ms
}

// Read streams RateTick events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.RateTick, <-chan error) {
	ticks := make(chan *models.RateTick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if conn := c.current(); conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				conn := c.current()
				if conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				var m wsTrade
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-trade frames
					continue
				}
				if m.Event != "trade" {
					continue
				}
				pair, ok := c.symbolToPair[strings.ToLower(m.Symbol)]
				if !ok {
					continue
				}
				price := util.ParseFloatDefault(m.Price, 0)
				if price <= 0 {
					continue
				}
				tick := &models.RateTick{
					Pair:      pair,
					Price:     price,
					Volume:    util.ParseFloatDefault(m.Qty, 0),
					Source:    "binance",
					Timestamp: time.UnixMilli(m.T),
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
